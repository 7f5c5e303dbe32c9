package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/abhayporwals/taskyn/internal/http/response"
	"github.com/abhayporwals/taskyn/internal/services"
)

type PreferencesHandler struct {
	prefsService services.PreferencesService
}

func NewPreferencesHandler(prefsService services.PreferencesService) *PreferencesHandler {
	return &PreferencesHandler{prefsService: prefsService}
}

// GET /preferences
func (ph *PreferencesHandler) Get(c *gin.Context) {
	p, err := ph.prefsService.Get(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "User preferences fetched successfully", p)
}

// PATCH /preferences
func (ph *PreferencesHandler) Upsert(c *gin.Context) {
	var req services.PreferencesInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	p, err := ph.prefsService.Upsert(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "User preferences saved successfully", p)
}
