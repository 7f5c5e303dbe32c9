package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	learningrepo "github.com/abhayporwals/taskyn/internal/data/repos/learning"
	types "github.com/abhayporwals/taskyn/internal/domain"
	"github.com/abhayporwals/taskyn/internal/http/response"
	"github.com/abhayporwals/taskyn/internal/services"
)

type TrackHandler struct {
	trackService services.TrackService
	generation   services.GenerationService
}

func NewTrackHandler(trackService services.TrackService, generation services.GenerationService) *TrackHandler {
	return &TrackHandler{trackService: trackService, generation: generation}
}

// POST /tracks
// body (optional): { "focus" }
func (th *TrackHandler) Generate(c *gin.Context) {
	var opts services.TrackOptions
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&opts); err != nil {
			response.Error(c, err)
			return
		}
	}
	t, err := th.generation.GenerateTrack(c.Request.Context(), opts)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "AI track generated successfully", t)
}

// GET /tracks?status=&generatedBy=
func (th *TrackHandler) List(c *gin.Context) {
	rows, err := th.trackService.List(c.Request.Context(), learningrepo.TrackFilter{
		Status:      strings.TrimSpace(c.Query("status")),
		GeneratedBy: strings.TrimSpace(c.Query("generatedBy")),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	if rows == nil {
		rows = []*types.Track{}
	}
	response.OK(c, "Tracks fetched successfully", rows)
}

// GET /tracks/:trackId
func (th *TrackHandler) Get(c *gin.Context) {
	id, err := uuidParam(c, "trackId")
	if err != nil {
		response.Error(c, err)
		return
	}
	t, err := th.trackService.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Track fetched successfully", t)
}

// PATCH /tracks/:trackId
func (th *TrackHandler) Update(c *gin.Context) {
	id, err := uuidParam(c, "trackId")
	if err != nil {
		response.Error(c, err)
		return
	}
	patch, err := bindPatch(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	t, err := th.trackService.Update(c.Request.Context(), id, patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Track updated successfully", t)
}

// DELETE /tracks/:trackId
func (th *TrackHandler) Delete(c *gin.Context) {
	id, err := uuidParam(c, "trackId")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := th.trackService.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Track deleted successfully", gin.H{"trackId": id})
}

// GET /tracks/:trackId/progress
func (th *TrackHandler) Progress(c *gin.Context) {
	id, err := uuidParam(c, "trackId")
	if err != nil {
		response.Error(c, err)
		return
	}
	p, err := th.trackService.Progress(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Track progress fetched successfully", p)
}

// PATCH /tracks/:trackId/archive
func (th *TrackHandler) Archive(c *gin.Context) {
	id, err := uuidParam(c, "trackId")
	if err != nil {
		response.Error(c, err)
		return
	}
	t, err := th.trackService.Archive(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Track archived successfully", t)
}

// PATCH /tracks/:trackId/reactivate
func (th *TrackHandler) Reactivate(c *gin.Context) {
	id, err := uuidParam(c, "trackId")
	if err != nil {
		response.Error(c, err)
		return
	}
	t, err := th.trackService.Reactivate(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Track reactivated successfully", t)
}
