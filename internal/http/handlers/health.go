package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db      *gorm.DB
	started time.Time
}

// NewHealthHandler reports database reachability when db is non-nil.
func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db, started: time.Now()}
}

// GET /health
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	status, code := "ok", http.StatusOK
	dbStatus := "unknown"
	if h.db != nil {
		dbStatus = "up"
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		sqlDB, err := h.db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			dbStatus = "down"
			status, code = "degraded", http.StatusServiceUnavailable
		}
	}
	c.JSON(code, gin.H{
		"success": code == http.StatusOK,
		"message": "Server is " + status,
		"data": gin.H{
			"status":    status,
			"database":  dbStatus,
			"uptime":    time.Since(h.started).Round(time.Second).String(),
			"timestamp": time.Now().UTC(),
		},
	})
}
