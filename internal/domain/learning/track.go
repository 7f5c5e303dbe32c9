package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	TrackStatusActive    = "active"
	TrackStatusCompleted = "completed"
	TrackStatusArchived  = "archived"

	GeneratedByAI    = "ai"
	GeneratedByAdmin = "admin"
)

// Track is one personalized learning path. TotalTasks and CompletedTasks are
// derived from the track's assignments and only written by the progress reconciler.
type Track struct {
	ID             uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID                   `gorm:"type:uuid;not null;index;column:user_id" json:"userId"`
	Title          string                      `gorm:"not null;column:title" json:"title"`
	Category       datatypes.JSONSlice[string] `gorm:"column:category" json:"category"`
	Description    string                      `gorm:"column:description" json:"description"`
	Status         string                      `gorm:"not null;index;column:status" json:"status"`
	TotalTasks     int                         `gorm:"not null;column:total_tasks" json:"totalTasks"`
	CompletedTasks int                         `gorm:"not null;column:completed_tasks" json:"completedTasks"`
	GeneratedBy    string                      `gorm:"not null;column:generated_by" json:"generatedBy"`
	CreatedAt      time.Time                   `gorm:"not null;index" json:"createdAt"`
	UpdatedAt      time.Time                   `gorm:"not null" json:"updatedAt"`
}

func (Track) TableName() string { return "track" }

func IsTrackStatus(s string) bool {
	switch s {
	case TrackStatusActive, TrackStatusCompleted, TrackStatusArchived:
		return true
	}
	return false
}

func IsGeneratedBy(s string) bool {
	return s == GeneratedByAI || s == GeneratedByAdmin
}
