package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Feedback is the AI review attached to a submitted assignment.
type Feedback struct {
	ID                  uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	AssignmentID        uuid.UUID                   `gorm:"type:uuid;not null;index;column:assignment_id" json:"assignmentId"`
	GeneratedBy         string                      `gorm:"not null;column:generated_by" json:"generatedBy"`
	Score               float64                     `gorm:"not null;column:score" json:"score"`
	FeedbackText        string                      `gorm:"not null;column:feedback_text" json:"feedbackText"`
	Suggestions         datatypes.JSONSlice[string] `gorm:"column:suggestions" json:"suggestions"`
	Strengths           datatypes.JSONSlice[string] `gorm:"column:strengths" json:"strengths"`
	AreasForImprovement datatypes.JSONSlice[string] `gorm:"column:areas_for_improvement" json:"areasForImprovement"`
	CreatedAt           time.Time                   `gorm:"not null" json:"createdAt"`
}

func (Feedback) TableName() string { return "feedback" }
