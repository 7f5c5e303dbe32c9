package learning

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeCode    = "code"
	TypeReading = "reading"
	TypeProject = "project"
	TypeMCQ     = "mcq"
	TypeMixed   = "mixed"

	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"

	SubmissionText = "text"
	SubmissionFile = "file"
	SubmissionCode = "code"

	FeedbackStatusNone      = "none"
	FeedbackStatusGenerated = "generated"
	FeedbackStatusSkipped   = "skipped"
	FeedbackStatusFailed    = "failed"
)

var (
	AssignmentTypes = []string{TypeCode, TypeReading, TypeProject, TypeMCQ, TypeMixed}
	Difficulties    = []string{DifficultyEasy, DifficultyMedium, DifficultyHard}
	SubmissionTypes = []string{SubmissionText, SubmissionFile, SubmissionCode}
)

// Assignment is a single task within a track. Once IsCompleted is set it is never reset.
type Assignment struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID            uuid.UUID  `gorm:"type:uuid;not null;index;column:user_id" json:"userId"`
	TrackID           uuid.UUID  `gorm:"type:uuid;not null;index;column:track_id" json:"trackId"`
	Title             string     `gorm:"not null;column:title" json:"title"`
	Description       string     `gorm:"not null;column:description" json:"description"`
	Type              string     `gorm:"not null;column:type" json:"type"`
	Difficulty        string     `gorm:"not null;column:difficulty" json:"difficulty"`
	Language          string     `gorm:"column:language" json:"language"`
	SampleSolution    string     `gorm:"column:sample_solution" json:"sampleSolution"`
	ExpectedOutput    string     `gorm:"column:expected_output" json:"expectedOutput"`
	IsCompleted       bool       `gorm:"not null;index;column:is_completed" json:"isCompleted"`
	SubmittedAt       *time.Time `gorm:"column:submitted_at" json:"submittedAt"`
	SubmissionContent string     `gorm:"column:submission_content" json:"submissionContent"`
	SubmissionType    string     `gorm:"column:submission_type" json:"submissionType"`
	Reflection        string     `gorm:"column:reflection" json:"reflection"`
	AIFeedbackID      *uuid.UUID `gorm:"type:uuid;column:ai_feedback_id" json:"aiFeedbackId"`
	FeedbackStatus    string     `gorm:"not null;column:feedback_status" json:"feedbackStatus"`
	CreatedAt         time.Time  `gorm:"not null;index" json:"createdAt"`
	UpdatedAt         time.Time  `gorm:"not null" json:"updatedAt"`

	Feedback *Feedback `gorm:"-" json:"feedback,omitempty"`
}

func (Assignment) TableName() string { return "assignment" }

func oneOf(v string, set []string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func IsAssignmentType(s string) bool { return oneOf(s, AssignmentTypes) }
func IsDifficulty(s string) bool     { return oneOf(s, Difficulties) }
func IsSubmissionType(s string) bool { return oneOf(s, SubmissionTypes) }
