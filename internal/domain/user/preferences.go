package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	SkillBeginner     = "beginner"
	SkillIntermediate = "intermediate"
	SkillAdvanced     = "advanced"

	LearningStyleAssignmentOnly = "assignment-only"
	LearningStyleResourcesOnly  = "resources-only"
	LearningStyleBoth           = "both"

	AssignmentTypeProject        = "project"
	AssignmentTypeProblemSolving = "problem-solving"
	AssignmentTypeReadingBased   = "reading-based"
	AssignmentTypeMixed          = "mixed"
)

// UserPreferences is the onboarding profile that drives generation. One row per user.
type UserPreferences struct {
	ID                      uuid.UUID                             `gorm:"type:uuid;primaryKey" json:"id"`
	UserID                  uuid.UUID                             `gorm:"type:uuid;not null;uniqueIndex;column:user_id" json:"userId"`
	Interests               datatypes.JSONSlice[string]           `gorm:"column:interests" json:"interests"`
	PrimaryGoals            datatypes.JSONSlice[string]           `gorm:"column:primary_goals" json:"primaryGoals"`
	SecondaryGoals          datatypes.JSONSlice[string]           `gorm:"column:secondary_goals" json:"secondaryGoals"`
	SkillLevels             datatypes.JSONType[map[string]string] `gorm:"column:skill_levels" json:"skillLevels"`
	PreferredTopics         datatypes.JSONSlice[string]           `gorm:"column:preferred_topics" json:"preferredTopics"`
	PreferredLanguage       string                                `gorm:"not null;column:preferred_language" json:"preferredLanguage"`
	LearningStyle           string                                `gorm:"not null;column:learning_style" json:"learningStyle"`
	PreferredAssignmentType string                                `gorm:"not null;column:preferred_assignment_type" json:"preferredAssignmentType"`
	YearsOfExperience       int                                   `gorm:"not null;column:years_of_experience" json:"yearsOfExperience"`
	AvailableHoursPerWeek   int                                   `gorm:"not null;column:available_hours_per_week" json:"availableHoursPerWeek"`
	PriorProjects           datatypes.JSONSlice[string]           `gorm:"column:prior_projects" json:"priorProjects"`
	GithubURL               string                                `gorm:"column:github_url" json:"githubUrl"`
	PortfolioURL            string                                `gorm:"column:portfolio_url" json:"portfolioUrl"`
	WantsFeedback           bool                                  `gorm:"not null;column:wants_feedback" json:"wantsFeedback"`
	Version                 int                                   `gorm:"not null;column:version" json:"version"`
	SubmittedAt             time.Time                             `gorm:"column:submitted_at" json:"submittedAt"`
	CreatedAt               time.Time                             `gorm:"not null" json:"createdAt"`
	UpdatedAt               time.Time                             `gorm:"not null" json:"updatedAt"`
}

func (UserPreferences) TableName() string { return "user_preferences" }

func (p *UserPreferences) Skills() map[string]string {
	if p == nil {
		return nil
	}
	return p.SkillLevels.Data()
}
