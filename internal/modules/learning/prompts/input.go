package prompts

import (
	"sort"
	"strconv"
	"strings"

	types "github.com/abhayporwals/taskyn/internal/domain"
)

const (
	placeholderNone       = "none specified"
	placeholderTrack      = "Custom Track"
	placeholderCategories = "General"
	placeholderTaskNumber = "Custom"
	placeholderTotalTasks = "N/A"
	placeholderType       = "appropriate for the track"
	placeholderDifficulty = "progressive based on task number"
)

// Input is a superset of all fields any prompt needs, already rendered to
// display strings. Use the With* helpers so missing data gets a placeholder.
type Input struct {
	// Learner profile
	Interests                string
	PrimaryGoals             string
	SecondaryGoals           string
	SkillLevels              string
	PreferredTopics          string
	PreferredLanguage        string
	LearningStyle            string
	AssignmentTypePreference string
	YearsOfExperience        int
	AvailableHoursPerWeek    int

	// Track request
	Focus string

	// Assignment context
	TrackTitle            string
	TrackCategories       string
	TaskNumber            string
	TotalTasks            string
	TypeRequirement       string
	DifficultyRequirement string

	// Feedback context
	AssignmentTitle       string
	AssignmentDescription string
	AssignmentType        string
	AssignmentDifficulty  string
	AssignmentLanguage    string
	SubmissionContent     string
	Reflection            string
}

// FromPreferences renders a learner profile. A nil profile yields placeholders.
func FromPreferences(p *types.UserPreferences) Input {
	in := Input{
		Interests:                placeholderNone,
		PrimaryGoals:             placeholderNone,
		SecondaryGoals:           placeholderNone,
		SkillLevels:              placeholderNone,
		PreferredTopics:          placeholderNone,
		PreferredLanguage:        placeholderNone,
		LearningStyle:            "both",
		AssignmentTypePreference: "mixed",
		TrackTitle:               placeholderTrack,
		TrackCategories:          placeholderCategories,
		TaskNumber:               placeholderTaskNumber,
		TotalTasks:               placeholderTotalTasks,
		TypeRequirement:          placeholderType,
		DifficultyRequirement:    placeholderDifficulty,
	}
	if p == nil {
		return in
	}
	in.Interests = joinList(p.Interests)
	in.PrimaryGoals = joinList(p.PrimaryGoals)
	in.SecondaryGoals = joinList(p.SecondaryGoals)
	in.SkillLevels = joinSkills(p.Skills())
	in.PreferredTopics = joinList(p.PreferredTopics)
	in.PreferredLanguage = orPlaceholder(p.PreferredLanguage, placeholderNone)
	in.LearningStyle = orPlaceholder(p.LearningStyle, "both")
	in.AssignmentTypePreference = orPlaceholder(p.PreferredAssignmentType, "mixed")
	in.YearsOfExperience = p.YearsOfExperience
	in.AvailableHoursPerWeek = p.AvailableHoursPerWeek
	return in
}

func (in Input) WithFocus(focus string) Input {
	in.Focus = strings.TrimSpace(focus)
	return in
}

// WithTrack sets the track context. taskNumber and totalTasks of zero mean an
// ad-hoc assignment outside the generated sequence.
func (in Input) WithTrack(title string, categories []string, taskNumber, totalTasks int) Input {
	in.TrackTitle = orPlaceholder(title, placeholderTrack)
	in.TrackCategories = placeholderCategories
	if s := joinList(categories); s != placeholderNone {
		in.TrackCategories = s
	}
	in.TaskNumber = placeholderTaskNumber
	if taskNumber > 0 {
		in.TaskNumber = strconv.Itoa(taskNumber)
	}
	in.TotalTasks = placeholderTotalTasks
	if totalTasks > 0 {
		in.TotalTasks = strconv.Itoa(totalTasks)
	}
	return in
}

func (in Input) WithOverrides(assignmentType, difficulty string) Input {
	in.TypeRequirement = orPlaceholder(assignmentType, placeholderType)
	in.DifficultyRequirement = orPlaceholder(difficulty, placeholderDifficulty)
	return in
}

func (in Input) WithSubmission(a *types.Assignment, content, reflection string) Input {
	if a != nil {
		in.AssignmentTitle = a.Title
		in.AssignmentDescription = a.Description
		in.AssignmentType = a.Type
		in.AssignmentDifficulty = a.Difficulty
		in.AssignmentLanguage = a.Language
	}
	in.SubmissionContent = orPlaceholder(content, "(empty submission)")
	in.Reflection = orPlaceholder(reflection, "(no reflection)")
	return in
}

func joinList(items []string) string {
	var kept []string
	for _, it := range items {
		if s := strings.TrimSpace(it); s != "" {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return placeholderNone
	}
	return strings.Join(kept, ", ")
}

func joinSkills(levels map[string]string) string {
	if len(levels) == 0 {
		return placeholderNone
	}
	keys := make([]string, 0, len(levels))
	for k := range levels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+levels[k])
	}
	return strings.Join(parts, ", ")
}

func orPlaceholder(s, placeholder string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return strings.TrimSpace(s)
}
