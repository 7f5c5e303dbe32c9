package prompts

type PromptName string

const (
	PromptTrack      PromptName = "track"
	PromptAssignment PromptName = "assignment"
	PromptFeedback   PromptName = "feedback"
)
