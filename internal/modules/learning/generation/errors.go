package generation

import (
	"fmt"

	"github.com/abhayporwals/taskyn/internal/modules/learning/prompts"
)

// GenerationError means the provider call failed or produced no text.
type GenerationError struct {
	Prompt   prompts.PromptName
	Provider string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed (%s via %s): %v", e.Prompt, e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// ParseError means the provider answered but the answer is not a usable object.
type ParseError struct {
	Prompt prompts.PromptName
	Reason string
}

func (e *ParseError) Error() string {
	if e.Prompt == "" {
		return "invalid model response: " + e.Reason
	}
	return fmt.Sprintf("invalid %s response: %s", e.Prompt, e.Reason)
}
