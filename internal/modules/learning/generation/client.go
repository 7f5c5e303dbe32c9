package generation

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/abhayporwals/taskyn/internal/modules/learning/prompts"
	"github.com/abhayporwals/taskyn/internal/platform/logger"
)

// Provider is a text-generation backend. Implementations return the raw model text.
type Provider interface {
	Name() string
	Generate(ctx context.Context, p prompts.Prompt) (string, error)
}

// Recorder receives one observation per generation call.
type Recorder interface {
	ObserveGeneration(prompt, provider, outcome string, dur time.Duration)
}

const (
	OutcomeOK            = "ok"
	OutcomeProviderError = "provider_error"
	OutcomeParseError    = "parse_error"
)

// Client wraps a Provider with extraction and validation of the structured answer.
// Build one at startup and share it.
type Client struct {
	log      *logger.Logger
	provider Provider
	recorder Recorder
}

func NewClient(log *logger.Logger, provider Provider, recorder Recorder) *Client {
	return &Client{
		log:      log.With("service", "GenerationClient", "provider", provider.Name()),
		provider: provider,
		recorder: recorder,
	}
}

func (c *Client) ProviderName() string { return c.provider.Name() }

// Generate returns the raw text for p or a *GenerationError.
func (c *Client) Generate(ctx context.Context, p prompts.Prompt) (string, error) {
	text, err := c.provider.Generate(ctx, p)
	if err == nil && strings.TrimSpace(text) == "" {
		err = errors.New("empty response")
	}
	if err != nil {
		return "", &GenerationError{Prompt: p.Name, Provider: c.provider.Name(), Err: err}
	}
	return text, nil
}

func (c *Client) GenerateTrack(ctx context.Context, p prompts.Prompt) (TrackDraft, error) {
	var draft TrackDraft
	err := c.run(ctx, p, func(raw string) error {
		var perr error
		draft, perr = ParseTrack(raw)
		return perr
	})
	return draft, err
}

func (c *Client) GenerateAssignment(ctx context.Context, p prompts.Prompt) (AssignmentDraft, error) {
	var draft AssignmentDraft
	err := c.run(ctx, p, func(raw string) error {
		var perr error
		draft, perr = ParseAssignment(raw)
		return perr
	})
	return draft, err
}

func (c *Client) GenerateFeedback(ctx context.Context, p prompts.Prompt) (FeedbackDraft, error) {
	var draft FeedbackDraft
	err := c.run(ctx, p, func(raw string) error {
		var perr error
		draft, perr = ParseFeedback(raw)
		return perr
	})
	return draft, err
}

func (c *Client) run(ctx context.Context, p prompts.Prompt, parse func(string) error) error {
	start := time.Now()
	raw, err := c.Generate(ctx, p)
	if err != nil {
		c.observe(p, OutcomeProviderError, start)
		c.log.Warn("Generation call failed", "prompt", string(p.Name), "error", err)
		return err
	}
	if err := parse(raw); err != nil {
		c.observe(p, OutcomeParseError, start)
		c.log.Warn("Generation response rejected", "prompt", string(p.Name), "error", err, "response_chars", len(raw))
		return err
	}
	c.observe(p, OutcomeOK, start)
	c.log.Debug("Generation succeeded", "prompt", string(p.Name), "duration_ms", time.Since(start).Milliseconds())
	return nil
}

func (c *Client) observe(p prompts.Prompt, outcome string, start time.Time) {
	if c.recorder == nil {
		return
	}
	c.recorder.ObserveGeneration(string(p.Name), c.provider.Name(), outcome, time.Since(start))
}
