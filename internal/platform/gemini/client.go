package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/abhayporwals/taskyn/internal/platform/envutil"
	"github.com/abhayporwals/taskyn/internal/platform/logger"
)

const defaultModel = "gemini-2.0-flash"

type Config struct {
	APIKey      string
	Model       string
	Temperature float32
}

func ConfigFromEnv() Config {
	return Config{
		APIKey:      strings.TrimSpace(envutil.String("GEMINI_API_KEY", "")),
		Model:       envutil.String("GEMINI_MODEL", defaultModel),
		Temperature: 0.7,
	}
}

// Client generates JSON text with the Gemini API.
type Client struct {
	log         *logger.Logger
	client      *genai.Client
	model       string
	temperature float32
}

func NewClient(ctx context.Context, log *logger.Logger, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing GEMINI_API_KEY")
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &Client{
		log:         log.With("client", "GeminiClient", "model", cfg.Model),
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}, nil
}

func (c *Client) Name() string { return "gemini" }

// GenerateJSONText requests a JSON response. The schema is not forwarded; Gemini's
// schema dialect differs and the response is validated by the caller.
func (c *Client) GenerateJSONText(ctx context.Context, system, user, _ string, _ map[string]any) (string, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr(c.temperature),
	}
	if strings.TrimSpace(system) != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(user), cfg)
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no text returned")
	}
	return text, nil
}
