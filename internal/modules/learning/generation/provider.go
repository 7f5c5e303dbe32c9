package generation

import (
	"context"

	"github.com/abhayporwals/taskyn/internal/modules/learning/prompts"
)

// JSONModel is implemented by the platform LLM clients (gemini, openai).
type JSONModel interface {
	Name() string
	GenerateJSONText(ctx context.Context, system, user, schemaName string, schema map[string]any) (string, error)
}

type modelProvider struct {
	model JSONModel
}

// FromModel adapts a platform client to Provider.
func FromModel(m JSONModel) Provider {
	return modelProvider{model: m}
}

func (p modelProvider) Name() string { return p.model.Name() }

func (p modelProvider) Generate(ctx context.Context, pr prompts.Prompt) (string, error) {
	return p.model.GenerateJSONText(ctx, pr.System, pr.User, pr.SchemaName, pr.Schema)
}
