package engine

import (
	"context"

	"github.com/go-kratos/scout"
	"github.com/go-kratos/scout/contrib/gemini"
	"github.com/go-kratos/scout/contrib/openai"
)

// Default model names per provider.
const (
	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultGeminiModel = "gemini-2.5-flash"
)

// ProviderFactory builds a fresh model handle for one run.
type ProviderFactory func(ctx context.Context, config scout.ModelConfig) (scout.ModelProvider, error)

// NewProvider is the default ProviderFactory. It supports the openai and
// gemini providers and fills in the provider's default model.
func NewProvider(ctx context.Context, config scout.ModelConfig) (scout.ModelProvider, error) {
	switch config.ProviderName() {
	case scout.ProviderOpenAI:
		model := config.Name
		if model == "" {
			model = DefaultOpenAIModel
		}
		return openai.NewModel(model, openai.Config{
			APIKey:  config.APIKey,
			BaseURL: config.BaseURL,
		})
	case scout.ProviderGemini:
		model := config.Name
		if model == "" {
			model = DefaultGeminiModel
		}
		return gemini.NewModel(ctx, model, gemini.Config{
			APIKey:  config.APIKey,
			BaseURL: config.BaseURL,
		})
	default:
		return nil, config.Validate()
	}
}
