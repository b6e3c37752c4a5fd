package scout

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
)

// Supported model providers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// ModelConfig identifies the model handle to build for a run.
type ModelConfig struct {
	// Provider selects the model backend, "openai" when empty.
	Provider string `json:"provider,omitempty"`
	APIKey   string `json:"-"`
	Name     string `json:"name"`
	// BaseURL optionally points the provider at an alternate endpoint.
	BaseURL string `json:"baseUrl,omitempty"`
}

// ProviderName returns the normalized provider, "openai" when unset.
func (c ModelConfig) ProviderName() string {
	name := strings.ToLower(strings.TrimSpace(c.Provider))
	if name == "" {
		return ProviderOpenAI
	}
	return name
}

// Validate reports a provider scout cannot build a model for.
func (c ModelConfig) Validate() error {
	switch c.ProviderName() {
	case ProviderOpenAI, ProviderGemini:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownProvider, c.Provider)
}

// RunSpec describes one agent run bound to a single remote tool endpoint.
type RunSpec struct {
	// Agent names the run in logs and traces.
	Agent string
	// Description tells what the run is for; it is recorded on the run's span.
	Description string
	// Prompt is the user message of the run.
	Prompt string
	// Endpoint is the MCP server whose tools the model may call.
	Endpoint string
	// OutputSchema constrains the final turn when set.
	OutputSchema *jsonschema.Schema
	Model        ModelConfig
	Debug        bool
}

// Engine executes agent runs and returns their transcripts.
// Implementations build fresh model and tool handles for every run.
type Engine interface {
	Run(context.Context, RunSpec) ([]*Message, error)
}

// EngineFunc adapts a plain function to an Engine.
type EngineFunc func(context.Context, RunSpec) ([]*Message, error)

// Run calls f(ctx, spec).
func (f EngineFunc) Run(ctx context.Context, spec RunSpec) ([]*Message, error) {
	return f(ctx, spec)
}
