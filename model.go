package scout

import (
	"context"

	"github.com/go-kratos/scout/tools"
	"github.com/google/jsonschema-go/jsonschema"
)

// ModelOption configures a single request. Providers may ignore options
// they do not support but should prefer best-effort behavior.
type ModelOption func(*ModelOptions)

// ModelOptions holds common request-time controls.
type ModelOptions struct {
	Seed            int64
	MaxOutputTokens int64
	Temperature     float64
	TopP            float64
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) ModelOption {
	return func(o *ModelOptions) {
		o.Temperature = t
	}
}

// WithMaxOutputTokens caps the number of generated tokens.
func WithMaxOutputTokens(n int64) ModelOption {
	return func(o *ModelOptions) {
		o.MaxOutputTokens = n
	}
}

// WithTopP sets the nucleus sampling parameter.
func WithTopP(p float64) ModelOption {
	return func(o *ModelOptions) {
		o.TopP = p
	}
}

// WithSeed requests deterministic sampling where the provider supports it.
func WithSeed(seed int64) ModelOption {
	return func(o *ModelOptions) {
		o.Seed = seed
	}
}

// ModelRequest is a chat-style request to the provider.
type ModelRequest struct {
	Model        string             `json:"model"`
	Instruction  *Message           `json:"instruction,omitempty"`
	Messages     []*Message         `json:"messages"`
	Tools        []*tools.Tool      `json:"tools,omitempty"`
	OutputSchema *jsonschema.Schema `json:"outputSchema,omitempty"`
}

// ModelResponse is a single model turn.
type ModelResponse struct {
	Message *Message `json:"message"`
}

// ModelProvider is an interface for chat-style models.
type ModelProvider interface {
	// Name returns the model identifier.
	Name() string
	// Generate executes the request and returns a single model turn.
	Generate(context.Context, *ModelRequest, ...ModelOption) (*ModelResponse, error)
}
