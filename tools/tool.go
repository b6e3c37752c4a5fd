package tools

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
)

// Tool represents a tool with a name, description, input schema, and a tool handler.
type Tool struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	InputSchema *jsonschema.Schema `json:"inputSchema"`
	Handler     Handler            `json:"-"`
}

// NewTool creates a new Tool with the given name, description and handler.
// Without an input schema option the tool accepts any JSON object.
func NewTool(name string, description string, handler Handler, opts ...Option) *Tool {
	t := &Tool{
		Name:        name,
		Description: description,
		InputSchema: &jsonschema.Schema{Type: "object"},
		Handler:     handler,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Handle calls the tool handler with the JSON arguments produced by the model.
func (t *Tool) Handle(ctx context.Context, input string) (string, error) {
	return t.Handler.Handle(ctx, input)
}

// WithHandler returns a shallow copy of the tool using the given handler.
func (t *Tool) WithHandler(h Handler) *Tool {
	c := *t
	c.Handler = h
	return &c
}
