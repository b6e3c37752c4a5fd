package mcp

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-kratos/scout/tools"
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// toTool converts an MCP tool to a tools.Tool.
func toTool(mcpTool *mcp.Tool, handler tools.Handler) (*tools.Tool, error) {
	inputSchema, err := convertSchema(mcpTool.InputSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to convert input schema: %w", err)
	}
	return tools.NewTool(
		mcpTool.Name,
		mcpTool.Description,
		handler,
		tools.WithInputSchema(inputSchema),
	), nil
}

// convertSchema converts an MCP schema to a jsonschema.Schema.
func convertSchema(mcpSchema any) (*jsonschema.Schema, error) {
	if mcpSchema == nil {
		return &jsonschema.Schema{Type: "object"}, nil
	}
	schemaBytes, err := json.Marshal(mcpSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var schema jsonschema.Schema
	if err := json.Unmarshal(schemaBytes, &schema); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema: %w", err)
	}
	return &schema, nil
}

// textOf concatenates the text content of a tool result.
func textOf(content []mcp.Content) string {
	var buf strings.Builder
	for _, c := range content {
		if text, ok := c.(*mcp.TextContent); ok {
			if buf.Len() > 0 {
				buf.WriteString("\n")
			}
			buf.WriteString(text.Text)
		}
	}
	return buf.String()
}

// formatToolResult converts an MCP CallToolResult to the text handed back to the model.
// Structured content wins over text content; non-text content is returned as JSON.
func formatToolResult(result *mcp.CallToolResult) (string, error) {
	if result.IsError {
		if msg := textOf(result.Content); msg != "" {
			return "", fmt.Errorf("%w: %s", ErrToolFailed, msg)
		}
		return "", ErrToolFailed
	}
	if result.StructuredContent != nil {
		b, err := json.Marshal(result.StructuredContent)
		if err != nil {
			return "", fmt.Errorf("failed to marshal structured content: %w", err)
		}
		return string(b), nil
	}
	if text := textOf(result.Content); text != "" {
		return text, nil
	}
	b, err := json.Marshal(result.Content)
	if err != nil {
		return "", fmt.Errorf("failed to marshal content: %w", err)
	}
	return string(b), nil
}
