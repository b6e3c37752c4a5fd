package mcp

import "errors"

var (
	// ErrInvalidConfig indicates the client configuration cannot be used.
	ErrInvalidConfig = errors.New("mcp: invalid config")
	// ErrToolFailed indicates the server reported a tool execution error.
	ErrToolFailed = errors.New("mcp: tool execution failed")
)
