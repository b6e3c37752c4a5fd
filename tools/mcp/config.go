package mcp

import (
	"fmt"
	"net/url"
	"time"
)

// TransportType defines how the client talks to a remote MCP server.
type TransportType string

const (
	// TransportStreamable uses the streamable HTTP transport.
	TransportStreamable TransportType = "streamable"
	// TransportSSE uses the legacy server-sent events transport.
	TransportSSE TransportType = "sse"
)

// DefaultTimeout bounds a single list or call request when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// ClientConfig configures a remote MCP server connection.
type ClientConfig struct {
	// Name identifies the server in errors and logs.
	Name string
	// Endpoint is the MCP server URL.
	Endpoint string
	// Transport selects the wire transport, streamable HTTP by default.
	Transport TransportType
	// Headers are custom HTTP headers to include in requests.
	Headers map[string]string
	// Timeout is the per-request timeout.
	Timeout time.Duration
}

// validate checks the configuration and fills in defaults.
func (c *ClientConfig) validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("%w: endpoint is required", ErrInvalidConfig)
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("%w: endpoint %q: %v", ErrInvalidConfig, c.Endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: endpoint %q must be http or https", ErrInvalidConfig, c.Endpoint)
	}
	if c.Name == "" {
		c.Name = u.Host
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	switch c.Transport {
	case "":
		c.Transport = TransportStreamable
	case TransportStreamable, TransportSSE:
	default:
		return fmt.Errorf("%w: unsupported transport: %s", ErrInvalidConfig, c.Transport)
	}
	return nil
}
