package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-kratos/scout"
	"github.com/go-kratos/scout/tools"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var _ tools.Resolver = (*Client)(nil)

// Client wraps the official MCP SDK client for a single server connection.
type Client struct {
	config  ClientConfig
	client  *mcp.Client
	mu      sync.Mutex
	session *mcp.ClientSession
}

// NewClient creates a new MCP client. It does not connect until first use.
func NewClient(config ClientConfig) (*Client, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	client := mcp.NewClient(&mcp.Implementation{
		Name:    "scout",
		Version: scout.Version,
	}, nil)
	return &Client{
		config: config,
		client: client,
	}, nil
}

// Name returns the configured server name.
func (c *Client) Name() string {
	return c.config.Name
}

// Endpoint returns the configured server endpoint.
func (c *Client) Endpoint() string {
	return c.config.Endpoint
}

// connect establishes the session if needed and returns it.
func (c *Client) connect(ctx context.Context) (*mcp.ClientSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		return c.session, nil
	}
	session, err := c.client.Connect(ctx, c.transport(), nil)
	if err != nil {
		return nil, fmt.Errorf("mcp [%s] connect: %w", c.config.Name, err)
	}
	c.session = session
	return session, nil
}

// transport creates the client transport for the configured endpoint.
func (c *Client) transport() mcp.Transport {
	var httpClient *http.Client
	if len(c.config.Headers) > 0 {
		httpClient = &http.Client{
			Transport: withHeaders(http.DefaultTransport, c.config.Headers),
		}
	}
	if c.config.Transport == TransportSSE {
		return &mcp.SSEClientTransport{
			Endpoint:   c.config.Endpoint,
			HTTPClient: httpClient,
		}
	}
	return &mcp.StreamableClientTransport{
		Endpoint:   c.config.Endpoint,
		HTTPClient: httpClient,
	}
}

// ListTools lists all available tools from the server.
func (c *Client) ListTools(ctx context.Context) ([]*mcp.Tool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()
	session, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	result, err := session.ListTools(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("mcp [%s] list_tools: %w", c.config.Name, err)
	}
	return result.Tools, nil
}

// CallTool calls a tool on the server.
func (c *Client) CallTool(ctx context.Context, name string, arguments json.RawMessage) (*mcp.CallToolResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()
	session, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      name,
		Arguments: arguments,
	})
	if err != nil {
		return nil, fmt.Errorf("mcp [%s] call_tool %s: %w", c.config.Name, name, err)
	}
	return result, nil
}

// Resolve implements the tools.Resolver interface.
func (c *Client) Resolve(ctx context.Context) ([]*tools.Tool, error) {
	mcpTools, err := c.ListTools(ctx)
	if err != nil {
		return nil, err
	}
	res := make([]*tools.Tool, 0, len(mcpTools))
	for _, mcpTool := range mcpTools {
		tool, err := toTool(mcpTool, c.handler(mcpTool.Name))
		if err != nil {
			return nil, fmt.Errorf("mcp [%s] convert tool %s: %w", c.config.Name, mcpTool.Name, err)
		}
		res = append(res, tool)
	}
	return res, nil
}

// handler returns a tool handler that calls the MCP tool.
func (c *Client) handler(name string) tools.HandleFunc {
	return func(ctx context.Context, input string) (string, error) {
		arguments := json.RawMessage(input)
		if len(arguments) == 0 {
			arguments = json.RawMessage("{}")
		}
		if !json.Valid(arguments) {
			return "", fmt.Errorf("mcp [%s] call_tool %s: invalid input JSON", c.config.Name, name)
		}
		result, err := c.CallTool(ctx, name, arguments)
		if err != nil {
			return "", err
		}
		return formatToolResult(result)
	}
}

// Close closes the client connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	err := c.session.Close()
	c.session = nil
	if err != nil {
		return fmt.Errorf("mcp [%s] close: %w", c.config.Name, err)
	}
	return nil
}
