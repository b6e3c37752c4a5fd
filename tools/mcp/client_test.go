package mcp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type jokeInput struct {
	Topic string `json:"topic" jsonschema:"the joke topic"`
}

type sumInput struct {
	A int `json:"a"`
	B int `json:"b"`
}

type sumOutput struct {
	Sum int `json:"sum"`
}

// headerRecorder remembers the last value of one request header.
type headerRecorder struct {
	name  string
	mu    sync.Mutex
	value string
}

func (r *headerRecorder) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.mu.Lock()
		r.value = req.Header.Get(r.name)
		r.mu.Unlock()
		next.ServeHTTP(w, req)
	})
}

func (r *headerRecorder) get() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.value
}

func newTestServer(t *testing.T, rec *headerRecorder) *httptest.Server {
	t.Helper()
	server := mcp.NewServer(&mcp.Implementation{Name: "test", Version: "v1.0.0"}, nil)
	mcp.AddTool(server, &mcp.Tool{Name: "joke", Description: "Tell a joke"},
		func(ctx context.Context, req *mcp.CallToolRequest, in jokeInput) (*mcp.CallToolResult, any, error) {
			return &mcp.CallToolResult{
				Content: []mcp.Content{&mcp.TextContent{Text: "a joke about " + in.Topic}},
			}, nil, nil
		})
	mcp.AddTool(server, &mcp.Tool{Name: "sum", Description: "Add two numbers"},
		func(ctx context.Context, req *mcp.CallToolRequest, in sumInput) (*mcp.CallToolResult, sumOutput, error) {
			return nil, sumOutput{Sum: in.A + in.B}, nil
		})
	mcp.AddTool(server, &mcp.Tool{Name: "broken", Description: "Always fails"},
		func(ctx context.Context, req *mcp.CallToolRequest, in jokeInput) (*mcp.CallToolResult, any, error) {
			return nil, nil, errors.New("upstream unavailable")
		})
	var handler http.Handler = mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return server }, nil)
	if rec != nil {
		handler = rec.wrap(handler)
	}
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return ts
}

func TestClientResolve(t *testing.T) {
	ts := newTestServer(t, nil)
	client, err := NewClient(ClientConfig{Name: "test", Endpoint: ts.URL})
	require.NoError(t, err)
	defer client.Close()

	resolved, err := client.Resolve(context.Background())
	require.NoError(t, err)
	byName := make(map[string]int)
	for i, tool := range resolved {
		byName[tool.Name] = i
	}
	require.Contains(t, byName, "joke")
	require.Contains(t, byName, "sum")

	joke := resolved[byName["joke"]]
	assert.Equal(t, "Tell a joke", joke.Description)
	require.NotNil(t, joke.InputSchema)
	assert.Equal(t, "object", joke.InputSchema.Type)
	assert.Contains(t, joke.InputSchema.Properties, "topic")

	out, err := joke.Handle(context.Background(), `{"topic":"history"}`)
	require.NoError(t, err)
	assert.Equal(t, "a joke about history", out)

	out, err = resolved[byName["sum"]].Handle(context.Background(), `{"a":1,"b":2}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"sum":3}`, out)

	_, err = resolved[byName["broken"]].Handle(context.Background(), `{"topic":"x"}`)
	assert.ErrorIs(t, err, ErrToolFailed)
	assert.Contains(t, err.Error(), "upstream unavailable")

	_, err = joke.Handle(context.Background(), `{not json`)
	assert.Error(t, err)
}

func TestClientHeaders(t *testing.T) {
	rec := &headerRecorder{name: "X-Scout-Test"}
	ts := newTestServer(t, rec)
	client, err := NewClient(ClientConfig{
		Endpoint: ts.URL,
		Headers:  map[string]string{"X-Scout-Test": "yes"},
	})
	require.NoError(t, err)
	defer client.Close()

	_, err = client.ListTools(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "yes", rec.get())
}

func TestClientClose(t *testing.T) {
	ts := newTestServer(t, nil)
	client, err := NewClient(ClientConfig{Endpoint: ts.URL})
	require.NoError(t, err)

	// Closing an unused client is a no-op.
	require.NoError(t, client.Close())

	_, err = client.ListTools(context.Background())
	require.NoError(t, err)
	require.NoError(t, client.Close())

	// The client reconnects on next use.
	_, err = client.ListTools(context.Background())
	require.NoError(t, err)
	require.NoError(t, client.Close())
}

func TestClientUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	ts.Close()
	client, err := NewClient(ClientConfig{Endpoint: ts.URL})
	require.NoError(t, err)
	_, err = client.Resolve(context.Background())
	assert.Error(t, err)
}

func TestClientConfig(t *testing.T) {
	tests := []struct {
		name   string
		config ClientConfig
		valid  bool
	}{
		{name: "streamable default", config: ClientConfig{Endpoint: "https://registry.example/mcp"}, valid: true},
		{name: "sse", config: ClientConfig{Endpoint: "http://localhost:8000/sse", Transport: TransportSSE}, valid: true},
		{name: "missing endpoint", config: ClientConfig{}},
		{name: "bad scheme", config: ClientConfig{Endpoint: "stdio://server"}},
		{name: "bad transport", config: ClientConfig{Endpoint: "https://x.example", Transport: "websocket"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.config)
			if !tt.valid {
				assert.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, client.Name())
			assert.Equal(t, tt.config.Endpoint, client.Endpoint())
		})
	}

	config := ClientConfig{Endpoint: "https://registry.example/mcp"}
	require.NoError(t, config.validate())
	assert.Equal(t, "registry.example", config.Name)
	assert.Equal(t, DefaultTimeout, config.Timeout)
	assert.Equal(t, TransportStreamable, config.Transport)
}

func TestFormatToolResult(t *testing.T) {
	out, err := formatToolResult(&mcp.CallToolResult{Content: []mcp.Content{
		&mcp.TextContent{Text: "one"},
		&mcp.TextContent{Text: "two"},
	}})
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo", out)

	out, err = formatToolResult(&mcp.CallToolResult{StructuredContent: map[string]any{"ok": true}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, out)

	_, err = formatToolResult(&mcp.CallToolResult{IsError: true})
	assert.ErrorIs(t, err, ErrToolFailed)
}
