package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-kratos/scout"
	"github.com/go-kratos/scout/discovery"
	"github.com/go-kratos/scout/pipeline"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	outcome pipeline.Outcome
	err     error
	got     *pipeline.Request
}

func (r *fakeRunner) Run(ctx context.Context, req pipeline.Request) (pipeline.Outcome, error) {
	r.got = &req
	return r.outcome, r.err
}

func newServer(runner Runner, opts ...Option) *Server {
	logger, _ := test.NewNullLogger()
	return New(runner, Config{BodyLimit: "1M"}, append([]Option{WithLogger(logger)}, opts...)...)
}

func post(t *testing.T, s *Server, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/run", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec.Code, out
}

const validBody = `{"prompt":"Tell me a Chuck Norris joke about history","apiKey":"sk-test","registryUrl":"https://registry.example/mcp","openaiModel":"gpt-4.1","debug":true}`

func TestRunCompleted(t *testing.T) {
	service := discovery.ServiceDescriptor{URL: "https://chucknorris.example/mcp", Name: "chuck-norris-mcp", Description: "jokes"}
	runner := &fakeRunner{outcome: pipeline.Outcome{Kind: pipeline.OutcomeCompleted, Text: "a joke", Service: &service}}

	code, out := post(t, newServer(runner), validBody)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "a joke", out["result"])
	assert.Equal(t, map[string]any{
		"name":        "chuck-norris-mcp",
		"url":         "https://chucknorris.example/mcp",
		"description": "jokes",
	}, out["server"])

	require.NotNil(t, runner.got)
	assert.Equal(t, pipeline.FreeForm{Text: "Tell me a Chuck Norris joke about history"}, runner.got.Intent)
	assert.Equal(t, "sk-test", runner.got.Model.APIKey)
	assert.Equal(t, "gpt-4.1", runner.got.Model.Name)
	assert.Equal(t, "https://registry.example/mcp", runner.got.RegistryURL)
	assert.True(t, runner.got.Debug)
}

func TestRunNotFound(t *testing.T) {
	runner := &fakeRunner{outcome: pipeline.Outcome{Kind: pipeline.OutcomeNotFound}}
	code, out := post(t, newServer(runner), validBody)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, map[string]any{"error": "No MCP server found for your request"}, out)
}

func TestRunFailures(t *testing.T) {
	tests := []struct {
		name    string
		outcome pipeline.Outcome
		message string
		details string
	}{
		{
			name: "discovery",
			outcome: pipeline.Outcome{
				Kind: pipeline.OutcomeDiscoveryFailed,
				Err:  &pipeline.Error{Kind: pipeline.KindDiscovery, Op: "discover", Err: errors.New("registry unreachable")},
			},
			message: discoveryFailedMessage,
			details: "registry unreachable",
		},
		{
			name: "execution",
			outcome: pipeline.Outcome{
				Kind: pipeline.OutcomeExecutionFailed,
				Text: pipeline.FailureText,
				Err:  &pipeline.Error{Kind: pipeline.KindExecution, Op: "execute", Err: errors.New("tool call failed")},
			},
			message: executionFailedMessage,
			details: "tool call failed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out := post(t, newServer(&fakeRunner{outcome: tt.outcome}), validBody)
			assert.Equal(t, http.StatusBadGateway, code)
			assert.Equal(t, tt.message, out["error"])
			assert.Equal(t, tt.details, out["details"])
		})
	}
}

func TestRunValidation(t *testing.T) {
	tests := map[string]string{
		"no prompt":    `{"apiKey":"k","registryUrl":"https://r.example/mcp"}`,
		"no api key":   `{"prompt":"p","registryUrl":"https://r.example/mcp"}`,
		"no registry":  `{"prompt":"p","apiKey":"k"}`,
		"bad provider": `{"prompt":"p","apiKey":"k","registryUrl":"https://r.example/mcp","provider":"anthropic"}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			runner := &fakeRunner{}
			code, out := post(t, newServer(runner), body)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.NotEmpty(t, out["error"])
			assert.Nil(t, runner.got)
		})
	}

	code, out := post(t, newServer(&fakeRunner{}), `{"prompt":`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid request body", out["error"])
}

func TestRunValidationMessage(t *testing.T) {
	runner := &fakeRunner{}
	code, out := post(t, newServer(runner), `{"registryUrl":"https://r.example/mcp","provider":"anthropic"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, `prompt is required; API key is required; unknown model provider: "anthropic"`, out["error"])
	assert.Nil(t, runner.got)
}

func TestRunDefaults(t *testing.T) {
	runner := &fakeRunner{outcome: pipeline.Outcome{Kind: pipeline.OutcomeNotFound}}
	s := newServer(runner, WithDefaults(Defaults{
		Model:       scout.ModelConfig{Provider: "openai", APIKey: "sk-default", Name: "gpt-4o-mini"},
		RegistryURL: "https://default.example/mcp",
	}))

	code, _ := post(t, s, `{"prompt":"weather in Paris"}`)
	assert.Equal(t, http.StatusNotFound, code)
	require.NotNil(t, runner.got)
	assert.Equal(t, "sk-default", runner.got.Model.APIKey)
	assert.Equal(t, "gpt-4o-mini", runner.got.Model.Name)
	assert.Equal(t, "openai", runner.got.Model.Provider)
	assert.Equal(t, "https://default.example/mcp", runner.got.RegistryURL)
}

func TestRunUnexpectedError(t *testing.T) {
	code, out := post(t, newServer(&fakeRunner{err: errors.New("boom")}), validBody)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, http.StatusText(http.StatusInternalServerError), out["error"])
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newServer(&fakeRunner{}).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var out HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "ok", out.Status)
	assert.Equal(t, scout.Version, out.Version)
}

func TestRateLimit(t *testing.T) {
	logger, _ := test.NewNullLogger()
	s := New(&fakeRunner{}, Config{RateLimit: 1, Burst: 1}, WithLogger(logger))

	codes := make([]int, 0, 3)
	for range 3 {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, http.StatusOK, codes[0])
	assert.Contains(t, codes[1:], http.StatusTooManyRequests)
}
