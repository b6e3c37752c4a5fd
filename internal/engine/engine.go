// Package engine runs one agent against one remote MCP endpoint.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/go-kratos/kit/retry"
	"github.com/go-kratos/scout"
	"github.com/go-kratos/scout/contrib/otel"
	"github.com/go-kratos/scout/internal/logging"
	"github.com/go-kratos/scout/middleware"
	"github.com/go-kratos/scout/tools/mcp"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

var _ scout.Engine = (*Engine)(nil)

// Option configures an Engine.
type Option func(*Engine)

// WithProviderFactory replaces the model provider factory.
func WithProviderFactory(f ProviderFactory) Option {
	return func(e *Engine) {
		e.providers = f
	}
}

// WithTransport selects the MCP transport used for every endpoint.
func WithTransport(t mcp.TransportType) Option {
	return func(e *Engine) {
		e.transport = t
	}
}

// WithToolTimeout bounds each MCP list or call request.
func WithToolTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.toolTimeout = d
	}
}

// WithHeaders adds HTTP headers to every MCP request.
func WithHeaders(headers map[string]string) Option {
	return func(e *Engine) {
		e.headers = headers
	}
}

// WithMaxIterations caps the model/tool loop of a run.
func WithMaxIterations(n int) Option {
	return func(e *Engine) {
		e.maxIterations = n
	}
}

// WithRetry retries failed runs. attempts <= 1 disables retrying.
func WithRetry(attempts int, opts ...retry.Option) Option {
	return func(e *Engine) {
		e.retryAttempts = attempts
		e.retryOptions = opts
	}
}

// WithTracerProvider sets the provider of agent run spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(e *Engine) {
		e.tracerProvider = tp
	}
}

// WithModelOptions sets request-time options for every model call.
func WithModelOptions(opts ...scout.ModelOption) Option {
	return func(e *Engine) {
		e.modelOptions = opts
	}
}

// Engine builds a fresh model handle and MCP client for every run, so
// concurrent runs never share mutable state.
type Engine struct {
	providers      ProviderFactory
	transport      mcp.TransportType
	toolTimeout    time.Duration
	headers        map[string]string
	maxIterations  int
	retryAttempts  int
	retryOptions   []retry.Option
	tracerProvider trace.TracerProvider
	modelOptions   []scout.ModelOption
}

// New creates an engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		providers:     NewProvider,
		transport:     mcp.TransportStreamable,
		toolTimeout:   mcp.DefaultTimeout,
		maxIterations: 10,
		retryAttempts: 1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes spec.Prompt with the tools of spec.Endpoint and returns the transcript.
func (e *Engine) Run(ctx context.Context, spec scout.RunSpec) ([]*scout.Message, error) {
	log := logging.FromContext(ctx).WithField("agent", spec.Agent)

	model, err := e.providers(ctx, spec.Model)
	if err != nil {
		return nil, fmt.Errorf("build model: %w", err)
	}
	client, err := mcp.NewClient(mcp.ClientConfig{
		Endpoint:  spec.Endpoint,
		Transport: e.transport,
		Headers:   e.headers,
		Timeout:   e.toolTimeout,
	})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := client.Close(); err != nil {
			log.WithError(err).Warn("failed to close MCP client")
		}
	}()

	tracing := []otel.TraceOption{otel.WithSystem(spec.Model.ProviderName())}
	if e.tracerProvider != nil {
		tracing = append(tracing, otel.WithTracerProvider(e.tracerProvider))
	}
	opts := []scout.AgentOption{
		scout.WithModel(model),
		scout.WithDescription(spec.Description),
		scout.WithToolsResolver(client),
		scout.WithMaxIterations(e.maxIterations),
		scout.WithModelOptions(e.modelOptions...),
		scout.WithMiddleware(
			otel.Tracing(tracing...),
			middleware.Logging(log),
			middleware.Retry(e.retryAttempts, e.retryOptions...),
		),
	}
	if spec.OutputSchema != nil {
		opts = append(opts, scout.WithOutputSchema(spec.OutputSchema))
	}
	if spec.Debug {
		opts = append(opts, scout.WithToolMiddleware(middleware.ToolLogging(log)))
	}
	agent, err := scout.NewAgent(spec.Agent, opts...)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{"endpoint": spec.Endpoint, "model": model.Name()}).Debug("starting agent run")
	return scout.NewRunner(agent).Transcript(ctx, scout.UserMessage(spec.Prompt))
}
