// Package pipeline resolves a request against an MCP registry and delegates
// it to the first service found.
//
// A run is strictly sequential and single-attempt: discovery, selection,
// execution. Failures inside discovery and execution are absorbed and
// reported through the Outcome; only invalid input is returned as an error.
package pipeline

import (
	"context"
	"time"

	"github.com/go-kratos/scout"
	"github.com/go-kratos/scout/discovery"
	"github.com/go-kratos/scout/internal/logging"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/go-kratos/scout/pipeline"

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the base logger every run derives its logger from.
func WithLogger(logger *logrus.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithStateHook observes every state transition.
func WithStateHook(hook StateHook) Option {
	return func(p *Pipeline) {
		p.hook = hook
	}
}

// WithDiscoveryTimeout bounds the discovery stage. Zero means no limit.
func WithDiscoveryTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		p.discoveryTimeout = d
	}
}

// WithExecutionTimeout bounds the execution stage. Zero means no limit.
func WithExecutionTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		p.executionTimeout = d
	}
}

// WithRewrite controls whether free-form intents are rewritten into a
// single-word registry query. It is on by default.
func WithRewrite(rewrite bool) Option {
	return func(p *Pipeline) {
		p.rewrite = rewrite
	}
}

// WithReportDiscoveryFailures reports a failed registry search as
// OutcomeDiscoveryFailed instead of OutcomeNotFound.
func WithReportDiscoveryFailures(report bool) Option {
	return func(p *Pipeline) {
		p.reportDiscoveryFailures = report
	}
}

// WithStrictDiscovery validates registry payloads against the discovery schema.
func WithStrictDiscovery(strict bool) Option {
	return func(p *Pipeline) {
		p.strict = strict
	}
}

// WithTracerProvider sets the provider of run and stage spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(p *Pipeline) {
		p.tracerProvider = tp
	}
}

// Pipeline runs discovery and execution on an Engine.
// It holds no per-run state and is safe for concurrent use.
type Pipeline struct {
	logger                  *logrus.Logger
	hook                    StateHook
	discoveryTimeout        time.Duration
	executionTimeout        time.Duration
	rewrite                 bool
	reportDiscoveryFailures bool
	strict                  bool
	tracerProvider          trace.TracerProvider

	tracer    trace.Tracer
	discovery *discovery.Client
	delegate  *Delegate
}

// New creates a pipeline on engine.
func New(engine scout.Engine, opts ...Option) *Pipeline {
	p := &Pipeline{
		logger:  logrus.StandardLogger(),
		rewrite: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.tracerProvider == nil {
		p.tracerProvider = otel.GetTracerProvider()
	}
	p.tracer = p.tracerProvider.Tracer(instrumentationName, trace.WithInstrumentationVersion(scout.Version))
	p.discovery = discovery.NewClient(engine, discovery.WithStrict(p.strict))
	p.delegate = NewDelegate(engine)
	return p
}

// run tracks the state of a single invocation.
type run struct {
	state State
	hook  StateHook
	log   logrus.FieldLogger
}

func (r *run) transition(ctx context.Context, to State) {
	if !CanTransition(r.state, to) {
		panic("pipeline: invalid transition from " + r.state.String() + " to " + to.String())
	}
	from := r.state
	r.state = to
	r.log.WithFields(logrus.Fields{"from": from, "to": to}).Debug("state transition")
	if r.hook != nil {
		r.hook(ctx, from, to)
	}
}

// Run executes one request. The returned error is non-nil only when the
// request fails validation; every other failure is described by the Outcome.
func (p *Pipeline) Run(ctx context.Context, req Request) (Outcome, error) {
	if err := req.Validate(); err != nil {
		return Outcome{}, err
	}
	runID := uuid.NewString()
	log := logging.ForRun(p.logger, req.Debug).WithField("run_id", runID)
	ctx = logging.NewContext(ctx, log)

	ctx, span := p.tracer.Start(ctx, "pipeline.run", trace.WithAttributes(
		attribute.String("scout.run_id", runID),
		attribute.String("scout.registry_url", req.RegistryURL),
	))
	defer span.End()

	r := &run{state: StateIdle, hook: p.hook, log: log}
	outcome := p.run(ctx, r, req)
	outcome.State = r.state

	span.SetAttributes(attribute.String("scout.outcome", outcome.Kind.String()))
	if outcome.Err != nil {
		span.SetStatus(codes.Error, outcome.Err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	entry := log.WithField("outcome", outcome.Kind)
	if outcome.Service != nil {
		entry = entry.WithField("service", outcome.Service.Name)
	}
	if outcome.OK() {
		entry.Info("run completed")
	} else {
		entry.WithError(outcome.Err).Warn("run did not complete")
	}
	return outcome, nil
}

func (p *Pipeline) run(ctx context.Context, r *run, req Request) Outcome {
	r.transition(ctx, StateDiscovering)
	report := p.discover(ctx, req)

	service, err := discovery.SelectFirst(report.Result)
	if err != nil {
		r.transition(ctx, StateNoCandidates)
		if report.Degraded != nil && p.reportDiscoveryFailures {
			return Outcome{
				Kind: OutcomeDiscoveryFailed,
				Err:  &Error{Kind: KindDiscovery, Op: "discover", Err: report.Degraded},
			}
		}
		return Outcome{
			Kind: OutcomeNotFound,
			Err:  &Error{Kind: KindNotFound, Op: "select", Err: err},
		}
	}
	r.transition(ctx, StateSelected)
	r.log.WithFields(logrus.Fields{
		"service":    service.Name,
		"url":        service.URL,
		"candidates": len(report.Result),
	}).Info("selected MCP server")

	r.transition(ctx, StateExecuting)
	result := p.execute(ctx, ExecutionRequest{
		Service: service,
		Prompt:  req.Intent.Prompt(),
		Model:   req.Model,
		Debug:   req.Debug,
	})
	if result.Failed {
		r.transition(ctx, StateExecutionFailed)
		return Outcome{
			Kind:    OutcomeExecutionFailed,
			Text:    result.Text,
			Service: &service,
			Err:     &Error{Kind: KindExecution, Op: "execute", Err: result.Err},
		}
	}
	r.transition(ctx, StateCompleted)
	return Outcome{Kind: OutcomeCompleted, Text: result.Text, Service: &service}
}

func (p *Pipeline) discover(ctx context.Context, req Request) discovery.Report {
	ctx, span := p.tracer.Start(ctx, "pipeline.discover")
	defer span.End()
	ctx, cancel := withTimeout(ctx, p.discoveryTimeout)
	defer cancel()

	text, rewritable := req.Intent.search()
	report := p.discovery.Discover(ctx, discovery.Spec{
		Intent:      text,
		Rewrite:     rewritable && p.rewrite,
		RegistryURL: req.RegistryURL,
		Model:       req.Model,
		Debug:       req.Debug,
	})
	span.SetAttributes(
		attribute.String("scout.discovery.query", report.Query),
		attribute.Int("scout.discovery.candidates", len(report.Result)),
	)
	if report.Degraded != nil {
		span.RecordError(report.Degraded)
		span.SetStatus(codes.Error, report.Degraded.Error())
	}
	return report
}

func (p *Pipeline) execute(ctx context.Context, req ExecutionRequest) ExecutionResult {
	ctx, span := p.tracer.Start(ctx, "pipeline.execute", trace.WithAttributes(
		attribute.String("scout.service.name", req.Service.Name),
		attribute.String("scout.service.url", req.Service.URL),
	))
	defer span.End()
	ctx, cancel := withTimeout(ctx, p.executionTimeout)
	defer cancel()

	result := p.delegate.Execute(ctx, req)
	if result.Failed && result.Err != nil {
		span.RecordError(result.Err)
		span.SetStatus(codes.Error, result.Err.Error())
	}
	return result
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
