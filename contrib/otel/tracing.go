package otel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-kratos/scout"
)

const (
	traceScope = "scout"
)

// TraceOption defines options for tracing middleware
type TraceOption func(*tracing)

// tracing holds configuration for the agent tracing middleware
type tracing struct {
	system string // e.g., "openai", "gemini"
	tracer trace.Tracer
}

// WithSystem sets the AI system name for tracing, e.g., "openai", "gemini"
func WithSystem(system string) TraceOption {
	return func(t *tracing) {
		t.system = system
	}
}

// WithTracerProvider sets a custom TracerProvider for the tracing middleware
func WithTracerProvider(tr trace.TracerProvider) TraceOption {
	return func(t *tracing) {
		t.tracer = tr.Tracer(traceScope)
	}
}

// Tracing returns a middleware that adds OpenTelemetry tracing to agent invocations.
// One span covers the whole run; it ends with the last turn or the first error.
func Tracing(opts ...TraceOption) scout.Middleware {
	t := &tracing{
		system: "_OTHER",
		tracer: otel.GetTracerProvider().Tracer(traceScope),
	}
	for _, o := range opts {
		o(t)
	}
	return func(next scout.Handler) scout.Handler {
		return scout.HandleFunc(func(ctx context.Context, invocation *scout.Invocation) scout.Generator[*scout.Message, error] {
			return func(yield func(*scout.Message, error) bool) {
				ac, ok := scout.FromAgentContext(ctx)
				if !ok {
					for m, err := range next.Handle(ctx, invocation) {
						if !yield(m, err) {
							return
						}
					}
					return
				}
				ctx, span := t.start(ctx, ac, invocation)
				var last *scout.Message
				for m, err := range next.Handle(ctx, invocation) {
					if err != nil {
						t.end(span, last, err)
						yield(nil, err)
						return
					}
					last = m
					if !yield(m, nil) {
						break
					}
				}
				t.end(span, last, nil)
			}
		})
	}
}

func (t *tracing) start(ctx context.Context, ac scout.AgentContext, invocation *scout.Invocation) (context.Context, trace.Span) {
	ctx, span := t.tracer.Start(ctx, fmt.Sprintf("invoke_agent %s", ac.Name()))
	span.SetAttributes(
		semconv.GenAIOperationNameInvokeAgent,
		semconv.GenAISystemKey.String(t.system),
		semconv.GenAIAgentName(ac.Name()),
		semconv.GenAIAgentDescription(ac.Description()),
		semconv.GenAIRequestModel(ac.Model()),
	)
	if invocation.Session != nil {
		span.SetAttributes(semconv.GenAIConversationID(invocation.Session.ID()))
	}
	return ctx, span
}

func (t *tracing) end(span trace.Span, msg *scout.Message, err error) {
	defer span.End()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, codes.Ok.String())
	if msg == nil {
		return
	}
	if msg.FinishReason != "" {
		span.SetAttributes(semconv.GenAIResponseFinishReasons(msg.FinishReason))
	}
	if msg.TokenUsage.PromptTokens > 0 {
		span.SetAttributes(semconv.GenAIUsageInputTokens(int(msg.TokenUsage.PromptTokens)))
	}
	if msg.TokenUsage.CompletionTokens > 0 {
		span.SetAttributes(semconv.GenAIUsageOutputTokens(int(msg.TokenUsage.CompletionTokens)))
	}
}
