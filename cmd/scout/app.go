package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-kratos/kit/retry"
	"github.com/go-kratos/scout"
	"github.com/go-kratos/scout/config"
	"github.com/go-kratos/scout/internal/engine"
	"github.com/go-kratos/scout/internal/logging"
	"github.com/go-kratos/scout/pipeline"
	"github.com/go-kratos/scout/tools/mcp"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// app holds everything a command needs to run the pipeline.
type app struct {
	cfg      *config.Config
	logger   *logrus.Logger
	pipeline *pipeline.Pipeline
	shutdown func(context.Context) error
}

func newApp() (*app, error) {
	cfg, err := loader.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	logger := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: os.Stderr,
	})
	tp, shutdown, err := newTracerProvider(cfg.Tracing, os.Stderr)
	if err != nil {
		return nil, err
	}
	eng := engine.New(
		engine.WithTransport(mcp.TransportType(cfg.Execution.Transport)),
		engine.WithToolTimeout(cfg.Execution.ToolTimeout),
		engine.WithHeaders(cfg.Execution.Headers),
		engine.WithModelOptions(modelOptions(cfg.Model)...),
		engine.WithMaxIterations(cfg.Execution.MaxIterations),
		engine.WithRetry(cfg.Execution.RetryAttempts, retry.WithRetryable(retryable)),
		engine.WithTracerProvider(tp),
	)
	p := pipeline.New(eng,
		pipeline.WithLogger(logger),
		pipeline.WithTracerProvider(tp),
		pipeline.WithDiscoveryTimeout(cfg.Registry.Timeout),
		pipeline.WithExecutionTimeout(cfg.Execution.Timeout),
		pipeline.WithRewrite(cfg.Registry.Rewrite),
		pipeline.WithStrictDiscovery(cfg.Registry.Strict),
		pipeline.WithReportDiscoveryFailures(cfg.Registry.ReportFailures),
	)
	return &app{cfg: cfg, logger: logger, pipeline: p, shutdown: shutdown}, nil
}

// modelOptions turns the configured sampling controls into request options.
func modelOptions(cfg config.ModelConfig) []scout.ModelOption {
	var opts []scout.ModelOption
	if cfg.Temperature > 0 {
		opts = append(opts, scout.WithTemperature(cfg.Temperature))
	}
	if cfg.TopP > 0 {
		opts = append(opts, scout.WithTopP(cfg.TopP))
	}
	if cfg.MaxOutputTokens > 0 {
		opts = append(opts, scout.WithMaxOutputTokens(cfg.MaxOutputTokens))
	}
	if cfg.Seed > 0 {
		opts = append(opts, scout.WithSeed(cfg.Seed))
	}
	return opts
}

// retryable excludes cancellation: a run out of time will not succeed on retry.
func retryable(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func newTracerProvider(cfg config.TracingConfig, w io.Writer) (trace.TracerProvider, func(context.Context) error, error) {
	if !cfg.Enabled {
		return otel.GetTracerProvider(), func(context.Context) error { return nil }, nil
	}
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, nil, fmt.Errorf("create trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	return tp, tp.Shutdown, nil
}

func (a *app) modelConfig() scout.ModelConfig {
	return scout.ModelConfig{
		Provider: a.cfg.Model.Provider,
		APIKey:   a.cfg.Model.APIKey,
		Name:     a.cfg.Model.Name,
		BaseURL:  a.cfg.Model.BaseURL,
	}
}

func (a *app) request(intent pipeline.Intent) pipeline.Request {
	return pipeline.Request{
		Intent:      intent,
		Model:       a.modelConfig(),
		RegistryURL: a.cfg.Registry.URL,
		Debug:       a.cfg.Debug,
	}
}

func (a *app) close() {
	if err := a.shutdown(context.Background()); err != nil {
		a.logger.WithError(err).Warn("failed to flush traces")
	}
}

// execute runs one request and prints its outcome.
func (a *app) execute(ctx context.Context, out io.Writer, intent pipeline.Intent) error {
	a.logger.WithFields(logrus.Fields{
		"model":    a.cfg.Model.Name,
		"provider": a.modelConfig().ProviderName(),
		"registry": a.cfg.Registry.URL,
	}).Info("starting scout")
	outcome, err := a.pipeline.Run(ctx, a.request(intent))
	if err != nil {
		return err
	}
	return printOutcome(out, outcome)
}

func printOutcome(out io.Writer, outcome pipeline.Outcome) error {
	if outcome.Service != nil {
		fmt.Fprintf(out, "MCP server: %s\n", outcome.Service)
		if outcome.Service.Description != "" {
			fmt.Fprintf(out, "Description: %s\n", outcome.Service.Description)
		}
	}
	switch outcome.Kind {
	case pipeline.OutcomeCompleted:
		fmt.Fprintf(out, "\n%s\n", outcome.Text)
		return nil
	case pipeline.OutcomeNotFound:
		fmt.Fprintln(out, "No MCP server found for your request")
	default:
		fmt.Fprintf(out, "%s: %v\n", outcome.Kind, outcome.Err)
	}
	return exitError{code: 1}
}
