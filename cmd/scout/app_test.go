package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/go-kratos/scout"
	"github.com/go-kratos/scout/config"
	"github.com/go-kratos/scout/discovery"
	"github.com/go-kratos/scout/pipeline"
	"github.com/stretchr/testify/assert"
)

func TestPrintOutcome(t *testing.T) {
	service := &discovery.ServiceDescriptor{URL: "https://jokes.example/mcp", Name: "jokes", Description: "Chuck Norris jokes"}

	var out bytes.Buffer
	err := printOutcome(&out, pipeline.Outcome{Kind: pipeline.OutcomeCompleted, Text: "a joke", Service: service})
	assert.NoError(t, err)
	assert.Equal(t, "MCP server: jokes (https://jokes.example/mcp)\nDescription: Chuck Norris jokes\n\na joke\n", out.String())

	out.Reset()
	err = printOutcome(&out, pipeline.Outcome{Kind: pipeline.OutcomeNotFound})
	assert.Equal(t, exitError{code: 1}, err)
	assert.Equal(t, "No MCP server found for your request\n", out.String())

	out.Reset()
	err = printOutcome(&out, pipeline.Outcome{
		Kind:    pipeline.OutcomeExecutionFailed,
		Service: service,
		Err:     &pipeline.Error{Kind: pipeline.KindExecution, Op: "execute", Err: errors.New("boom")},
	})
	assert.Equal(t, exitError{code: 1}, err)
	assert.Contains(t, out.String(), "execution_failed: execute: boom")
}

func TestRetryable(t *testing.T) {
	assert.True(t, retryable(errors.New("503 Service Unavailable")))
	assert.False(t, retryable(context.Canceled))
	assert.False(t, retryable(fmt.Errorf("run: %w", context.DeadlineExceeded)))
}

func TestCommands(t *testing.T) {
	names := make([]string, 0, len(rootCmd.Commands()))
	for _, cmd := range rootCmd.Commands() {
		names = append(names, cmd.Name())
	}
	assert.Subset(t, names, []string{"search", "ask", "serve"})
	for _, flag := range []string{"config", "debug", "api-key", "model", "base-url", "provider", "registry-url"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(flag), flag)
	}
	assert.Equal(t, "d", rootCmd.PersistentFlags().Lookup("debug").Shorthand)
	assert.Equal(t, "s", searchCmd.Flags().Lookup("search-type").Shorthand)
	assert.Equal(t, "t", searchCmd.Flags().Lookup("topic").Shorthand)
}

func TestModelOptions(t *testing.T) {
	assert.Empty(t, modelOptions(config.ModelConfig{}))

	var got scout.ModelOptions
	for _, apply := range modelOptions(config.ModelConfig{Temperature: 0.2, TopP: 0.9, MaxOutputTokens: 256, Seed: 7}) {
		apply(&got)
	}
	assert.Equal(t, scout.ModelOptions{Temperature: 0.2, TopP: 0.9, MaxOutputTokens: 256, Seed: 7}, got)
}
