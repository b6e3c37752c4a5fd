package pipeline

import (
	"context"

	"github.com/go-kratos/scout"
	"github.com/go-kratos/scout/discovery"
	"github.com/go-kratos/scout/internal/logging"
	"github.com/sirupsen/logrus"
)

const (
	// NoResponseText replaces an execution that finished without text.
	NoResponseText = "no response received"
	// FailureText replaces an execution whose run failed.
	FailureText = "failed to execute request"
)

const executionAgent = "execution"

// ExecutionRequest binds the original prompt to the selected service.
type ExecutionRequest struct {
	Service discovery.ServiceDescriptor
	// Prompt is the caller's original text, never the registry query.
	Prompt string
	Model  scout.ModelConfig
	Debug  bool
}

// ExecutionResult is never empty: Text is either the service's answer or a sentinel.
type ExecutionResult struct {
	Text   string
	Failed bool
	// Err is the run failure behind FailureText.
	Err error
}

// Delegate forwards a prompt to the selected service through an agent run.
type Delegate struct {
	engine scout.Engine
}

// NewDelegate creates a delegate running on engine.
func NewDelegate(engine scout.Engine) *Delegate {
	return &Delegate{engine: engine}
}

// Execute runs the prompt with the service as the only tool source.
// Run failures are logged and turned into FailureText.
func (d *Delegate) Execute(ctx context.Context, req ExecutionRequest) ExecutionResult {
	log := logging.FromContext(ctx).WithFields(logrus.Fields{
		"stage":   "execution",
		"service": req.Service.Name,
		"url":     req.Service.URL,
	})
	log.WithField("prompt", req.Prompt).Debug("delegating request")

	transcript, err := d.engine.Run(ctx, scout.RunSpec{
		Agent:       executionAgent,
		Description: "Answers the request with the tools of " + req.Service.String(),
		Prompt:      req.Prompt,
		Endpoint:    req.Service.URL,
		Model:       req.Model,
		Debug:       req.Debug,
	})
	if err != nil {
		log.WithError(err).Error("execution run failed")
		return ExecutionResult{Text: FailureText, Failed: true, Err: err}
	}
	text, ok := scout.FinalText(transcript)
	if !ok {
		log.Warn("execution run produced no text")
		return ExecutionResult{Text: NoResponseText}
	}
	log.WithField("turns", len(transcript)).Debug("execution finished")
	return ExecutionResult{Text: text}
}
