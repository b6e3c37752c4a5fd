package discovery

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-kratos/scout"
	"github.com/go-kratos/scout/internal/logging"
)

// RewriteTemplate turns a free-form intent into a single-word registry query.
const RewriteTemplate = "search for MCP servers to address this request using only one word no spaces: %s"

// The discovery agent as it appears in logs and traces.
const (
	agentName        = "discovery"
	agentDescription = "Searches the MCP registry for servers matching a request"
)

// Spec describes one discovery attempt.
type Spec struct {
	// Intent is the text to search the registry for.
	Intent string
	// Rewrite sends RewriteTemplate applied to Intent instead of Intent itself.
	Rewrite     bool
	RegistryURL string
	Model       scout.ModelConfig
	Debug       bool
}

// Query returns the text sent to the registry run.
func (s Spec) Query() string {
	if s.Rewrite {
		return fmt.Sprintf(RewriteTemplate, s.Intent)
	}
	return s.Intent
}

// Report is the outcome of a discovery attempt.
type Report struct {
	// Query is the text that was sent to the registry run.
	Query  string
	Result Result
	// Degraded records why Result is empty when the attempt failed rather
	// than legitimately finding nothing. Elements rejected from an otherwise
	// usable payload do not degrade the report.
	Degraded error
}

// Option configures a Client.
type Option func(*Client)

// WithStrict validates every payload against Schema before decoding it.
func WithStrict(strict bool) Option {
	return func(c *Client) {
		c.strict = strict
	}
}

// Client asks the registry, through an agent run, which services match an intent.
type Client struct {
	engine scout.Engine
	strict bool
}

// NewClient creates a discovery client running on engine.
func NewClient(engine scout.Engine, opts ...Option) *Client {
	c := &Client{engine: engine}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Discover runs the registry query and returns the candidates it emitted.
// It never fails: any problem is logged and yields an empty, degraded report.
func (c *Client) Discover(ctx context.Context, spec Spec) Report {
	log := logging.FromContext(ctx).WithField("stage", "discovery")
	report := Report{Query: spec.Query()}
	log.WithField("query", report.Query).Debug("querying registry")

	transcript, err := c.engine.Run(ctx, scout.RunSpec{
		Agent:        agentName,
		Description:  agentDescription,
		Prompt:       report.Query,
		Endpoint:     spec.RegistryURL,
		OutputSchema: Schema(),
		Model:        spec.Model,
		Debug:        spec.Debug,
	})
	if err != nil {
		report.Degraded = fmt.Errorf("%w: %w", ErrRunFailed, err)
		log.WithError(err).Error("registry run failed")
		return report
	}
	payload, _ := scout.FinalText(transcript)
	log.WithField("payload", payload).Debug("registry run completed")

	parsed, err := Parse(payload, c.strict)
	if err != nil {
		report.Degraded = err
		if errors.Is(err, ErrNoOutput) {
			log.Warn("registry run produced no output")
		} else {
			log.WithError(err).Error("failed to parse registry output")
		}
		return report
	}
	for _, rejected := range parsed.Rejected {
		log.WithError(rejected).Warn("dropping candidate")
	}
	report.Result = parsed.Result
	log.WithField("candidates", len(report.Result)).Debug("discovery finished")
	return report
}
