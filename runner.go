package scout

import (
	"context"
	"strings"
)

// RunOption defines options for configuring the Runner.
type RunOption func(*runner)

// WithSession sets a custom session for the Runner.
func WithSession(session Session) RunOption {
	return func(r *runner) {
		r.session = session
	}
}

// WithInvocationID sets a custom invocation ID for the Runner.
func WithInvocationID(invocationID string) RunOption {
	return func(r *runner) {
		r.invocationID = invocationID
	}
}

// runner is responsible for executing an Agent within a session context.
type runner struct {
	agent        Agent
	session      Session
	invocationID string
}

// NewRunner creates a new Runner with the given agent and options.
// Each runner owns a fresh session unless one is supplied.
func NewRunner(agent Agent, opts ...RunOption) Runner {
	r := &runner{
		agent:        agent,
		session:      NewSession(),
		invocationID: NewInvocationID(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// buildInvocation constructs an Invocation object for the given message.
func (r *runner) buildInvocation(ctx context.Context, message *Message) (context.Context, *Invocation) {
	return NewSessionContext(ctx, r.session), &Invocation{
		ID:      r.invocationID,
		Session: r.session,
		Message: message,
	}
}

// Run executes the agent and returns its final turn.
func (r *runner) Run(ctx context.Context, message *Message) (*Message, error) {
	turns, err := r.Transcript(ctx, message)
	if err != nil {
		return nil, err
	}
	return turns[len(turns)-1], nil
}

// Transcript executes the agent and returns every turn it yielded.
func (r *runner) Transcript(ctx context.Context, message *Message) ([]*Message, error) {
	var turns []*Message
	for output, err := range r.agent.Run(r.buildInvocation(ctx, message)) {
		if err != nil {
			return nil, err
		}
		turns = append(turns, output)
	}
	if len(turns) == 0 {
		return nil, ErrNoFinalResponse
	}
	return turns, nil
}

// FinalText returns the text of the last turn of a transcript. It reports
// false when there is no turn or the last one carries only whitespace.
func FinalText(transcript []*Message) (string, bool) {
	if len(transcript) == 0 {
		return "", false
	}
	text := transcript[len(transcript)-1].Text()
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	return text, true
}
