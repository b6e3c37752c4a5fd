package scout

import (
	"context"
	"iter"
)

// Generator is a sequence of values that may fail while being produced.
type Generator[T, E any] = iter.Seq2[T, E]

// Agent runs an invocation and yields the turns it produces.
type Agent interface {
	// Name returns the name of the agent.
	Name() string
	// Description returns the description of the agent.
	Description() string
	// Run executes the invocation.
	Run(context.Context, *Invocation) Generator[*Message, error]
}

// Runner executes an agent for a single input message.
type Runner interface {
	// Run returns the final turn of the run.
	Run(context.Context, *Message) (*Message, error)
	// Transcript returns every turn of the run in order.
	Transcript(context.Context, *Message) ([]*Message, error)
}
