package scout

import (
	"github.com/go-kratos/scout/tools"
	"github.com/google/uuid"
)

// Invocation holds everything one agent run needs.
type Invocation struct {
	ID          string
	Model       string
	Session     Session
	Instruction *Message
	History     []*Message
	Message     *Message
	Tools       []*tools.Tool
}

// NewInvocationID returns a new unique invocation ID.
func NewInvocationID() string {
	return uuid.NewString()
}
