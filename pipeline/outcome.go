package pipeline

import (
	"fmt"

	"github.com/go-kratos/scout/discovery"
)

// OutcomeKind tags the result of a pipeline run.
type OutcomeKind int

const (
	OutcomeCompleted OutcomeKind = iota + 1
	OutcomeNotFound
	OutcomeDiscoveryFailed
	OutcomeExecutionFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeCompleted:
		return "completed"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeDiscoveryFailed:
		return "discovery_failed"
	case OutcomeExecutionFailed:
		return "execution_failed"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", int(k))
	}
}

// Outcome is the externally observable result of one run.
type Outcome struct {
	Kind OutcomeKind
	// Text is the execution result, or its sentinel. Empty unless a service was selected.
	Text string
	// Service is the selected candidate, nil when none was selected.
	Service *discovery.ServiceDescriptor
	// State is the terminal state of the run.
	State State
	// Err is a *Error for every kind but OutcomeCompleted.
	Err error
}

// OK reports whether the run completed.
func (o Outcome) OK() bool {
	return o.Kind == OutcomeCompleted
}
