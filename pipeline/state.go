package pipeline

import "context"

// State is a step of the pipeline state machine. Runs move strictly forward:
//
//	Idle → Discovering → NoCandidates
//	Idle → Discovering → Selected → Executing → Completed | ExecutionFailed
type State int

const (
	StateIdle State = iota
	StateDiscovering
	StateNoCandidates
	StateSelected
	StateExecuting
	StateCompleted
	StateExecutionFailed
)

var stateNames = [...]string{
	StateIdle:            "idle",
	StateDiscovering:     "discovering",
	StateNoCandidates:    "no_candidates",
	StateSelected:        "selected",
	StateExecuting:       "executing",
	StateCompleted:       "completed",
	StateExecutionFailed: "execution_failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	switch s {
	case StateNoCandidates, StateCompleted, StateExecutionFailed:
		return true
	}
	return false
}

var transitions = map[State][]State{
	StateIdle:        {StateDiscovering},
	StateDiscovering: {StateNoCandidates, StateSelected},
	StateSelected:    {StateExecuting},
	StateExecuting:   {StateCompleted, StateExecutionFailed},
}

// CanTransition reports whether the machine may move from one state to another.
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// StateHook observes every state transition of a run.
type StateHook func(ctx context.Context, from, to State)
