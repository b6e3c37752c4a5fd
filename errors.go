package scout

import "errors"

var (
	// ErrModelProviderRequired is returned when an agent is built without a model.
	ErrModelProviderRequired = errors.New("model provider is required")
	// ErrMaxIterationsExceeded is returned when an agent exceeds the maximum allowed iterations.
	ErrMaxIterationsExceeded = errors.New("maximum iterations exceeded in agent execution")
	// ErrNoFinalResponse is returned when an agent's run ends without a final response.
	ErrNoFinalResponse = errors.New("run ended without a final response")
	// ErrToolNotFound is returned when the model calls a tool the agent does not have.
	ErrToolNotFound = errors.New("tool not found")
	// ErrUnknownProvider is returned for a model provider scout does not support.
	ErrUnknownProvider = errors.New("unknown model provider")
)
