package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation matches errors caused by invalid boundary input.
	ErrValidation = errors.New("invalid request")
	// ErrNotFound matches runs where no candidate service was found.
	ErrNotFound = errors.New("no MCP server found for your request")
	// ErrDiscoveryFailed matches runs whose registry search failed.
	ErrDiscoveryFailed = errors.New("discovery failed")
	// ErrExecutionFailed matches runs whose delegated execution failed.
	ErrExecutionFailed = errors.New("execution failed")
)

// ErrorKind classifies pipeline errors.
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindNotFound
	KindDiscovery
	KindExecution
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindDiscovery:
		return "discovery"
	case KindExecution:
		return "execution"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindValidation:
		return ErrValidation
	case KindNotFound:
		return ErrNotFound
	case KindDiscovery:
		return ErrDiscoveryFailed
	case KindExecution:
		return ErrExecutionFailed
	}
	return nil
}

// Error is a classified pipeline error.
type Error struct {
	Kind ErrorKind
	// Op is the step that failed, e.g. "validate", "discover" or "execute".
	Op  string
	Err error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind.sentinel())
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel of the error's kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// inputErrors collects every problem found in a request. Its message stays on
// one line so it can be returned to HTTP clients as is.
type inputErrors []error

func (e inputErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

func (e inputErrors) Unwrap() []error {
	return e
}
