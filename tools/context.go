package tools

import "context"

// Call describes the tool call being handled.
type Call struct {
	ID   string
	Name string
}

type ctxCallKey struct{}

// NewCallContext returns a new context carrying the tool call.
func NewCallContext(ctx context.Context, call Call) context.Context {
	return context.WithValue(ctx, ctxCallKey{}, call)
}

// FromCallContext retrieves the tool call from the context, if present.
func FromCallContext(ctx context.Context) (Call, bool) {
	call, ok := ctx.Value(ctxCallKey{}).(Call)
	return call, ok
}
