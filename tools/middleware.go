package tools

// Middleware wraps a Handler and returns a new Handler with additional behavior.
// It is applied in a chain (outermost first) using ChainMiddlewares.
type Middleware func(Handler) Handler

// ChainMiddlewares composes middlewares into one, applying them in order.
// The first middleware becomes the outermost wrapper.
func ChainMiddlewares(mws ...Middleware) Middleware {
	return func(next Handler) Handler {
		h := next
		for i := len(mws) - 1; i >= 0; i-- { // apply in reverse to make mws[0] outermost
			h = mws[i](h)
		}
		return h
	}
}

// Wrap returns copies of the tools whose handlers are wrapped by mws.
func Wrap(tools []*Tool, mws ...Middleware) []*Tool {
	if len(mws) == 0 {
		return tools
	}
	chain := ChainMiddlewares(mws...)
	wrapped := make([]*Tool, 0, len(tools))
	for _, t := range tools {
		wrapped = append(wrapped, t.WithHandler(chain(t.Handler)))
	}
	return wrapped
}
