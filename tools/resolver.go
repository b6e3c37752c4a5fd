package tools

import "context"

// Resolver defines the interface for dynamically resolving tools from various sources.
// Implementations can provide tools from MCP servers or other remote services.
type Resolver interface {
	// Resolve returns a list of tools available from this resolver.
	Resolve(ctx context.Context) ([]*Tool, error)
}

// ResolverFunc adapts a plain function to a Resolver.
type ResolverFunc func(ctx context.Context) ([]*Tool, error)

// Resolve calls f(ctx).
func (f ResolverFunc) Resolve(ctx context.Context) ([]*Tool, error) {
	return f(ctx)
}
