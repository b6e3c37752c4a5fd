package middleware

import (
	"context"

	"github.com/go-kratos/kit/retry"
	"github.com/go-kratos/scout"
)

// Retry returns a middleware that retries agent runs with configurable retry behavior.
//
// Parameters:
//
//	attempts: The total number of attempts, including the initial attempt.
//	          attempts <= 1 disables retrying and returns next unchanged.
//	opts:     Optional configuration for retry behavior. See retry.Option (from github.com/go-kratos/kit/retry).
//
// Behavior:
//   - The same invocation is passed to the handler on each attempt. Handlers must not mutate the invocation.
//   - If all attempts are exhausted, the last error is returned.
//   - Turns already yielded by a failed attempt are not replayed on subsequent retries.
//   - Context cancellation is respected during retry attempts.
func Retry(attempts int, opts ...retry.Option) scout.Middleware {
	if attempts <= 1 {
		return func(next scout.Handler) scout.Handler { return next }
	}
	r := retry.New(attempts, opts...)
	return func(next scout.Handler) scout.Handler {
		return scout.HandleFunc(func(ctx context.Context, invocation *scout.Invocation) scout.Generator[*scout.Message, error] {
			return func(yield func(*scout.Message, error) bool) {
				stopped := false
				err := r.Do(ctx, func(ctx context.Context) error {
					for msg, err := range next.Handle(ctx, invocation) {
						if err != nil {
							return err
						}
						if !yield(msg, nil) {
							stopped = true
							return nil
						}
					}
					return nil
				})
				if err != nil && !stopped {
					yield(nil, err)
				}
			}
		})
	}
}
