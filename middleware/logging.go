package middleware

import (
	"context"
	"time"

	"github.com/go-kratos/scout"
	"github.com/go-kratos/scout/tools"
	"github.com/sirupsen/logrus"
)

// Logging returns a middleware that logs each turn of an agent run.
// Turn payloads are only logged at debug level.
func Logging(logger logrus.FieldLogger) scout.Middleware {
	return func(next scout.Handler) scout.Handler {
		return scout.HandleFunc(func(ctx context.Context, invocation *scout.Invocation) scout.Generator[*scout.Message, error] {
			return func(yield func(*scout.Message, error) bool) {
				entry := logger.WithFields(logrus.Fields{
					"invocation_id": invocation.ID,
					"model":         invocation.Model,
				})
				if ac, ok := scout.FromAgentContext(ctx); ok {
					entry = entry.WithField("agent", ac.Name())
				}
				start := time.Now()
				turns := 0
				for m, err := range next.Handle(ctx, invocation) {
					if err != nil {
						entry.WithError(err).WithField("elapsed", time.Since(start)).Warn("agent run failed")
						yield(nil, err)
						return
					}
					turns++
					if calls := m.ToolParts(); len(calls) > 0 {
						names := make([]string, 0, len(calls))
						for _, call := range calls {
							names = append(names, call.Name)
						}
						entry.WithField("tools", names).Debug("tool turn")
					} else {
						entry.WithField("text", m.Text()).Debug("agent turn")
					}
					if !yield(m, nil) {
						return
					}
				}
				entry.WithFields(logrus.Fields{
					"turns":   turns,
					"elapsed": time.Since(start),
				}).Debug("agent run finished")
			}
		})
	}
}

// ToolLogging returns a tool middleware that logs every tool invocation.
func ToolLogging(logger logrus.FieldLogger) tools.Middleware {
	return func(next tools.Handler) tools.Handler {
		return tools.HandleFunc(func(ctx context.Context, input string) (string, error) {
			entry := logger.WithField("input", input)
			if call, ok := tools.FromCallContext(ctx); ok {
				entry = entry.WithFields(logrus.Fields{"tool": call.Name, "call_id": call.ID})
			}
			output, err := next.Handle(ctx, input)
			if err != nil {
				entry.WithError(err).Warn("tool call failed")
				return "", err
			}
			entry.Debug("tool call succeeded")
			return output, nil
		})
	}
}
