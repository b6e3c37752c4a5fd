package scout

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Session holds the transcript of one run along with a unique session ID.
type Session interface {
	ID() string
	History() []*Message
	Append(context.Context, []*Message) error
}

// NewSession creates a new in-memory Session with an auto-generated UUID.
func NewSession() Session {
	return &sessionInMemory{id: uuid.NewString()}
}

// ctxSessionKey is an unexported type for keys defined in this package.
type ctxSessionKey struct{}

// NewSessionContext returns a new Context that carries the session value.
func NewSessionContext(ctx context.Context, session Session) context.Context {
	return context.WithValue(ctx, ctxSessionKey{}, session)
}

// FromSessionContext retrieves the Session from the context.
func FromSessionContext(ctx context.Context) (Session, bool) {
	session, ok := ctx.Value(ctxSessionKey{}).(Session)
	return session, ok
}

// sessionInMemory is an in-memory implementation of the Session interface.
type sessionInMemory struct {
	id      string
	history []*Message
	m       sync.RWMutex
}

func (s *sessionInMemory) ID() string {
	return s.id
}
func (s *sessionInMemory) History() []*Message {
	s.m.RLock()
	defer s.m.RUnlock()
	return slices.Clone(s.history)
}
func (s *sessionInMemory) Append(ctx context.Context, history []*Message) error {
	s.m.Lock()
	defer s.m.Unlock()
	s.history = append(s.history, history...)
	return nil
}
