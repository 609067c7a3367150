package testutil

import (
	"time"

	"github.com/intentlayer/statecore/core"
)

// SessionBuilder helps construct sessions with fluent chaining for tests.
// Example:
//
//	sess := NewSessionBuilder("sess-1", "u1").CreatedAt(ts).Context("k", "v").Build()
type SessionBuilder struct {
	id        string
	userID    string
	createdAt time.Time
	userData  map[string]any
	context   map[string]any
}

// NewSessionBuilder creates a new builder for a session with the given
// identifiers. Use chainable methods then call Build.
func NewSessionBuilder(id, userID string) *SessionBuilder {
	return &SessionBuilder{
		id:        id,
		userID:    userID,
		createdAt: time.Now(),
		userData:  map[string]any{},
		context:   map[string]any{},
	}
}

// CreatedAt sets the creation (and initial activity) instant (chainable).
func (b *SessionBuilder) CreatedAt(ts time.Time) *SessionBuilder {
	b.createdAt = ts
	return b
}

// UserData sets or overwrites a user_data key (chainable).
func (b *SessionBuilder) UserData(key string, val any) *SessionBuilder {
	b.userData[key] = val
	return b
}

// Context sets or overwrites a context key (chainable).
func (b *SessionBuilder) Context(key string, val any) *SessionBuilder {
	b.context[key] = val
	return b
}

// Build returns a *core.Session with pre-populated maps.
func (b *SessionBuilder) Build() *core.Session {
	s := core.NewSession(b.id, b.userID, b.userData, b.createdAt)
	for k, v := range b.context {
		s.Context[k] = v
	}
	return s
}
