package testutil

import (
	"fmt"
	"time"

	"github.com/intentlayer/statecore/core"
)

// EntryBuilder helps construct memory entries with fluent chaining for tests.
// Example:
//
//	e := NewEntryBuilder("u1").Type("purchase").At(ts).Score(0.8).Build()
type EntryBuilder struct {
	entry core.MemoryEntry
	seq   int
}

// NewEntryBuilder creates a builder for an entry owned by the given user,
// pre-populated with a deterministic id, the current time, type "other" and
// the base relevance score.
func NewEntryBuilder(userID string) *EntryBuilder {
	b := &EntryBuilder{}
	b.entry = core.MemoryEntry{
		ID:              fmt.Sprintf("entry-%s-%d", userID, b.seq),
		UserID:          userID,
		Timestamp:       time.Now(),
		InteractionType: "other",
		Data:            map[string]any{},
		Context:         map[string]any{},
		RelevanceScore:  0.5,
	}
	return b
}

// ID overrides the generated identifier (chainable).
func (b *EntryBuilder) ID(id string) *EntryBuilder {
	b.entry.ID = id
	return b
}

// Session attaches a session identifier (chainable).
func (b *EntryBuilder) Session(sessionID string) *EntryBuilder {
	b.entry.SessionID = sessionID
	return b
}

// Type sets the interaction type (chainable).
func (b *EntryBuilder) Type(t string) *EntryBuilder {
	b.entry.InteractionType = t
	return b
}

// At sets the entry timestamp (chainable).
func (b *EntryBuilder) At(ts time.Time) *EntryBuilder {
	b.entry.Timestamp = ts
	return b
}

// Score sets the relevance score (chainable).
func (b *EntryBuilder) Score(score float64) *EntryBuilder {
	b.entry.RelevanceScore = score
	return b
}

// Data sets or overwrites one payload key (chainable).
func (b *EntryBuilder) Data(key string, val any) *EntryBuilder {
	b.entry.Data[key] = val
	return b
}

// Context sets or overwrites one context key (chainable).
func (b *EntryBuilder) Context(key string, val any) *EntryBuilder {
	b.entry.Context[key] = val
	return b
}

// Build returns the constructed entry.
func (b *EntryBuilder) Build() core.MemoryEntry {
	return b.entry.Clone()
}
