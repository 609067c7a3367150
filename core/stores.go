package core

// SessionStore manages the lifecycle of short-lived conversational sessions.
//
// Absence of a session is a normal outcome: Get returns ErrNotFound and the
// boolean-returning mutators report false instead of erroring. Implementations
// own atomicity: every read-modify-write sequence (quota eviction included)
// executes as a single step relative to other operations on the same store.
type SessionStore interface {
	// Create registers a fresh session for the user, evicting the user's
	// oldest session by creation time when the per-user quota is reached.
	Create(userID string, userData map[string]any) (*Session, error)
	// Get returns the session or ErrNotFound. Expired records are removed
	// lazily and reported as ErrNotFound, never returned stale.
	Get(sessionID string) (*Session, error)
	// UpdateActivity bumps last activity and the interaction counter and
	// merges the patch into the session context. False when absent.
	UpdateActivity(sessionID string, contextPatch map[string]any) bool
	// Delete removes the session, reporting whether it existed.
	Delete(sessionID string) bool
	// ListForUser returns the user's non-expired sessions.
	ListForUser(userID string) []*Session
	// Context returns a copy of the session's context map, empty when the
	// session is unknown.
	Context(sessionID string) map[string]any
	// Count reports the number of live session records.
	Count() int
	// Close stops background sweeping and flushes one final snapshot.
	Close() error
}

// MemoryStore is a durable, ranked episodic memory per user with bounded
// size and age. Entries are append-only; ranking always uses the key
// (relevance score descending, timestamp descending).
type MemoryStore interface {
	// Store appends an interaction, scoring it at write time, enforcing the
	// per-user entry cap and recomputing the context summary. The returned
	// entry is a copy owned by the caller. SessionID may be empty.
	Store(userID, sessionID string, interaction, context map[string]any) (*MemoryEntry, error)
	// GetContext returns the user's top entries by rank, optionally
	// filtered to one session, plus the derived summary. Unknown users
	// yield an empty result, not an error.
	GetContext(userID, sessionID string, limit int) ([]MemoryEntry, ContextSummary)
	// Search performs text matching over serialized payloads and contexts,
	// weighting matches by each entry's relevance score.
	Search(userID, query string, limit int) []MemoryEntry
	// SetPreferences additively merges the patch into the user's preference
	// map, creating the aggregate when absent.
	SetPreferences(userID string, patch map[string]any) error
	// GetPreferences returns a copy of the preference map, empty when the
	// user is unknown.
	GetPreferences(userID string) map[string]any
	// DeleteUser removes the aggregate entirely (data-erasure requests).
	// Idempotent; reports whether anything was removed.
	DeleteUser(userID string) bool
	// Stats reports store-wide usage figures.
	Stats() MemoryStats
	// Close stops background sweeping and flushes one final snapshot.
	Close() error
}
