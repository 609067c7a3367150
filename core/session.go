package core

import (
	"time"
)

// Session status values. A stored session is always "active"; expired
// records are removed rather than flipped to "expired", so the constant
// exists mainly for snapshot compatibility.
const (
	StatusActive  = "active"
	StatusExpired = "expired"
)

// Session represents a bounded-lifetime conversational container tied to one
// user. It tracks an opaque user_data map fixed at creation, a mutable
// context map merged via patch updates, and a monotonic interaction counter.
//
// Contract:
//   - LastActivity >= CreatedAt at all times
//   - A session is active iff now - LastActivity < the store's timeout
//   - UserData is immutable after creation; Context mutates only through
//     activity updates
//   - Clone performs deep copies of maps for safe divergence.
type Session struct {
	ID               string         `json:"session_id"`
	UserID           string         `json:"user_id"`
	CreatedAt        time.Time      `json:"created_at"`
	LastActivity     time.Time      `json:"last_activity"`
	UserData         map[string]any `json:"user_data"`
	Context          map[string]any `json:"context"`
	InteractionCount int            `json:"interaction_count"`
	Status           string         `json:"status"`
}

// NewSession creates an active session for the given user. The caller
// supplies the identifier and the creation instant so that stores control
// both ID generation and the clock.
func NewSession(id, userID string, userData map[string]any, now time.Time) *Session {
	if userData == nil {
		userData = map[string]any{}
	}
	return &Session{
		ID:           id,
		UserID:       userID,
		CreatedAt:    now,
		LastActivity: now,
		UserData:     userData,
		Context:      map[string]any{},
		Status:       StatusActive,
	}
}

// ExpiredAt reports whether the session has outlived the given timeout as of
// the provided instant.
func (s *Session) ExpiredAt(now time.Time, timeout time.Duration) bool {
	return now.Sub(s.LastActivity) >= timeout
}

// Touch records activity: bumps LastActivity and the interaction counter and
// shallow-merges the patch into Context (patch keys overwrite).
func (s *Session) Touch(now time.Time, contextPatch map[string]any) {
	s.LastActivity = now
	s.InteractionCount++
	for k, v := range contextPatch {
		s.Context[k] = v
	}
}

// Clone returns a deep copy of the session safe for independent mutation.
func (s *Session) Clone() *Session {
	clone := *s
	clone.UserData = make(map[string]any, len(s.UserData))
	for k, v := range s.UserData {
		clone.UserData[k] = v
	}
	clone.Context = make(map[string]any, len(s.Context))
	for k, v := range s.Context {
		clone.Context[k] = v
	}
	return &clone
}
