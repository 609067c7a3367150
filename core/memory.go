package core

import (
	"time"
)

// Activity levels derived from the count of a user's interactions during the
// trailing seven days.
const (
	ActivityVeryActive = "very_active" // >= 10 interactions
	ActivityActive     = "active"      // >= 5
	ActivityModerate   = "moderate"    // >= 1
	ActivityLow        = "low"         // none recently, but history exists
	ActivityInactive   = "inactive"    // no history at all
)

// MemoryEntry is one immutable record of a past interaction. The relevance
// score is computed once at write time and never recomputed; entries only
// ever leave the store through capacity truncation, retention sweeps or
// user deletion. SessionID is an opaque foreign key with no referential
// integrity: deleting a session does not delete its entries.
type MemoryEntry struct {
	ID              string         `json:"id"`
	UserID          string         `json:"user_id"`
	SessionID       string         `json:"session_id,omitempty"`
	Timestamp       time.Time      `json:"timestamp"`
	InteractionType string         `json:"interaction_type"`
	Data            map[string]any `json:"data"`
	Context         map[string]any `json:"context"`
	RelevanceScore  float64        `json:"relevance_score"`
}

// Clone returns a copy with independent Data and Context maps.
func (e *MemoryEntry) Clone() MemoryEntry {
	clone := *e
	clone.Data = make(map[string]any, len(e.Data))
	for k, v := range e.Data {
		clone.Data[k] = v
	}
	clone.Context = make(map[string]any, len(e.Context))
	for k, v := range e.Context {
		clone.Context[k] = v
	}
	return clone
}

// UserMemory is the aggregate root for one user's episodic memory: an
// insertion-ordered entry log, additively merged preferences and a context
// summary recomputed after every write. An aggregate left with zero entries
// is pruned entirely during retention sweeps.
type UserMemory struct {
	UserID          string         `json:"user_id"`
	CreatedAt       time.Time      `json:"created_at"`
	LastInteraction time.Time      `json:"last_interaction"`
	Entries         []MemoryEntry  `json:"entries"`
	Preferences     map[string]any `json:"preferences"`
	ContextSummary  ContextSummary `json:"context_summary"`
}

// ContextSummary is a derived aggregate describing a user's recent behavior
// pattern. It is recomputed from the 20 most recent entries after every
// store and is purely informational: nothing in the store reads it back.
type ContextSummary struct {
	TotalInteractions     int            `json:"total_interactions"`
	RecentInteractions    int            `json:"recent_interactions"`
	MostCommonInteraction string         `json:"most_common_interaction,omitempty"`
	InteractionTypes      map[string]int `json:"interaction_types"`
	RecentIntents         []string       `json:"recent_intents"`
	CommonEntities        map[string]int `json:"common_entities"`
	LastUpdated           time.Time      `json:"last_updated"`
	UserActivityLevel     string         `json:"user_activity_level"`
}

// MemoryStats reports store-wide figures. A user counts as active when their
// last interaction falls within the trailing seven days.
type MemoryStats struct {
	TotalUsers            int       `json:"total_users"`
	TotalEntries          int       `json:"total_entries"`
	AverageEntriesPerUser float64   `json:"average_entries_per_user"`
	ActiveUsersLastWeek   int       `json:"active_users_last_week"`
	MemoryFileSize        int64     `json:"memory_file_size"`
	LastCleanup           time.Time `json:"last_cleanup"`
}
