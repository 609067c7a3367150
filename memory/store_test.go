package memory

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/intentlayer/statecore/core"
	"github.com/intentlayer/statecore/persist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, cfg Config) *Store {
	t.Helper()
	s := New(cfg, nil, nil)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_StoreAssignsScoreAndType(t *testing.T) {
	s := newTestStore(t, Config{})

	entry, err := s.Store("u1", "sess-1", map[string]any{"type": "purchase"}, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, "u1", entry.UserID)
	assert.Equal(t, "sess-1", entry.SessionID)
	assert.Equal(t, "purchase", entry.InteractionType)
	assert.InDelta(t, 0.8, entry.RelevanceScore, 1e-9)

	untyped, err := s.Store("u1", "", map[string]any{"text": "hi"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "unknown", untyped.InteractionType)

	_, err = s.Store("", "", map[string]any{}, nil)
	assert.ErrorIs(t, err, core.ErrMissingUserID)
}

func TestStore_EntryCountNeverExceedsCap(t *testing.T) {
	s := newTestStore(t, Config{MaxEntries: 3})
	base := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	// Two high-relevance purchases first, then three plain interactions.
	// Truncation must keep the purchases plus the two freshest plain ones.
	tick := base
	s.now = func() time.Time { return tick }

	for i, payload := range []map[string]any{
		{"type": "purchase", "seq": 1},
		{"type": "purchase", "seq": 2},
		{"type": "other", "seq": 3},
		{"type": "other", "seq": 4},
		{"type": "other", "seq": 5},
	} {
		tick = base.Add(time.Duration(i) * time.Minute)
		_, err := s.Store("u1", "", payload, nil)
		require.NoError(t, err)
	}

	entries, _ := s.GetContext("u1", "", 10)
	require.Len(t, entries, 3)

	kept := map[int]bool{}
	for _, e := range entries {
		kept[e.Data["seq"].(int)] = true
	}
	// Relevance dominates recency: both purchases survive, then the single
	// freshest plain entry fills the cap.
	assert.True(t, kept[1] && kept[2] && kept[5], "kept: %v", kept)
}

func TestStore_GetContextRanksAndFilters(t *testing.T) {
	s := newTestStore(t, Config{})
	base := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	tick := base
	s.now = func() time.Time { return tick }

	for i := 0; i < 5; i++ {
		tick = base.Add(time.Duration(i) * time.Minute)
		sessionID := "sess-a"
		if i%2 == 1 {
			sessionID = "sess-b"
		}
		_, err := s.Store("u1", sessionID, map[string]any{"type": "other", "seq": i}, nil)
		require.NoError(t, err)
	}

	// All tied at 0.5, so ties break by recency.
	entries, summary := s.GetContext("u1", "", 3)
	require.Len(t, entries, 3)
	assert.Equal(t, 4, entries[0].Data["seq"])
	assert.Equal(t, 3, entries[1].Data["seq"])
	assert.Equal(t, 2, entries[2].Data["seq"])
	assert.Equal(t, 5, summary.TotalInteractions)

	// Session filter applies before ranking.
	scoped, _ := s.GetContext("u1", "sess-b", 10)
	require.Len(t, scoped, 2)
	for _, e := range scoped {
		assert.Equal(t, "sess-b", e.SessionID)
	}

	// Unknown user: empty result, not an error.
	none, emptySummary := s.GetContext("ghost", "", 10)
	assert.Empty(t, none)
	assert.Zero(t, emptySummary.TotalInteractions)
}

func TestStore_Preferences(t *testing.T) {
	s := newTestStore(t, Config{})

	assert.Empty(t, s.GetPreferences("u1"))

	require.NoError(t, s.SetPreferences("u1", map[string]any{"lang": "fr", "theme": "dark"}))
	require.NoError(t, s.SetPreferences("u1", map[string]any{"theme": "light"}))

	prefs := s.GetPreferences("u1")
	assert.Equal(t, map[string]any{"lang": "fr", "theme": "light"}, prefs)

	// Returned map is a copy.
	prefs["lang"] = "de"
	assert.Equal(t, "fr", s.GetPreferences("u1")["lang"])

	assert.ErrorIs(t, s.SetPreferences("", nil), core.ErrMissingUserID)
}

func TestStore_DeleteUserAndStats(t *testing.T) {
	s := newTestStore(t, Config{})

	_, err := s.Store("u1", "", map[string]any{"type": "other"}, nil)
	require.NoError(t, err)
	_, err = s.Store("u1", "", map[string]any{"type": "other"}, nil)
	require.NoError(t, err)
	_, err = s.Store("u2", "", map[string]any{"type": "other"}, nil)
	require.NoError(t, err)

	stats := s.Stats()
	assert.Equal(t, 2, stats.TotalUsers)
	assert.Equal(t, 3, stats.TotalEntries)
	assert.InDelta(t, 1.5, stats.AverageEntriesPerUser, 1e-9)
	assert.Equal(t, 2, stats.ActiveUsersLastWeek)

	assert.True(t, s.DeleteUser("u1"))
	assert.False(t, s.DeleteUser("u1"), "delete is idempotent")

	entries, summary := s.GetContext("u1", "", 10)
	assert.Empty(t, entries)
	assert.Zero(t, summary.TotalInteractions)

	after := s.Stats()
	assert.Equal(t, stats.TotalUsers-1, after.TotalUsers)
}

func TestStore_RetentionSweep(t *testing.T) {
	s := newTestStore(t, Config{RetentionDays: 30})
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	s.now = func() time.Time { return now.Add(-31 * 24 * time.Hour) }
	_, err := s.Store("u1", "", map[string]any{"type": "other", "age": "stale"}, nil)
	require.NoError(t, err)

	// u2's only entry will age out entirely, pruning the aggregate.
	_, err = s.Store("u2", "", map[string]any{"type": "other", "age": "stale"}, nil)
	require.NoError(t, err)

	s.now = func() time.Time { return now.Add(-29 * 24 * time.Hour) }
	_, err = s.Store("u1", "", map[string]any{"type": "other", "age": "fresh"}, nil)
	require.NoError(t, err)

	s.now = func() time.Time { return now }
	s.sweepRetention()

	entries, _ := s.GetContext("u1", "", 10)
	require.Len(t, entries, 1)
	assert.Equal(t, "fresh", entries[0].Data["age"])

	stats := s.Stats()
	assert.Equal(t, 1, stats.TotalUsers, "empty aggregates are pruned")
	assert.Equal(t, now, stats.LastCleanup)
}

func TestStore_SnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user_memory.json")
	snap := persist.NewJSONFile(path)

	s := New(Config{}, snap, nil)
	_, err := s.Store("u1", "sess-1", map[string]any{"type": "purchase", "item": "laptop"}, map[string]any{"channel": "web"})
	require.NoError(t, err)
	require.NoError(t, s.SetPreferences("u1", map[string]any{"lang": "fr"}))
	require.NoError(t, s.Close())

	reopened := New(Config{}, snap, nil)
	defer reopened.Close()

	entries, summary := reopened.GetContext("u1", "", 10)
	require.Len(t, entries, 1)
	assert.Equal(t, "purchase", entries[0].InteractionType)
	assert.InDelta(t, 0.8, entries[0].RelevanceScore, 1e-9)
	assert.Equal(t, "laptop", entries[0].Data["item"])
	assert.Equal(t, 1, summary.TotalInteractions)
	assert.Equal(t, map[string]any{"lang": "fr"}, reopened.GetPreferences("u1"))

	stats := reopened.Stats()
	assert.Greater(t, stats.MemoryFileSize, int64(0))
}

func TestStore_CorruptSnapshotStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user_memory.json")
	require.NoError(t, os.WriteFile(path, []byte("[oops"), 0o600))

	s := New(Config{}, persist.NewJSONFile(path), nil)
	defer s.Close()

	assert.Zero(t, s.Stats().TotalUsers)
	_, err := s.Store("u1", "", map[string]any{"type": "other"}, nil)
	assert.NoError(t, err)
}

func TestStore_StartupSweepPrunesStaleSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user_memory.json")
	snap := persist.NewJSONFile(path)

	seed := New(Config{RetentionDays: 30}, snap, nil)
	seed.now = func() time.Time { return time.Now().Add(-45 * 24 * time.Hour) }
	_, err := seed.Store("u1", "", map[string]any{"type": "other"}, nil)
	require.NoError(t, err)
	require.NoError(t, seed.Close())

	// Construction runs a retention sweep, dropping the 45-day-old entry
	// and with it the whole aggregate.
	s := New(Config{RetentionDays: 30}, snap, nil)
	defer s.Close()
	assert.Zero(t, s.Stats().TotalUsers)
}

func TestStore_CloseIsIdempotent(t *testing.T) {
	s := New(Config{SweepInterval: 10 * time.Millisecond}, nil, nil)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
}
