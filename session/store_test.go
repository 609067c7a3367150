package session

import (
	"errors"
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
	if cfg.Timeout == 0 {
		cfg.Timeout = time.Hour
	}
	if cfg.MaxPerUser == 0 {
		cfg.MaxPerUser = 5
	}
	s := New(cfg, nil, nil)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_CreateAndGet(t *testing.T) {
	s := newTestStore(t, Config{})

	sess, err := s.Create("u1", map[string]any{"locale": "fr"})
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID)
	assert.Equal(t, "u1", sess.UserID)
	assert.Equal(t, core.StatusActive, sess.Status)
	assert.Equal(t, 0, sess.InteractionCount)
	assert.True(t, sess.LastActivity.Equal(sess.CreatedAt))

	got, err := s.Get(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
	assert.Equal(t, "fr", got.UserData["locale"])

	// Returned sessions are clones.
	got.UserData["locale"] = "de"
	again, err := s.Get(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "fr", again.UserData["locale"])
}

func TestStore_CreateRequiresUserID(t *testing.T) {
	s := newTestStore(t, Config{})

	_, err := s.Create("", nil)
	assert.ErrorIs(t, err, core.ErrMissingUserID)
}

func TestStore_GetUnknown(t *testing.T) {
	s := newTestStore(t, Config{})

	_, err := s.Get("nope")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestStore_LazyExpiryOnGet(t *testing.T) {
	s := newTestStore(t, Config{Timeout: time.Hour})
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	sess, err := s.Create("u1", nil)
	require.NoError(t, err)

	// Just inside the window: still returned.
	s.now = func() time.Time { return base.Add(time.Hour - time.Second) }
	_, err = s.Get(sess.ID)
	require.NoError(t, err)

	// At the boundary: removed and reported as not found.
	s.now = func() time.Time { return base.Add(time.Hour) }
	_, err = s.Get(sess.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Zero(t, s.Count(), "lazy expiry should delete the stale record")
}

func TestStore_QuotaEvictsOldestByCreatedAt(t *testing.T) {
	s := newTestStore(t, Config{Timeout: 24 * time.Hour, MaxPerUser: 5})
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	ids := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		tick := base.Add(time.Duration(i) * time.Minute)
		s.now = func() time.Time { return tick }
		sess, err := s.Create("u1", nil)
		require.NoError(t, err)
		ids = append(ids, sess.ID)
	}

	// Touch the oldest session so it has the freshest activity: eviction
	// must still pick it, because quota eviction keys on created_at.
	s.now = func() time.Time { return base.Add(time.Hour) }
	require.True(t, s.UpdateActivity(ids[0], nil))

	sixth, err := s.Create("u1", nil)
	require.NoError(t, err)

	_, err = s.Get(ids[0])
	assert.ErrorIs(t, err, core.ErrNotFound, "oldest-created session should be evicted")
	for _, id := range ids[1:] {
		_, err := s.Get(id)
		assert.NoError(t, err)
	}
	_, err = s.Get(sixth.ID)
	assert.NoError(t, err, "the new session must be retained")
	assert.Equal(t, 5, s.Count())
}

func TestStore_UpdateActivity(t *testing.T) {
	s := newTestStore(t, Config{})

	sess, err := s.Create("u1", nil)
	require.NoError(t, err)

	require.True(t, s.UpdateActivity(sess.ID, map[string]any{"topic": "billing"}))

	got, err := s.Get(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.InteractionCount)
	assert.Equal(t, map[string]any{"topic": "billing"}, got.Context)

	// Patch keys overwrite, non-conflicting keys survive.
	require.True(t, s.UpdateActivity(sess.ID, map[string]any{"topic": "shipping", "lang": "fr"}))
	got, err = s.Get(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.InteractionCount)
	assert.Equal(t, map[string]any{"topic": "shipping", "lang": "fr"}, got.Context)

	assert.False(t, s.UpdateActivity("nope", nil))
}

func TestStore_Delete(t *testing.T) {
	s := newTestStore(t, Config{})

	sess, err := s.Create("u1", nil)
	require.NoError(t, err)

	assert.True(t, s.Delete(sess.ID))
	assert.False(t, s.Delete(sess.ID))
	_, err = s.Get(sess.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestStore_ListForUserSkipsExpired(t *testing.T) {
	s := newTestStore(t, Config{Timeout: time.Hour, MaxPerUser: 5})
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	s.now = func() time.Time { return base }
	_, err := s.Create("u1", nil)
	require.NoError(t, err)

	s.now = func() time.Time { return base.Add(45 * time.Minute) }
	fresh, err := s.Create("u1", nil)
	require.NoError(t, err)
	_, err = s.Create("u2", nil)
	require.NoError(t, err)

	s.now = func() time.Time { return base.Add(70 * time.Minute) }
	listed := s.ListForUser("u1")
	require.Len(t, listed, 1)
	assert.Equal(t, fresh.ID, listed[0].ID)

	// The scan itself must not remove the expired record.
	assert.Equal(t, 3, s.Count())
}

func TestStore_SweepRemovesExpired(t *testing.T) {
	s := newTestStore(t, Config{Timeout: time.Hour, MaxPerUser: 5})
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	s.now = func() time.Time { return base }
	_, err := s.Create("u1", nil)
	require.NoError(t, err)
	s.now = func() time.Time { return base.Add(30 * time.Minute) }
	keep, err := s.Create("u1", nil)
	require.NoError(t, err)

	s.now = func() time.Time { return base.Add(75 * time.Minute) }
	s.sweep()

	assert.Equal(t, 1, s.Count())
	_, err = s.Get(keep.ID)
	assert.NoError(t, err)
}

func TestStore_SnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	snap := persist.NewJSONFile(path)

	cfg := Config{Timeout: 24 * time.Hour, MaxPerUser: 5}
	s := New(cfg, snap, nil)
	sess, err := s.Create("u1", map[string]any{"plan": "pro"})
	require.NoError(t, err)
	require.True(t, s.UpdateActivity(sess.ID, map[string]any{"topic": "billing"}))
	require.NoError(t, s.Close())

	reopened := New(cfg, snap, nil)
	defer reopened.Close()

	got, err := reopened.Get(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, 1, got.InteractionCount)
	assert.Equal(t, "pro", got.UserData["plan"])
	assert.Equal(t, "billing", got.Context["topic"])
}

func TestStore_CorruptSnapshotStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))

	s := New(Config{Timeout: time.Hour, MaxPerUser: 5}, persist.NewJSONFile(path), nil)
	defer s.Close()

	assert.Zero(t, s.Count())
	_, err := s.Create("u1", nil)
	assert.NoError(t, err)
}

func TestStore_CloseIsIdempotent(t *testing.T) {
	s := New(Config{Timeout: time.Hour, MaxPerUser: 5, CleanupInterval: 10 * time.Millisecond}, nil, nil)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
}

func TestStore_ContextForUnknownSession(t *testing.T) {
	s := newTestStore(t, Config{})
	assert.Empty(t, s.Context("nope"))
	if s.Context("nope") == nil {
		t.Error("context of an unknown session should be an empty map, not nil")
	}
}

func TestStore_ErrNotFoundIsSentinel(t *testing.T) {
	s := newTestStore(t, Config{})
	_, err := s.Get("missing")
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected core.ErrNotFound, got %v", err)
	}
}
