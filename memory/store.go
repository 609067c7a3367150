package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/intentlayer/statecore/core"
	"github.com/intentlayer/statecore/logging"
	"github.com/intentlayer/statecore/persist"
)

// Config tunes capacity and retention.
type Config struct {
	// MaxEntries caps entries per user aggregate; over capacity the lowest
	// ranked entries are discarded.
	MaxEntries int
	// RetentionDays bounds entry age for retention sweeps.
	RetentionDays int
	// SweepInterval is the retention sweeper period; zero runs the sweep at
	// startup only.
	SweepInterval time.Duration
}

// DefaultConfig mirrors the production defaults: a thousand entries per
// user, thirty days of retention, startup-only sweeping.
var DefaultConfig = Config{
	MaxEntries:    1000,
	RetentionDays: 30,
	SweepInterval: 0,
}

const (
	defaultContextLimit = 10
	defaultSearchLimit  = 5
)

// Store is a snapshot-backed core.MemoryStore keyed by user. Entries are
// immutable once written; every mutation persists a full snapshot, and save
// failures are logged without failing the operation (availability over
// durability).
type Store struct {
	mu          sync.RWMutex
	users       map[string]*core.UserMemory
	cfg         Config
	snap        persist.Snapshotter
	logger      logging.Logger
	now         func() time.Time
	lastCleanup time.Time

	stopCh    chan struct{}
	doneCh    chan struct{}
	closeOnce sync.Once
}

var _ core.MemoryStore = (*Store)(nil)

// New constructs a fully initialized store: the snapshot is loaded (corrupt
// files degrade to an empty store with a logged warning), one retention
// sweep runs immediately and, when configured, the periodic sweeper starts.
func New(cfg Config, snap persist.Snapshotter, logger logging.Logger) *Store {
	if snap == nil {
		snap = persist.Discard{}
	}
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultConfig.MaxEntries
	}
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = DefaultConfig.RetentionDays
	}

	s := &Store{
		users:  make(map[string]*core.UserMemory),
		cfg:    cfg,
		snap:   snap,
		logger: logger,
		now:    time.Now,
	}

	if err := snap.Load(&s.users); err != nil {
		logger.Warn("memory snapshot unreadable, starting empty", "error", err)
		s.users = make(map[string]*core.UserMemory)
	}
	if s.users == nil {
		s.users = make(map[string]*core.UserMemory)
	}
	logger.Info("memory store initialized", "users", len(s.users))

	s.sweepRetention()

	if cfg.SweepInterval > 0 {
		s.stopCh = make(chan struct{})
		s.doneCh = make(chan struct{})
		go s.run()
	}
	return s
}

// Store appends one interaction to the user's aggregate, creating the
// aggregate when absent. The relevance score is fixed here; when the entry
// cap is exceeded all entries are re-ranked and the lowest ranked are
// dropped, relevance dominating recency. The context summary is recomputed
// before the snapshot is written.
func (s *Store) Store(userID, sessionID string, interaction, context map[string]any) (*core.MemoryEntry, error) {
	if userID == "" {
		return nil, core.ErrMissingUserID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	interactionType, _ := interaction["type"].(string)
	if interactionType == "" {
		interactionType = "unknown"
	}

	entry := core.MemoryEntry{
		ID:              uuid.NewString(),
		UserID:          userID,
		SessionID:       sessionID,
		Timestamp:       now,
		InteractionType: interactionType,
		Data:            copyMap(interaction),
		Context:         copyMap(context),
		RelevanceScore:  relevanceScore(interaction, context),
	}

	um := s.aggregateLocked(userID, now)
	um.Entries = append(um.Entries, entry)
	um.LastInteraction = now

	if len(um.Entries) > s.cfg.MaxEntries {
		rankEntries(um.Entries)
		um.Entries = um.Entries[:s.cfg.MaxEntries]
	}

	recomputeSummary(um, now)
	s.saveLocked()

	s.logger.Debug("interaction stored",
		"user_id", userID, "type", interactionType, "score", entry.RelevanceScore)

	res := entry.Clone()
	return &res, nil
}

// GetContext returns the user's top entries by (relevance desc, timestamp
// desc), optionally filtered to one session, plus the derived summary. An
// unknown user yields an empty result. A non-positive limit falls back to
// the default of ten.
func (s *Store) GetContext(userID, sessionID string, limit int) ([]core.MemoryEntry, core.ContextSummary) {
	if limit <= 0 {
		limit = defaultContextLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	um, ok := s.users[userID]
	if !ok {
		return []core.MemoryEntry{}, core.ContextSummary{}
	}

	candidates := make([]core.MemoryEntry, 0, len(um.Entries))
	for _, e := range um.Entries {
		if sessionID != "" && e.SessionID != sessionID {
			continue
		}
		candidates = append(candidates, e)
	}
	rankEntries(candidates)
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	res := make([]core.MemoryEntry, len(candidates))
	for i := range candidates {
		res[i] = candidates[i].Clone()
	}
	return res, um.ContextSummary
}

// Search text-matches the query against each entry's serialized payload and
// context, scales by stored relevance, and returns the best matches. An
// empty or blank query matches nothing.
func (s *Store) Search(userID, query string, limit int) []core.MemoryEntry {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return []core.MemoryEntry{}
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	um, ok := s.users[userID]
	if !ok {
		return []core.MemoryEntry{}
	}

	type match struct {
		entry core.MemoryEntry
		score float64
	}
	matches := make([]match, 0, len(um.Entries))
	for i := range um.Entries {
		if score := searchScore(&um.Entries[i], query); score > 0 {
			matches = append(matches, match{um.Entries[i], score})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}

	res := make([]core.MemoryEntry, len(matches))
	for i := range matches {
		res[i] = matches[i].entry.Clone()
	}
	return res
}

// SetPreferences additively merges the patch into the user's preference map,
// auto-creating the aggregate when absent.
func (s *Store) SetPreferences(userID string, patch map[string]any) error {
	if userID == "" {
		return core.ErrMissingUserID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	um := s.aggregateLocked(userID, now)
	if um.Preferences == nil {
		um.Preferences = map[string]any{}
	}
	for k, v := range patch {
		um.Preferences[k] = v
	}
	um.LastInteraction = now
	s.saveLocked()
	return nil
}

// GetPreferences returns a copy of the preference map, empty when the user
// is unknown.
func (s *Store) GetPreferences(userID string) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	um, ok := s.users[userID]
	if !ok {
		return map[string]any{}
	}
	return copyMap(um.Preferences)
}

// DeleteUser removes the aggregate entirely. Idempotent: deleting an unknown
// user is a no-op reporting false.
func (s *Store) DeleteUser(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return false
	}
	delete(s.users, userID)
	s.saveLocked()
	s.logger.Info("user memory erased", "user_id", userID)
	return true
}

// Stats reports store-wide usage figures.
func (s *Store) Stats() core.MemoryStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := core.MemoryStats{
		TotalUsers:  len(s.users),
		LastCleanup: s.lastCleanup,
	}
	weekAgo := s.now().Add(-activityWindow)
	for _, um := range s.users {
		stats.TotalEntries += len(um.Entries)
		if um.LastInteraction.After(weekAgo) {
			stats.ActiveUsersLastWeek++
		}
	}
	if stats.TotalUsers > 0 {
		avg := float64(stats.TotalEntries) / float64(stats.TotalUsers)
		stats.AverageEntriesPerUser = float64(int(avg*100+0.5)) / 100
	}
	if sized, ok := s.snap.(interface{ Size() int64 }); ok {
		stats.MemoryFileSize = sized.Size()
	}
	return stats
}

// Close stops the sweeper and flushes one final snapshot.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		if s.stopCh != nil {
			close(s.stopCh)
			<-s.doneCh
		}
		s.mu.Lock()
		s.saveLocked()
		s.mu.Unlock()
		s.logger.Info("memory store closed")
	})
	return nil
}

// run is the retention sweeper worker.
func (s *Store) run() {
	defer close(s.doneCh)
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.sweepRetention()
		case <-s.stopCh:
			return
		}
	}
}

// sweepRetention drops entries older than the retention window and prunes
// aggregates left with zero entries, persisting once when anything changed.
func (s *Store) sweepRetention() {
	start := time.Now()

	s.mu.Lock()
	now := s.now()
	cutoff := now.Add(-time.Duration(s.cfg.RetentionDays) * 24 * time.Hour)
	removed := 0
	for userID, um := range s.users {
		kept := um.Entries[:0]
		for _, e := range um.Entries {
			if e.Timestamp.After(cutoff) {
				kept = append(kept, e)
			}
		}
		removed += len(um.Entries) - len(kept)
		um.Entries = kept
		if len(um.Entries) == 0 {
			delete(s.users, userID)
		}
	}
	s.lastCleanup = now
	if removed > 0 {
		s.saveLocked()
	}
	s.mu.Unlock()

	if removed > 0 {
		s.logger.Info("expired memory entries swept", "removed", removed, "duration", time.Since(start))
	}
}

// aggregateLocked returns the user's aggregate, creating it when absent.
// Caller must hold the write lock.
func (s *Store) aggregateLocked(userID string, now time.Time) *core.UserMemory {
	um, ok := s.users[userID]
	if !ok {
		um = &core.UserMemory{
			UserID:          userID,
			CreatedAt:       now,
			LastInteraction: now,
			Entries:         []core.MemoryEntry{},
			Preferences:     map[string]any{},
		}
		s.users[userID] = um
	}
	return um
}

// saveLocked persists the full snapshot; caller must hold the write lock.
// Failures are logged, never surfaced: the in-memory mutation stands.
func (s *Store) saveLocked() {
	if err := s.snap.Save(s.users); err != nil {
		s.logger.Error("memory snapshot write failed", "error", err)
	}
}

// rankEntries sorts in place by (relevance score desc, timestamp desc).
func rankEntries(entries []core.MemoryEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].RelevanceScore != entries[j].RelevanceScore {
			return entries[i].RelevanceScore > entries[j].RelevanceScore
		}
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
}

func copyMap(m map[string]any) map[string]any {
	res := make(map[string]any, len(m))
	for k, v := range m {
		res[k] = v
	}
	return res
}
