package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/intentlayer/statecore/core"
	"github.com/intentlayer/statecore/logging"
	"github.com/intentlayer/statecore/persist"
)

// Config tunes the store's expiry behavior.
type Config struct {
	// Timeout is the inactivity window after which a session expires.
	Timeout time.Duration
	// MaxPerUser caps live sessions per user.
	MaxPerUser int
	// CleanupInterval is the sweeper period; zero disables the background
	// sweeper (lazy expiry on reads still applies).
	CleanupInterval time.Duration
}

// DefaultConfig mirrors the production defaults: one hour timeout, five
// sessions per user, a sweep every five minutes.
var DefaultConfig = Config{
	Timeout:         time.Hour,
	MaxPerUser:      5,
	CleanupInterval: 5 * time.Minute,
}

// Store is a snapshot-backed core.SessionStore. Each returned session is
// cloned to prevent external mutation of internal state. Every mutation is
// followed by a synchronous whole-snapshot save; save failures are logged
// and the operation still reports success (availability over durability).
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*core.Session
	cfg      Config
	snap     persist.Snapshotter
	logger   logging.Logger
	now      func() time.Time

	stopCh    chan struct{}
	doneCh    chan struct{}
	closeOnce sync.Once
}

var _ core.SessionStore = (*Store)(nil)

// New constructs a fully initialized store: the snapshot is loaded (a
// corrupt or unreadable file degrades to an empty store with a logged
// warning), one expiry sweep runs immediately and, when configured, the
// periodic sweeper starts. A nil snapshotter persists nothing; a nil logger
// discards logs.
func New(cfg Config, snap persist.Snapshotter, logger logging.Logger) *Store {
	if snap == nil {
		snap = persist.Discard{}
	}
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig.Timeout
	}
	if cfg.MaxPerUser <= 0 {
		cfg.MaxPerUser = DefaultConfig.MaxPerUser
	}

	s := &Store{
		sessions: make(map[string]*core.Session),
		cfg:      cfg,
		snap:     snap,
		logger:   logger,
		now:      time.Now,
	}

	if err := snap.Load(&s.sessions); err != nil {
		logger.Warn("session snapshot unreadable, starting empty", "error", err)
		s.sessions = make(map[string]*core.Session)
	}
	if s.sessions == nil {
		s.sessions = make(map[string]*core.Session)
	}
	logger.Info("session store initialized", "sessions", len(s.sessions))

	s.sweep()

	if cfg.CleanupInterval > 0 {
		s.stopCh = make(chan struct{})
		s.doneCh = make(chan struct{})
		go s.run()
	}
	return s
}

// Create registers a fresh session for the user. When the user already holds
// MaxPerUser sessions, the single oldest one by creation time is evicted
// first. The whole check-evict-insert sequence runs under one lock.
func (s *Store) Create(userID string, userData map[string]any) (*core.Session, error) {
	if userID == "" {
		return nil, core.ErrMissingUserID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var owned []*core.Session
	for _, sess := range s.sessions {
		if sess.UserID == userID {
			owned = append(owned, sess)
		}
	}
	if len(owned) >= s.cfg.MaxPerUser {
		oldest := owned[0]
		for _, sess := range owned[1:] {
			if sess.CreatedAt.Before(oldest.CreatedAt) {
				oldest = sess
			}
		}
		delete(s.sessions, oldest.ID)
		s.logger.Info("evicted oldest session over quota", "user_id", userID, "session_id", oldest.ID)
	}

	sess := core.NewSession(uuid.NewString(), userID, userData, s.now())
	s.sessions[sess.ID] = sess
	s.saveLocked()

	s.logger.Info("session created", "user_id", userID, "session_id", sess.ID)
	return sess.Clone(), nil
}

// Get returns the session or core.ErrNotFound. An expired record found here
// is removed on the spot and reported as not found, never returned stale.
// Reading does not itself count as activity.
func (s *Store) Get(sessionID string) (*core.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, core.ErrNotFound
	}
	if sess.ExpiredAt(s.now(), s.cfg.Timeout) {
		delete(s.sessions, sessionID)
		s.saveLocked()
		s.logger.Debug("expired session removed on read", "session_id", sessionID)
		return nil, core.ErrNotFound
	}
	return sess.Clone(), nil
}

// UpdateActivity bumps last activity, increments the interaction counter and
// merges the patch into the session context. Returns false when the session
// does not exist.
func (s *Store) UpdateActivity(sessionID string, contextPatch map[string]any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return false
	}
	sess.Touch(s.now(), contextPatch)
	s.saveLocked()
	return true
}

// Delete removes the session if present, reporting whether it existed.
func (s *Store) Delete(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return false
	}
	delete(s.sessions, sessionID)
	s.saveLocked()
	s.logger.Info("session deleted", "user_id", sess.UserID, "session_id", sessionID)
	return true
}

// ListForUser returns clones of the user's non-expired sessions. Expired
// records found during the scan are skipped but not removed; the sweeper
// owns removal, keeping this read path free of writes.
func (s *Store) ListForUser(userID string) []*core.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	res := []*core.Session{}
	for _, sess := range s.sessions {
		if sess.UserID == userID && !sess.ExpiredAt(now, s.cfg.Timeout) {
			res = append(res, sess.Clone())
		}
	}
	return res
}

// Context returns a copy of the session's mutable context map, empty when
// the session is unknown.
func (s *Store) Context(sessionID string) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return map[string]any{}
	}
	res := make(map[string]any, len(sess.Context))
	for k, v := range sess.Context {
		res[k] = v
	}
	return res
}

// Count reports the number of stored session records, expired ones included
// until a sweep or lazy read removes them.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
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
		s.logger.Info("session store closed")
	})
	return nil
}

// run is the sweeper worker: a ticker-driven loop with a stop channel.
func (s *Store) run() {
	defer close(s.doneCh)
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

// sweep removes every expired session, persisting once when anything changed.
func (s *Store) sweep() {
	start := time.Now()

	s.mu.Lock()
	now := s.now()
	removed := 0
	for id, sess := range s.sessions {
		if sess.ExpiredAt(now, s.cfg.Timeout) {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		s.saveLocked()
	}
	s.mu.Unlock()

	if removed > 0 {
		s.logger.Info("expired sessions swept", "removed", removed, "duration", time.Since(start))
	}
}

// saveLocked persists the full snapshot; the caller must hold the write
// lock. Failures are logged, never surfaced: the in-memory mutation stands
// and the operation reports success.
func (s *Store) saveLocked() {
	if err := s.snap.Save(s.sessions); err != nil {
		s.logger.Error("session snapshot write failed", "error", err)
	}
}
