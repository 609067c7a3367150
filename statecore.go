// Package statecore provides a high-level façade over the session and memory
// stores backing a conversational assistant. Most applications interact with
// this package by:
//  1. Loading (or constructing) a config.Config
//  2. Creating a Service via New() (optionally overriding snapshotters/logger)
//  3. Gating conversation turns through Sessions() and recording/retrieving
//     episodic memory through Memory()
//  4. Calling Shutdown() once, which flushes a final snapshot of each store
//
// Both stores are explicitly constructed objects passed by handle; there is
// no hidden global state and no lazy re-entrant initialization. Defaults are
// safe for local development: snapshots land under the configured data
// directory and logging is discarded unless a logger is supplied.
package statecore

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/intentlayer/statecore/config"
	"github.com/intentlayer/statecore/core"
	"github.com/intentlayer/statecore/logging"
	"github.com/intentlayer/statecore/memory"
	"github.com/intentlayer/statecore/persist"
	"github.com/intentlayer/statecore/session"
)

// Snapshot file locations inside the data directory.
const (
	SessionSnapshotFile = "sessions/active_sessions.json"
	MemorySnapshotFile  = "user_memory.json"
)

// Options configures the Service instance.
type Options struct {
	// SessionSnapshotter overrides the default JSON file under DataDir.
	SessionSnapshotter persist.Snapshotter
	// MemorySnapshotter overrides the default JSON file under DataDir.
	MemorySnapshotter persist.Snapshotter
	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Service aggregates the two stores behind their core contracts. The stores
// share no data, only the same persistence and eviction patterns; each owns
// its snapshot file exclusively.
type Service struct {
	sessions *session.Store
	memory   *memory.Store
}

// New creates a Service from the given configuration with optional
// overrides. Construction is eager: snapshots are loaded, startup sweeps run
// and background sweepers start before New returns.
func New(cfg config.Config, optFns ...func(o *Options)) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.SessionSnapshotter == nil {
		opts.SessionSnapshotter = persist.NewJSONFile(filepath.Join(cfg.DataDir, SessionSnapshotFile))
	}
	if opts.MemorySnapshotter == nil {
		opts.MemorySnapshotter = persist.NewJSONFile(filepath.Join(cfg.DataDir, MemorySnapshotFile))
	}

	sessions := session.New(session.Config{
		Timeout:         cfg.Session.Timeout,
		MaxPerUser:      cfg.Session.MaxPerUser,
		CleanupInterval: cfg.Session.CleanupInterval,
	}, opts.SessionSnapshotter, opts.Logger)

	mem := memory.New(memory.Config{
		MaxEntries:    cfg.Memory.MaxEntries,
		RetentionDays: cfg.Memory.RetentionDays,
		SweepInterval: cfg.Memory.SweepInterval,
	}, opts.MemorySnapshotter, opts.Logger)

	return &Service{sessions: sessions, memory: mem}, nil
}

// Sessions returns the session store.
func (s *Service) Sessions() core.SessionStore { return s.sessions }

// Memory returns the memory store.
func (s *Service) Memory() core.MemoryStore { return s.memory }

// Shutdown stops both sweepers and flushes one final snapshot per store.
// Safe to call more than once. The context is consulted between store
// shutdowns so a cancelled shutdown stops early rather than blocking.
func (s *Service) Shutdown(ctx context.Context) error {
	err := s.sessions.Close()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return errors.Join(err, ctxErr)
	}
	return errors.Join(err, s.memory.Close())
}
