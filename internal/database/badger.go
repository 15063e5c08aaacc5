// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

// Package database owns the embedded BadgerDB document store. Therapists,
// appointments, journal entries and chat sessions are stored as JSON
// documents under per-collection key prefixes; secondary indexes are plain
// keys whose suffix is the primary id.
package database

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/calmverse/internal/logging"
)

// Config controls how the store is opened.
type Config struct {
	Path     string
	InMemory bool
	// GCRatio is the discard ratio passed to RunValueLogGC.
	GCRatio float64
}

// DB wraps a *badger.DB with the helpers shared by every document store.
type DB struct {
	db      *badger.DB
	gcRatio float64

	closeOnce sync.Once
	closeErr  error
}

// Open opens (or creates) the store.
func Open(cfg Config) (*DB, error) {
	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = &badgerLogger{}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	ratio := cfg.GCRatio
	if ratio <= 0 || ratio >= 1 {
		ratio = 0.5
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Msg("Document store opened")
	return &DB{db: db, gcRatio: ratio}, nil
}

// OpenInMemory opens a throwaway store for tests and the CLI dry-run paths.
func OpenInMemory() (*DB, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open in-memory BadgerDB: %w", err)
	}
	return &DB{db: db, gcRatio: 0.5}, nil
}

// Badger exposes the underlying handle.
func (d *DB) Badger() *badger.DB {
	return d.db
}

// Close is idempotent.
func (d *DB) Close() error {
	d.closeOnce.Do(func() {
		d.closeErr = d.db.Close()
	})
	return d.closeErr
}

// Ping reports whether the store accepts reads.
func (d *DB) Ping() error {
	if d.db.IsClosed() {
		return errors.New("document store is closed")
	}
	return d.db.View(func(*badger.Txn) error { return nil })
}

// RunGC reclaims value-log space until Badger reports nothing to rewrite.
// In-memory stores have no value log and return immediately.
func (d *DB) RunGC() error {
	if d.db.Opts().InMemory {
		return nil
	}
	start := time.Now()
	runs := 0
	for {
		err := d.db.RunValueLogGC(d.gcRatio)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) {
			break
		}
		if err != nil {
			return fmt.Errorf("run GC: %w", err)
		}
		runs++
	}
	logging.Debug().Int("rewrites", runs).Dur("took", time.Since(start)).Msg("Value log GC finished")
	return nil
}

// badgerLogger routes Badger's internal logging through zerolog. Info and
// debug output from Badger is noisy, so it is demoted one level.
type badgerLogger struct{}

func (badgerLogger) Errorf(f string, v ...interface{}) {
	logging.Error().Str("component", "badger").Msgf(f, v...)
}

func (badgerLogger) Warningf(f string, v ...interface{}) {
	logging.Warn().Str("component", "badger").Msgf(f, v...)
}

func (badgerLogger) Infof(f string, v ...interface{}) {
	logging.Debug().Str("component", "badger").Msgf(f, v...)
}

func (badgerLogger) Debugf(string, ...interface{}) {}
