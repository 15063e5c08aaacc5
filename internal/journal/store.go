// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

package journal

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/calmverse/internal/database"
)

const (
	entryPrefix     = "journal:"
	entryUserPrefix = "journal_user:"
)

// Store persists journal entries.
type Store interface {
	Put(ctx context.Context, e *Entry) error
	Get(ctx context.Context, id string) (*Entry, error)
	// Replace applies fn to the stored entry and saves the result.
	Replace(ctx context.Context, id string, fn func(*Entry)) (*Entry, error)
	Delete(ctx context.Context, id string) error
	// List returns entries in key order, restricted to userID when non-empty.
	List(ctx context.Context, userID string) ([]Entry, error)
}

// BadgerStore keeps entries in the shared document database.
type BadgerStore struct {
	db *database.DB
}

// NewBadgerStore creates a BadgerDB-backed journal store.
func NewBadgerStore(db *database.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

func userKey(userID, id string) string {
	return entryUserPrefix + userID + ":" + id
}

func loadEntry(txn *badger.Txn, id string) (*Entry, error) {
	var e Entry
	if err := database.GetJSON(txn, entryPrefix+id, &e); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return &e, nil
}

// Put stores e and its owner index.
func (s *BadgerStore) Put(ctx context.Context, e *Entry) error {
	return s.db.Update(ctx, func(txn *badger.Txn) error {
		if err := database.SetJSON(txn, entryPrefix+e.ID, e, 0); err != nil {
			return err
		}
		if e.UserID == "" {
			return nil
		}
		return database.SetIndex(txn, userKey(e.UserID, e.ID))
	})
}

// Get loads one entry.
func (s *BadgerStore) Get(_ context.Context, id string) (*Entry, error) {
	var e *Entry
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		e, err = loadEntry(txn, id)
		return err
	})
	return e, err
}

// Replace re-reads the entry inside the write transaction so a concurrent
// update is never silently overwritten.
func (s *BadgerStore) Replace(ctx context.Context, id string, fn func(*Entry)) (*Entry, error) {
	var out *Entry
	err := s.db.Update(ctx, func(txn *badger.Txn) error {
		e, err := loadEntry(txn, id)
		if err != nil {
			return err
		}
		fn(e)
		if err := database.SetJSON(txn, entryPrefix+id, e, 0); err != nil {
			return err
		}
		out = e
		return nil
	})
	return out, err
}

// Delete removes the entry and its owner index.
func (s *BadgerStore) Delete(ctx context.Context, id string) error {
	return s.db.Update(ctx, func(txn *badger.Txn) error {
		e, err := loadEntry(txn, id)
		if err != nil {
			return err
		}
		if e.UserID != "" {
			if err := database.Delete(txn, userKey(e.UserID, id)); err != nil {
				return err
			}
		}
		return database.Delete(txn, entryPrefix+id)
	})
}

// List scans all entries, or one user's entries through the owner index.
func (s *BadgerStore) List(_ context.Context, userID string) ([]Entry, error) {
	var out []Entry
	err := s.db.View(func(txn *badger.Txn) error {
		if userID == "" {
			return database.ScanJSON(txn, entryPrefix, func(_ string, e *Entry) error {
				out = append(out, *e)
				return nil
			})
		}
		for _, id := range database.ScanKeys(txn, entryUserPrefix+userID+":") {
			e, err := loadEntry(txn, id)
			if errors.Is(err, ErrEntryNotFound) || (err == nil && e.UserID != userID) {
				continue
			}
			if err != nil {
				return err
			}
			out = append(out, *e)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}
	return out, nil
}
