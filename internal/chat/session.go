// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/calmverse/internal/database"
)

// ErrSessionNotFound is returned for unknown session IDs.
var ErrSessionNotFound = errors.New("session not found")

// Turn is one stored message of a conversation.
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is a conversation transcript.
type Session struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	Messages  []Turn    `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SessionStore persists transcripts.
type SessionStore interface {
	Get(ctx context.Context, id string) (*Session, error)
	Put(ctx context.Context, s *Session) error
	// Append adds turns to the session, creating it for userID when absent.
	// The read and write happen atomically.
	Append(ctx context.Context, id, userID string, turns ...Turn) (*Session, error)
	Delete(ctx context.Context, id string) error
}

func appendTurns(s *Session, id, userID string, turns []Turn, now time.Time) *Session {
	if s == nil {
		s = &Session{SessionID: id, UserID: userID, CreatedAt: now}
	}
	s.Messages = append(s.Messages, turns...)
	s.UpdatedAt = now
	return s
}

const sessionPrefix = "chat_session:"

// BadgerSessionStore keeps sessions in the shared document database. A
// positive ttl expires idle sessions; every write refreshes it.
type BadgerSessionStore struct {
	db  *database.DB
	ttl time.Duration
	now func() time.Time
}

// NewBadgerSessionStore creates a store. ttl 0 keeps sessions until ended.
func NewBadgerSessionStore(db *database.DB, ttl time.Duration) *BadgerSessionStore {
	return &BadgerSessionStore{db: db, ttl: ttl, now: time.Now}
}

func loadSession(txn *badger.Txn, id string) (*Session, error) {
	var s Session
	if err := database.GetJSON(txn, sessionPrefix+id, &s); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &s, nil
}

// Get loads a session.
func (b *BadgerSessionStore) Get(_ context.Context, id string) (*Session, error) {
	var s *Session
	err := b.db.View(func(txn *badger.Txn) error {
		var err error
		s, err = loadSession(txn, id)
		return err
	})
	return s, err
}

// Put overwrites a session.
func (b *BadgerSessionStore) Put(ctx context.Context, s *Session) error {
	return b.db.Update(ctx, func(txn *badger.Txn) error {
		return database.SetJSON(txn, sessionPrefix+s.SessionID, s, b.ttl)
	})
}

// Append re-reads the session inside the write transaction, so concurrent
// turns on one session are serialised by badger's conflict detection.
func (b *BadgerSessionStore) Append(ctx context.Context, id, userID string, turns ...Turn) (*Session, error) {
	var out *Session
	err := b.db.Update(ctx, func(txn *badger.Txn) error {
		s, err := loadSession(txn, id)
		if err != nil && !errors.Is(err, ErrSessionNotFound) {
			return err
		}
		s = appendTurns(s, id, userID, turns, b.now())
		if err := database.SetJSON(txn, sessionPrefix+id, s, b.ttl); err != nil {
			return err
		}
		out = s
		return nil
	})
	return out, err
}

// Delete removes a session.
func (b *BadgerSessionStore) Delete(ctx context.Context, id string) error {
	return b.db.Update(ctx, func(txn *badger.Txn) error {
		ok, err := database.Exists(txn, sessionPrefix+id)
		if err != nil {
			return err
		}
		if !ok {
			return ErrSessionNotFound
		}
		return database.Delete(txn, sessionPrefix+id)
	})
}

type memorySession struct {
	session   Session
	expiresAt time.Time // zero means never
}

// MemorySessionStore keeps sessions for the life of the process.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]*memorySession
	ttl      time.Duration
	now      func() time.Time
}

// NewMemorySessionStore creates an in-process store. ttl 0 disables expiry.
func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]*memorySession),
		ttl:      ttl,
		now:      time.Now,
	}
}

// live returns the entry for id, dropping it if expired. Caller holds mu.
func (m *MemorySessionStore) live(id string) *memorySession {
	e, ok := m.sessions[id]
	if !ok {
		return nil
	}
	if !e.expiresAt.IsZero() && m.now().After(e.expiresAt) {
		delete(m.sessions, id)
		return nil
	}
	return e
}

func (m *MemorySessionStore) store(s *Session) {
	e := &memorySession{session: cloneSession(s)}
	if m.ttl > 0 {
		e.expiresAt = m.now().Add(m.ttl)
	}
	m.sessions[s.SessionID] = e
}

func cloneSession(s *Session) Session {
	c := *s
	c.Messages = append([]Turn(nil), s.Messages...)
	return c
}

// Get returns a copy of the session.
func (m *MemorySessionStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.live(id)
	if e == nil {
		return nil, ErrSessionNotFound
	}
	s := cloneSession(&e.session)
	return &s, nil
}

// Put stores a copy of s.
func (m *MemorySessionStore) Put(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store(s)
	return nil
}

// Append implements SessionStore.
func (m *MemorySessionStore) Append(_ context.Context, id, userID string, turns ...Turn) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var current *Session
	if e := m.live(id); e != nil {
		current = &e.session
	}
	s := appendTurns(current, id, userID, turns, m.now())
	m.store(s)
	out := cloneSession(s)
	return &out, nil
}

// Delete implements SessionStore.
func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.live(id) == nil {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}
