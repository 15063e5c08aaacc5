// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

// Package journal stores personal journal entries and derives writing
// prompts and simple insights from them.
package journal

import (
	"errors"
	"time"
)

var (
	// ErrEntryNotFound is returned for an unknown entry id.
	ErrEntryNotFound = errors.New("journal entry not found")

	// ErrInvalidID is returned when an entry id is not a ULID.
	ErrInvalidID = errors.New("invalid ID format")

	// ErrUnknownCategory is returned when no prompt has the requested category.
	ErrUnknownCategory = errors.New("no prompts in category")
)

// Entry is one journal record. UserID is optional; entries without it are
// visible only through unfiltered listings.
type Entry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id,omitempty"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Mood      string    `json:"mood,omitempty"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Draft carries the writable fields of an entry.
type Draft struct {
	UserID  string
	Title   string
	Content string
	Mood    string
	Tags    []string
}
