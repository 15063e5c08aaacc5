// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

package books

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/tomtom215/calmverse/internal/logging"
)

// ErrBookNotFound is returned when no book has the requested title.
var ErrBookNotFound = errors.New("book not found")

// Book is one row of the books table.
type Book struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Author      string `json:"author,omitempty"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

// Summary is the list view of a book.
type Summary struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// Store is the SQLite book table.
type Store struct {
	db *sql.DB
}

// OpenStore opens or creates the database at path. When the books table
// does not exist it is created, and filled with the sample catalog if
// seed is true. An existing table is never modified.
func OpenStore(ctx context.Context, path string, seed bool) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(ctx, seed); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context, seed bool) error {
	var name string
	err := s.db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type='table' AND name='books'`).Scan(&name)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
	CREATE TABLE books (
		id          INTEGER PRIMARY KEY,
		title       TEXT NOT NULL,
		author      TEXT,
		description TEXT,
		image_url   TEXT
	);
	CREATE INDEX idx_books_title ON books(title);`); err != nil {
		return err
	}

	if seed {
		for _, b := range sampleBooks {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO books (id, title, author, description, image_url) VALUES (?, ?, ?, ?, ?)`,
				b.ID, b.Title, b.Author, b.Description, b.ImageURL); err != nil {
				return fmt.Errorf("seed %q: %w", b.Title, err)
			}
		}
		logging.Info().Int("books", len(sampleBooks)).Msg("Created books table with sample catalog")
	}
	return tx.Commit()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// List returns every book ordered by id.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title FROM books ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var b Summary
		if err := rows.Scan(&b.ID, &b.Title); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// IDs returns every book id in ascending order. Similarity matrix rows
// follow this order.
func (s *Store) IDs(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM books ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list book ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

const bookColumns = `id, title, COALESCE(author, ''), COALESCE(description, ''), COALESCE(image_url, '')`

func scanBook(row interface{ Scan(...any) error }) (Book, error) {
	var b Book
	err := row.Scan(&b.ID, &b.Title, &b.Author, &b.Description, &b.ImageURL)
	return b, err
}

// FindByTitle returns the lowest-id book with exactly this title.
func (s *Store) FindByTitle(ctx context.Context, title string) (*Book, error) {
	b, err := scanBook(s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE title = ? ORDER BY id LIMIT 1`, title))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrBookNotFound, title)
	}
	if err != nil {
		return nil, fmt.Errorf("find book: %w", err)
	}
	return &b, nil
}

// GetByIDs loads the given books keyed by id. Unknown ids are absent.
func (s *Store) GetByIDs(ctx context.Context, ids []int64) (map[int64]Book, error) {
	out := make(map[int64]Book, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("get books: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		out[b.ID] = b
	}
	return out, rows.Err()
}

// Upsert inserts or replaces a book. An ID of 0 lets SQLite assign one.
func (s *Store) Upsert(ctx context.Context, b *Book) error {
	if b.ID == 0 {
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO books (title, author, description, image_url) VALUES (?, ?, ?, ?)`,
			b.Title, b.Author, b.Description, b.ImageURL)
		if err != nil {
			return fmt.Errorf("insert book: %w", err)
		}
		b.ID, err = res.LastInsertId()
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO books (id, title, author, description, image_url) VALUES (?, ?, ?, ?, ?)`,
		b.ID, b.Title, b.Author, b.Description, b.ImageURL)
	if err != nil {
		return fmt.Errorf("upsert book: %w", err)
	}
	return nil
}
