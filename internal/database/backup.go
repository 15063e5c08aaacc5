// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

package database

import (
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/tomtom215/calmverse/internal/logging"
)

// maxPendingRestoreWrites bounds memory use while loading a backup.
const maxPendingRestoreWrites = 256

// BackupResult describes a finished backup file.
type BackupResult struct {
	Path     string        `json:"path"`
	Size     int64         `json:"size_bytes"`
	Checksum string        `json:"checksum"`
	Version  uint64        `json:"version"`
	Duration time.Duration `json:"duration"`
}

// closers closes writers in reverse order and returns the first error.
type closers []io.Closer

func (c closers) Close() error {
	var firstErr error
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Backup writes a gzip-compressed full snapshot of the store to path.
// The returned checksum is the SHA-256 of the file as written.
//
//nolint:gosec // G304: path is operator supplied
func (d *DB) Backup(path string) (res *BackupResult, err error) {
	start := time.Now()

	out, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create backup file: %w", err)
	}
	hasher := sha256.New()
	gz := gzip.NewWriter(io.MultiWriter(out, hasher))
	cs := closers{out, gz}

	version, err := d.db.Backup(gz, 0)
	if closeErr := cs.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("write backup: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat backup: %w", err)
	}

	res = &BackupResult{
		Path:     path,
		Size:     info.Size(),
		Checksum: hex.EncodeToString(hasher.Sum(nil)),
		Version:  version,
		Duration: time.Since(start),
	}
	logging.Info().
		Str("path", path).
		Int64("size", res.Size).
		Dur("took", res.Duration).
		Msg("Document store backup written")
	return res, nil
}

// Restore loads a backup written by Backup. Keys present in the backup
// overwrite existing keys; other keys are left alone.
//
//nolint:gosec // G304: path is operator supplied
func (d *DB) Restore(path string) error {
	in, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open backup: %w", err)
	}
	defer in.Close() //nolint:errcheck // read-only

	gz, err := gzip.NewReader(in)
	if err != nil {
		return fmt.Errorf("read backup header: %w", err)
	}
	defer gz.Close() //nolint:errcheck // read-only

	if err := d.db.Load(gz, maxPendingRestoreWrites); err != nil {
		return fmt.Errorf("load backup: %w", err)
	}
	logging.Info().Str("path", path).Msg("Document store restored")
	return nil
}
