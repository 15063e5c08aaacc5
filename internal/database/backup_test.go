// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgraph-io/badger/v4"
)

func TestBackupRestore(t *testing.T) {
	t.Parallel()
	src := newTestDB(t)
	ctx := context.Background()

	err := src.Update(ctx, func(txn *badger.Txn) error {
		if err := SetJSON(txn, "doc:1", doc{ID: "1", Name: "calm"}, 0); err != nil {
			return err
		}
		return SetIndex(txn, "idx:doc:1")
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	path := filepath.Join(t.TempDir(), "calmverse.bak.gz")
	res, err := src.Backup(path)
	if err != nil {
		t.Fatalf("Backup: %v", err)
	}
	if res.Size == 0 || len(res.Checksum) != 64 {
		t.Errorf("Backup result = %+v, want non-empty file and sha256 checksum", res)
	}

	dst := newTestDB(t)
	if err := dst.Restore(path); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	var got doc
	err = dst.View(func(txn *badger.Txn) error {
		if err := GetJSON(txn, "doc:1", &got); err != nil {
			return err
		}
		ok, err := Exists(txn, "idx:doc:1")
		if err != nil {
			return err
		}
		if !ok {
			t.Error("index key missing after restore")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("read restored store: %v", err)
	}
	if got.Name != "calm" {
		t.Errorf("restored name = %q, want calm", got.Name)
	}
}

func TestRestoreRejectsNonBackup(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)

	path := filepath.Join(t.TempDir(), "plain.txt")
	if err := os.WriteFile(path, []byte("not a backup"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := db.Restore(path); err == nil {
		t.Error("Restore accepted a file that is not gzip")
	}
	if err := db.Restore(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Restore accepted a missing file")
	}
}
