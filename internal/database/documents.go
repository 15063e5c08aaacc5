// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

package database

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// ErrNotFound is returned by GetJSON when the key is absent.
var ErrNotFound = errors.New("document not found")

// ErrContention is returned by Update when ctx ends while transactions on
// the same documents keep conflicting.
var ErrContention = errors.New("document store busy")

// Conflict backoff starts at conflictBackoffBase and doubles up to
// conflictBackoffMax, with up to 50% random jitter added.
const (
	conflictBackoffBase = time.Millisecond
	conflictBackoffMax  = 50 * time.Millisecond
)

// View runs fn in a read-only transaction.
func (d *DB) View(fn func(txn *badger.Txn) error) error {
	return d.db.View(fn)
}

// Update runs fn in a read-write transaction. When Badger detects a
// conflicting concurrent commit the whole transaction, including its reads,
// is re-run so fn always decides on fresh data. Conflicts are retried until
// one attempt commits or ctx ends.
func (d *DB) Update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	backoff := conflictBackoffBase
	for {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err := d.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}

		//nolint:gosec // G404: weak random is fine for backoff jitter
		wait := backoff + rand.N(backoff/2+1)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%w: %w", ErrContention, ctx.Err())
		case <-timer.C:
		}
		backoff = min(backoff*2, conflictBackoffMax)
	}
}

// GetJSON loads the document at key into v.
func GetJSON(txn *badger.Txn, key string, v interface{}) error {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

// SetJSON stores v at key. A positive ttl makes the entry expire.
func SetJSON(txn *badger.Txn, key string, v interface{}, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	entry := badger.NewEntry([]byte(key), data)
	if ttl > 0 {
		entry = entry.WithTTL(ttl)
	}
	if err := txn.SetEntry(entry); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// SetIndex writes an empty marker key, used for secondary indexes.
func SetIndex(txn *badger.Txn, key string) error {
	if err := txn.Set([]byte(key), nil); err != nil {
		return fmt.Errorf("set index %s: %w", key, err)
	}
	return nil
}

// Delete removes key; a missing key is not an error.
func Delete(txn *badger.Txn, key string) error {
	if err := txn.Delete([]byte(key)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Exists reports whether key is present.
func Exists(txn *badger.Txn, key string) (bool, error) {
	_, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	return true, nil
}

// ScanJSON decodes every document under prefix, in key order, into a fresh
// T and hands it to fn.
func ScanJSON[T any](txn *badger.Txn, prefix string, fn func(key string, v *T) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	p := []byte(prefix)
	for it.Seek(p); it.ValidForPrefix(p); it.Next() {
		item := it.Item()
		v := new(T)
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		}); err != nil {
			return fmt.Errorf("decode %s: %w", item.Key(), err)
		}
		if err := fn(string(item.Key()), v); err != nil {
			return err
		}
	}
	return nil
}

// ScanKeys returns the key suffixes found under prefix, in key order,
// without reading values.
func ScanKeys(txn *badger.Txn, prefix string) []string {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	var out []string
	p := []byte(prefix)
	for it.Seek(p); it.ValidForPrefix(p); it.Next() {
		out = append(out, string(it.Item().Key()[len(p):]))
	}
	return out
}

// CountPrefix counts keys under prefix.
func CountPrefix(txn *badger.Txn, prefix string) int {
	return len(ScanKeys(txn, prefix))
}
