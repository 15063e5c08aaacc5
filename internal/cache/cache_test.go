// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

package cache

import (
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"
)

func TestMatcher_OverlappingKeywords(t *testing.T) {
	t.Parallel()

	m := NewMatcher([]string{"he", "she", "his", "hers"})
	got := m.Matches("ushers")
	want := []string{"she", "he", "hers"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Matches(ushers) = %v, want %v", got, want)
	}
}

func TestMatcher_FirstMatch(t *testing.T) {
	t.Parallel()

	m := NewMatcher([]string{"kill myself", "want to die", " Crisis ", ""})
	if m.Len() != 3 {
		t.Fatalf("Len() = %d, want 3 (blank skipped)", m.Len())
	}

	tests := []struct {
		text string
		want string
		ok   bool
	}{
		{"I WANT TO DIE", "want to die", true},
		{"this is a crisis", "crisis", true},
		{"sometimes I want to kill myself", "kill myself", true},
		{"I feel a little sad today", "", false},
		{"", "", false},
		{"kill my time with music", "", false},
	}
	for _, tt := range tests {
		got, ok := m.FirstMatch(tt.text)
		if got != tt.want || ok != tt.ok {
			t.Errorf("FirstMatch(%q) = %q, %v; want %q, %v", tt.text, got, ok, tt.want, tt.ok)
		}
		if m.Contains(tt.text) != tt.ok {
			t.Errorf("Contains(%q) = %v", tt.text, !tt.ok)
		}
	}
}

func TestMatcher_Empty(t *testing.T) {
	t.Parallel()
	m := NewMatcher(nil)
	if m.Contains("anything") || m.Matches("anything") != nil {
		t.Error("empty matcher must not match")
	}
}

func TestMatcher_Concurrent(t *testing.T) {
	t.Parallel()

	m := NewMatcher([]string{"emergency"})
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if !m.Contains(fmt.Sprintf("message %d: EMERGENCY", i)) {
				t.Error("expected match")
			}
		}(i)
	}
	wg.Wait()
}

func TestLRU_Eviction(t *testing.T) {
	t.Parallel()

	c := NewLRU[int](2, time.Minute)
	c.Add("a", 1)
	c.Add("b", 2)
	if _, ok := c.Get("a"); !ok { // a becomes most recent
		t.Fatal("a should be present")
	}
	c.Add("c", 3) // evicts b

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v", v, ok)
	}
	if v, ok := c.Get("c"); !ok || v != 3 {
		t.Errorf("Get(c) = %d, %v", v, ok)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}

	c.Add("a", 10)
	if v, _ := c.Get("a"); v != 10 {
		t.Errorf("updated a = %d, want 10", v)
	}

	stats := c.Stats()
	if stats.Hits != 4 || stats.Misses != 1 || stats.Entries != 2 {
		t.Errorf("Stats() = %+v", stats)
	}
}

func TestLRU_TTL(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRU[string](10, time.Minute)
	c.now = func() time.Time { return now }

	c.Add("k", "v")
	now = now.Add(30 * time.Second)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("entry should still be live")
	}
	now = now.Add(31 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Error("entry should have expired")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry not removed, Len() = %d", c.Len())
	}
}

func TestNewLRU_Defaults(t *testing.T) {
	t.Parallel()
	c := NewLRU[bool](0, 0)
	if c.capacity != 1000 || c.ttl != time.Hour {
		t.Errorf("defaults = %d, %v", c.capacity, c.ttl)
	}
}
