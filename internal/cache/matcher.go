// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

package cache

import "strings"

// Matcher finds occurrences of a fixed set of keywords in O(n + m + z)
// time: n the text length, m the total keyword length, z the matches.
// Matching is case-insensitive. A Matcher is immutable after NewMatcher
// and may be shared across goroutines.
//
//	m := NewMatcher([]string{"want to die", "crisis"})
//	kw, ok := m.FirstMatch("I think I'm in a CRISIS") // "crisis", true
type Matcher struct {
	root     *acNode
	keywords []string
}

type acNode struct {
	children map[rune]*acNode
	failure  *acNode
	output   []int // indices into keywords ending here
}

func newACNode() *acNode {
	return &acNode{children: make(map[rune]*acNode)}
}

// NewMatcher builds the automaton. Blank keywords are skipped and the
// rest are lower-cased and trimmed.
func NewMatcher(keywords []string) *Matcher {
	m := &Matcher{root: newACNode()}
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		m.insert(len(m.keywords), kw)
		m.keywords = append(m.keywords, kw)
	}
	m.buildFailureLinks()
	return m
}

func (m *Matcher) insert(index int, keyword string) {
	node := m.root
	for _, ch := range keyword {
		next := node.children[ch]
		if next == nil {
			next = newACNode()
			node.children[ch] = next
		}
		node = next
	}
	node.output = append(node.output, index)
}

// buildFailureLinks walks the trie breadth-first so every node's failure
// target is resolved before its children need it.
func (m *Matcher) buildFailureLinks() {
	queue := make([]*acNode, 0, len(m.root.children))
	for _, child := range m.root.children {
		child.failure = m.root
		queue = append(queue, child)
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for ch, child := range current.children {
			queue = append(queue, child)

			fail := current.failure
			for fail != nil && fail.children[ch] == nil {
				fail = fail.failure
			}
			if fail == nil {
				child.failure = m.root
				continue
			}
			child.failure = fail.children[ch]
			child.output = append(child.output, child.failure.output...)
		}
	}
}

// step advances the automaton by one rune.
func (m *Matcher) step(node *acNode, ch rune) *acNode {
	for node != nil && node.children[ch] == nil {
		node = node.failure
	}
	if node == nil {
		return m.root
	}
	return node.children[ch]
}

// FirstMatch returns the first keyword that ends earliest in text.
func (m *Matcher) FirstMatch(text string) (string, bool) {
	if len(m.keywords) == 0 {
		return "", false
	}
	node := m.root
	for _, ch := range strings.ToLower(text) {
		node = m.step(node, ch)
		if len(node.output) > 0 {
			return m.keywords[node.output[0]], true
		}
	}
	return "", false
}

// Matches returns every distinct keyword found in text, in order of first
// occurrence.
func (m *Matcher) Matches(text string) []string {
	if len(m.keywords) == 0 {
		return nil
	}
	var found []string
	seen := make(map[int]bool)
	node := m.root
	for _, ch := range strings.ToLower(text) {
		node = m.step(node, ch)
		for _, idx := range node.output {
			if !seen[idx] {
				seen[idx] = true
				found = append(found, m.keywords[idx])
			}
		}
	}
	return found
}

// Contains reports whether any keyword occurs in text.
func (m *Matcher) Contains(text string) bool {
	_, ok := m.FirstMatch(text)
	return ok
}

// Len returns the number of keywords.
func (m *Matcher) Len() int {
	return len(m.keywords)
}
