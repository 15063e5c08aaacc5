// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

package journal

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// Prompt is a writing suggestion.
type Prompt struct {
	Prompt   string `json:"prompt"`
	Category string `json:"category"`
}

var prompts = []Prompt{
	{"What made you smile today?", "gratitude"},
	{"Describe three things you're grateful for right now.", "gratitude"},
	{"What's one small win you had today?", "achievements"},
	{"How did you practice self-care today?", "self-care"},
	{"What's something that challenged you today and how did you respond?", "growth"},
	{"Describe a moment of calm you experienced recently.", "mindfulness"},
	{"What's one thing you're looking forward to tomorrow?", "hope"},
	{"If your emotions today were weather, what would they be and why?", "emotions"},
	{"Write a letter to your future self about how you're feeling right now.", "reflection"},
	{"What's one small change you could make tomorrow to improve your wellbeing?", "self-improvement"},
}

// Prompts returns a copy of the prompt table.
func Prompts() []Prompt {
	return append([]Prompt(nil), prompts...)
}

// PromptCategories returns the distinct categories, sorted.
func PromptCategories() []string {
	cats := lo.Uniq(lo.Map(prompts, func(p Prompt, _ int) string { return p.Category }))
	sort.Strings(cats)
	return cats
}

// RandomPrompt picks a prompt, restricted to category when it is non-empty.
// Category matching ignores case.
func RandomPrompt(category string) (Prompt, error) {
	pool := prompts
	if category != "" {
		pool = lo.Filter(prompts, func(p Prompt, _ int) bool {
			return strings.EqualFold(p.Category, category)
		})
		if len(pool) == 0 {
			return Prompt{}, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
		}
	}
	return pool[rand.IntN(len(pool))], nil //nolint:gosec // not security sensitive
}
