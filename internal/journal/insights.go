// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

package journal

import (
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"
)

const (
	topN          = 5
	recentWeeks   = 10
	insightsNudge = "Continue journaling regularly to see more detailed insights!"
)

// Bucket is one group of an aggregation. The key is serialized as "_id"
// so existing clients of the insights payload keep working.
type Bucket struct {
	Key   string `json:"_id"`
	Count int    `json:"count"`
}

// Insights summarises a set of entries.
type Insights struct {
	TotalEntries  int      `json:"total_entries"`
	TopMoods      []Bucket `json:"top_moods"`
	TopTags       []Bucket `json:"top_tags"`
	EntriesByWeek []Bucket `json:"entries_by_week"`
	Message       string   `json:"message"`
}

// WeekKey formats t as "YYYY-WW" where weeks start on Sunday and days
// before the year's first Sunday fall in week 00.
func WeekKey(t time.Time) string {
	week := (t.YearDay() - 1 + 7 - int(t.Weekday())) / 7
	return fmt.Sprintf("%04d-%02d", t.Year(), week)
}

// topBuckets orders by count descending, then key ascending, and keeps n.
func topBuckets(counts map[string]int, n int) []Bucket {
	out := lo.MapToSlice(counts, func(k string, c int) Bucket {
		return Bucket{Key: k, Count: c}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// ComputeInsights aggregates entries in three passes: moods, tags and
// weeks. Weeks are keyed in loc and the most recent ten are returned.
func ComputeInsights(entries []Entry, loc *time.Location) Insights {
	if loc == nil {
		loc = time.UTC
	}

	moods := lo.CountValues(lo.FilterMap(entries, func(e Entry, _ int) (string, bool) {
		return e.Mood, e.Mood != ""
	}))
	tags := lo.CountValues(lo.FlatMap(entries, func(e Entry, _ int) []string {
		return lo.Uniq(e.Tags)
	}))
	weeks := lo.CountValues(lo.Map(entries, func(e Entry, _ int) string {
		return WeekKey(e.CreatedAt.In(loc))
	}))

	byWeek := lo.MapToSlice(weeks, func(k string, c int) Bucket {
		return Bucket{Key: k, Count: c}
	})
	sort.Slice(byWeek, func(i, j int) bool { return byWeek[i].Key > byWeek[j].Key })
	if len(byWeek) > recentWeeks {
		byWeek = byWeek[:recentWeeks]
	}

	return Insights{
		TotalEntries:  len(entries),
		TopMoods:      topBuckets(moods, topN),
		TopTags:       topBuckets(tags, topN),
		EntriesByWeek: byWeek,
		Message:       insightsNudge,
	}
}
