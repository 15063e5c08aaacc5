// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

package therapy

import (
	"sort"
	"time"
)

// TimeSlot is a bookable window owned by one therapist. Its identity is the
// (StartTime, EndTime) pair.
type TimeSlot struct {
	StartTime time.Time `json:"start_time" yaml:"start_time"`
	EndTime   time.Time `json:"end_time" yaml:"end_time"`
	IsBooked  bool      `json:"is_booked" yaml:"is_booked"`
}

// WorkingHours is the daily window slots are generated in.
type WorkingHours struct {
	StartHour    int
	EndHour      int
	SlotDuration time.Duration
	Location     *time.Location
}

// DefaultWorkingHours is 09:00-17:00 UTC in one-hour slots.
func DefaultWorkingHours() WorkingHours {
	return WorkingHours{StartHour: 9, EndHour: 17, SlotDuration: time.Hour, Location: time.UTC}
}

func (wh WorkingHours) location() *time.Location {
	if wh.Location == nil {
		return time.UTC
	}
	return wh.Location
}

// GenerateSlots creates unbooked slots for `days` calendar days starting with
// the day containing now. The result depends only on its arguments. Slots
// already in the past on the first day are included; AvailableSlots hides them.
func GenerateSlots(now time.Time, days int, wh WorkingHours) []TimeSlot {
	if days <= 0 || wh.SlotDuration <= 0 || wh.EndHour <= wh.StartHour {
		return nil
	}

	loc := wh.location()
	local := now.In(loc)
	perDay := int(time.Duration(wh.EndHour-wh.StartHour) * time.Hour / wh.SlotDuration)
	slots := make([]TimeSlot, 0, days*perDay)

	for d := 0; d < days; d++ {
		day := time.Date(local.Year(), local.Month(), local.Day()+d, 0, 0, 0, 0, loc)
		open := day.Add(time.Duration(wh.StartHour) * time.Hour)
		closeAt := day.Add(time.Duration(wh.EndHour) * time.Hour)
		for start := open; !start.Add(wh.SlotDuration).After(closeAt); start = start.Add(wh.SlotDuration) {
			slots = append(slots, TimeSlot{
				StartTime: start.UTC(),
				EndTime:   start.Add(wh.SlotDuration).UTC(),
			})
		}
	}
	return slots
}

// AvailableSlots returns the unbooked slots starting strictly after now, in
// chronological order. The input is not modified.
func AvailableSlots(slots []TimeSlot, now time.Time) []TimeSlot {
	out := make([]TimeSlot, 0, len(slots))
	for _, s := range slots {
		if !s.IsBooked && s.StartTime.After(now) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out
}

// findSlot matches on exact instants; overlapping ranges never match.
func findSlot(slots []TimeSlot, start, end time.Time) int {
	for i := range slots {
		if slots[i].StartTime.Equal(start) && slots[i].EndTime.Equal(end) {
			return i
		}
	}
	return -1
}

// TryReserve books the slot matching (start, end) exactly. It returns false
// when no such slot exists or it is already booked.
func TryReserve(slots []TimeSlot, start, end time.Time) bool {
	i := findSlot(slots, start, end)
	if i < 0 || slots[i].IsBooked {
		return false
	}
	slots[i].IsBooked = true
	return true
}

// Release frees the slot matching (start, end). Releasing a free or unknown
// slot is a no-op; the return value reports whether a slot matched.
func Release(slots []TimeSlot, start, end time.Time) bool {
	i := findSlot(slots, start, end)
	if i < 0 {
		return false
	}
	slots[i].IsBooked = false
	return true
}

// MergeSlots appends generated slots that are not already present and drops
// slots that ended before cutoff. Booked state of existing slots is kept.
func MergeSlots(existing, generated []TimeSlot, cutoff time.Time) []TimeSlot {
	out := make([]TimeSlot, 0, len(existing)+len(generated))
	for _, s := range existing {
		if s.EndTime.Before(cutoff) {
			continue
		}
		out = append(out, s)
	}
	for _, g := range generated {
		if g.EndTime.Before(cutoff) || findSlot(out, g.StartTime, g.EndTime) >= 0 {
			continue
		}
		out = append(out, g)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out
}
