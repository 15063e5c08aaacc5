// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

package therapy

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/tomtom215/calmverse/internal/database"
)

var (
	slotStart = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	slotEnd   = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	fixedNow  = time.Date(2023, 12, 31, 12, 0, 0, 0, time.UTC)
)

func newTestService(t *testing.T) (*Service, *BadgerStore) {
	t.Helper()
	db, err := database.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store := NewBadgerStore(db)
	svc := NewService(store, ServiceConfig{AvailabilityDays: 2, Hours: DefaultWorkingHours()})
	svc.SetClock(func() time.Time { return fixedNow })
	return svc, store
}

// putTherapist stores a therapist owning a single 2024-01-01 09:00-10:00 slot.
func putTherapist(t *testing.T, store *BadgerStore, name string, specs, langs []string) *Therapist {
	t.Helper()
	th := &Therapist{
		ID:              ulid.Make().String(),
		Name:            name,
		Specializations: specs,
		Languages:       langs,
		HourlyRate:      120,
		Availability:    []TimeSlot{{StartTime: slotStart, EndTime: slotEnd}},
	}
	if err := store.PutTherapist(context.Background(), th); err != nil {
		t.Fatalf("PutTherapist() error = %v", err)
	}
	return th
}

func bookDefault(svc *Service, therapistID, userID string) (*Appointment, error) {
	return svc.Book(context.Background(), BookRequest{
		UserID:      userID,
		TherapistID: therapistID,
		StartTime:   slotStart,
		EndTime:     slotEnd,
		Notes:       "first visit",
	})
}

func TestBook_ReservesSlot(t *testing.T) {
	t.Parallel()
	svc, store := newTestService(t)
	th := putTherapist(t, store, "Dr. Sarah Johnson", []string{"Anxiety"}, []string{"English"})

	appt, err := bookDefault(svc, th.ID, "u1")
	if err != nil {
		t.Fatalf("Book() error = %v", err)
	}
	if appt.Status != StatusScheduled {
		t.Errorf("Status = %s, want scheduled", appt.Status)
	}
	if appt.TherapistName != "Dr. Sarah Johnson" {
		t.Errorf("TherapistName = %q", appt.TherapistName)
	}
	if appt.Date != "2024-01-01" {
		t.Errorf("Date = %q, want derived 2024-01-01", appt.Date)
	}
	if appt.AppointmentID == "" || appt.ID == "" {
		t.Error("appointment ids should be set")
	}

	stored, err := store.GetTherapist(context.Background(), th.ID)
	if err != nil {
		t.Fatalf("GetTherapist() error = %v", err)
	}
	if !stored.Availability[0].IsBooked {
		t.Error("slot should be booked after a successful booking")
	}

	detail, err := svc.GetTherapist(context.Background(), th.ID)
	if err != nil {
		t.Fatalf("GetTherapist() error = %v", err)
	}
	if len(detail.AvailableSlots) != 0 {
		t.Errorf("AvailableSlots = %v, want none after booking", detail.AvailableSlots)
	}
}

func TestBook_SlotAlreadyBooked(t *testing.T) {
	t.Parallel()
	svc, store := newTestService(t)
	th := putTherapist(t, store, "Dr. Michael Chen", nil, nil)

	if _, err := bookDefault(svc, th.ID, "u1"); err != nil {
		t.Fatalf("first Book() error = %v", err)
	}
	_, err := bookDefault(svc, th.ID, "u2")
	if !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("second Book() error = %v, want ErrSlotUnavailable", err)
	}

	appts, err := svc.ListUserAppointments(context.Background(), "u2", "")
	if err != nil {
		t.Fatalf("ListUserAppointments() error = %v", err)
	}
	if len(appts) != 0 {
		t.Errorf("failed booking created %d appointments", len(appts))
	}
}

func TestBook_Validation(t *testing.T) {
	t.Parallel()
	svc, store := newTestService(t)
	th := putTherapist(t, store, "Maya Rodriguez", nil, nil)

	tests := []struct {
		name    string
		req     BookRequest
		wantErr error
	}{
		{"missing user", BookRequest{TherapistID: th.ID, StartTime: slotStart, EndTime: slotEnd}, ErrUserRequired},
		{"bad therapist id", BookRequest{UserID: "u", TherapistID: "123", StartTime: slotStart, EndTime: slotEnd}, ErrInvalidID},
		{"unknown therapist", BookRequest{UserID: "u", TherapistID: ulid.Make().String(), StartTime: slotStart, EndTime: slotEnd}, ErrTherapistNotFound},
		{"inverted slot", BookRequest{UserID: "u", TherapistID: th.ID, StartTime: slotEnd, EndTime: slotStart}, ErrInvalidSlot},
		{"bad date", BookRequest{UserID: "u", TherapistID: th.ID, Date: "01/01/2024", StartTime: slotStart, EndTime: slotEnd}, ErrInvalidDate},
		{"no such slot", BookRequest{UserID: "u", TherapistID: th.ID, StartTime: slotStart, EndTime: slotEnd.Add(time.Minute)}, ErrSlotUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Book(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Book() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBook_ConcurrentSingleWinner(t *testing.T) {
	t.Parallel()
	svc, store := newTestService(t)
	th := putTherapist(t, store, "Dr. James Wilson", nil, nil)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
		others    []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := bookDefault(svc, th.ID, "user-"+string(rune('a'+i)))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrSlotUnavailable):
				conflicts++
			default:
				others = append(others, err)
			}
		}(i)
	}
	wg.Wait()

	if successes != 1 {
		t.Errorf("successes = %d, want exactly 1", successes)
	}
	if conflicts != workers-1 {
		t.Errorf("conflicts = %d, want %d (unexpected errors: %v)", conflicts, workers-1, others)
	}
}

func TestBook_ConcurrentDistinctSlots(t *testing.T) {
	t.Parallel()
	svc, store := newTestService(t)
	ctx := context.Background()

	const slots = 16
	th := &Therapist{
		ID:         ulid.Make().String(),
		Name:       "Dr. Maria Garcia",
		HourlyRate: 110,
	}
	for i := range slots {
		start := slotStart.Add(time.Duration(i) * time.Hour)
		th.Availability = append(th.Availability, TimeSlot{StartTime: start, EndTime: start.Add(time.Hour)})
	}
	if err := store.PutTherapist(ctx, th); err != nil {
		t.Fatalf("PutTherapist() error = %v", err)
	}

	// Every slot lives on the same therapist document, so these bookings
	// contend on one key even though none of them overlap.
	ids := make([]string, slots)
	errs := make([]error, slots)
	var wg sync.WaitGroup
	for i := range slots {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			start := slotStart.Add(time.Duration(i) * time.Hour)
			appt, err := svc.Book(ctx, BookRequest{
				UserID:      "user-" + string(rune('a'+i)),
				TherapistID: th.ID,
				StartTime:   start,
				EndTime:     start.Add(time.Hour),
			})
			errs[i] = err
			if err == nil {
				ids[i] = appt.AppointmentID
			}
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("booking slot %d: %v", i, err)
		}
	}
	stored, err := store.GetTherapist(ctx, th.ID)
	if err != nil {
		t.Fatalf("GetTherapist() error = %v", err)
	}
	for i, slot := range stored.Availability {
		if !slot.IsBooked {
			t.Errorf("slot %d not booked after concurrent bookings", i)
		}
	}
	if t.Failed() {
		return
	}

	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = svc.CancelAppointment(ctx, id)
		}(i, id)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("cancelling slot %d: %v", i, err)
		}
	}
	stored, err = store.GetTherapist(ctx, th.ID)
	if err != nil {
		t.Fatalf("GetTherapist() error = %v", err)
	}
	for i, slot := range stored.Availability {
		if slot.IsBooked {
			t.Errorf("slot %d still booked after concurrent cancellations", i)
		}
	}
}

func TestCancelAppointment(t *testing.T) {
	t.Parallel()
	svc, store := newTestService(t)
	th := putTherapist(t, store, "Aisha Patel", nil, nil)
	ctx := context.Background()

	appt, err := bookDefault(svc, th.ID, "u1")
	if err != nil {
		t.Fatalf("Book() error = %v", err)
	}

	cancelled, err := svc.CancelAppointment(ctx, appt.AppointmentID)
	if err != nil {
		t.Fatalf("CancelAppointment() error = %v", err)
	}
	if cancelled.Status != StatusCancelled {
		t.Errorf("Status = %s, want cancelled", cancelled.Status)
	}

	stored, _ := store.GetTherapist(ctx, th.ID)
	if stored.Availability[0].IsBooked {
		t.Error("slot should be free after cancellation")
	}

	_, err = svc.CancelAppointment(ctx, appt.AppointmentID)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("second cancel error = %v, want ErrInvalidTransition", err)
	}
	if err != nil && !strings.Contains(err.Error(), "cannot cancel appointment with status: cancelled") {
		t.Errorf("second cancel message = %q", err.Error())
	}

	if _, err := bookDefault(svc, th.ID, "u2"); err != nil {
		t.Errorf("rebooking a released slot failed: %v", err)
	}

	if _, err := svc.CancelAppointment(ctx, "missing"); !errors.Is(err, ErrAppointmentNotFound) {
		t.Errorf("cancel unknown error = %v, want ErrAppointmentNotFound", err)
	}
}

func strPtr(s string) *string { return &s }

func TestUpdateAppointment(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("empty update", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTestService(t)
		if _, err := svc.UpdateAppointment(ctx, "x", AppointmentUpdate{}); !errors.Is(err, ErrEmptyUpdate) {
			t.Errorf("error = %v, want ErrEmptyUpdate", err)
		}
	})

	t.Run("unknown status", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTestService(t)
		_, err := svc.UpdateAppointment(ctx, "x", AppointmentUpdate{Status: strPtr("pending")})
		if !errors.Is(err, ErrInvalidStatus) {
			t.Errorf("error = %v, want ErrInvalidStatus", err)
		}
	})

	t.Run("notes only keeps slot booked", func(t *testing.T) {
		t.Parallel()
		svc, store := newTestService(t)
		th := putTherapist(t, store, "Dr. Chen", nil, nil)
		appt, err := bookDefault(svc, th.ID, "u1")
		if err != nil {
			t.Fatalf("Book() error = %v", err)
		}
		updated, err := svc.UpdateAppointment(ctx, appt.AppointmentID, AppointmentUpdate{Notes: strPtr("bring journal")})
		if err != nil {
			t.Fatalf("UpdateAppointment() error = %v", err)
		}
		if updated.Notes != "bring journal" || updated.Status != StatusScheduled {
			t.Errorf("updated = %+v", updated)
		}
		stored, _ := store.GetTherapist(ctx, th.ID)
		if !stored.Availability[0].IsBooked {
			t.Error("slot should stay booked")
		}
	})

	t.Run("status cancelled releases slot", func(t *testing.T) {
		t.Parallel()
		svc, store := newTestService(t)
		th := putTherapist(t, store, "Dr. Wilson", nil, nil)
		appt, err := bookDefault(svc, th.ID, "u1")
		if err != nil {
			t.Fatalf("Book() error = %v", err)
		}
		if _, err := svc.UpdateAppointment(ctx, appt.AppointmentID, AppointmentUpdate{Status: strPtr("cancelled")}); err != nil {
			t.Fatalf("UpdateAppointment() error = %v", err)
		}
		stored, _ := store.GetTherapist(ctx, th.ID)
		if stored.Availability[0].IsBooked {
			t.Error("slot should be released")
		}
	})

	t.Run("terminal state cannot be left", func(t *testing.T) {
		t.Parallel()
		svc, store := newTestService(t)
		th := putTherapist(t, store, "Dr. Patel", nil, nil)
		appt, err := bookDefault(svc, th.ID, "u1")
		if err != nil {
			t.Fatalf("Book() error = %v", err)
		}
		if _, err := svc.UpdateAppointment(ctx, appt.AppointmentID, AppointmentUpdate{Status: strPtr("completed")}); err != nil {
			t.Fatalf("complete error = %v", err)
		}
		_, err = svc.UpdateAppointment(ctx, appt.AppointmentID, AppointmentUpdate{Status: strPtr("scheduled")})
		if !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("error = %v, want ErrInvalidTransition", err)
		}
		// Notes stay editable after completion.
		if _, err := svc.UpdateAppointment(ctx, appt.AppointmentID, AppointmentUpdate{Notes: strPtr("went well")}); err != nil {
			t.Errorf("notes on completed appointment error = %v", err)
		}
		stored, _ := store.GetTherapist(ctx, th.ID)
		if !stored.Availability[0].IsBooked {
			t.Error("completed appointment should keep its slot")
		}
	})
}

func TestListUserAppointments(t *testing.T) {
	t.Parallel()
	svc, store := newTestService(t)
	ctx := context.Background()

	first := putTherapist(t, store, "A", nil, nil)
	second := putTherapist(t, store, "B", nil, nil)
	// "u1:x" shares the "u1:" index prefix and must not leak into u1's list.
	other := putTherapist(t, store, "C", nil, nil)

	a1, err := bookDefault(svc, first.ID, "u1")
	if err != nil {
		t.Fatalf("Book() error = %v", err)
	}
	if _, err := bookDefault(svc, second.ID, "u1"); err != nil {
		t.Fatalf("Book() error = %v", err)
	}
	if _, err := bookDefault(svc, other.ID, "u1:x"); err != nil {
		t.Fatalf("Book() error = %v", err)
	}
	if _, err := svc.CancelAppointment(ctx, a1.AppointmentID); err != nil {
		t.Fatalf("CancelAppointment() error = %v", err)
	}

	all, err := svc.ListUserAppointments(ctx, "u1", "")
	if err != nil {
		t.Fatalf("ListUserAppointments() error = %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("len = %d, want 2", len(all))
	}
	for _, a := range all {
		if a.UserID != "u1" {
			t.Errorf("appointment for %q leaked into u1's list", a.UserID)
		}
	}

	scheduled, err := svc.ListUserAppointments(ctx, "u1", "scheduled")
	if err != nil {
		t.Fatalf("ListUserAppointments(scheduled) error = %v", err)
	}
	if len(scheduled) != 1 || scheduled[0].TherapistID != second.ID {
		t.Errorf("scheduled = %+v, want only the appointment with B", scheduled)
	}

	if _, err := svc.ListUserAppointments(ctx, "u1", "bogus"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("bogus status error = %v, want ErrInvalidStatus", err)
	}

	none, err := svc.ListUserAppointments(ctx, "nobody", "")
	if err != nil || len(none) != 0 {
		t.Errorf("unknown user = %v, %v; want empty", none, err)
	}
}

func TestListTherapistsAndSpecializations(t *testing.T) {
	t.Parallel()
	svc, store := newTestService(t)
	ctx := context.Background()

	putTherapist(t, store, "Dr. Johnson", []string{"Anxiety", "Depression"}, []string{"English", "Spanish"})
	putTherapist(t, store, "Dr. Chen", []string{"Trauma", "PTSD"}, []string{"English", "Mandarin"})
	putTherapist(t, store, "Ms. Patel", []string{"Anxiety", "Cultural Identity"}, []string{"English", "Hindi"})

	tests := []struct {
		name   string
		filter TherapistFilter
		want   int
	}{
		{"no filter", TherapistFilter{}, 3},
		{"case-insensitive specialization", TherapistFilter{Specialization: "anx"}, 2},
		{"language", TherapistFilter{Language: "mandarin"}, 1},
		{"both", TherapistFilter{Specialization: "anxiety", Language: "spanish"}, 1},
		{"no match", TherapistFilter{Specialization: "sleep"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ListTherapists(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListTherapists() error = %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
		})
	}

	specs, err := svc.Specializations(ctx)
	if err != nil {
		t.Fatalf("Specializations() error = %v", err)
	}
	want := "Anxiety,Cultural Identity,Depression,PTSD,Trauma"
	if strings.Join(specs, ",") != want {
		t.Errorf("Specializations() = %v, want %s", specs, want)
	}
}

func TestGetTherapist_Errors(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)

	if _, err := svc.GetTherapist(context.Background(), "not-a-ulid"); !errors.Is(err, ErrInvalidID) {
		t.Errorf("malformed id error = %v, want ErrInvalidID", err)
	}
	if _, err := svc.GetTherapist(context.Background(), ulid.Make().String()); !errors.Is(err, ErrTherapistNotFound) {
		t.Errorf("unknown id error = %v, want ErrTherapistNotFound", err)
	}
}

func TestSeedAndRefresh(t *testing.T) {
	t.Parallel()
	svc, store := newTestService(t)
	ctx := context.Background()

	n, err := svc.Seed(ctx, DefaultSeed())
	if err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	if n != len(DefaultSeed()) {
		t.Errorf("Seed() = %d, want %d", n, len(DefaultSeed()))
	}

	again, err := svc.Seed(ctx, DefaultSeed())
	if err != nil || again != 0 {
		t.Errorf("second Seed() = %d, %v; want 0, nil", again, err)
	}

	all, err := store.ListTherapists(ctx)
	if err != nil {
		t.Fatalf("ListTherapists() error = %v", err)
	}
	// Two days of 09:00-17:00 hourly slots.
	if got := len(all[0].Availability); got != 16 {
		t.Errorf("seeded slots = %d, want 16", got)
	}

	// Two days later: slots that ended more than a day ago are dropped and
	// two fresh days are appended.
	svc.SetClock(func() time.Time { return fixedNow.Add(48 * time.Hour) })
	updated, err := svc.RefreshAvailability(ctx)
	if err != nil {
		t.Fatalf("RefreshAvailability() error = %v", err)
	}
	if updated != len(DefaultSeed()) {
		t.Errorf("RefreshAvailability() = %d, want %d", updated, len(DefaultSeed()))
	}
	refreshed, _ := store.GetTherapist(ctx, all[0].ID)
	first := refreshed.Availability[0].StartTime
	if !first.Equal(time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC)) {
		t.Errorf("first slot after refresh = %v, want 2024-01-01 11:00", first)
	}
	// Six slots of 2024-01-01 survive the cutoff, plus 2024-01-02 and -03.
	if got := len(refreshed.Availability); got != 22 {
		t.Errorf("slots after refresh = %d, want 22", got)
	}
}

func TestLoadSeedFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	data, err := MarshalSeed(DefaultSeed()[:2])
	if err != nil {
		t.Fatalf("MarshalSeed() error = %v", err)
	}
	path := filepath.Join(dir, "therapists.yaml")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	seeds, err := LoadSeedFile(path)
	if err != nil {
		t.Fatalf("LoadSeedFile() error = %v", err)
	}
	if len(seeds) != 2 || seeds[0].Name != "Dr. Sarah Johnson" {
		t.Errorf("seeds = %+v", seeds)
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("therapists:\n  - bio: nameless\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if _, err := LoadSeedFile(bad); err == nil {
		t.Error("LoadSeedFile() should reject a therapist without a name")
	}
	if _, err := LoadSeedFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("LoadSeedFile() should fail for a missing file")
	}
}
