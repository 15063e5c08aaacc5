// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

package therapy

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/calmverse/internal/database"
)

// Store persists therapists and appointments. The two mutating booking
// operations are atomic: either both the slot and the appointment change,
// or neither does.
type Store interface {
	PutTherapist(ctx context.Context, t *Therapist) error
	GetTherapist(ctx context.Context, id string) (*Therapist, error)
	ListTherapists(ctx context.Context) ([]Therapist, error)
	CountTherapists(ctx context.Context) (int, error)
	// UpdateTherapist re-reads the therapist and applies fn in one transaction.
	UpdateTherapist(ctx context.Context, id string, fn func(*Therapist) error) error

	GetAppointment(ctx context.Context, appointmentID string) (*Appointment, error)
	ListAppointmentsByUser(ctx context.Context, userID string) ([]Appointment, error)

	// Reserve flips the (start, end) slot of the therapist to booked and
	// persists the appointment produced by build.
	Reserve(ctx context.Context, therapistID string, start, end time.Time, build func(*Therapist) *Appointment) (*Appointment, error)

	// Transition applies fn to the stored appointment. When fn reports
	// release=true the appointment's slot is freed in the same transaction.
	Transition(ctx context.Context, appointmentID string, fn func(*Appointment) (release bool, err error)) (*Appointment, error)
}

const (
	therapistPrefix       = "therapist:"
	appointmentPrefix     = "appointment:"
	appointmentUserPrefix = "appointment_user:"
)

func userIndexKey(userID, appointmentID string) string {
	return appointmentUserPrefix + userID + ":" + appointmentID
}

// BadgerStore is the Store backed by the shared document database.
type BadgerStore struct {
	db *database.DB
}

// NewBadgerStore creates a BadgerDB-backed store.
func NewBadgerStore(db *database.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

func getTherapist(txn *badger.Txn, id string) (*Therapist, error) {
	var t Therapist
	if err := database.GetJSON(txn, therapistPrefix+id, &t); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrTherapistNotFound
		}
		return nil, err
	}
	return &t, nil
}

func getAppointment(txn *badger.Txn, appointmentID string) (*Appointment, error) {
	var a Appointment
	if err := database.GetJSON(txn, appointmentPrefix+appointmentID, &a); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}
	return &a, nil
}

// PutTherapist inserts or replaces a therapist.
func (s *BadgerStore) PutTherapist(ctx context.Context, t *Therapist) error {
	return s.db.Update(ctx, func(txn *badger.Txn) error {
		return database.SetJSON(txn, therapistPrefix+t.ID, t, 0)
	})
}

// GetTherapist loads one therapist with its slots.
func (s *BadgerStore) GetTherapist(_ context.Context, id string) (*Therapist, error) {
	var t *Therapist
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		t, err = getTherapist(txn, id)
		return err
	})
	return t, err
}

// ListTherapists returns every therapist in id order. ULIDs sort by
// creation time, so this is also seed order.
func (s *BadgerStore) ListTherapists(_ context.Context) ([]Therapist, error) {
	var out []Therapist
	err := s.db.View(func(txn *badger.Txn) error {
		return database.ScanJSON(txn, therapistPrefix, func(_ string, t *Therapist) error {
			out = append(out, *t)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list therapists: %w", err)
	}
	return out, nil
}

// CountTherapists counts stored therapists.
func (s *BadgerStore) CountTherapists(_ context.Context) (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		n = database.CountPrefix(txn, therapistPrefix)
		return nil
	})
	return n, err
}

// UpdateTherapist applies fn to a fresh copy of the therapist and saves it.
func (s *BadgerStore) UpdateTherapist(ctx context.Context, id string, fn func(*Therapist) error) error {
	return s.db.Update(ctx, func(txn *badger.Txn) error {
		t, err := getTherapist(txn, id)
		if err != nil {
			return err
		}
		if err := fn(t); err != nil {
			return err
		}
		return database.SetJSON(txn, therapistPrefix+t.ID, t, 0)
	})
}

// GetAppointment loads an appointment by its external id.
func (s *BadgerStore) GetAppointment(_ context.Context, appointmentID string) (*Appointment, error) {
	var a *Appointment
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		a, err = getAppointment(txn, appointmentID)
		return err
	})
	return a, err
}

// ListAppointmentsByUser returns the user's appointments ordered by start time.
func (s *BadgerStore) ListAppointmentsByUser(_ context.Context, userID string) ([]Appointment, error) {
	var out []Appointment
	err := s.db.View(func(txn *badger.Txn) error {
		for _, appointmentID := range database.ScanKeys(txn, appointmentUserPrefix+userID+":") {
			// The prefix scan also matches users whose id extends this one
			// with a colon, so the owner is checked again.
			a, err := getAppointment(txn, appointmentID)
			if errors.Is(err, ErrAppointmentNotFound) || (err == nil && a.UserID != userID) {
				continue
			}
			if err != nil {
				return err
			}
			out = append(out, *a)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list appointments for user: %w", err)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out, nil
}

// Reserve is the booking transaction: load therapist, flip the slot, write
// the appointment and its user index. A concurrent booking of the same slot
// makes Badger report a conflict; the retry then sees the slot as booked.
func (s *BadgerStore) Reserve(ctx context.Context, therapistID string, start, end time.Time, build func(*Therapist) *Appointment) (*Appointment, error) {
	var booked *Appointment
	err := s.db.Update(ctx, func(txn *badger.Txn) error {
		t, err := getTherapist(txn, therapistID)
		if err != nil {
			return err
		}
		if !TryReserve(t.Availability, start, end) {
			return ErrSlotUnavailable
		}

		a := build(t)
		if err := database.SetJSON(txn, therapistPrefix+t.ID, t, 0); err != nil {
			return err
		}
		if err := database.SetJSON(txn, appointmentPrefix+a.AppointmentID, a, 0); err != nil {
			return err
		}
		if err := database.SetIndex(txn, userIndexKey(a.UserID, a.AppointmentID)); err != nil {
			return err
		}
		booked = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return booked, nil
}

// Transition updates an appointment and optionally releases its slot.
func (s *BadgerStore) Transition(ctx context.Context, appointmentID string, fn func(*Appointment) (bool, error)) (*Appointment, error) {
	var updated *Appointment
	err := s.db.Update(ctx, func(txn *badger.Txn) error {
		a, err := getAppointment(txn, appointmentID)
		if err != nil {
			return err
		}
		release, err := fn(a)
		if err != nil {
			return err
		}

		if release {
			t, err := getTherapist(txn, a.TherapistID)
			switch {
			case errors.Is(err, ErrTherapistNotFound):
				// Therapist removed since booking; nothing to free.
			case err != nil:
				return err
			default:
				Release(t.Availability, a.StartTime, a.EndTime)
				if err := database.SetJSON(txn, therapistPrefix+t.ID, t, 0); err != nil {
					return err
				}
			}
		}

		if err := database.SetJSON(txn, appointmentPrefix+a.AppointmentID, a, 0); err != nil {
			return err
		}
		updated = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
