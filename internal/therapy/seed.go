// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

package therapy

import (
	"context"
	"fmt"
	"os"

	"github.com/oklog/ulid/v2"
	"gopkg.in/yaml.v3"
)

// SeedTherapist is a directory entry without id or slots, as found in the
// seed file.
type SeedTherapist struct {
	Name            string   `yaml:"name"`
	Specializations []string `yaml:"specializations"`
	ExperienceYears int      `yaml:"experience_years"`
	Education       string   `yaml:"education"`
	Bio             string   `yaml:"bio"`
	PhotoURL        string   `yaml:"photo_url"`
	HourlyRate      float64  `yaml:"hourly_rate"`
	Languages       []string `yaml:"languages"`
}

type seedFile struct {
	Therapists []SeedTherapist `yaml:"therapists"`
}

// LoadSeedFile reads therapists from a YAML document of the form
//
//	therapists:
//	  - name: Dr. Sarah Johnson
//	    specializations: [Anxiety, Depression]
//	    ...
func LoadSeedFile(path string) ([]SeedTherapist, error) {
	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied path
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	for i, t := range f.Therapists {
		if t.Name == "" {
			return nil, fmt.Errorf("seed file %s: therapist %d has no name", path, i)
		}
	}
	return f.Therapists, nil
}

// MarshalSeed renders therapists in the seed file format.
func MarshalSeed(ts []SeedTherapist) ([]byte, error) {
	return yaml.Marshal(seedFile{Therapists: ts})
}

// Seed inserts the given therapists with fresh availability when the
// directory is empty. It returns how many were inserted.
func (s *Service) Seed(ctx context.Context, seeds []SeedTherapist) (int, error) {
	n, err := s.store.CountTherapists(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Debug().Int("existing", n).Msg("Therapist directory already seeded")
		return 0, nil
	}

	now := s.now()
	for i, seed := range seeds {
		t := &Therapist{
			ID:              ulid.Make().String(),
			Name:            seed.Name,
			Specializations: seed.Specializations,
			ExperienceYears: seed.ExperienceYears,
			Education:       seed.Education,
			Bio:             seed.Bio,
			PhotoURL:        seed.PhotoURL,
			HourlyRate:      seed.HourlyRate,
			Languages:       seed.Languages,
			Availability:    GenerateSlots(now, s.cfg.AvailabilityDays, s.cfg.Hours),
		}
		if err := s.store.PutTherapist(ctx, t); err != nil {
			return i, fmt.Errorf("seed %s: %w", seed.Name, err)
		}
	}
	s.logger.Info().Int("therapists", len(seeds)).Msg("Therapist directory seeded")
	return len(seeds), nil
}

// DefaultSeed is the built-in directory used when no seed file is configured.
func DefaultSeed() []SeedTherapist {
	return []SeedTherapist{
		{
			Name:            "Dr. Sarah Johnson",
			Specializations: []string{"Anxiety", "Depression", "Stress Management"},
			ExperienceYears: 12,
			Education:       "Ph.D in Clinical Psychology, Stanford University",
			Bio:             "Dr. Johnson specializes in cognitive behavioral therapy and mindfulness techniques to help clients overcome anxiety and depression.",
			PhotoURL:        "https://img.freepik.com/free-photo/female-doctor-hospital-with-stethoscope_23-2148827774.jpg",
			HourlyRate:      120,
			Languages:       []string{"English", "Spanish"},
		},
		{
			Name:            "Dr. Michael Chen",
			Specializations: []string{"Trauma", "PTSD", "Family Therapy"},
			ExperienceYears: 15,
			Education:       "Psy.D in Clinical Psychology, Columbia University",
			Bio:             "Dr. Chen has extensive experience helping clients process trauma and rebuild their lives using evidence-based approaches.",
			PhotoURL:        "https://example.com/photos/michael.jpg",
			HourlyRate:      135,
			Languages:       []string{"English", "Mandarin"},
		},
		{
			Name:            "Maya Rodriguez, LMFT",
			Specializations: []string{"Relationships", "Couples Therapy", "Self-Esteem"},
			ExperienceYears: 8,
			Education:       "M.S. in Marriage and Family Therapy, NYU",
			Bio:             "Maya helps couples and individuals navigate relationship challenges and build healthier connections.",
			PhotoURL:        "https://img.freepik.com/free-psd/cute-3d-cartoon-female-doctor-wearing-glasses-white-coat-with-stethoscope-healthcare-professional-illustration_632498-32034.jpg",
			HourlyRate:      100,
			Languages:       []string{"English", "Spanish"},
		},
		{
			Name:            "Dr. James Wilson",
			Specializations: []string{"Addiction Recovery", "Substance Abuse", "Mental Health"},
			ExperienceYears: 18,
			Education:       "Ph.D in Psychology, Yale University",
			Bio:             "Dr. Wilson works with clients struggling with addiction and co-occurring mental health issues to achieve lasting recovery.",
			PhotoURL:        "https://example.com/photos/james.jpg",
			HourlyRate:      140,
			Languages:       []string{"English"},
		},
		{
			Name:            "Aisha Patel, LCSW",
			Specializations: []string{"Cultural Identity", "Grief & Loss", "Life Transitions"},
			ExperienceYears: 7,
			Education:       "MSW, University of Chicago",
			Bio:             "Aisha provides culturally sensitive therapy to help clients navigate life transitions and find meaning through difficult times.",
			PhotoURL:        "https://example.com/photos/aisha.jpg",
			HourlyRate:      95,
			Languages:       []string{"English", "Hindi", "Gujarati"},
		},
	}
}
