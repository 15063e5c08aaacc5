// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tomtom215/calmverse/internal/database"
	"github.com/tomtom215/calmverse/internal/therapy"
)

func newSeedCmd(opts *rootOptions) *cobra.Command {
	var (
		storePath string
		seedFile  string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the therapist directory",
		Long:  "Inserts therapists with fresh availability when the directory is empty. An already seeded directory is left unchanged.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := opts.cfg
			if storePath == "" {
				storePath = cfg.Storage.Path
			}
			if seedFile == "" {
				seedFile = cfg.Therapy.SeedFile
			}

			seeds := therapy.DefaultSeed()
			if seedFile != "" {
				loaded, err := therapy.LoadSeedFile(seedFile)
				if err != nil {
					return err
				}
				seeds = loaded
			}

			db, err := database.Open(database.Config{Path: storePath})
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer db.Close()

			svc := therapy.NewService(therapy.NewBadgerStore(db), therapy.ServiceConfig{
				AvailabilityDays: cfg.Therapy.AvailabilityDays,
				Hours: therapy.WorkingHours{
					StartHour:    cfg.Therapy.WorkdayStart,
					EndHour:      cfg.Therapy.WorkdayEnd,
					SlotDuration: cfg.Therapy.SlotDuration,
					Location:     cfg.Therapy.Location(),
				},
			})
			n, err := svc.Seed(cmd.Context(), seeds)
			if err != nil {
				return err
			}
			if n == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Therapist directory already seeded")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d therapists\n", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&storePath, "store", "", "Badger directory (default: storage.path from config)")
	cmd.Flags().StringVar(&seedFile, "file", "", "YAML seed file (default: built-in directory)")

	cmd.AddCommand(newSeedExportCmd())
	return cmd
}

func newSeedExportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the built-in therapist directory as a YAML seed file",
		Args:  cobra.NoArgs,
		// The built-in directory needs no configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := therapy.MarshalSeed(therapy.DefaultSeed())
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return os.WriteFile(out, data, 0o644) //nolint:gosec // seed files are not secret
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "-", "Destination file, - for stdout")
	return cmd
}
