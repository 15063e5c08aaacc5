// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

// Package cli implements the calmctl maintenance commands.
//
// Commands read the same configuration as the server (config.yaml and
// environment variables); flags override individual paths.
package cli

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/calmverse/internal/config"
	"github.com/tomtom215/calmverse/internal/logging"
)

type rootOptions struct {
	logLevel string
	cfg      *config.Config
}

// NewRootCmd builds the calmctl command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "calmctl",
		Short:        "Seed and inspect CalmVerse data",
		Long:         "calmctl manages the therapist directory and queries the book and song recommenders offline.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logging.Init(logging.Config{Level: opts.logLevel, Format: "console", Timestamp: true})
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			opts.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn or error")

	root.AddCommand(
		newSeedCmd(opts),
		newBooksCmd(opts),
		newSongsCmd(opts),
		newBackupCmd(opts),
	)
	return root
}

// printJSON writes v as indented JSON to the command's output.
func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
