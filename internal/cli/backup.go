// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/calmverse/internal/database"
)

// newBackupCmd snapshots and restores the document store. The server holds
// an exclusive lock on the Badger directory, so both run while it is stopped.
func newBackupCmd(opts *rootOptions) *cobra.Command {
	var storePath string

	openStore := func() (*database.DB, error) {
		path := storePath
		if path == "" {
			path = opts.cfg.Storage.Path
		}
		db, err := database.Open(database.Config{Path: path})
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		return db, nil
	}

	cmd := &cobra.Command{
		Use:   "backup [file]",
		Short: "Write a compressed snapshot of therapy, journal and chat data",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := fmt.Sprintf("calmverse-%s.bak.gz", time.Now().UTC().Format("20060102-150405"))
			if len(args) == 1 {
				out = args[0]
			}
			out = filepath.Clean(out)

			db, err := openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			res, err := db.Backup(out)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.PersistentFlags().StringVar(&storePath, "store", "", "Badger directory (default: storage.path from config)")

	cmd.AddCommand(&cobra.Command{
		Use:   "restore <file>",
		Short: "Load a snapshot written by backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Restore(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %s\n", args[0])
			return nil
		},
	})
	return cmd
}
