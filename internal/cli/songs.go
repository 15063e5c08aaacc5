// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tomtom215/calmverse/internal/music"
)

func newSongsCmd(opts *rootOptions) *cobra.Command {
	var datasetPath string

	load := func() (*music.Service, error) {
		cfg := opts.cfg
		path := datasetPath
		if path == "" {
			path = cfg.Music.DatasetPath
		}
		ds, err := music.LoadDataset(path)
		if err != nil {
			return nil, fmt.Errorf("load song dataset: %w", err)
		}
		// Album art lookups are a server concern.
		return music.NewService(ds, music.NoCatalog{}, cfg.Music.RecommendCount, cfg.Music.PlaceholderImage), nil
	}

	cmd := &cobra.Command{
		Use:   "songs",
		Short: "Query the song dataset",
	}
	cmd.PersistentFlags().StringVar(&datasetPath, "dataset", "", "Song dataset (default: music.dataset_path from config)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List every song name",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				svc, err := load()
				if err != nil {
					return err
				}
				names, err := svc.Songs()
				if err != nil {
					return err
				}
				for _, n := range names {
					fmt.Fprintln(cmd.OutOrStdout(), n)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "recommend <song>",
			Short: "Recommend songs similar to a song name",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				svc, err := load()
				if err != nil {
					return err
				}
				rec, err := svc.Recommend(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), rec)
			},
		},
	)
	return cmd
}
