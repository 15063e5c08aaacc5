// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tomtom215/calmverse/internal/books"
)

type booksOptions struct {
	dbPath    string
	indexPath string
}

func newBooksCmd(opts *rootOptions) *cobra.Command {
	bo := &booksOptions{}

	cmd := &cobra.Command{
		Use:   "books",
		Short: "Query the book catalog",
	}
	cmd.PersistentFlags().StringVar(&bo.dbPath, "db", "", "SQLite database (default: books.db_path from config)")
	cmd.PersistentFlags().StringVar(&bo.indexPath, "index", "", "Similarity index (default: books.similarity_path from config)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List every book",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				svc, closeFn, err := bo.open(cmd, opts)
				if err != nil {
					return err
				}
				defer closeFn()

				list, err := svc.List(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), list)
			},
		},
		newBooksRecommendCmd(opts, bo),
	)
	return cmd
}

func newBooksRecommendCmd(opts *rootOptions, bo *booksOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "recommend <title>",
		Short: "Recommend books similar to a title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := bo.open(cmd, opts)
			if err != nil {
				return err
			}
			defer closeFn()

			recs, err := svc.Recommend(cmd.Context(), strings.Join(args, " "), limit)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), recs)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "Maximum results (default: books.default_limit)")
	return cmd
}

// open builds a book service from flags, falling back to configuration.
func (bo *booksOptions) open(cmd *cobra.Command, opts *rootOptions) (*books.Service, func(), error) {
	cfg := opts.cfg
	dbPath := bo.dbPath
	if dbPath == "" {
		dbPath = cfg.Books.DBPath
	}
	indexPath := bo.indexPath
	if indexPath == "" {
		indexPath = cfg.Books.SimilarityPath
	}

	store, err := books.OpenStore(cmd.Context(), dbPath, cfg.Books.SeedSampleData)
	if err != nil {
		return nil, nil, fmt.Errorf("open book store: %w", err)
	}
	index, err := books.LoadIndex(cmd.Context(), store, indexPath)
	if err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("load similarity index: %w", err)
	}
	svc := books.NewService(store, index, cfg.Books.DefaultLimit, cfg.Books.MaxLimit)
	return svc, func() { _ = store.Close() }, nil
}
