// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

// Command calmctl seeds and inspects CalmVerse data without running the server.
package main

import (
	"os"

	"github.com/tomtom215/calmverse/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
