// egghead TUI - a terminal client for the Egghead.AI campus assistant.
//
// Copyright (c) 2025 Egghead.AI
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/egghead-ai/egghead-tui/internal/cli"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	// A local .env can supply EGGHEAD_* overrides during development.
	_ = godotenv.Load()

	os.Exit(cli.Run())
}
