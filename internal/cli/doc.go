// Copyright (c) 2025 Egghead.AI
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli parses command-line arguments and dispatches the egghead
// commands: the default TUI, a line-oriented chat REPL, one-shot questions,
// the local mock backend, and conversation listing and search.
package cli
