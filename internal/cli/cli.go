// Copyright (c) 2025 Egghead.AI
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - argument parsing and usage for egghead-tui.
package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdChat
	CmdAsk
	CmdServe
	CmdSessions
	CmdSearch
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet bool
	JSON  bool

	// Command-specific
	Query  string
	Addr   string
	Legacy bool

	// Raw args remaining after flag parsing
	Raw []string
}

const usageText = `egghead - UC Davis assistant in your terminal

Egghead.AI answers campus questions and points at curated UC Davis
resources. Conversations are stored locally and grouped by recency.

Usage:
  egghead                    Start TUI (default)
  egghead chat               Interactive chat REPL
  egghead ask "question"     Ask a single question
  egghead serve              Run the local mock backend
  egghead sessions           List saved conversations
  egghead search <query>     Full-text search saved conversations
  egghead version            Show version
  egghead help               Show this help

Flags:
  --quiet                    Suppress non-essential output
  --json                     Machine-readable output where supported
  --addr <host:port>         serve: listen address (default 127.0.0.1:8000)
  --legacy                   serve: answer under the legacy "response" key

Environment:
  EGGHEAD_BACKEND_URL        Backend base URL
  EGGHEAD_DATA_DIR           Conversation data directory

Configuration: ~/.egghead/config.toml
`

// Parse reads os.Args and returns the command to run with its arguments.
func Parse() (Command, Args) {
	return parseArgs(os.Args[1:])
}

func parseArgs(argv []string) (Command, Args) {
	var args Args
	args.Addr = "127.0.0.1:8000"

	remaining := make([]string, 0, len(argv))
	for i := 0; i < len(argv); i++ {
		switch argv[i] {
		case "--quiet", "-q":
			args.Quiet = true
		case "--json":
			args.JSON = true
		case "--legacy":
			args.Legacy = true
		case "--addr":
			if i+1 < len(argv) {
				i++
				args.Addr = argv[i]
			}
		case "--help", "-h":
			return CmdHelp, args
		case "--version", "-v":
			return CmdVersion, args
		default:
			remaining = append(remaining, argv[i])
		}
	}

	if len(remaining) == 0 {
		return CmdTUI, args
	}

	cmd := strings.ToLower(remaining[0])
	args.Raw = remaining[1:]

	switch cmd {
	case "tui":
		return CmdTUI, args
	case "chat":
		return CmdChat, args
	case "ask":
		args.Query = strings.Join(args.Raw, " ")
		return CmdAsk, args
	case "serve", "server":
		return CmdServe, args
	case "sessions", "session", "list":
		return CmdSessions, args
	case "search":
		args.Query = strings.Join(args.Raw, " ")
		return CmdSearch, args
	case "version":
		return CmdVersion, args
	case "help":
		return CmdHelp, args
	default:
		// Unknown words are treated as a question, matching the chat-first
		// posture of the app.
		args.Query = strings.Join(remaining, " ")
		return CmdAsk, args
	}
}

// PrintUsage writes the usage text to stdout.
func PrintUsage() {
	fmt.Print(usageText)
}

// PrintVersion writes version information to stdout.
func PrintVersion() {
	fmt.Printf("egghead %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
}
