// Copyright (c) 2025 Egghead.AI
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import "testing"

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name string
		argv []string
		cmd  Command
	}{
		{"no args defaults to tui", nil, CmdTUI},
		{"explicit tui", []string{"tui"}, CmdTUI},
		{"chat", []string{"chat"}, CmdChat},
		{"ask", []string{"ask", "where", "is", "the", "mu"}, CmdAsk},
		{"serve", []string{"serve"}, CmdServe},
		{"server alias", []string{"server"}, CmdServe},
		{"sessions", []string{"sessions"}, CmdSessions},
		{"list alias", []string{"list"}, CmdSessions},
		{"search", []string{"search", "housing"}, CmdSearch},
		{"version", []string{"version"}, CmdVersion},
		{"version flag", []string{"--version"}, CmdVersion},
		{"help", []string{"help"}, CmdHelp},
		{"help flag", []string{"-h"}, CmdHelp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, _ := parseArgs(tt.argv)
			if cmd != tt.cmd {
				t.Errorf("parseArgs(%v) = %v, want %v", tt.argv, cmd, tt.cmd)
			}
		})
	}
}

func TestParseArgsJoinsQuery(t *testing.T) {
	cmd, args := parseArgs([]string{"ask", "where", "is", "the", "silo"})
	if cmd != CmdAsk {
		t.Fatalf("cmd = %v", cmd)
	}
	if args.Query != "where is the silo" {
		t.Errorf("Query = %q", args.Query)
	}
}

func TestParseArgsUnknownWordBecomesQuestion(t *testing.T) {
	cmd, args := parseArgs([]string{"when", "does", "fall", "quarter", "start"})
	if cmd != CmdAsk {
		t.Fatalf("cmd = %v, want CmdAsk", cmd)
	}
	if args.Query != "when does fall quarter start" {
		t.Errorf("Query = %q", args.Query)
	}
}

func TestParseArgsServeFlags(t *testing.T) {
	cmd, args := parseArgs([]string{"--addr", "0.0.0.0:9000", "--legacy", "serve"})
	if cmd != CmdServe {
		t.Fatalf("cmd = %v", cmd)
	}
	if args.Addr != "0.0.0.0:9000" {
		t.Errorf("Addr = %q", args.Addr)
	}
	if !args.Legacy {
		t.Error("Legacy flag not set")
	}
}

func TestParseArgsDefaultAddr(t *testing.T) {
	_, args := parseArgs([]string{"serve"})
	if args.Addr != "127.0.0.1:8000" {
		t.Errorf("default Addr = %q", args.Addr)
	}
}

func TestParseArgsGlobalFlags(t *testing.T) {
	_, args := parseArgs([]string{"--quiet", "--json", "sessions"})
	if !args.Quiet || !args.JSON {
		t.Errorf("flags not parsed: %+v", args)
	}
}
