// Copyright (c) 2025 Egghead.AI
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - interactive line-oriented chat REPL.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/peterh/liner"

	"github.com/egghead-ai/egghead-tui/internal/config"
	"github.com/egghead-ai/egghead-tui/internal/model"
)

// =============================================================================
// LINE EDITOR
// =============================================================================

// ChatCLI provides input history and line editing for interactive chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI with input history support.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}

	c := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	c.LoadHistory()
	return c
}

// LoadHistory loads prompt history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt. Non-empty input
// is appended to history.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists prompt history with owner-only permissions.
func (c *ChatCLI) SaveHistory() {
	if err := config.EnsureConfigDir(); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and closes the liner.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// REPL
// =============================================================================

func runChat(args Args) error {
	e, err := newEnv()
	if err != nil {
		return err
	}

	repl := NewChatCLI()
	defer repl.Close()

	if !args.Quiet {
		printWelcome(e)
	}

	for {
		input, err := repl.ReadInput("you> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, os.ErrClosed) {
				fmt.Println("bye!")
				return nil
			}
			// EOF on ctrl+d
			fmt.Println()
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if strings.HasPrefix(input, "/") {
			if done := handleSlashCommand(e, input); done {
				return nil
			}
			continue
		}

		if err := processMessage(e, input); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
}

// processMessage sends one prompt and prints the stored assistant reply.
func processMessage(e *env, input string) error {
	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.Timeout())
	defer cancel()

	res, err := e.session.Send(ctx, input)
	if err != nil {
		return err
	}
	if res == nil {
		return nil
	}

	fmt.Println()
	fmt.Print(e.renderer.Message(res.Assistant))
	fmt.Println()
	return nil
}

// handleSlashCommand executes a /command. Returns true when the REPL
// should exit.
func handleSlashCommand(e *env, input string) bool {
	fields := strings.Fields(input)
	switch fields[0] {
	case "/quit", "/exit", "/q":
		fmt.Println("bye!")
		return true

	case "/new":
		e.store.SetActive("")
		fmt.Println("Started a new conversation.")

	case "/list":
		sections := model.Group(e.store.Conversations(), time.Now()).Sections()
		if len(sections) == 0 {
			fmt.Println("No saved conversations.")
			break
		}
		for _, section := range sections {
			fmt.Println(section.Label)
			for _, conv := range section.Conversations {
				marker := "  "
				if conv.ID == e.store.Active() {
					marker = "* "
				}
				fmt.Printf("%s%s\n", marker, conv.Title)
			}
		}

	case "/help":
		fmt.Println("Commands: /new  /list  /help  /quit")

	default:
		fmt.Printf("Unknown command %s (try /help)\n", fields[0])
	}
	return false
}

func printWelcome(e *env) {
	fmt.Println("Egghead.AI — UC Davis assistant. Type /help for commands, /quit to exit.")
	if conv, ok := e.store.ActiveConversation(); ok {
		fmt.Printf("Continuing %q (%d messages).\n", conv.Title, conv.MessageCount())
	}
	fmt.Println()
}
