// Copyright (c) 2025 Egghead.AI
// SPDX-License-Identifier: AGPL-3.0-or-later

// run.go - command handlers wiring config, store, gateway, and session.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/egghead-ai/egghead-tui/internal/archive"
	"github.com/egghead-ai/egghead-tui/internal/config"
	"github.com/egghead-ai/egghead-tui/internal/gateway"
	"github.com/egghead-ai/egghead-tui/internal/model"
	"github.com/egghead-ai/egghead-tui/internal/render"
	"github.com/egghead-ai/egghead-tui/internal/server"
	"github.com/egghead-ai/egghead-tui/internal/session"
	"github.com/egghead-ai/egghead-tui/internal/store"
	"github.com/egghead-ai/egghead-tui/internal/ui/chat"
)

// Run parses arguments and executes the selected command, returning the
// process exit code.
func Run() int {
	cmd, args := Parse()

	var err error
	switch cmd {
	case CmdHelp:
		PrintUsage()
	case CmdVersion:
		PrintVersion()
	case CmdServe:
		err = runServe(args)
	case CmdTUI:
		err = runTUI(args)
	case CmdChat:
		err = runChat(args)
	case CmdAsk:
		err = runAsk(args)
	case CmdSessions:
		err = runSessions(args)
	case CmdSearch:
		err = runSearch(args)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "egghead: %v\n", err)
		return 1
	}
	return 0
}

// =============================================================================
// ENVIRONMENT
// =============================================================================

// env bundles the pieces every chat-facing command needs.
type env struct {
	cfg      *config.Config
	store    *store.Store
	session  *session.Session
	renderer *render.Renderer
}

func newEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	dataDir, err := cfg.DataDir()
	if err != nil {
		return nil, err
	}

	st := store.New(dataDir)
	st.Load()

	client := gateway.NewClient(cfg.Backend.BaseURL).WithTimeout(cfg.Timeout())
	sess := session.New(st, client, preferencesFromConfig(cfg))

	return &env{
		cfg:      cfg,
		store:    st,
		session:  sess,
		renderer: render.New(cfg.UI.RenderMarkdown, cfg.UI.ConvertEmoticons),
	}, nil
}

func preferencesFromConfig(cfg *config.Config) gateway.Preferences {
	return gateway.Preferences{
		Tone:           cfg.Preferences.Tone,
		Depth:          cfg.Preferences.Depth,
		UseUCDSources:  cfg.Preferences.UseUCDSources,
		ShowReferences: cfg.Preferences.ShowReferences,
		Model:          cfg.Preferences.Model,
	}
}

// =============================================================================
// TUI
// =============================================================================

func runTUI(args Args) error {
	e, err := newEnv()
	if err != nil {
		return err
	}

	m := chat.New(chat.Options{
		Store:          e.store,
		Session:        e.session,
		Renderer:       e.renderer,
		SidebarVisible: e.cfg.UI.SidebarVisible,
		SendTimeout:    e.cfg.Timeout(),
	})

	p := tea.NewProgram(m, tea.WithAltScreen())

	// Mirror external edits of the state file into the running UI.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = e.store.Watch(ctx, func() {
			p.Send(chat.StoreChangedMsg{})
		})
	}()

	_, err = p.Run()
	return err
}

// =============================================================================
// ONE-SHOT ASK
// =============================================================================

func runAsk(args Args) error {
	if args.Query == "" {
		return fmt.Errorf("usage: egghead ask \"question\"")
	}

	e, err := newEnv()
	if err != nil {
		return err
	}
	// A one-shot question should not extend an older conversation.
	e.store.SetActive("")

	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.Timeout())
	defer cancel()

	res, err := e.session.Send(ctx, args.Query)
	if err != nil {
		return err
	}
	if res == nil {
		return nil
	}
	fmt.Print(e.renderer.Message(res.Assistant))
	fmt.Println()
	return nil
}

// =============================================================================
// SERVE
// =============================================================================

func runServe(args Args) error {
	srv := server.New(server.Config{
		Addr:   args.Addr,
		Legacy: args.Legacy,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return srv.ListenAndServe(ctx)
}

// =============================================================================
// SESSIONS
// =============================================================================

func runSessions(args Args) error {
	e, err := newEnv()
	if err != nil {
		return err
	}

	if args.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(e.store.List())
	}

	sections := model.Group(e.store.Conversations(), time.Now()).Sections()
	if len(sections) == 0 {
		fmt.Println("No saved conversations.")
		return nil
	}
	for i, section := range sections {
		if i > 0 {
			fmt.Println()
		}
		fmt.Println(section.Label)
		for _, conv := range section.Conversations {
			fmt.Printf("  %s  %s (%d messages)\n",
				conv.CreatedAt().Format("2006-01-02 15:04"), conv.Title, conv.MessageCount())
		}
	}
	return nil
}

// =============================================================================
// SEARCH
// =============================================================================

func runSearch(args Args) error {
	if args.Query == "" {
		return fmt.Errorf("usage: egghead search <query>")
	}

	e, err := newEnv()
	if err != nil {
		return err
	}

	dataDir, err := e.cfg.DataDir()
	if err != nil {
		return err
	}

	idx, err := archive.Open(filepath.Join(dataDir, archive.DefaultFileName))
	if err != nil {
		return err
	}
	defer idx.Close()

	// The JSON state file is the source of truth; rebuild before querying.
	if err := idx.Rebuild(e.store.Conversations()); err != nil {
		return err
	}

	results, err := idx.Search(args.Query)
	if err != nil {
		return err
	}
	if args.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	if len(results) == 0 {
		fmt.Println("No matches.")
		return nil
	}
	for _, r := range results {
		created := time.UnixMilli(r.CreatedAt).Format("2006-01-02")
		fmt.Printf("%s  %s\n    [%s] %s\n", created, r.Title, r.Role, r.Snippet)
	}
	return nil
}
