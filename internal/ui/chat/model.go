// Copyright (c) 2025 Egghead.AI
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/egghead-ai/egghead-tui/internal/model"
	"github.com/egghead-ai/egghead-tui/internal/render"
	"github.com/egghead-ai/egghead-tui/internal/session"
	"github.com/egghead-ai/egghead-tui/internal/store"
	"github.com/egghead-ai/egghead-tui/internal/ui/styles"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// sidebarWidth is the fixed width of the conversation sidebar.
	sidebarWidth = 32

	// inputPlaceholder invites the first question.
	inputPlaceholder = "Ask anything, Aggie..."
)

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat interface.
type Model struct {
	store    *store.Store
	session  *session.Session
	renderer *render.Renderer
	theme    *styles.Theme
	keys     KeyMap

	viewport viewport.Model
	input    textinput.Model
	spin     spinner.Model

	width  int
	height int
	ready  bool

	showSidebar bool
	sending     bool
	sendTimeout time.Duration
	status      string
}

// Options configures the chat model.
type Options struct {
	Store          *store.Store
	Session        *session.Session
	Renderer       *render.Renderer
	SidebarVisible bool
	SendTimeout    time.Duration
}

// New creates the chat model.
func New(opts Options) *Model {
	input := textinput.New()
	input.Placeholder = inputPlaceholder
	input.CharLimit = 4000
	input.Focus()

	theme := styles.NewTheme()

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = theme.Spinner

	if opts.SendTimeout <= 0 {
		opts.SendTimeout = 60 * time.Second
	}

	return &Model{
		store:       opts.Store,
		session:     opts.Session,
		renderer:    opts.Renderer,
		theme:       theme,
		keys:        DefaultKeyMap(),
		input:       input,
		spin:        spin,
		showSidebar: opts.SidebarVisible,
		sendTimeout: opts.SendTimeout,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case SendResultMsg:
		m.sending = false
		if msg.Err != nil {
			m.status = msg.Err.Error()
		} else if msg.Result != nil && msg.Result.Failed {
			m.status = "backend unreachable — reply saved as error"
		} else {
			m.status = ""
		}
		m.refreshViewport()
		m.viewport.GotoBottom()
		return m, nil

	case StoreChangedMsg:
		m.refreshViewport()
		return m, nil

	case spinner.TickMsg:
		if !m.sending {
			return m, nil
		}
		// Each tick also repaints so the optimistic user append shows
		// before the backend reply arrives.
		m.refreshViewport()
		m.viewport.GotoBottom()
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Submit):
		return m, m.submit()

	case key.Matches(msg, m.keys.NewChat):
		m.store.SetActive("")
		m.status = ""
		m.refreshViewport()
		return m, nil

	case key.Matches(msg, m.keys.DeleteChat):
		if id := m.store.Active(); id != "" {
			m.store.Delete(id)
			m.refreshViewport()
		}
		return m, nil

	case key.Matches(msg, m.keys.ToggleSidebar):
		m.showSidebar = !m.showSidebar
		m.resize(m.width, m.height)
		m.refreshViewport()
		return m, nil

	case key.Matches(msg, m.keys.PrevChat):
		m.selectAdjacent(-1)
		return m, nil

	case key.Matches(msg, m.keys.NextChat):
		m.selectAdjacent(1)
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit sends the prompt text to the backend asynchronously.
func (m *Model) submit() tea.Cmd {
	text := strings.TrimSpace(m.input.Value())
	if text == "" || m.sending {
		return nil
	}
	m.input.Reset()
	m.sending = true
	m.status = ""

	send := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), m.sendTimeout)
		defer cancel()
		res, err := m.session.Send(ctx, text)
		return SendResultMsg{Result: res, Err: err}
	}

	return tea.Batch(send, m.spin.Tick)
}

// selectAdjacent moves the active conversation up or down the sidebar order.
func (m *Model) selectAdjacent(delta int) {
	metas := m.store.List()
	if len(metas) == 0 {
		return
	}
	active := m.store.Active()
	idx := -1
	for i, meta := range metas {
		if meta.ID == active {
			idx = i
			break
		}
	}
	idx += delta
	if idx < 0 {
		idx = 0
	}
	if idx >= len(metas) {
		idx = len(metas) - 1
	}
	m.store.SetActive(metas[idx].ID)
	m.refreshViewport()
	m.viewport.GotoBottom()
}

// =============================================================================
// LAYOUT
// =============================================================================

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	chatWidth := width
	if m.showSidebar {
		chatWidth -= sidebarWidth
	}
	if chatWidth < 20 {
		chatWidth = 20
	}

	// header + input box (3 rows with border) + status line
	viewportHeight := height - 1 - 3 - 1
	if viewportHeight < 3 {
		viewportHeight = 3
	}

	if !m.ready {
		m.viewport = viewport.New(chatWidth, viewportHeight)
		m.ready = true
	} else {
		m.viewport.Width = chatWidth
		m.viewport.Height = viewportHeight
	}
	m.input.Width = chatWidth - 6

	m.viewport.SetContent(m.transcript())
	m.viewport.GotoBottom()
}

// refreshViewport re-renders the transcript for the active conversation.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.transcript())
}

// Groups returns the sidebar sections for the current store contents.
func (m *Model) Groups() []model.Section {
	return model.Group(m.store.Conversations(), time.Now()).Sections()
}
