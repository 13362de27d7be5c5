// Copyright (c) 2025 Egghead.AI
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/egghead-ai/egghead-tui/internal/model"
	"github.com/egghead-ai/egghead-tui/internal/render"
)

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model.
func (m *Model) View() string {
	if !m.ready {
		return "Starting Egghead.AI..."
	}

	header := m.renderHeader()
	body := m.viewport.View()
	if m.showSidebar {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), body)
	}
	input := m.theme.InputContainer.Width(m.viewport.Width - 2).Render(m.input.View())
	status := m.renderStatus()

	return lipgloss.JoinVertical(lipgloss.Left, header, body, input, status)
}

func (m *Model) renderHeader() string {
	brand := m.theme.HeaderBrand.Render("Egghead.AI")
	title := brand + " — UC Davis Assistant"
	return m.theme.Header.Width(m.width).Render(title)
}

// renderSidebar lists conversations bucketed by recency.
func (m *Model) renderSidebar() string {
	active := m.store.Active()
	var b strings.Builder

	sections := m.Groups()
	if len(sections) == 0 {
		b.WriteString(m.theme.SidebarItemMuted.Render("No conversations yet"))
	}
	for i, section := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.theme.SidebarGroup.Render(section.Label))
		b.WriteString("\n")
		for _, conv := range section.Conversations {
			title := sidebarTitle(conv.Title, sidebarWidth-4)
			if conv.ID == active {
				b.WriteString(m.theme.SidebarItemActive.Render("▸ " + title))
			} else {
				b.WriteString(m.theme.SidebarItem.Render("  " + title))
			}
			b.WriteString("\n")
		}
	}

	return m.theme.Sidebar.
		Width(sidebarWidth - 1).
		Height(m.viewport.Height).
		Render(b.String())
}

// sidebarTitle truncates a title to the sidebar's display width, accounting
// for wide runes.
func sidebarTitle(title string, width int) string {
	return runewidth.Truncate(title, width, "…")
}

// transcript renders the active conversation for the viewport.
func (m *Model) transcript() string {
	conv, ok := m.store.ActiveConversation()
	if !ok {
		return m.theme.StatusHint.Render("Start a new conversation — " + inputPlaceholder)
	}

	var b strings.Builder
	for i, msg := range conv.Messages {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.renderMessage(msg))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderMessage(msg model.Message) string {
	var b strings.Builder

	switch msg.Role {
	case model.RoleUser:
		b.WriteString(m.theme.UserLabel.Render(msg.Role.DisplayName()))
	default:
		b.WriteString(m.theme.AssistantLabel.Render(msg.Role.DisplayName()))
	}
	b.WriteString("\n")

	body := m.renderer.Reply(msg.Content)
	if msg.Role == model.RoleAssistant && strings.HasPrefix(msg.Content, "Error: ") {
		body = m.theme.ErrorText.Render(msg.Content)
	}
	b.WriteString(strings.TrimRight(body, "\n"))

	if footer := render.FormatReferences(msg.References); footer != "" {
		b.WriteString("\n")
		b.WriteString(m.theme.Reference.Render(footer))
	}
	return b.String()
}

func (m *Model) renderStatus() string {
	left := m.theme.StatusHint.Render(m.keys.HelpLine())
	if m.sending {
		left = m.spin.View() + " " + m.theme.StatusBar.Render("Egghead is thinking...")
	} else if m.status != "" {
		left = m.theme.ErrorText.Render(m.status)
	}
	return m.theme.StatusBar.Width(m.width).Render(left)
}
