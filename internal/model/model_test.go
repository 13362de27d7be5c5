// Copyright (c) 2025 Egghead.AI
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strconv"
	"strings"
	"testing"
	"time"
)

// =============================================================================
// TITLE TESTS
// =============================================================================

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"short message kept whole", "What are the library hours?", "What are the library hours?"},
		{"exactly 50 chars no ellipsis", strings.Repeat("a", 50), strings.Repeat("a", 50)},
		{"51 chars truncated with ellipsis", strings.Repeat("a", 51), strings.Repeat("a", 50) + "..."},
		{"unicode counted per rune", strings.Repeat("é", 60), strings.Repeat("é", 50) + "..."},
		{"empty message empty title", "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := DeriveTitle(tc.input); got != tc.want {
				t.Errorf("DeriveTitle(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestNewConversation(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 30, 0, 0, time.Local)
	conv := NewConversation("Where is the ARC?", now)

	if conv.ID != strconv.FormatInt(now.UnixMilli(), 10) {
		t.Errorf("ID = %q, want decimal milliseconds of creation time", conv.ID)
	}
	if conv.Timestamp != now.UnixMilli() {
		t.Errorf("Timestamp = %d, want %d", conv.Timestamp, now.UnixMilli())
	}
	if conv.Title != "Where is the ARC?" {
		t.Errorf("Title = %q", conv.Title)
	}
	if !conv.IsEmpty() {
		t.Error("new conversation should have no messages")
	}
}

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewAssistantMessageDefaultsReferences(t *testing.T) {
	msg := NewAssistantMessage("hello", nil)
	if msg.References == nil {
		t.Error("References should default to an empty slice, not nil")
	}
	if len(msg.References) != 0 {
		t.Errorf("References length = %d, want 0", len(msg.References))
	}
}

func TestNewErrorMessage(t *testing.T) {
	msg := NewErrorMessage("connection refused")
	if msg.Role != RoleAssistant {
		t.Errorf("Role = %q, want assistant", msg.Role)
	}
	if msg.Content != "Error: connection refused" {
		t.Errorf("Content = %q", msg.Content)
	}

	fallback := NewErrorMessage("")
	if fallback.Content != "Error: could not reach backend." {
		t.Errorf("fallback Content = %q", fallback.Content)
	}
}

func TestHistoryStripsReferences(t *testing.T) {
	conv := NewConversation("food options", time.Now())
	conv.Append(NewUserMessage("food options"))
	conv.Append(NewAssistantMessage("Try the ASUCD Pantry.", []Reference{
		{Title: "ASUCD Pantry", Type: "ucd_resource", ID: "asucd_pantry"},
	}))

	turns := conv.History()
	if len(turns) != 2 {
		t.Fatalf("history length = %d, want 2", len(turns))
	}
	if turns[0].Role != "user" || turns[0].Content != "food options" {
		t.Errorf("turn 0 = %+v", turns[0])
	}
	if turns[1].Role != "assistant" || turns[1].Content != "Try the ASUCD Pantry." {
		t.Errorf("turn 1 = %+v", turns[1])
	}
}

func TestRoleDisplayName(t *testing.T) {
	if RoleUser.DisplayName() != "You" {
		t.Errorf("user display = %q", RoleUser.DisplayName())
	}
	if RoleAssistant.DisplayName() != "Egghead" {
		t.Errorf("assistant display = %q", RoleAssistant.DisplayName())
	}
}

// =============================================================================
// GROUPING TESTS
// =============================================================================

func TestGroupPartition(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.Local)
	midnight := time.Date(2025, 6, 15, 0, 0, 0, 0, time.Local)

	at := func(t time.Time) *Conversation {
		return &Conversation{ID: t.Format(time.RFC3339Nano), Timestamp: t.UnixMilli()}
	}

	convs := []*Conversation{
		at(now),                            // today
		at(midnight),                       // boundary: today
		at(midnight.Add(-time.Millisecond)), // yesterday
		at(midnight.AddDate(0, 0, -1)),     // boundary: yesterday
		at(midnight.AddDate(0, 0, -3)),     // last 7 days
		at(midnight.AddDate(0, 0, -7)),     // boundary: last 7 days
		at(midnight.AddDate(0, 0, -8)),     // older
		at(midnight.AddDate(0, -2, 0)),     // older
	}

	g := Group(convs, now)

	if len(g.Today) != 2 {
		t.Errorf("Today has %d, want 2", len(g.Today))
	}
	if len(g.Yesterday) != 2 {
		t.Errorf("Yesterday has %d, want 2", len(g.Yesterday))
	}
	if len(g.LastWeek) != 2 {
		t.Errorf("LastWeek has %d, want 2", len(g.LastWeek))
	}
	if len(g.Older) != 2 {
		t.Errorf("Older has %d, want 2", len(g.Older))
	}

	// Partition property: disjoint and exhaustive.
	if g.Count() != len(convs) {
		t.Errorf("buckets hold %d conversations, want %d", g.Count(), len(convs))
	}
	seen := make(map[string]bool)
	for _, bucket := range [][]*Conversation{g.Today, g.Yesterday, g.LastWeek, g.Older} {
		for _, c := range bucket {
			if seen[c.ID] {
				t.Errorf("conversation %s appears in more than one bucket", c.ID)
			}
			seen[c.ID] = true
		}
	}
}

func TestGroupPreservesOrdering(t *testing.T) {
	now := time.Now()
	newer := &Conversation{ID: "b", Timestamp: now.UnixMilli()}
	older := &Conversation{ID: "a", Timestamp: now.Add(-time.Minute).UnixMilli()}

	g := Group([]*Conversation{newer, older}, now)
	if len(g.Today) != 2 || g.Today[0].ID != "b" || g.Today[1].ID != "a" {
		t.Errorf("Today ordering not preserved: %+v", g.Today)
	}
}

func TestGroupDoesNotMutateInput(t *testing.T) {
	now := time.Now()
	convs := []*Conversation{
		{ID: "1", Timestamp: now.UnixMilli()},
		{ID: "2", Timestamp: now.AddDate(0, 0, -30).UnixMilli()},
	}
	Group(convs, now)
	if convs[0].ID != "1" || convs[1].ID != "2" {
		t.Error("input slice mutated")
	}
}

func TestSectionsHideEmptyBuckets(t *testing.T) {
	now := time.Now()
	g := Group([]*Conversation{{ID: "1", Timestamp: now.UnixMilli()}}, now)

	sections := g.Sections()
	if len(sections) != 1 {
		t.Fatalf("sections = %d, want 1", len(sections))
	}
	if sections[0].Label != "Today" {
		t.Errorf("label = %q, want Today", sections[0].Label)
	}
}
