// Copyright (c) 2025 Egghead.AI
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// =============================================================================
// SIDEBAR GROUPING
// =============================================================================

// Groups partitions conversations into day buckets for the sidebar.
// Every conversation lands in exactly one bucket; ordering inside a bucket
// preserves the input ordering (newest-created-first).
type Groups struct {
	Today     []*Conversation
	Yesterday []*Conversation
	LastWeek  []*Conversation
	Older     []*Conversation
}

// Group buckets conversations by creation timestamp against day boundaries
// computed from local midnight of "now":
//
//	Today:       [midnight, now]
//	Yesterday:   [midnight-1d, midnight)
//	Last 7 Days: [midnight-7d, midnight-1d)
//	Older:       (-inf, midnight-7d)
//
// The input slice is not mutated.
func Group(convs []*Conversation, now time.Time) Groups {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	today := midnight.UnixMilli()
	yesterday := midnight.AddDate(0, 0, -1).UnixMilli()
	lastWeek := midnight.AddDate(0, 0, -7).UnixMilli()

	var g Groups
	for _, c := range convs {
		switch {
		case c.Timestamp >= today:
			g.Today = append(g.Today, c)
		case c.Timestamp >= yesterday:
			g.Yesterday = append(g.Yesterday, c)
		case c.Timestamp >= lastWeek:
			g.LastWeek = append(g.LastWeek, c)
		default:
			g.Older = append(g.Older, c)
		}
	}
	return g
}

// Section pairs a sidebar label with its conversations.
type Section struct {
	Label         string
	Conversations []*Conversation
}

// Sections returns the non-empty buckets in display order.
func (g Groups) Sections() []Section {
	all := []Section{
		{Label: "Today", Conversations: g.Today},
		{Label: "Yesterday", Conversations: g.Yesterday},
		{Label: "Last 7 Days", Conversations: g.LastWeek},
		{Label: "Older", Conversations: g.Older},
	}
	sections := make([]Section, 0, len(all))
	for _, s := range all {
		if len(s.Conversations) > 0 {
			sections = append(sections, s)
		}
	}
	return sections
}

// Count returns the total number of conversations across all buckets.
func (g Groups) Count() int {
	return len(g.Today) + len(g.Yesterday) + len(g.LastWeek) + len(g.Older)
}
