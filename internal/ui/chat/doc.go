// Copyright (c) 2025 Egghead.AI
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the Bubble Tea chat interface: a conversation
// sidebar grouped by recency, a scrolling transcript viewport, and a
// single-line prompt wired to the chat session.
package chat
