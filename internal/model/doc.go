// Copyright (c) 2025 Egghead.AI
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// # Key Types
//
//   - Message: a single chat turn with role, content, and optional references
//   - Reference: a citation pointer attached to an assistant message
//   - Conversation: an append-only thread of messages with a stable identity
//   - Groups: conversations partitioned into day buckets for the sidebar
//
// Conversations serialize to the same JSON shape the web client stored under
// its "egghead-conversations" key, so state files survive client swaps.
package model
