// Copyright (c) 2025 Egghead.AI
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package archive provides a local SQLite search index over saved
// conversations, so past exchanges can be found by message content.
package archive
