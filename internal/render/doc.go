// Copyright (c) 2025 Egghead.AI
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render formats assistant replies for terminal display.
//
// It converts ASCII emoticons to emoji, renders markdown through glamour
// with a plain-text fallback, and formats reference footers.
package render
