// Copyright (c) 2025 Egghead.AI
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import "github.com/egghead-ai/egghead-tui/internal/session"

// =============================================================================
// TEA MESSAGES
// =============================================================================

// SendResultMsg reports the outcome of an asynchronous send.
type SendResultMsg struct {
	Result *session.Result
	Err    error
}

// StoreChangedMsg signals that the conversation store was reloaded,
// typically because another process rewrote the state file.
type StoreChangedMsg struct{}
