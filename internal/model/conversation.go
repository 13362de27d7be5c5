// Copyright (c) 2025 Egghead.AI
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strconv"
	"time"

	"github.com/egghead-ai/egghead-tui/internal/util"
)

// TitleMaxRunes is how much of the first user message survives into the
// conversation title before an ellipsis is appended.
const TitleMaxRunes = 50

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation holds a complete chat thread with a stable identity.
//
// The message list is append-only: messages are never reordered or deleted
// individually, only the whole conversation can be removed. Title and
// Timestamp are set at creation and never recomputed.
type Conversation struct {
	// Identity
	ID    string `json:"id"`
	Title string `json:"title"`

	// Messages, in insertion order
	Messages []Message `json:"messages"`

	// Creation time in Unix milliseconds
	Timestamp int64 `json:"timestamp"`
}

// NewConversation creates a conversation whose id and timestamp come from
// the creation instant and whose title derives from the first user message.
func NewConversation(firstMessageText string, now time.Time) *Conversation {
	ms := now.UnixMilli()
	return &Conversation{
		ID:        strconv.FormatInt(ms, 10),
		Title:     DeriveTitle(firstMessageText),
		Messages:  make([]Message, 0),
		Timestamp: ms,
	}
}

// DeriveTitle builds a conversation title from the first user message:
// the first 50 characters, plus "..." iff the message exceeded 50.
func DeriveTitle(text string) string {
	title := util.TruncateRunesNoEllipsis(text, TitleMaxRunes)
	if util.RuneLen(text) > TitleMaxRunes {
		title += "..."
	}
	return title
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// Append adds a message to the conversation.
func (c *Conversation) Append(msg Message) {
	c.Messages = append(c.Messages, msg)
}

// History projects the current messages to the role/content sequence sent
// to the backend as conversational context.
func (c *Conversation) History() []Turn {
	turns := make([]Turn, 0, len(c.Messages))
	for _, msg := range c.Messages {
		turns = append(turns, msg.AsTurn())
	}
	return turns
}

// LastMessage returns the most recent message, or a zero Message if empty.
func (c *Conversation) LastMessage() (Message, bool) {
	if len(c.Messages) == 0 {
		return Message{}, false
	}
	return c.Messages[len(c.Messages)-1], true
}

// MessageCount returns the number of messages.
func (c *Conversation) MessageCount() int {
	return len(c.Messages)
}

// IsEmpty returns true if there are no messages.
func (c *Conversation) IsEmpty() bool {
	return len(c.Messages) == 0
}

// CreatedAt returns the creation time.
func (c *Conversation) CreatedAt() time.Time {
	return time.UnixMilli(c.Timestamp)
}

// Preview returns a short preview of the first user message for listings.
func (c *Conversation) Preview() string {
	for _, msg := range c.Messages {
		if msg.Role == RoleUser && msg.Content != "" {
			return util.TruncateRunes(msg.Content, 80)
		}
	}
	return ""
}

// Clone creates a deep copy of the conversation.
func (c *Conversation) Clone() *Conversation {
	clone := &Conversation{
		ID:        c.ID,
		Title:     c.Title,
		Timestamp: c.Timestamp,
		Messages:  make([]Message, len(c.Messages)),
	}
	copy(clone.Messages, c.Messages)
	return clone
}
