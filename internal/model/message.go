// Copyright (c) 2025 Egghead.AI
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Egghead"
	default:
		return string(r)
	}
}

// =============================================================================
// REFERENCE TYPE
// =============================================================================

// Reference is a citation pointer to a campus resource, attached to an
// assistant message. Opaque beyond display.
type Reference struct {
	Title string `json:"title"`
	Type  string `json:"type"`
	ID    string `json:"id"`
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a conversation.
// Messages are immutable once appended; References only ever appear on
// assistant messages.
type Message struct {
	Role       Role        `json:"role"`
	Content    string      `json:"content"`
	References []Reference `json:"references,omitempty"`
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage creates a new assistant message with its references.
func NewAssistantMessage(content string, refs []Reference) Message {
	if refs == nil {
		refs = []Reference{}
	}
	return Message{Role: RoleAssistant, Content: content, References: refs}
}

// NewErrorMessage creates the assistant-role message shown when a send
// fails. The failure is recovered, not fatal: the conversation stays usable.
func NewErrorMessage(reason string) Message {
	if reason == "" {
		reason = "could not reach backend."
	}
	return Message{Role: RoleAssistant, Content: "Error: " + reason}
}

// IsEmpty returns true if the message has no content.
func (m Message) IsEmpty() bool {
	return len(m.Content) == 0
}

// =============================================================================
// HISTORY PROJECTION
// =============================================================================

// Turn is the role/content pair sent to the backend as conversational
// context. References never travel back to the backend.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AsTurn projects the message to its backend history form.
func (m Message) AsTurn() Turn {
	return Turn{Role: string(m.Role), Content: m.Content}
}
