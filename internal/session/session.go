// Copyright (c) 2025 Egghead.AI
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/egghead-ai/egghead-tui/internal/gateway"
	"github.com/egghead-ai/egghead-tui/internal/model"
	"github.com/egghead-ai/egghead-tui/internal/store"
)

// ErrBusy is returned when a send is attempted while another is in flight.
// Callers keep their own input disabled while Loading() reports true; this
// error is the backstop for the ones that don't.
var ErrBusy = errors.New("a send is already in flight")

// Backend is the boundary the session talks through. Satisfied by
// *gateway.Client and by test doubles.
type Backend interface {
	Call(ctx context.Context, payload gateway.Payload) (*gateway.Reply, error)
}

// =============================================================================
// SESSION
// =============================================================================

// Session drives the send flow against one store and one backend.
type Session struct {
	mu        sync.Mutex
	loading   bool
	sessionID string

	store       *store.Store
	backend     Backend
	preferences gateway.Preferences

	// onChange fires after every store mutation the session performs,
	// so a UI can re-render between the optimistic user append and the
	// assistant append.
	onChange func()
}

// New creates a session with a freshly minted session id. The backend may
// assign its own id on first contact; an assigned id is adopted.
func New(st *store.Store, backend Backend, prefs gateway.Preferences) *Session {
	return &Session{
		sessionID:   uuid.NewString(),
		store:       st,
		backend:     backend,
		preferences: prefs,
	}
}

// SessionID returns the current backend session id.
func (s *Session) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// Loading reports whether a send is in flight.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// SetOnChange registers a callback fired after each store mutation.
func (s *Session) SetOnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// =============================================================================
// SEND
// =============================================================================

// Result reports what one send appended.
type Result struct {
	ConversationID string
	User           model.Message
	Assistant      model.Message

	// Failed is true when the assistant message is a recovered error
	// rather than a backend reply. The conversation remains sendable.
	Failed bool
}

// Send runs the full send flow for one user message:
//
//  1. Empty or whitespace-only input is a no-op (nil Result, nil error).
//  2. Without an active conversation, one is created from the message text.
//  3. The user message is appended immediately, before the network call.
//  4. Prior messages become the backend's conversation history.
//  5. The backend is invoked once; no retries.
//  6. On success the reply becomes an assistant message with its references.
//  7. On failure an assistant message carries the reason; the failure is
//     recovered, never raised.
//
// Exactly one user and one assistant message are appended per non-empty
// call, on both the success and the error path.
func (s *Session) Send(ctx context.Context, text string) (*Result, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, nil
	}

	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	s.loading = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	// Lazy creation: the conversation appears on first send.
	convID := s.store.Active()
	if convID == "" {
		convID = s.store.Create(trimmed)
	}

	// History is the state before this send's user message.
	var history []model.Turn
	if conv, ok := s.store.Get(convID); ok {
		history = conv.History()
	}

	userMsg := model.NewUserMessage(trimmed)
	s.store.Append(convID, userMsg)
	s.notify()

	reply, err := s.backend.Call(ctx, gateway.Payload{
		Message:     trimmed,
		SessionID:   s.SessionID(),
		History:     history,
		Preferences: s.preferences,
	})

	var assistant model.Message
	failed := false
	if err != nil {
		assistant = model.NewErrorMessage(err.Error())
		failed = true
	} else {
		assistant = model.NewAssistantMessage(reply.Text, reply.References)
		s.adoptSessionID(reply.SessionID)
	}

	s.store.Append(convID, assistant)
	s.notify()

	return &Result{
		ConversationID: convID,
		User:           userMsg,
		Assistant:      assistant,
		Failed:         failed,
	}, nil
}

// adoptSessionID takes over a backend-assigned session id.
func (s *Session) adoptSessionID(id string) {
	if id == "" {
		return
	}
	s.mu.Lock()
	s.sessionID = id
	s.mu.Unlock()
}

func (s *Session) notify() {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}
