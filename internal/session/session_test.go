// Copyright (c) 2025 Egghead.AI
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/egghead-ai/egghead-tui/internal/gateway"
	"github.com/egghead-ai/egghead-tui/internal/model"
	"github.com/egghead-ai/egghead-tui/internal/store"
)

// backendFunc adapts a function to the Backend interface.
type backendFunc func(ctx context.Context, payload gateway.Payload) (*gateway.Reply, error)

func (f backendFunc) Call(ctx context.Context, payload gateway.Payload) (*gateway.Reply, error) {
	return f(ctx, payload)
}

func newTestSession(t *testing.T, backend Backend) (*Session, *store.Store) {
	t.Helper()
	st := store.New(t.TempDir())
	return New(st, backend, gateway.DefaultPreferences()), st
}

// =============================================================================
// SEND SCENARIOS
// =============================================================================

func TestSendCreatesConversationAndAppendsBothMessages(t *testing.T) {
	var sawLoading bool
	var sess *Session

	backend := backendFunc(func(ctx context.Context, payload gateway.Payload) (*gateway.Reply, error) {
		sawLoading = sess.Loading()
		return &gateway.Reply{Text: "The library is open 8am-10pm.", References: []model.Reference{}}, nil
	})

	sess, st := newTestSession(t, backend)

	result, err := sess.Send(context.Background(), "What are the library hours?")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if result == nil {
		t.Fatal("Send returned nil result for non-empty input")
	}

	if !sawLoading {
		t.Error("loading flag was not set during the backend call")
	}
	if sess.Loading() {
		t.Error("loading flag still set after Send returned")
	}

	conv, ok := st.Get(result.ConversationID)
	if !ok {
		t.Fatal("conversation not created")
	}
	if conv.Title != "What are the library hours?" {
		t.Errorf("title = %q", conv.Title)
	}
	if conv.MessageCount() != 2 {
		t.Fatalf("message count = %d, want exactly one user + one assistant", conv.MessageCount())
	}
	if conv.Messages[0].Role != model.RoleUser || conv.Messages[0].Content != "What are the library hours?" {
		t.Errorf("user message = %+v", conv.Messages[0])
	}
	if conv.Messages[1].Role != model.RoleAssistant || conv.Messages[1].Content != "The library is open 8am-10pm." {
		t.Errorf("assistant message = %+v", conv.Messages[1])
	}
	if st.Active() != result.ConversationID {
		t.Errorf("active = %q, want new conversation", st.Active())
	}
}

func TestSendEmptyInputIsNoOp(t *testing.T) {
	backend := backendFunc(func(ctx context.Context, payload gateway.Payload) (*gateway.Reply, error) {
		t.Error("backend should not be called for empty input")
		return nil, nil
	})
	sess, st := newTestSession(t, backend)

	for _, input := range []string{"", "   ", "\n\t "} {
		result, err := sess.Send(context.Background(), input)
		if err != nil {
			t.Errorf("Send(%q) error = %v, want nil", input, err)
		}
		if result != nil {
			t.Errorf("Send(%q) result = %+v, want nil", input, result)
		}
	}
	if st.Len() != 0 {
		t.Errorf("store has %d conversations, want 0", st.Len())
	}
}

func TestSendNetworkErrorRecovered(t *testing.T) {
	backend := backendFunc(func(ctx context.Context, payload gateway.Payload) (*gateway.Reply, error) {
		return nil, errors.New("could not reach backend: connection refused")
	})
	sess, st := newTestSession(t, backend)

	result, err := sess.Send(context.Background(), "hello?")
	if err != nil {
		t.Fatalf("Send should recover backend failures, got %v", err)
	}
	if !result.Failed {
		t.Error("result.Failed = false, want true")
	}

	conv, _ := st.Get(result.ConversationID)
	if conv.MessageCount() != 2 {
		t.Fatalf("message count = %d, want 2", conv.MessageCount())
	}
	last := conv.Messages[1]
	if last.Role != model.RoleAssistant {
		t.Errorf("error message role = %q", last.Role)
	}
	if !strings.Contains(last.Content, "Error") {
		t.Errorf("error message content = %q, want failure signal", last.Content)
	}

	// The conversation remains sendable afterward.
	ok := backendFunc(func(ctx context.Context, payload gateway.Payload) (*gateway.Reply, error) {
		return &gateway.Reply{Text: "back online"}, nil
	})
	sess.backend = ok
	result2, err := sess.Send(context.Background(), "still there?")
	if err != nil || result2.Failed {
		t.Fatalf("conversation not sendable after failure: result=%+v err=%v", result2, err)
	}
	if result2.ConversationID != result.ConversationID {
		t.Error("follow-up send left the active conversation")
	}
}

func TestSendReusesActiveConversation(t *testing.T) {
	backend := backendFunc(func(ctx context.Context, payload gateway.Payload) (*gateway.Reply, error) {
		return &gateway.Reply{Text: "reply"}, nil
	})
	sess, st := newTestSession(t, backend)

	first, _ := sess.Send(context.Background(), "first")
	second, _ := sess.Send(context.Background(), "second")

	if first.ConversationID != second.ConversationID {
		t.Error("second send created a new conversation despite an active one")
	}
	if st.Len() != 1 {
		t.Errorf("store has %d conversations, want 1", st.Len())
	}
	conv, _ := st.Get(first.ConversationID)
	if conv.MessageCount() != 4 {
		t.Errorf("message count = %d, want 4", conv.MessageCount())
	}
}

func TestSendBuildsHistoryFromPriorMessages(t *testing.T) {
	var got []model.Turn
	backend := backendFunc(func(ctx context.Context, payload gateway.Payload) (*gateway.Reply, error) {
		got = payload.History
		return &gateway.Reply{Text: "reply"}, nil
	})
	sess, _ := newTestSession(t, backend)

	sess.Send(context.Background(), "first")
	sess.Send(context.Background(), "second")

	// History for the second send holds the first exchange, not the
	// just-sent user message.
	if len(got) != 2 {
		t.Fatalf("history length = %d, want 2", len(got))
	}
	if got[0].Role != "user" || got[0].Content != "first" {
		t.Errorf("history[0] = %+v", got[0])
	}
	if got[1].Role != "assistant" || got[1].Content != "reply" {
		t.Errorf("history[1] = %+v", got[1])
	}
}

func TestSendAdoptsBackendSessionID(t *testing.T) {
	backend := backendFunc(func(ctx context.Context, payload gateway.Payload) (*gateway.Reply, error) {
		return &gateway.Reply{Text: "hi", SessionID: "backend-assigned"}, nil
	})
	sess, _ := newTestSession(t, backend)

	before := sess.SessionID()
	sess.Send(context.Background(), "hello")

	if sess.SessionID() != "backend-assigned" {
		t.Errorf("session id = %q, want backend-assigned", sess.SessionID())
	}
	if before == "backend-assigned" {
		t.Error("test invalid: initial id collided with backend id")
	}
}

func TestSendRejectsReentry(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})

	backend := backendFunc(func(ctx context.Context, payload gateway.Payload) (*gateway.Reply, error) {
		close(entered)
		<-release
		return &gateway.Reply{Text: "done"}, nil
	})
	sess, _ := newTestSession(t, backend)

	done := make(chan struct{})
	go func() {
		sess.Send(context.Background(), "slow question")
		close(done)
	}()

	<-entered
	_, err := sess.Send(context.Background(), "impatient question")
	if !errors.Is(err, ErrBusy) {
		t.Errorf("re-entrant Send error = %v, want ErrBusy", err)
	}

	close(release)
	<-done
}

func TestSendReferencesAttachedToAssistant(t *testing.T) {
	backend := backendFunc(func(ctx context.Context, payload gateway.Payload) (*gateway.Reply, error) {
		return &gateway.Reply{
			Text: "Try the Career Center.",
			References: []model.Reference{
				{Title: "Career Center", Type: "ucd_resource", ID: "career_center"},
			},
		}, nil
	})
	sess, st := newTestSession(t, backend)

	result, _ := sess.Send(context.Background(), "resume help")
	conv, _ := st.Get(result.ConversationID)

	assistant := conv.Messages[1]
	if len(assistant.References) != 1 || assistant.References[0].ID != "career_center" {
		t.Errorf("assistant references = %+v", assistant.References)
	}
	if len(conv.Messages[0].References) != 0 {
		t.Error("user message must not carry references")
	}
}
