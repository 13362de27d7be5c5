// Copyright (c) 2025 Egghead.AI
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/egghead-ai/egghead-tui/internal/model"
	"github.com/egghead-ai/egghead-tui/internal/util"
)

// StateFileName is the single namespaced key the whole state lives under,
// carried over from the web client's localStorage key.
const StateFileName = "egghead-conversations.json"

// =============================================================================
// STORE
// =============================================================================

// Store holds the conversation list (newest-created-first) and the active
// conversation id. The active id is a lookup key, not ownership: if it does
// not resolve to a stored conversation it counts as "no active conversation".
type Store struct {
	mu sync.Mutex

	path          string
	conversations []*model.Conversation
	activeID      string

	// now is swappable for tests
	now func() time.Time
}

// New creates a store persisting under dataDir.
func New(dataDir string) *Store {
	return &Store{
		path:          filepath.Join(dataDir, StateFileName),
		conversations: make([]*model.Conversation, 0),
		now:           time.Now,
	}
}

// Path returns the state file path.
func (s *Store) Path() string {
	return s.path
}

// =============================================================================
// PERSISTENCE
// =============================================================================

// Load reads the persisted state. Fails soft: on a missing file or malformed
// data the store initializes to an empty sequence. Never returns an error.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked()
}

func (s *Store) loadLocked() {
	s.conversations = make([]*model.Conversation, 0)

	data, err := os.ReadFile(s.path)
	if err != nil {
		return
	}

	var convs []*model.Conversation
	if err := json.Unmarshal(data, &convs); err != nil {
		return
	}
	for _, c := range convs {
		if c == nil {
			continue
		}
		if c.Messages == nil {
			c.Messages = make([]model.Message, 0)
		}
		s.conversations = append(s.conversations, c)
	}

	// An active id that no longer resolves means no active conversation.
	if s.activeID != "" && s.findLocked(s.activeID) == nil {
		s.activeID = ""
	}
}

// saveLocked serializes the full state, write-through on every mutation.
// Persistence is best-effort: failure is non-fatal and ignored, matching
// the original client's fire-and-forget localStorage writes.
func (s *Store) saveLocked() {
	data, err := json.MarshalIndent(s.conversations, "", "  ")
	if err != nil {
		return
	}
	_ = util.AtomicWriteFile(s.path, data, 0644)
}

// =============================================================================
// MUTATIONS
// =============================================================================

// Create allocates a conversation from the first user message text, derives
// its title, prepends it to the sequence, makes it active, and returns its id.
func (s *Store) Create(firstMessageText string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := model.NewConversation(firstMessageText, s.now())
	s.conversations = append([]*model.Conversation{conv}, s.conversations...)
	s.activeID = conv.ID
	s.saveLocked()
	return conv.ID
}

// Append adds a message to the matching conversation. Unknown ids are a
// no-op, not an error.
func (s *Store) Append(conversationID string, msg model.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.findLocked(conversationID)
	if conv == nil {
		return
	}
	conv.Append(msg)
	s.saveLocked()
}

// Delete removes a conversation. If it was active, the active id clears.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range s.conversations {
		if c.ID == id {
			s.conversations = append(s.conversations[:i], s.conversations[i+1:]...)
			if s.activeID == id {
				s.activeID = ""
			}
			s.saveLocked()
			return
		}
	}
}

// Clear removes all conversations and the active id.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations = make([]*model.Conversation, 0)
	s.activeID = ""
	s.saveLocked()
}

// =============================================================================
// ACTIVE CONVERSATION
// =============================================================================

// SetActive points the store at a conversation. An empty id or an id that
// does not resolve clears the active conversation.
func (s *Store) SetActive(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == "" || s.findLocked(id) == nil {
		s.activeID = ""
		return
	}
	s.activeID = id
}

// Active returns the active conversation id, or "" when none.
func (s *Store) Active() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeID != "" && s.findLocked(s.activeID) == nil {
		s.activeID = ""
	}
	return s.activeID
}

// ActiveConversation returns a copy of the active conversation.
func (s *Store) ActiveConversation() (*model.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv := s.findLocked(s.activeID)
	if conv == nil {
		return nil, false
	}
	return conv.Clone(), true
}

// =============================================================================
// LOOKUPS
// =============================================================================

// Get returns a copy of the conversation with the given id.
func (s *Store) Get(id string) (*model.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv := s.findLocked(id)
	if conv == nil {
		return nil, false
	}
	return conv.Clone(), true
}

// Conversations returns a snapshot of all conversations, newest-created-first.
func (s *Store) Conversations() []*model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*model.Conversation, 0, len(s.conversations))
	for _, c := range s.conversations {
		out = append(out, c.Clone())
	}
	return out
}

// Len returns the number of stored conversations.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conversations)
}

func (s *Store) findLocked(id string) *model.Conversation {
	if id == "" {
		return nil
	}
	for _, c := range s.conversations {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// =============================================================================
// LISTING
// =============================================================================

// ConversationMeta is lightweight metadata for listing conversations.
type ConversationMeta struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	MessageCount int       `json:"message_count"`
	Preview      string    `json:"preview"`
}

// List returns metadata for all conversations in store order.
func (s *Store) List() []ConversationMeta {
	s.mu.Lock()
	defer s.mu.Unlock()

	metas := make([]ConversationMeta, 0, len(s.conversations))
	for _, c := range s.conversations {
		metas = append(metas, ConversationMeta{
			ID:           c.ID,
			Title:        c.Title,
			CreatedAt:    c.CreatedAt(),
			MessageCount: c.MessageCount(),
			Preview:      c.Preview(),
		})
	}
	return metas
}
