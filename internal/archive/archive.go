// Copyright (c) 2025 Egghead.AI
// SPDX-License-Identifier: AGPL-3.0-or-later

package archive

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/egghead-ai/egghead-tui/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrDatabaseError = errors.New("database error")
	ErrEmptyQuery    = errors.New("empty search query")
)

// DefaultFileName is the archive database file name inside the data directory.
const DefaultFileName = "archive.db"

// searchLimit caps the number of search hits returned.
const searchLimit = 50

// =============================================================================
// ARCHIVE
// =============================================================================

// Archive is a SQLite-backed full-text index over saved conversations.
type Archive struct {
	db *sql.DB
}

// Open opens (creating if needed) the archive database at path.
func Open(path string) (*Archive, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	// The pragma rides on the DSN so every pooled connection enforces
	// foreign keys, not just the one that ran a PRAGMA statement.
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if _, err := db.Exec(
		"INSERT OR REPLACE INTO metadata (key, value) VALUES ('schema_version', ?)",
		fmt.Sprintf("%d", SchemaVersion),
	); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	return &Archive{db: db}, nil
}

// Close closes the underlying database.
func (a *Archive) Close() error {
	return a.db.Close()
}

// =============================================================================
// INDEXING
// =============================================================================

// Index inserts or replaces a single conversation in the archive.
func (a *Archive) Index(conv *model.Conversation) error {
	tx, err := a.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	if err := indexConversation(tx, conv); err != nil {
		return err
	}
	return tx.Commit()
}

// Rebuild replaces the entire archive with the given conversations.
// The store's JSON state file is the source of truth; the archive is
// derived from it on demand.
func (a *Archive) Rebuild(convs []*model.Conversation) error {
	tx, err := a.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM messages"); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	if _, err := tx.Exec("DELETE FROM conversations"); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	for _, conv := range convs {
		if err := indexConversation(tx, conv); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Delete removes a conversation and its messages from the archive.
func (a *Archive) Delete(id string) error {
	if _, err := a.db.Exec("DELETE FROM messages WHERE conversation_id = ?", id); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	if _, err := a.db.Exec("DELETE FROM conversations WHERE id = ?", id); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return nil
}

// Len returns the number of indexed conversations.
func (a *Archive) Len() (int, error) {
	var n int
	if err := a.db.QueryRow("SELECT COUNT(*) FROM conversations").Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return n, nil
}

func indexConversation(tx *sql.Tx, conv *model.Conversation) error {
	// Message deletes fire the FTS trigger, keeping the virtual table in sync.
	if _, err := tx.Exec("DELETE FROM messages WHERE conversation_id = ?", conv.ID); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	if _, err := tx.Exec("DELETE FROM conversations WHERE id = ?", conv.ID); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	if _, err := tx.Exec(
		"INSERT INTO conversations (id, title, created_at, message_count) VALUES (?, ?, ?, ?)",
		conv.ID, conv.Title, conv.Timestamp, len(conv.Messages),
	); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	for _, msg := range conv.Messages {
		if _, err := tx.Exec(
			"INSERT INTO messages (conversation_id, role, content) VALUES (?, ?, ?)",
			conv.ID, string(msg.Role), msg.Content,
		); err != nil {
			return fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
	}
	return nil
}

// =============================================================================
// SEARCH
// =============================================================================

// SearchResult is a single search hit.
type SearchResult struct {
	ConversationID string
	Title          string
	CreatedAt      int64
	Role           string
	Snippet        string
}

// Search runs a full-text query over message content and returns matching
// conversations, newest first. Matching is case-insensitive.
func (a *Archive) Search(query string) ([]SearchResult, error) {
	fts := sanitizeFTSQuery(query)
	if fts == "" {
		return nil, ErrEmptyQuery
	}

	rows, err := a.db.Query(`
		SELECT c.id, c.title, c.created_at, m.role,
		       snippet(messages_fts, 0, '', '', '…', 12)
		FROM messages_fts
		JOIN messages m ON m.id = messages_fts.rowid
		JOIN conversations c ON c.id = m.conversation_id
		WHERE messages_fts MATCH ?
		ORDER BY c.created_at DESC, m.id ASC
		LIMIT ?`,
		fts, searchLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ConversationID, &r.Title, &r.CreatedAt, &r.Role, &r.Snippet); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// sanitizeFTSQuery quotes each term so user input cannot inject FTS5
// query syntax.
func sanitizeFTSQuery(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return ""
	}
	quoted := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ReplaceAll(f, `"`, "")
		if f == "" {
			continue
		}
		quoted = append(quoted, `"`+f+`"`)
	}
	return strings.Join(quoted, " ")
}
