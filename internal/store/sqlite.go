// ABOUTME: SQLite implementation of the local history cache using modernc.org/sqlite
// ABOUTME: Context-keyed message snapshots with automatic schema creation

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/2389/ava-client/internal/api"
)

// SQLiteStore caches the last fetched message list per conversation context.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a cache at the given path. The schema is created
// if it doesn't exist and parent directories are created as needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	// WAL keeps reads cheap while a refresh rewrites a context
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db, logger: logger}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("history cache initialized", "path", path)
	return s, nil
}

// createSchema creates the cache tables if they don't exist.
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS messages (
			id         INTEGER NOT NULL,
			context    TEXT NOT NULL,
			role       TEXT NOT NULL,
			content    TEXT NOT NULL,
			timestamp  DATETIME NOT NULL,
			user_id    INTEGER NOT NULL,
			is_edited  INTEGER NOT NULL DEFAULT 0,
			is_deleted INTEGER NOT NULL DEFAULT 0,
			position   INTEGER NOT NULL,
			PRIMARY KEY (context, id)
		);

		CREATE INDEX IF NOT EXISTS idx_messages_context_position
			ON messages(context, position);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ReplaceContext atomically replaces the cached snapshot for a context with
// the given server-ordered message list.
func (s *SQLiteStore) ReplaceContext(ctx context.Context, conversationContext string, messages []api.Message) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM messages WHERE context = ?", conversationContext); err != nil {
		return fmt.Errorf("clearing context: %w", err)
	}

	const insert = `
		INSERT INTO messages (id, context, role, content, timestamp, user_id, is_edited, is_deleted, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for i, msg := range messages {
		_, err := tx.ExecContext(ctx, insert,
			msg.ID,
			conversationContext,
			msg.Role,
			msg.Content,
			msg.Timestamp.UTC().Format(time.RFC3339Nano),
			msg.UserID,
			msg.IsEdited,
			msg.IsDeleted,
			i,
		)
		if err != nil {
			return fmt.Errorf("caching message %d: %w", msg.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing snapshot: %w", err)
	}

	s.logger.Debug("context snapshot cached",
		"context", conversationContext,
		"messages", len(messages))
	return nil
}

// ListByContext returns the cached snapshot for a context in its original
// server order. An uncached context yields an empty list.
func (s *SQLiteStore) ListByContext(ctx context.Context, conversationContext string) ([]api.Message, error) {
	const query = `
		SELECT id, role, content, timestamp, user_id, is_edited, is_deleted
		FROM messages
		WHERE context = ?
		ORDER BY position
	`
	rows, err := s.db.QueryContext(ctx, query, conversationContext)
	if err != nil {
		return nil, fmt.Errorf("querying cached messages: %w", err)
	}
	defer rows.Close()

	var messages []api.Message
	for rows.Next() {
		var msg api.Message
		var ts string
		if err := rows.Scan(&msg.ID, &msg.Role, &msg.Content, &ts, &msg.UserID, &msg.IsEdited, &msg.IsDeleted); err != nil {
			return nil, fmt.Errorf("scanning cached message: %w", err)
		}
		msg.Context = conversationContext
		if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			msg.Timestamp = parsed
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading cached messages: %w", err)
	}
	return messages, nil
}
