package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"daybook/internal/docstore"
	"daybook/internal/log"

	_ "modernc.org/sqlite"
)

// DefaultHistoryKeep is how many replaced versions of each document are retained.
const DefaultHistoryKeep = 20

var _ docstore.Store = (*SQLiteRepository)(nil)

// SQLiteRepository stores whole JSON documents in a single table and keeps a
// short history of the versions each Save replaced.
type SQLiteRepository struct {
	db          *sql.DB
	historyKeep int
}

// Revision is a previous version of a document.
type Revision struct {
	ID         int64
	Key        string
	Value      []byte
	ReplacedAt time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer at a time keeps SQLite from returning SQLITE_BUSY under the HTTP server.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	slog.Info("SQLite document store ready", log.FieldComponent, log.ComponentStorage, "path", dbPath, "schema_version", version)

	return &SQLiteRepository{db: db, historyKeep: DefaultHistoryKeep}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Load implements docstore.Store
func (r *SQLiteRepository) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM documents WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load document %s: %w", key, err)
	}
	return []byte(value), true, nil
}

// Save implements docstore.Store. The previous value, if any, is moved to
// document_history in the same transaction.
func (r *SQLiteRepository) Save(ctx context.Context, key string, value []byte) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save %s: %w", key, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO document_history (key, value) SELECT key, value FROM documents WHERE key = ?`, key); err != nil {
		return fmt.Errorf("archive document %s: %w", key, err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO documents (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(value)); err != nil {
		return fmt.Errorf("save document %s: %w", key, err)
	}

	if r.historyKeep > 0 {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM document_history
			WHERE key = ? AND id NOT IN (
				SELECT id FROM document_history WHERE key = ? ORDER BY id DESC LIMIT ?
			)`, key, key, r.historyKeep); err != nil {
			return fmt.Errorf("prune history %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save %s: %w", key, err)
	}

	slog.DebugContext(ctx, "Document saved to SQLite", log.FieldComponent, log.ComponentStorage, log.FieldKey, key, "bytes", len(value))
	return nil
}

// History returns up to limit replaced versions of key, newest first.
func (r *SQLiteRepository) History(ctx context.Context, key string, limit int) ([]Revision, error) {
	if limit <= 0 {
		limit = r.historyKeep
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, key, value, replaced_at FROM document_history
		WHERE key = ? ORDER BY id DESC LIMIT ?`, key, limit)
	if err != nil {
		return nil, fmt.Errorf("query history %s: %w", key, err)
	}
	defer rows.Close()

	var out []Revision
	for rows.Next() {
		var (
			rev        Revision
			value      string
			replacedAt string
		)
		if err := rows.Scan(&rev.ID, &rev.Key, &value, &replacedAt); err != nil {
			return nil, fmt.Errorf("scan history %s: %w", key, err)
		}
		rev.Value = []byte(value)
		rev.ReplacedAt = parseTimestamp(replacedAt)
		out = append(out, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history %s: %w", key, err)
	}
	return out, nil
}

// SetHistoryKeep changes how many replaced versions are retained per key. Zero disables pruning.
func (r *SQLiteRepository) SetHistoryKeep(n int) {
	r.historyKeep = n
}

// parseTimestamp reads CURRENT_TIMESTAMP values, which the driver may hand back
// either as SQLite text or already formatted as RFC 3339.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
