package guild

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

const (
	documentName   = "store"
	quarantineName = "store.corrupt"
)

// SQLiteConfig holds configuration for the SQLite repository
type SQLiteConfig struct {
	// Path of the database file, or ":memory:"
	Path string

	// Logger receives load and recovery events
	Logger zerolog.Logger
}

type sqliteBackend struct {
	db *sql.DB
}

// NewSQLite creates a repository that keeps the document in a SQLite row
func NewSQLite(cfg *SQLiteConfig) (*DocumentRepository, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Path == "" {
		return nil, errors.New("sqlite path cannot be empty")
	}

	if cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases alive and writes ordered
	db.SetMaxOpenConns(1)

	b := &sqliteBackend{db: db}
	if err := b.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return newDocumentRepository(b, cfg.Logger), nil
}

func (b *sqliteBackend) migrate() error {
	stmts := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		`CREATE TABLE IF NOT EXISTS documents (
			name       TEXT PRIMARY KEY,
			body       BLOB NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := b.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt, err)
		}
	}
	return nil
}

func (b *sqliteBackend) name() string {
	return "sqlite"
}

func (b *sqliteBackend) read(ctx context.Context) ([]byte, error) {
	var body []byte
	err := b.db.QueryRowContext(ctx, "SELECT body FROM documents WHERE name = ?", documentName).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select document: %w", err)
	}
	return body, nil
}

func (b *sqliteBackend) upsert(ctx context.Context, name string, data []byte) error {
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO documents (name, body, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		name, data, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("upsert document %s: %w", name, err)
	}
	return nil
}

func (b *sqliteBackend) write(ctx context.Context, data []byte) error {
	return b.upsert(ctx, documentName, data)
}

func (b *sqliteBackend) quarantine(ctx context.Context, data []byte) error {
	return b.upsert(ctx, quarantineName, data)
}

func (b *sqliteBackend) close() error {
	return b.db.Close()
}
