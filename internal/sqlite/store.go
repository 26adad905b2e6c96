// File path: internal/sqlite/store.go
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Store wraps an sqlx.DB connection to the workspace database. A single
// process-wide mutex serializes every operation, reads included, so one
// logical unit of work is always observed atomically.
type Store struct {
	db *sqlx.DB
	mu sync.Mutex
}

// Open constructs a Store backed by the SQLite database at the provided path.
// The schema is migrated and a default workspace is seeded on first use.
func Open(path string) (*Store, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		cfg.Path = trimmed
	}
	return OpenWithConfig(cfg)
}

// OpenWithConfig constructs a Store using the provided configuration.
func OpenWithConfig(cfg Config) (*Store, error) {
	cfg.applyDefaults()
	abs, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("resolve sqlite path: %w", err)
	}
	busy := int(cfg.BusyTimeout / time.Millisecond)
	if busy <= 0 {
		busy = 5000
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)", abs, busy)
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.BusyTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the underlying database resources.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping verifies store connectivity for health reporting.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errors.New("sqlite store not initialised")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.PingContext(ctx)
}

func (s *Store) migrate(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errors.New("sqlite store not initialised")
	}
	// Journal mode cannot change from inside a transaction, so pragmas
	// run directly on the connection before the DDL tx.
	for _, stmt := range pragmaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply pragma: %w", err)
		}
	}
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	for i, stmt := range schemaStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("execute schema statement %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}
	return s.seedDefaultWorkspace(ctx)
}

// seedDefaultWorkspace guarantees at least one workspace exists after boot.
func (s *Store) seedDefaultWorkspace(ctx context.Context) error {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM workspaces`); err != nil {
		return fmt.Errorf("count workspaces: %w", err)
	}
	if count > 0 {
		return nil
	}
	ts := now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO workspaces (id, name, description, icon, created_at, updated_at)
                 VALUES (?, ?, ?, ?, ?, ?)`,
		newID(), "My Workspace", "Default workspace", "🗂️", ts, ts)
	if err != nil {
		return fmt.Errorf("seed workspace: %w", err)
	}
	return nil
}

func newID() string {
	return uuid.NewString()
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// inTx runs fn inside one transaction under the global lock. The caller must
// already hold s.mu.
func (s *Store) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

var pragmaStatements = []string{
	`PRAGMA journal_mode = WAL;`,
	`PRAGMA foreign_keys = ON;`,
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS workspaces (
                id TEXT PRIMARY KEY,
                name TEXT NOT NULL,
                description TEXT NOT NULL DEFAULT '',
                icon TEXT NOT NULL DEFAULT '🗂️',
                created_at DATETIME NOT NULL,
                updated_at DATETIME NOT NULL
        );`,
	`CREATE TABLE IF NOT EXISTS pages (
                id TEXT PRIMARY KEY,
                workspace_id TEXT NOT NULL,
                parent_id TEXT,
                title TEXT NOT NULL,
                icon TEXT NOT NULL DEFAULT '📄',
                cover_url TEXT,
                content TEXT NOT NULL DEFAULT '[]',
                page_type TEXT NOT NULL DEFAULT 'page',
                properties TEXT NOT NULL DEFAULT '{}',
                is_template INTEGER NOT NULL DEFAULT 0,
                is_archived INTEGER NOT NULL DEFAULT 0,
                created_at DATETIME NOT NULL,
                updated_at DATETIME NOT NULL,
                FOREIGN KEY(workspace_id) REFERENCES workspaces(id)
        );`,
	`CREATE TABLE IF NOT EXISTS blocks (
                id TEXT PRIMARY KEY,
                page_id TEXT NOT NULL,
                parent_id TEXT,
                type TEXT NOT NULL,
                content TEXT NOT NULL DEFAULT '{}',
                position INTEGER NOT NULL DEFAULT 0,
                created_at DATETIME NOT NULL,
                updated_at DATETIME NOT NULL,
                FOREIGN KEY(page_id) REFERENCES pages(id)
        );`,
	`CREATE TABLE IF NOT EXISTS databases (
                id TEXT PRIMARY KEY,
                workspace_id TEXT NOT NULL,
                name TEXT NOT NULL,
                description TEXT NOT NULL DEFAULT '',
                icon TEXT NOT NULL DEFAULT '📊',
                schema TEXT NOT NULL DEFAULT '{}',
                view_config TEXT NOT NULL DEFAULT '{}',
                created_at DATETIME NOT NULL,
                updated_at DATETIME NOT NULL,
                FOREIGN KEY(workspace_id) REFERENCES workspaces(id)
        );`,
	`CREATE TABLE IF NOT EXISTS database_records (
                id TEXT PRIMARY KEY,
                database_id TEXT NOT NULL,
                properties TEXT NOT NULL DEFAULT '{}',
                created_at DATETIME NOT NULL,
                updated_at DATETIME NOT NULL,
                FOREIGN KEY(database_id) REFERENCES databases(id)
        );`,
	`CREATE TABLE IF NOT EXISTS files (
                id TEXT PRIMARY KEY,
                workspace_id TEXT NOT NULL,
                filename TEXT NOT NULL,
                original_name TEXT NOT NULL,
                file_path TEXT NOT NULL,
                file_size INTEGER NOT NULL,
                mime_type TEXT NOT NULL DEFAULT '',
                file_hash TEXT NOT NULL DEFAULT '',
                ai_analysis TEXT,
                created_at DATETIME NOT NULL,
                FOREIGN KEY(workspace_id) REFERENCES workspaces(id)
        );`,
	`CREATE TABLE IF NOT EXISTS comments (
                id TEXT PRIMARY KEY,
                page_id TEXT,
                block_id TEXT,
                content TEXT NOT NULL,
                author TEXT NOT NULL DEFAULT '',
                created_at DATETIME NOT NULL,
                updated_at DATETIME NOT NULL
        );`,
	`CREATE TABLE IF NOT EXISTS templates (
                id TEXT PRIMARY KEY,
                name TEXT NOT NULL,
                description TEXT NOT NULL DEFAULT '',
                category TEXT NOT NULL DEFAULT 'general',
                template_data TEXT NOT NULL DEFAULT '{}',
                created_at DATETIME NOT NULL
        );`,
	`CREATE TABLE IF NOT EXISTS events (
                id TEXT PRIMARY KEY,
                date TEXT NOT NULL,
                event_text TEXT NOT NULL,
                event_time TEXT NOT NULL DEFAULT '',
                created_at DATETIME NOT NULL,
                updated_at DATETIME NOT NULL
        );`,
	`CREATE INDEX IF NOT EXISTS idx_pages_workspace ON pages(workspace_id, is_archived);`,
	`CREATE INDEX IF NOT EXISTS idx_pages_parent ON pages(parent_id);`,
	`CREATE INDEX IF NOT EXISTS idx_blocks_page ON blocks(page_id, position);`,
	`CREATE INDEX IF NOT EXISTS idx_databases_workspace ON databases(workspace_id);`,
	`CREATE INDEX IF NOT EXISTS idx_records_database ON database_records(database_id);`,
	`CREATE INDEX IF NOT EXISTS idx_files_workspace ON files(workspace_id);`,
	`CREATE INDEX IF NOT EXISTS idx_comments_page ON comments(page_id);`,
	`CREATE INDEX IF NOT EXISTS idx_comments_block ON comments(block_id);`,
	`CREATE INDEX IF NOT EXISTS idx_events_date ON events(date);`,
	`CREATE INDEX IF NOT EXISTS idx_events_updated ON events(updated_at);`,
}
