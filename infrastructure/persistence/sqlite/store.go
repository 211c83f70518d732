// Package sqlite keeps every record in a local SQLite file. It backs the
// standalone API server and development setups; records are stored as JSON
// documents next to the columns the queries filter and order on.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"observador-backend/infrastructure/persistence/schema"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// sortableTime is fixed width so TEXT comparison orders by time
const sortableTime = "2006-01-02T15:04:05.000000000Z"

func timeKey(t time.Time) string { return t.UTC().Format(sortableTime) }

var initialSchema = []string{
	`CREATE TABLE IF NOT EXISTS entities (
		user_id    TEXT NOT NULL,
		node_type  TEXT NOT NULL,
		entity_id  TEXT NOT NULL,
		created_at TEXT NOT NULL,
		body       TEXT NOT NULL,
		PRIMARY KEY (user_id, node_type, entity_id)
	)`,
	`CREATE TABLE IF NOT EXISTS daily_entries (
		user_id TEXT NOT NULL,
		day     TEXT NOT NULL,
		body    TEXT NOT NULL,
		PRIMARY KEY (user_id, day)
	)`,
	`CREATE TABLE IF NOT EXISTS snapshots (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL,
		node_id    TEXT NOT NULL,
		created_at TEXT NOT NULL,
		body       TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_snapshots_node ON snapshots(user_id, node_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_snapshots_user ON snapshots(user_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS user_progress (
		user_id TEXT PRIMARY KEY,
		body    TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS agent_projects (
		id           TEXT PRIMARY KEY,
		user_id      TEXT NOT NULL,
		api_key_hash TEXT NOT NULL,
		created_at   TEXT NOT NULL,
		body         TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_agent_projects_user ON agent_projects(user_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_agent_projects_key ON agent_projects(api_key_hash)`,
	`CREATE TABLE IF NOT EXISTS agent_decisions (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL,
		project_id TEXT NOT NULL,
		created_at TEXT NOT NULL,
		body       TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_agent_decisions_user ON agent_decisions(user_id, created_at)`,
}

// migrations are applied in order on Open; append, never edit
var migrations = []schema.Migration{
	{Version: 1, Description: "initial tables", Statements: initialSchema},
	{Version: 2, Description: "index decisions by project", Statements: []string{
		`CREATE INDEX IF NOT EXISTS idx_agent_decisions_project ON agent_decisions(project_id, created_at)`,
	}},
}

// Store owns the database handle shared by the repositories
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open creates the file if needed and migrates it to the latest schema
func Open(ctx context.Context, path string, logger *zap.Logger) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer keeps SQLITE_BUSY away without a retry loop
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	evolution := schema.NewEvolution(logger)
	for _, m := range migrations {
		if err := evolution.Register(m); err != nil {
			db.Close()
			return nil, err
		}
	}
	if err := evolution.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	logger.Info("SQLite store ready", zap.String("path", path))
	return &Store{db: db, logger: logger}, nil
}

// Ping implements ports.HealthChecker
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}
