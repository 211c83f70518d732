// Package schema versions the SQL store. The applied version lives in the
// database itself (PRAGMA user_version) so a file opened by an older build is
// brought forward one migration at a time.
package schema

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// Migration moves the schema from Version-1 to Version
type Migration struct {
	Version     int
	Description string
	Statements  []string
}

// Evolution manages database schema evolution
type Evolution struct {
	migrations []Migration
	logger     *zap.Logger
}

// NewEvolution creates a new schema evolution manager
func NewEvolution(logger *zap.Logger) *Evolution {
	return &Evolution{logger: logger}
}

// Register adds a migration. Versions must be unique and start at 1.
func (e *Evolution) Register(m Migration) error {
	if m.Version < 1 {
		return fmt.Errorf("invalid migration version %d", m.Version)
	}
	for _, existing := range e.migrations {
		if existing.Version == m.Version {
			return fmt.Errorf("migration %d already registered", m.Version)
		}
	}
	e.migrations = append(e.migrations, m)
	sort.Slice(e.migrations, func(i, j int) bool {
		return e.migrations[i].Version < e.migrations[j].Version
	})
	return nil
}

// Latest is the version Migrate brings the database to
func (e *Evolution) Latest() int {
	if len(e.migrations) == 0 {
		return 0
	}
	return e.migrations[len(e.migrations)-1].Version
}

// CurrentVersion reads the version recorded in the database
func CurrentVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// Migrate applies every registered migration above the current version, each
// in its own transaction. A database newer than this build is an error.
func (e *Evolution) Migrate(ctx context.Context, db *sql.DB) error {
	current, err := CurrentVersion(ctx, db)
	if err != nil {
		return err
	}
	if current > e.Latest() {
		return fmt.Errorf("database schema version %d is newer than supported version %d", current, e.Latest())
	}

	expected := current + 1
	for _, m := range e.migrations {
		if m.Version <= current {
			continue
		}
		if m.Version != expected {
			return fmt.Errorf("no migration found from version %d to %d", expected-1, expected)
		}
		if err := e.apply(ctx, db, m); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Description, err)
		}
		e.logger.Info("Schema migrated",
			zap.Int("version", m.Version),
			zap.String("description", m.Description))
		expected++
	}
	return nil
}

func (e *Evolution) apply(ctx context.Context, db *sql.DB, m Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range m.Statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	// PRAGMA does not accept bound parameters
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", m.Version)); err != nil {
		return err
	}
	return tx.Commit()
}
