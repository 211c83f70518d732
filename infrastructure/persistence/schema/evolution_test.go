package schema

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&count)
	require.NoError(t, err)
	return count == 1
}

func TestEvolution_MigratesInOrder(t *testing.T) {
	// Arrange
	ctx := context.Background()
	db := openDB(t)
	evolution := NewEvolution(zap.NewNop())
	// registered out of order on purpose
	require.NoError(t, evolution.Register(Migration{Version: 2, Description: "notes", Statements: []string{
		`ALTER TABLE items ADD COLUMN notes TEXT`,
	}}))
	require.NoError(t, evolution.Register(Migration{Version: 1, Description: "items", Statements: []string{
		`CREATE TABLE items (id TEXT PRIMARY KEY)`,
	}}))

	// Act
	err := evolution.Migrate(ctx, db)

	// Assert
	require.NoError(t, err)
	version, err := CurrentVersion(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, 2, version)
	_, err = db.Exec(`INSERT INTO items (id, notes) VALUES ('a', 'b')`)
	assert.NoError(t, err)

	// a second run is a no-op
	assert.NoError(t, evolution.Migrate(ctx, db))
}

func TestEvolution_FailedMigrationRollsBack(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	evolution := NewEvolution(zap.NewNop())
	require.NoError(t, evolution.Register(Migration{Version: 1, Description: "broken", Statements: []string{
		`CREATE TABLE half (id TEXT)`,
		`NOT SQL AT ALL`,
	}}))

	err := evolution.Migrate(ctx, db)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "migration 1 (broken) failed")
	version, err := CurrentVersion(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, 0, version)
	assert.False(t, tableExists(t, db, "half"))
}

func TestEvolution_Errors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		prepare func(t *testing.T, db *sql.DB, e *Evolution)
		wantErr string
	}{
		{
			name: "gap in versions",
			prepare: func(t *testing.T, db *sql.DB, e *Evolution) {
				require.NoError(t, e.Register(Migration{Version: 1, Statements: []string{`CREATE TABLE a (id TEXT)`}}))
				require.NoError(t, e.Register(Migration{Version: 3, Statements: []string{`CREATE TABLE c (id TEXT)`}}))
			},
			wantErr: "no migration found from version 1 to 2",
		},
		{
			name: "database newer than build",
			prepare: func(t *testing.T, db *sql.DB, e *Evolution) {
				require.NoError(t, e.Register(Migration{Version: 1, Statements: []string{`CREATE TABLE a (id TEXT)`}}))
				_, err := db.Exec(`PRAGMA user_version = 5`)
				require.NoError(t, err)
			},
			wantErr: "newer than supported",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := openDB(t)
			e := NewEvolution(zap.NewNop())
			tt.prepare(t, db, e)

			err := e.Migrate(ctx, db)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEvolution_RegisterRejectsDuplicates(t *testing.T) {
	e := NewEvolution(zap.NewNop())
	require.NoError(t, e.Register(Migration{Version: 1}))

	assert.Error(t, e.Register(Migration{Version: 1}))
	assert.Error(t, e.Register(Migration{Version: 0}))
	assert.Equal(t, 1, e.Latest())
}
