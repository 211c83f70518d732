package integration

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"observador-backend/application/commands"
	"observador-backend/application/queries"
	"observador-backend/domain/core/entities"
	"observador-backend/infrastructure/config"
	"observador-backend/infrastructure/di"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userID = "integration-user"

func sqliteConfig(path string) *config.Config {
	return &config.Config{
		Environment:      "test",
		StorageDriver:    config.StorageSQLite,
		SQLitePath:       path,
		AWSRegion:        "us-east-1",
		DynamoDBTable:    "observador",
		MetricsNamespace: "Observador",
		RateLimitRPS:     10,
		RateLimitBurst:   20,
		LogLevel:         "error",
	}
}

func nodeIDs(t *testing.T, ctx context.Context, container *di.Container) []string {
	t.Helper()
	result, err := container.QueryBus.Ask(ctx, queries.GetSystemGraphQuery{UserID: userID})
	require.NoError(t, err)
	graph := result.(*queries.SystemGraphResult)
	ids := make([]string, 0, len(graph.Nodes))
	for _, n := range graph.Nodes {
		ids = append(ids, n.ID.String())
	}
	return ids
}

// TestSQLiteFlow_SurvivesRestart writes through one container, then reads the
// same file through a fresh one
func TestSQLiteFlow_SurvivesRestart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "observador.db")

	// Arrange
	first, cleanup, err := di.InitializeContainer(ctx, sqliteConfig(path))
	require.NoError(t, err)

	require.NoError(t, first.CommandBus.Send(ctx, commands.SaveRelationshipCommand{
		RelationshipID:    "r1",
		UserID:            userID,
		Name:              "Ana",
		ConnectionQuality: entities.Float(8),
		Importance:        entities.Float(9),
		EnergyExchange:    "POSITIVE",
	}))
	require.NoError(t, first.CommandBus.Send(ctx, commands.SaveProjectCommand{
		ProjectID:      "p1",
		UserID:         userID,
		Name:           "Garden",
		Progress:       entities.Float(40),
		Satisfaction:   entities.Float(8),
		EnergyInvested: entities.Float(7),
		RelatedPeople:  []string{"r1"},
	}))

	written, err := first.Repositories.Snapshots.ListSince(ctx, userID, time.Time{})
	require.NoError(t, err)
	require.NotEmpty(t, written, "first saves record initial snapshots")
	cleanup()

	// Act
	second, cleanup, err := di.InitializeContainer(ctx, sqliteConfig(path))
	require.NoError(t, err)
	defer cleanup()

	ids := nodeIDs(t, ctx, second)
	require.NoError(t, second.CommandBus.Send(ctx, commands.RecordSnapshotsCommand{UserID: userID}))
	after, err := second.Repositories.Snapshots.ListSince(ctx, userID, time.Time{})
	require.NoError(t, err)

	result, err := second.QueryBus.Ask(ctx, queries.GetNodeTrendsQuery{UserID: userID, LookbackDays: 30})
	require.NoError(t, err)
	trends := result.(*queries.NodeTrendsResult)

	// Assert
	assert.Contains(t, ids, "project_p1")
	assert.Contains(t, ids, "relationship_r1")
	assert.Len(t, after, len(written), "an unchanged graph records nothing new")

	trended := make([]string, 0, len(trends.Trends))
	for _, tr := range trends.Trends {
		trended = append(trended, tr.NodeID)
	}
	assert.Contains(t, trended, "project_p1")
	assert.Contains(t, trended, "relationship_r1")
}

func TestSQLiteFlow_DailyEntriesAndStatistics(t *testing.T) {
	ctx := context.Background()
	container, cleanup, err := di.InitializeContainer(ctx, sqliteConfig(filepath.Join(t.TempDir(), "observador.db")))
	require.NoError(t, err)
	defer cleanup()

	// Arrange
	today := time.Now().UTC().Truncate(24 * time.Hour)
	for i := 0; i < 3; i++ {
		require.NoError(t, container.CommandBus.Send(ctx, commands.SaveDailyEntryCommand{
			EntryID:        "e" + string(rune('a'+i)),
			UserID:         userID,
			Date:           today.AddDate(0, 0, -i),
			EmotionalState: entities.Float(7),
			EnergyLevel:    entities.Float(6),
		}))
	}

	// Act
	result, err := container.QueryBus.Ask(ctx, queries.GetEntryStatisticsQuery{UserID: userID, Days: 7})

	// Assert
	require.NoError(t, err)
	stats := result.(*queries.EntryStatisticsResult)
	assert.Equal(t, 7, stats.Days)
	assert.Equal(t, 3, stats.TotalEntries)
}
