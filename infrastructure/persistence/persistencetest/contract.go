// Package persistencetest holds the behaviour every repository backend must
// share. Backends run it from their own tests.
package persistencetest

import (
	"context"
	"testing"
	"time"

	"observador-backend/application/ports"
	"observador-backend/domain/core/entities"
	"observador-backend/domain/core/valueobjects"
	pkgerrors "observador-backend/pkg/errors"
	"observador-backend/tests/fixtures"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Repositories is one backend's set of ports
type Repositories struct {
	Entities  ports.EntityRepository
	Entries   ports.DailyEntryRepository
	Snapshots ports.SnapshotRepository
	Progress  ports.UserProgressRepository
	Agents    ports.AgentRepository
}

// Run executes the contract against fresh repositories from factory
func Run(t *testing.T, factory func(t *testing.T) Repositories) {
	t.Run("entities", func(t *testing.T) { testEntities(t, factory(t)) })
	t.Run("daily entries", func(t *testing.T) { testEntries(t, factory(t)) })
	t.Run("snapshots", func(t *testing.T) { testSnapshots(t, factory(t)) })
	t.Run("progress", func(t *testing.T) { testProgress(t, factory(t)) })
	t.Run("agents", func(t *testing.T) { testAgents(t, factory(t)) })
}

func testEntities(t *testing.T, repos Repositories) {
	ctx := context.Background()

	second := fixtures.NewProjectBuilder().WithID("p2").WithName("Second").Build()
	second.CreatedAt = fixtures.FixedNow.Add(time.Minute)
	first := fixtures.NewProjectBuilder().WithID("p1").WithName("First").Build()
	person := fixtures.NewRelationshipBuilder().WithID("r1").Build()
	foreign := fixtures.NewManifestationBuilder().WithID("m1").Build()
	foreign.UserID = "someone-else"

	for _, e := range []entities.Entity{second, first, person, foreign} {
		require.NoError(t, repos.Entities.Save(ctx, e))
	}

	set, err := repos.Entities.ListByUser(ctx, fixtures.TestUserID)
	require.NoError(t, err)
	require.Len(t, set.Projects, 2)
	assert.Equal(t, "p1", set.Projects[0].ID)
	assert.Equal(t, "p2", set.Projects[1].ID)
	assert.Len(t, set.Relationships, 1)
	assert.Empty(t, set.Manifestations)

	// Updates replace rather than duplicate
	first.Name = "Renamed"
	require.NoError(t, repos.Entities.Save(ctx, first))
	got, err := repos.Entities.GetByNodeID(ctx, fixtures.TestUserID, first.NodeID())
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.(*entities.Project).Name)

	set, err = repos.Entities.ListByUser(ctx, fixtures.TestUserID)
	require.NoError(t, err)
	assert.Len(t, set.Projects, 2)

	_, err = repos.Entities.GetByNodeID(ctx, fixtures.TestUserID,
		valueobjects.NewNodeID(valueobjects.NodeTypeProject, "missing"))
	assert.ErrorIs(t, err, pkgerrors.ErrEntityNotFound)

	// Other users' records stay invisible
	_, err = repos.Entities.GetByNodeID(ctx, fixtures.TestUserID, foreign.NodeID())
	assert.ErrorIs(t, err, pkgerrors.ErrEntityNotFound)
}

func testEntries(t *testing.T, repos Repositories) {
	ctx := context.Background()

	for _, days := range []int{0, 5, 12} {
		entry := fixtures.NewDailyEntryBuilder().OnDaysAgo(days).Build()
		require.NoError(t, repos.Entries.Save(ctx, entry))
	}
	replacement := fixtures.NewDailyEntryBuilder().WithLevels(2, 3).Build()
	require.NoError(t, repos.Entries.Save(ctx, replacement))

	all, err := repos.Entries.ListByUser(ctx, fixtures.TestUserID, time.Time{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].Date.Before(all[1].Date))
	assert.Equal(t, 2.0, *all[2].EmotionalState)

	recent, err := repos.Entries.ListByUser(ctx, fixtures.TestUserID, fixtures.FixedNow.AddDate(0, 0, -5))
	require.NoError(t, err)
	assert.Len(t, recent, 2)

	none, err := repos.Entries.ListByUser(ctx, "nobody", time.Time{})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testSnapshots(t *testing.T, repos Repositories) {
	ctx := context.Background()
	nodeID := valueobjects.NewNodeID(valueobjects.NodeTypeProject, "p1")

	latest, err := repos.Snapshots.Latest(ctx, fixtures.TestUserID, nodeID)
	require.NoError(t, err)
	assert.Nil(t, latest)

	for i, energy := range []float64{3, 5, 8} {
		require.NoError(t, repos.Snapshots.Save(ctx, &entities.Snapshot{
			ID:        string(rune('a' + i)),
			UserID:    fixtures.TestUserID,
			NodeID:    nodeID.String(),
			NodeType:  valueobjects.NodeTypeProject,
			Energy:    energy,
			CreatedAt: fixtures.FixedNow.Add(time.Duration(i) * time.Hour),
		}))
	}
	require.NoError(t, repos.Snapshots.Save(ctx, &entities.Snapshot{
		ID: "other", UserID: fixtures.TestUserID, NodeID: "relationship_r1",
		Energy: 1, CreatedAt: fixtures.FixedNow.Add(10 * time.Hour),
	}))

	latest, err = repos.Snapshots.Latest(ctx, fixtures.TestUserID, nodeID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 8.0, latest.Energy)

	since, err := repos.Snapshots.ListSince(ctx, fixtures.TestUserID, fixtures.FixedNow.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, since, 3)
	assert.Equal(t, 5.0, since[0].Energy)
	assert.Equal(t, "other", since[2].ID)
}

func testProgress(t *testing.T, repos Repositories) {
	ctx := context.Background()

	missing, err := repos.Progress.Get(ctx, fixtures.TestUserID)
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repos.Progress.Save(ctx, &entities.UserProgress{
		UserID: fixtures.TestUserID, CurrentStreak: 4, LongestStreak: 7, TotalEntries: 20,
		LastEntryDate: entities.Day(fixtures.FixedNow), UpdatedAt: fixtures.FixedNow,
	}))
	require.NoError(t, repos.Progress.Save(ctx, &entities.UserProgress{
		UserID: fixtures.TestUserID, CurrentStreak: 5, LongestStreak: 7, TotalEntries: 21,
	}))

	got, err := repos.Progress.Get(ctx, fixtures.TestUserID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.CurrentStreak)
	assert.Equal(t, 21, got.TotalEntries)
}

func testAgents(t *testing.T, repos Repositories) {
	ctx := context.Background()

	newer := &entities.AgentProject{ID: "ap2", UserID: fixtures.TestUserID, Name: "B",
		APIKeyHash: "hash-b", Active: true, CreatedAt: fixtures.FixedNow.Add(time.Hour)}
	older := &entities.AgentProject{ID: "ap1", UserID: fixtures.TestUserID, Name: "A",
		APIKeyHash: "hash-a", Active: true, CreatedAt: fixtures.FixedNow}
	require.NoError(t, repos.Agents.SaveProject(ctx, newer))
	require.NoError(t, repos.Agents.SaveProject(ctx, older))

	projects, err := repos.Agents.ListProjects(ctx, fixtures.TestUserID)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "ap1", projects[0].ID)

	found, err := repos.Agents.FindProjectByKeyHash(ctx, "hash-b")
	require.NoError(t, err)
	assert.Equal(t, "ap2", found.ID)
	assert.Equal(t, "hash-b", found.APIKeyHash)

	// Rotating the key retires the old hash
	older.APIKeyHash = "hash-a2"
	require.NoError(t, repos.Agents.SaveProject(ctx, older))
	_, err = repos.Agents.FindProjectByKeyHash(ctx, "hash-a")
	assert.True(t, pkgerrors.IsDomainType(err, pkgerrors.DomainNotFoundError))

	_, err = repos.Agents.GetProject(ctx, "missing")
	assert.True(t, pkgerrors.IsDomainType(err, pkgerrors.DomainNotFoundError))

	empty, err := repos.Agents.ListProjects(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	for i, offset := range []time.Duration{-48 * time.Hour, 0, time.Hour} {
		require.NoError(t, repos.Agents.SaveDecision(ctx, &entities.AgentDecision{
			ID:             string(rune('x' + i)),
			ProjectID:      "ap1",
			UserID:         fixtures.TestUserID,
			AgentName:      "bot",
			DecisionType:   "pricing",
			RevenueImpact:  float64(i * 10),
			CoherenceScore: entities.Float(70),
			CreatedAt:      fixtures.FixedNow.Add(offset),
		}))
	}

	decisions, err := repos.Agents.ListDecisions(ctx, fixtures.TestUserID, fixtures.FixedNow.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, decisions, 2)
	assert.Equal(t, 10.0, decisions[0].RevenueImpact)
	assert.Equal(t, 20.0, decisions[1].RevenueImpact)
}
