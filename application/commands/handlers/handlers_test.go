package handlers

import (
	"context"
	"errors"
	"testing"
	"time"

	"observador-backend/application/commands"
	"observador-backend/application/services"
	"observador-backend/domain/core/entities"
	"observador-backend/domain/core/valueobjects"
	"observador-backend/domain/events"
	"observador-backend/infrastructure/persistence/memory"
	"observador-backend/pkg/auth"
	pkgerrors "observador-backend/pkg/errors"
	"observador-backend/tests/fixtures"
	"observador-backend/tests/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type entityHarness struct {
	entities  *memory.EntityRepository
	entries   *memory.DailyEntryRepository
	snapshots *memory.SnapshotRepository
	publisher *mocks.MockEventPublisher
	handler   *SaveEntityHandler
}

func newEntityHarness(t *testing.T) *entityHarness {
	t.Helper()
	h := &entityHarness{
		entities:  memory.NewEntityRepository(),
		entries:   memory.NewDailyEntryRepository(),
		snapshots: memory.NewSnapshotRepository(),
		publisher: new(mocks.MockEventPublisher),
	}
	configs := mocks.StaticConfig{}
	analyzer := services.NewSystemAnalyzer(h.entities, h.entries, configs, zap.NewNop())
	recorder := services.NewSnapshotRecorder(h.snapshots, h.publisher, configs, zap.NewNop())
	h.handler = NewSaveEntityHandler(h.entities, analyzer, recorder, h.publisher, zap.NewNop())
	h.handler.now = func() time.Time { return fixtures.FixedNow }
	return h
}

func projectCommand(id, name string) commands.SaveProjectCommand {
	return commands.SaveProjectCommand{
		ProjectID:      id,
		UserID:         fixtures.TestUserID,
		Name:           name,
		Progress:       entities.Float(60),
		Satisfaction:   entities.Float(8),
		EnergyInvested: entities.Float(7),
		ImpactLevel:    entities.Float(9),
	}
}

func TestSaveEntityHandler_CreatesAndSnapshots(t *testing.T) {
	// Arrange
	h := newEntityHarness(t)
	var published events.EntitySaved
	h.publisher.On("PublishBatch", mock.Anything, mock.Anything).Return(nil)
	h.publisher.On("Publish", mock.Anything, mock.AnythingOfType("events.EntitySaved")).
		Run(func(args mock.Arguments) { published = args.Get(1).(events.EntitySaved) }).
		Return(nil)
	ctx := context.Background()

	// Act
	err := h.handler.Handle(ctx, projectCommand("p1", "Studio"))

	// Assert
	require.NoError(t, err)
	nodeID := valueobjects.NewNodeID(valueobjects.NodeTypeProject, "p1")
	stored, err := h.entities.GetByNodeID(ctx, fixtures.TestUserID, nodeID)
	require.NoError(t, err)
	assert.Equal(t, fixtures.FixedNow, stored.GetCreatedAt())

	latest, err := h.snapshots.Latest(ctx, fixtures.TestUserID, nodeID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, entities.TriggerInitial, latest.TriggerReason)

	assert.Equal(t, "project_p1", published.NodeID)
	assert.Greater(t, published.Energy, 0.0)
	h.publisher.AssertExpectations(t)
}

func TestSaveEntityHandler_UpdateKeepsCreatedAt(t *testing.T) {
	// Arrange
	h := newEntityHarness(t)
	h.publisher.On("PublishBatch", mock.Anything, mock.Anything).Return(nil)
	h.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)
	ctx := context.Background()
	require.NoError(t, h.handler.Handle(ctx, projectCommand("p1", "Studio")))

	// Act
	later := fixtures.FixedNow.Add(48 * time.Hour)
	h.handler.now = func() time.Time { return later }
	require.NoError(t, h.handler.Handle(ctx, projectCommand("p1", "Studio v2")))

	// Assert
	set, err := h.entities.ListByUser(ctx, fixtures.TestUserID)
	require.NoError(t, err)
	require.Len(t, set.Projects, 1)
	project := set.Projects[0]
	assert.Equal(t, "Studio v2", project.Name)
	assert.Equal(t, fixtures.FixedNow, project.CreatedAt)
	assert.Equal(t, later, project.UpdatedAt)
}

func TestSaveEntityHandler_RejectsInvalidEntity(t *testing.T) {
	h := newEntityHarness(t)
	cmd := projectCommand("p1", "   ")
	cmd.Progress = entities.Float(140)

	err := h.handler.Handle(context.Background(), cmd)

	require.Error(t, err)
	set, listErr := h.entities.ListByUser(context.Background(), fixtures.TestUserID)
	require.NoError(t, listErr)
	assert.Zero(t, set.Len())
	h.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestSaveEntityHandler_PublishFailureDoesNotFailSave(t *testing.T) {
	h := newEntityHarness(t)
	h.publisher.On("PublishBatch", mock.Anything, mock.Anything).Return(errors.New("bus down"))
	h.publisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("bus down"))

	err := h.handler.Handle(context.Background(), commands.SaveRelationshipCommand{
		RelationshipID: "r1",
		UserID:         fixtures.TestUserID,
		Name:           "Ana",
	})

	assert.NoError(t, err)
}

func TestSaveEntityHandler_LinksRelatedNodes(t *testing.T) {
	// Arrange
	h := newEntityHarness(t)
	h.publisher.On("PublishBatch", mock.Anything, mock.Anything).Return(nil)
	h.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)
	ctx := context.Background()
	require.NoError(t, h.handler.Handle(ctx, projectCommand("p1", "Studio")))

	// Act
	require.NoError(t, h.handler.Handle(ctx, commands.SaveIntentionCommand{
		IntentionID:      "i1",
		UserID:           fixtures.TestUserID,
		Title:            "Practice daily",
		RelatedProjectID: "p1",
		CurrentStreak:    entities.Int(3),
	}))

	// Assert: the project gained a connection, so both nodes have snapshots
	history, err := h.snapshots.ListSince(ctx, fixtures.TestUserID, time.Time{})
	require.NoError(t, err)
	nodes := map[string]int{}
	for _, s := range history {
		nodes[s.NodeID]++
	}
	assert.Equal(t, 2, nodes["project_p1"])
	assert.Equal(t, 1, nodes["intention_i1"])
}

func TestSaveDailyEntryHandler(t *testing.T) {
	newHandler := func(t *testing.T) (*SaveDailyEntryHandler, *memory.UserProgressRepository, *mocks.MockEventPublisher) {
		progress := memory.NewUserProgressRepository()
		publisher := new(mocks.MockEventPublisher)
		h := NewSaveDailyEntryHandler(memory.NewDailyEntryRepository(), progress, publisher, mocks.StaticConfig{}, zap.NewNop())
		h.now = func() time.Time { return fixtures.FixedNow }
		return h, progress, publisher
	}
	entryFor := func(daysAgo int) commands.SaveDailyEntryCommand {
		return commands.SaveDailyEntryCommand{
			EntryID:        "e" + string(rune('0'+daysAgo)),
			UserID:         fixtures.TestUserID,
			Date:           fixtures.FixedNow.AddDate(0, 0, -daysAgo),
			EmotionalState: entities.Float(7),
			EnergyLevel:    entities.Float(6),
		}
	}

	t.Run("writes streaks back to progress", func(t *testing.T) {
		// Arrange
		h, progress, publisher := newHandler(t)
		publisher.On("Publish", mock.Anything, mock.AnythingOfType("events.DailyEntrySaved")).Return(nil)
		ctx := context.Background()

		// Act
		for _, days := range []int{5, 2, 1, 0} {
			require.NoError(t, h.Handle(ctx, entryFor(days)))
		}

		// Assert
		got, err := progress.Get(ctx, fixtures.TestUserID)
		require.NoError(t, err)
		assert.Equal(t, 3, got.CurrentStreak)
		assert.Equal(t, 3, got.LongestStreak)
		assert.Equal(t, 4, got.TotalEntries)
		assert.Equal(t, entities.Day(fixtures.FixedNow), got.LastEntryDate)
		publisher.AssertNumberOfCalls(t, "Publish", 4)
	})

	t.Run("same day replaces and derives coherence", func(t *testing.T) {
		h, progress, publisher := newHandler(t)
		publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)
		ctx := context.Background()

		require.NoError(t, h.Handle(ctx, entryFor(0)))
		require.NoError(t, h.Handle(ctx, entryFor(0)))

		entries, err := h.entryRepo.ListByUser(ctx, fixtures.TestUserID, time.Time{})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		require.NotNil(t, entries[0].CoherenceLevel)
		assert.Greater(t, *entries[0].CoherenceLevel, 0.0)

		got, err := progress.Get(ctx, fixtures.TestUserID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.TotalEntries)
	})

	t.Run("replacing a day keeps its creation time", func(t *testing.T) {
		// Arrange
		h, _, publisher := newHandler(t)
		publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)
		ctx := context.Background()
		later := fixtures.FixedNow.Add(3 * time.Hour)
		require.NoError(t, h.Handle(ctx, entryFor(0)))
		h.now = func() time.Time { return later }

		// Act
		require.NoError(t, h.Handle(ctx, entryFor(0)))

		// Assert
		entries, err := h.entryRepo.ListByUser(ctx, fixtures.TestUserID, time.Time{})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, fixtures.FixedNow, entries[0].CreatedAt)
		assert.Equal(t, later, entries[0].UpdatedAt)
	})

	t.Run("future dates are rejected", func(t *testing.T) {
		h, progress, publisher := newHandler(t)
		cmd := entryFor(0)
		cmd.Date = fixtures.FixedNow.AddDate(0, 0, 2)

		err := h.Handle(context.Background(), cmd)

		assert.ErrorContains(t, err, "future")
		got, _ := progress.Get(context.Background(), fixtures.TestUserID)
		assert.Nil(t, got)
		publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})
}

func TestAgentHandlers(t *testing.T) {
	ctx := context.Background()
	key := auth.GenerateAPIKey()

	setup := func(t *testing.T) (*memory.AgentRepository, *mocks.MockEventPublisher, *RecordAgentDecisionHandler) {
		repo := memory.NewAgentRepository()
		register := NewRegisterAgentProjectHandler(repo, zap.NewNop())
		register.now = func() time.Time { return fixtures.FixedNow }
		require.NoError(t, register.Handle(ctx, commands.RegisterAgentProjectCommand{
			ProjectID: "ap1",
			UserID:    fixtures.TestUserID,
			Name:      "Pricing bot",
			APIKey:    key,
		}))
		publisher := new(mocks.MockEventPublisher)
		record := NewRecordAgentDecisionHandler(repo, publisher, zap.NewNop())
		record.now = func() time.Time { return fixtures.FixedNow }
		return repo, publisher, record
	}
	decision := func(userID string) commands.RecordAgentDecisionCommand {
		return commands.RecordAgentDecisionCommand{
			DecisionID:     "d1",
			ProjectID:      "ap1",
			UserID:         userID,
			AgentName:      "pricing-agent",
			DecisionType:   "discount",
			RevenueImpact:  250,
			CoherenceScore: entities.Float(82),
		}
	}

	t.Run("register stores only the key hash", func(t *testing.T) {
		repo, _, _ := setup(t)

		project, err := repo.FindProjectByKeyHash(ctx, auth.HashAPIKey(key))

		require.NoError(t, err)
		assert.Equal(t, "ap1", project.ID)
		assert.True(t, project.Active)
		assert.NotEqual(t, key, project.APIKeyHash)
		assert.Equal(t, auth.KeyPrefix(key), project.APIKeyPrefix)
	})

	t.Run("decision is stored and published", func(t *testing.T) {
		repo, publisher, record := setup(t)
		publisher.On("Publish", mock.Anything, mock.AnythingOfType("events.AgentDecisionRecorded")).Return(nil)

		require.NoError(t, record.Handle(ctx, decision(fixtures.TestUserID)))

		stored, err := repo.ListDecisions(ctx, fixtures.TestUserID, time.Time{})
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.Equal(t, 250.0, stored[0].RevenueImpact)
		assert.Equal(t, fixtures.FixedNow, stored[0].CreatedAt)
		publisher.AssertExpectations(t)
	})

	t.Run("foreign user is refused", func(t *testing.T) {
		_, _, record := setup(t)

		err := record.Handle(ctx, decision("intruder"))

		assert.ErrorIs(t, err, pkgerrors.ErrUserNotAuthorized)
	})

	t.Run("inactive project is refused", func(t *testing.T) {
		repo, _, record := setup(t)
		project, err := repo.GetProject(ctx, "ap1")
		require.NoError(t, err)
		project.Active = false
		require.NoError(t, repo.SaveProject(ctx, project))

		err = record.Handle(ctx, decision(fixtures.TestUserID))

		assert.ErrorIs(t, err, pkgerrors.ErrAgentProjectInactive)
	})

	t.Run("unknown project", func(t *testing.T) {
		_, _, record := setup(t)
		cmd := decision(fixtures.TestUserID)
		cmd.ProjectID = "missing"

		err := record.Handle(ctx, cmd)

		assert.True(t, pkgerrors.IsDomainType(err, pkgerrors.DomainNotFoundError))
	})
}

func TestRecordSnapshotsHandler(t *testing.T) {
	// Arrange
	ctx := context.Background()
	entityRepo := memory.NewEntityRepository()
	snapshotRepo := memory.NewSnapshotRepository()
	publisher := new(mocks.MockEventPublisher)
	publisher.On("PublishBatch", mock.Anything, mock.Anything).Return(nil)
	configs := mocks.StaticConfig{}
	analyzer := services.NewSystemAnalyzer(entityRepo, memory.NewDailyEntryRepository(), configs, zap.NewNop())
	recorder := services.NewSnapshotRecorder(snapshotRepo, publisher, configs, zap.NewNop())
	handler := NewRecordSnapshotsHandler(analyzer, recorder)

	require.NoError(t, entityRepo.Save(ctx, fixtures.NewProjectBuilder().WithID("p1").Build()))
	require.NoError(t, entityRepo.Save(ctx, fixtures.NewRelationshipBuilder().WithID("r1").Build()))

	count := func() int {
		history, err := snapshotRepo.ListSince(ctx, fixtures.TestUserID, time.Time{})
		require.NoError(t, err)
		return len(history)
	}

	// Act + Assert
	require.NoError(t, handler.Handle(ctx, commands.RecordSnapshotsCommand{UserID: fixtures.TestUserID, NodeID: "project_p1"}))
	assert.Equal(t, 1, count())

	require.NoError(t, handler.Handle(ctx, commands.RecordSnapshotsCommand{UserID: fixtures.TestUserID}))
	assert.Equal(t, 2, count(), "only the relationship was new")

	require.NoError(t, handler.Handle(ctx, commands.RecordSnapshotsCommand{UserID: fixtures.TestUserID}))
	assert.Equal(t, 2, count(), "unchanged nodes are not recorded again")

	require.NoError(t, handler.Handle(ctx, commands.RecordSnapshotsCommand{UserID: fixtures.TestUserID, NodeID: "intention_gone"}))
	assert.Equal(t, 2, count())

	require.NoError(t, handler.Handle(ctx, commands.RecordSnapshotsCommand{UserID: fixtures.TestUserID, NodeID: "self_" + fixtures.TestUserID}))
	assert.Equal(t, 2, count())
}
