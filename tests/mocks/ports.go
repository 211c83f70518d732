// Package mocks holds testify mocks for the application ports
package mocks

import (
	"context"
	"time"

	"observador-backend/application/ports"
	"observador-backend/domain/config"
	"observador-backend/domain/core/entities"
	"observador-backend/domain/core/valueobjects"
	"observador-backend/domain/events"

	"github.com/stretchr/testify/mock"
)

type MockEntityRepository struct {
	mock.Mock
}

func (m *MockEntityRepository) Save(ctx context.Context, entity entities.Entity) error {
	args := m.Called(ctx, entity)
	return args.Error(0)
}

func (m *MockEntityRepository) GetByNodeID(ctx context.Context, userID string, nodeID valueobjects.NodeID) (entities.Entity, error) {
	args := m.Called(ctx, userID, nodeID)
	if v := args.Get(0); v != nil {
		return v.(entities.Entity), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockEntityRepository) ListByUser(ctx context.Context, userID string) (*ports.EntitySet, error) {
	args := m.Called(ctx, userID)
	if v := args.Get(0); v != nil {
		return v.(*ports.EntitySet), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockDailyEntryRepository struct {
	mock.Mock
}

func (m *MockDailyEntryRepository) Save(ctx context.Context, entry *entities.DailyEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockDailyEntryRepository) ListByUser(ctx context.Context, userID string, since time.Time) ([]*entities.DailyEntry, error) {
	args := m.Called(ctx, userID, since)
	if v := args.Get(0); v != nil {
		return v.([]*entities.DailyEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockSnapshotRepository struct {
	mock.Mock
}

func (m *MockSnapshotRepository) Latest(ctx context.Context, userID string, nodeID valueobjects.NodeID) (*entities.Snapshot, error) {
	args := m.Called(ctx, userID, nodeID)
	if v := args.Get(0); v != nil {
		return v.(*entities.Snapshot), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSnapshotRepository) Save(ctx context.Context, snapshot *entities.Snapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func (m *MockSnapshotRepository) ListSince(ctx context.Context, userID string, since time.Time) ([]*entities.Snapshot, error) {
	args := m.Called(ctx, userID, since)
	if v := args.Get(0); v != nil {
		return v.([]*entities.Snapshot), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockUserProgressRepository struct {
	mock.Mock
}

func (m *MockUserProgressRepository) Get(ctx context.Context, userID string) (*entities.UserProgress, error) {
	args := m.Called(ctx, userID)
	if v := args.Get(0); v != nil {
		return v.(*entities.UserProgress), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserProgressRepository) Save(ctx context.Context, progress *entities.UserProgress) error {
	args := m.Called(ctx, progress)
	return args.Error(0)
}

type MockAgentRepository struct {
	mock.Mock
}

func (m *MockAgentRepository) SaveProject(ctx context.Context, project *entities.AgentProject) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockAgentRepository) GetProject(ctx context.Context, projectID string) (*entities.AgentProject, error) {
	args := m.Called(ctx, projectID)
	if v := args.Get(0); v != nil {
		return v.(*entities.AgentProject), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAgentRepository) FindProjectByKeyHash(ctx context.Context, keyHash string) (*entities.AgentProject, error) {
	args := m.Called(ctx, keyHash)
	if v := args.Get(0); v != nil {
		return v.(*entities.AgentProject), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAgentRepository) ListProjects(ctx context.Context, userID string) ([]*entities.AgentProject, error) {
	args := m.Called(ctx, userID)
	if v := args.Get(0); v != nil {
		return v.([]*entities.AgentProject), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAgentRepository) SaveDecision(ctx context.Context, decision *entities.AgentDecision) error {
	args := m.Called(ctx, decision)
	return args.Error(0)
}

func (m *MockAgentRepository) ListDecisions(ctx context.Context, userID string, since time.Time) ([]*entities.AgentDecision, error) {
	args := m.Called(ctx, userID, since)
	if v := args.Get(0); v != nil {
		return v.([]*entities.AgentDecision), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

// StaticConfig serves a fixed MetricsConfig
type StaticConfig struct {
	Config *config.MetricsConfig
}

func (s StaticConfig) Current() *config.MetricsConfig {
	if s.Config == nil {
		return config.DefaultMetricsConfig()
	}
	return s.Config
}
