package ports

import (
	"context"
	"sort"
	"time"

	"observador-backend/domain/config"
	"observador-backend/domain/core/entities"
	"observador-backend/domain/core/valueobjects"
	"observador-backend/domain/events"
)

// EntitySet holds every entity a user owns, grouped by kind
type EntitySet struct {
	Projects       []*entities.Project
	Relationships  []*entities.Relationship
	Intentions     []*entities.Intention
	Manifestations []*entities.Manifestation
}

// Len returns the number of entities across all kinds
func (s *EntitySet) Len() int {
	return len(s.Projects) + len(s.Relationships) + len(s.Intentions) + len(s.Manifestations)
}

// Sort orders each kind by creation time, then id. Repositories call it so
// every backend yields the same layout for the same records.
func (s *EntitySet) Sort() {
	sortEntities(s.Projects)
	sortEntities(s.Relationships)
	sortEntities(s.Intentions)
	sortEntities(s.Manifestations)
}

func sortEntities[T entities.Entity](items []T) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].GetCreatedAt(), items[j].GetCreatedAt()
		if !a.Equal(b) {
			return a.Before(b)
		}
		return items[i].GetID() < items[j].GetID()
	})
}

// EntityRepository persists the four entity kinds behind one port.
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type EntityRepository interface {
	// Save persists an entity (create or update)
	Save(ctx context.Context, entity entities.Entity) error

	// GetByNodeID retrieves one entity by its composite node id
	GetByNodeID(ctx context.Context, userID string, nodeID valueobjects.NodeID) (entities.Entity, error)

	// ListByUser retrieves all entities owned by a user
	ListByUser(ctx context.Context, userID string) (*EntitySet, error)
}

// DailyEntryRepository persists daily journal entries
type DailyEntryRepository interface {
	// Save persists an entry; one entry per user and day, later saves overwrite
	Save(ctx context.Context, entry *entities.DailyEntry) error

	// ListByUser retrieves entries dated on or after since, oldest first.
	// A zero since returns the full history.
	ListByUser(ctx context.Context, userID string, since time.Time) ([]*entities.DailyEntry, error)
}

// SnapshotRepository persists node metric snapshots
type SnapshotRepository interface {
	// Latest returns the newest snapshot for a node, or nil when there is none
	Latest(ctx context.Context, userID string, nodeID valueobjects.NodeID) (*entities.Snapshot, error)

	// Save persists a snapshot
	Save(ctx context.Context, snapshot *entities.Snapshot) error

	// ListSince retrieves a user's snapshots created at or after since, oldest first
	ListSince(ctx context.Context, userID string, since time.Time) ([]*entities.Snapshot, error)
}

// UserProgressRepository persists the streak counters written back after each entry
type UserProgressRepository interface {
	// Get returns the stored progress, or nil when the user has none yet
	Get(ctx context.Context, userID string) (*entities.UserProgress, error)

	// Save persists progress
	Save(ctx context.Context, progress *entities.UserProgress) error
}

// AgentRepository persists agent projects and the decisions they report
type AgentRepository interface {
	SaveProject(ctx context.Context, project *entities.AgentProject) error
	GetProject(ctx context.Context, projectID string) (*entities.AgentProject, error)
	FindProjectByKeyHash(ctx context.Context, keyHash string) (*entities.AgentProject, error)
	ListProjects(ctx context.Context, userID string) ([]*entities.AgentProject, error)

	SaveDecision(ctx context.Context, decision *entities.AgentDecision) error
	// ListDecisions retrieves a user's decisions created at or after since, oldest first
	ListDecisions(ctx context.Context, userID string, since time.Time) ([]*entities.AgentDecision, error)
}

// HealthChecker is implemented by stores that can report readiness
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// Cache defines the interface for caching
type Cache interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) (interface{}, bool)

	// Set stores a value in cache with TTL in seconds
	Set(ctx context.Context, key string, value interface{}, ttl int) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// DeletePrefix removes every key starting with prefix
	DeletePrefix(ctx context.Context, prefix string) error
}

// MetricsConfigProvider returns the thresholds in force for this call.
// Implementations may swap the value between calls.
type MetricsConfigProvider interface {
	Current() *config.MetricsConfig
}
