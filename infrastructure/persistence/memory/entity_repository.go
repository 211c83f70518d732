// Package memory keeps every repository in process memory. It backs local
// development with STORAGE_DRIVER=memory and stands in for DynamoDB in tests.
package memory

import (
	"context"
	"sync"

	"observador-backend/application/ports"
	"observador-backend/domain/core/entities"
	"observador-backend/domain/core/valueobjects"
	pkgerrors "observador-backend/pkg/errors"
)

// EntityRepository stores entities keyed by user and node id
type EntityRepository struct {
	mu    sync.RWMutex
	items map[string]map[string]entities.Entity
}

// NewEntityRepository creates an empty repository
func NewEntityRepository() *EntityRepository {
	return &EntityRepository{items: make(map[string]map[string]entities.Entity)}
}

// Save stores a copy of entity, replacing any previous version
func (r *EntityRepository) Save(ctx context.Context, entity entities.Entity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	byNode, ok := r.items[entity.GetUserID()]
	if !ok {
		byNode = make(map[string]entities.Entity)
		r.items[entity.GetUserID()] = byNode
	}
	byNode[entity.NodeID().String()] = cloneEntity(entity)
	return nil
}

// GetByNodeID returns a copy of one entity
func (r *EntityRepository) GetByNodeID(ctx context.Context, userID string, nodeID valueobjects.NodeID) (entities.Entity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entity, ok := r.items[userID][nodeID.String()]
	if !ok {
		return nil, pkgerrors.ErrEntityNotFound
	}
	return cloneEntity(entity), nil
}

// ListByUser returns copies of a user's entities, each kind ordered by creation time then id
func (r *EntityRepository) ListByUser(ctx context.Context, userID string) (*ports.EntitySet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := &ports.EntitySet{}
	for _, e := range r.items[userID] {
		switch v := cloneEntity(e).(type) {
		case *entities.Project:
			set.Projects = append(set.Projects, v)
		case *entities.Relationship:
			set.Relationships = append(set.Relationships, v)
		case *entities.Intention:
			set.Intentions = append(set.Intentions, v)
		case *entities.Manifestation:
			set.Manifestations = append(set.Manifestations, v)
		}
	}
	set.Sort()
	return set, nil
}

// Ping implements ports.HealthChecker
func (r *EntityRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

func cloneEntity(e entities.Entity) entities.Entity {
	switch v := e.(type) {
	case *entities.Project:
		c := *v
		c.RelatedPeople = append([]string(nil), v.RelatedPeople...)
		return &c
	case *entities.Relationship:
		c := *v
		return &c
	case *entities.Intention:
		c := *v
		return &c
	case *entities.Manifestation:
		c := *v
		return &c
	default:
		return e
	}
}
