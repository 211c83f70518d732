package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"observador-backend/domain/core/entities"
	pkgerrors "observador-backend/pkg/errors"
)

// AgentRepository stores agent projects and their decisions
type AgentRepository struct {
	mu        sync.RWMutex
	projects  map[string]entities.AgentProject
	byKeyHash map[string]string
	decisions map[string][]entities.AgentDecision
}

// NewAgentRepository creates an empty repository
func NewAgentRepository() *AgentRepository {
	return &AgentRepository{
		projects:  make(map[string]entities.AgentProject),
		byKeyHash: make(map[string]string),
		decisions: make(map[string][]entities.AgentDecision),
	}
}

// SaveProject stores a project and indexes its key hash
func (r *AgentRepository) SaveProject(ctx context.Context, project *entities.AgentProject) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.projects[project.ID]; ok && old.APIKeyHash != project.APIKeyHash {
		delete(r.byKeyHash, old.APIKeyHash)
	}
	r.projects[project.ID] = *project
	if project.APIKeyHash != "" {
		r.byKeyHash[project.APIKeyHash] = project.ID
	}
	return nil
}

// GetProject returns a project by id
func (r *AgentRepository) GetProject(ctx context.Context, projectID string) (*entities.AgentProject, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.projects[projectID]
	if !ok {
		return nil, pkgerrors.ErrAgentProjectNotFound
	}
	return &p, nil
}

// FindProjectByKeyHash resolves the project an API key belongs to
func (r *AgentRepository) FindProjectByKeyHash(ctx context.Context, keyHash string) (*entities.AgentProject, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byKeyHash[keyHash]
	if !ok {
		return nil, pkgerrors.ErrAgentProjectNotFound
	}
	p := r.projects[id]
	return &p, nil
}

// ListProjects returns a user's projects, oldest first
func (r *AgentRepository) ListProjects(ctx context.Context, userID string) ([]*entities.AgentProject, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*entities.AgentProject{}
	for _, p := range r.projects {
		if p.UserID == userID {
			project := p
			out = append(out, &project)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// SaveDecision appends a decision
func (r *AgentRepository) SaveDecision(ctx context.Context, decision *entities.AgentDecision) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decisions[decision.UserID] = append(r.decisions[decision.UserID], *decision)
	return nil
}

// ListDecisions returns a user's decisions created at or after since, oldest first
func (r *AgentRepository) ListDecisions(ctx context.Context, userID string, since time.Time) ([]*entities.AgentDecision, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entities.AgentDecision, 0, len(r.decisions[userID]))
	for _, d := range r.decisions[userID] {
		if d.CreatedAt.Before(since) {
			continue
		}
		decision := d
		out = append(out, &decision)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
