package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"observador-backend/domain/core/entities"
	pkgerrors "observador-backend/pkg/errors"
)

// AgentRepository implements ports.AgentRepository
type AgentRepository struct{ store *Store }

// NewAgentRepository creates a new AgentRepository
func NewAgentRepository(store *Store) *AgentRepository {
	return &AgentRepository{store: store}
}

// SaveProject upserts a project. The key hash lives in its own column since
// the document encoding leaves it out.
func (r *AgentRepository) SaveProject(ctx context.Context, project *entities.AgentProject) error {
	body, err := json.Marshal(project)
	if err != nil {
		return fmt.Errorf("failed to marshal agent project: %w", err)
	}
	_, err = r.store.db.ExecContext(ctx, `
		INSERT INTO agent_projects (id, user_id, api_key_hash, created_at, body)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			user_id = excluded.user_id,
			api_key_hash = excluded.api_key_hash,
			created_at = excluded.created_at,
			body = excluded.body`,
		project.ID, project.UserID, project.APIKeyHash, timeKey(project.CreatedAt), string(body))
	if err != nil {
		return pkgerrors.NewDatabaseError("save agent project", err)
	}
	return nil
}

// GetProject loads a project by id
func (r *AgentRepository) GetProject(ctx context.Context, projectID string) (*entities.AgentProject, error) {
	projects, err := r.queryProjects(ctx, "get agent project",
		`SELECT api_key_hash, body FROM agent_projects WHERE id = ?`, projectID)
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return nil, pkgerrors.ErrAgentProjectNotFound.Clone()
	}
	return projects[0], nil
}

// FindProjectByKeyHash resolves the project a webhook key belongs to
func (r *AgentRepository) FindProjectByKeyHash(ctx context.Context, keyHash string) (*entities.AgentProject, error) {
	projects, err := r.queryProjects(ctx, "find agent project",
		`SELECT api_key_hash, body FROM agent_projects WHERE api_key_hash = ? AND api_key_hash != ''`, keyHash)
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return nil, pkgerrors.ErrAgentProjectNotFound.Clone()
	}
	return projects[0], nil
}

// ListProjects returns a user's projects oldest first
func (r *AgentRepository) ListProjects(ctx context.Context, userID string) ([]*entities.AgentProject, error) {
	return r.queryProjects(ctx, "list agent projects",
		`SELECT api_key_hash, body FROM agent_projects WHERE user_id = ? ORDER BY created_at, id`, userID)
}

func (r *AgentRepository) queryProjects(ctx context.Context, op, query string, args ...any) ([]*entities.AgentProject, error) {
	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError(op, err)
	}
	defer rows.Close()

	projects := make([]*entities.AgentProject, 0)
	for rows.Next() {
		var hash, body string
		if err := rows.Scan(&hash, &body); err != nil {
			return nil, pkgerrors.NewDatabaseError(op, err)
		}
		var project entities.AgentProject
		if err := json.Unmarshal([]byte(body), &project); err != nil {
			return nil, fmt.Errorf("%s: failed to unmarshal row: %w", op, err)
		}
		project.APIKeyHash = hash
		projects = append(projects, &project)
	}
	if err := rows.Err(); err != nil {
		return nil, pkgerrors.NewDatabaseError(op, err)
	}
	return projects, nil
}

// SaveDecision appends a decision
func (r *AgentRepository) SaveDecision(ctx context.Context, decision *entities.AgentDecision) error {
	body, err := json.Marshal(decision)
	if err != nil {
		return fmt.Errorf("failed to marshal decision: %w", err)
	}
	_, err = r.store.db.ExecContext(ctx, `
		INSERT INTO agent_decisions (id, user_id, project_id, created_at, body)
		VALUES (?, ?, ?, ?, ?)`,
		decision.ID, decision.UserID, decision.ProjectID, timeKey(decision.CreatedAt), string(body))
	if err != nil {
		return pkgerrors.NewDatabaseError("save agent decision", err)
	}
	return nil
}

// ListDecisions returns decisions at or after since, oldest first
func (r *AgentRepository) ListDecisions(ctx context.Context, userID string, since time.Time) ([]*entities.AgentDecision, error) {
	from := ""
	if !since.IsZero() {
		from = timeKey(since)
	}
	return queryDocs[entities.AgentDecision](ctx, r.store.db, "list agent decisions", `
		SELECT body FROM agent_decisions WHERE user_id = ? AND created_at >= ?
		ORDER BY created_at, id`, userID, from)
}
