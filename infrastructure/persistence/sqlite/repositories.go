package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"observador-backend/application/ports"
	"observador-backend/domain/core/entities"
	"observador-backend/domain/core/valueobjects"
	pkgerrors "observador-backend/pkg/errors"
)

// EntityRepository implements ports.EntityRepository
type EntityRepository struct{ store *Store }

// NewEntityRepository creates a new EntityRepository
func NewEntityRepository(store *Store) *EntityRepository {
	return &EntityRepository{store: store}
}

// Save upserts the entity document
func (r *EntityRepository) Save(ctx context.Context, entity entities.Entity) error {
	body, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}
	_, err = r.store.db.ExecContext(ctx, `
		INSERT INTO entities (user_id, node_type, entity_id, created_at, body)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, node_type, entity_id)
		DO UPDATE SET created_at = excluded.created_at, body = excluded.body`,
		entity.GetUserID(), string(entity.Kind()), entity.GetID(), timeKey(entity.GetCreatedAt()), string(body))
	if err != nil {
		return pkgerrors.NewDatabaseError("save entity", err)
	}
	return nil
}

// GetByNodeID loads one entity
func (r *EntityRepository) GetByNodeID(ctx context.Context, userID string, nodeID valueobjects.NodeID) (entities.Entity, error) {
	var body string
	err := r.store.db.QueryRowContext(ctx,
		`SELECT body FROM entities WHERE user_id = ? AND node_type = ? AND entity_id = ?`,
		userID, string(nodeID.Type()), nodeID.EntityID()).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.ErrEntityNotFound
	}
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get entity", err)
	}
	return decodeEntity(nodeID.Type(), body)
}

// ListByUser loads all of a user's entities grouped by kind
func (r *EntityRepository) ListByUser(ctx context.Context, userID string) (*ports.EntitySet, error) {
	rows, err := r.store.db.QueryContext(ctx,
		`SELECT node_type, body FROM entities WHERE user_id = ? ORDER BY created_at, entity_id`, userID)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("list entities", err)
	}
	defer rows.Close()

	set := &ports.EntitySet{}
	for rows.Next() {
		var kind, body string
		if err := rows.Scan(&kind, &body); err != nil {
			return nil, pkgerrors.NewDatabaseError("scan entity", err)
		}
		entity, err := decodeEntity(valueobjects.NodeType(kind), body)
		if err != nil {
			return nil, err
		}
		switch v := entity.(type) {
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
	if err := rows.Err(); err != nil {
		return nil, pkgerrors.NewDatabaseError("list entities", err)
	}
	set.Sort()
	return set, nil
}

func decodeEntity(kind valueobjects.NodeType, body string) (entities.Entity, error) {
	var entity entities.Entity
	switch kind {
	case valueobjects.NodeTypeProject:
		entity = &entities.Project{}
	case valueobjects.NodeTypeRelationship:
		entity = &entities.Relationship{}
	case valueobjects.NodeTypeIntention:
		entity = &entities.Intention{}
	case valueobjects.NodeTypeManifestation:
		entity = &entities.Manifestation{}
	default:
		return nil, fmt.Errorf("unknown entity kind %q", kind)
	}
	if err := json.Unmarshal([]byte(body), entity); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", kind, err)
	}
	return entity, nil
}

// DailyEntryRepository implements ports.DailyEntryRepository
type DailyEntryRepository struct{ store *Store }

// NewDailyEntryRepository creates a new DailyEntryRepository
func NewDailyEntryRepository(store *Store) *DailyEntryRepository {
	return &DailyEntryRepository{store: store}
}

// Save upserts the entry for its calendar day
func (r *DailyEntryRepository) Save(ctx context.Context, entry *entities.DailyEntry) error {
	stored := *entry
	stored.Date = entities.Day(entry.Date)
	body, err := json.Marshal(&stored)
	if err != nil {
		return fmt.Errorf("failed to marshal daily entry: %w", err)
	}
	_, err = r.store.db.ExecContext(ctx, `
		INSERT INTO daily_entries (user_id, day, body) VALUES (?, ?, ?)
		ON CONFLICT (user_id, day) DO UPDATE SET body = excluded.body`,
		entry.UserID, stored.Date.Format("2006-01-02"), string(body))
	if err != nil {
		return pkgerrors.NewDatabaseError("save daily entry", err)
	}
	return nil
}

// ListByUser returns entries on or after since, oldest first
func (r *DailyEntryRepository) ListByUser(ctx context.Context, userID string, since time.Time) ([]*entities.DailyEntry, error) {
	from := ""
	if !since.IsZero() {
		from = entities.Day(since).Format("2006-01-02")
	}
	return queryDocs[entities.DailyEntry](ctx, r.store.db, "list daily entries",
		`SELECT body FROM daily_entries WHERE user_id = ? AND day >= ? ORDER BY day`, userID, from)
}

// SnapshotRepository implements ports.SnapshotRepository
type SnapshotRepository struct{ store *Store }

// NewSnapshotRepository creates a new SnapshotRepository
func NewSnapshotRepository(store *Store) *SnapshotRepository {
	return &SnapshotRepository{store: store}
}

// Save appends a snapshot
func (r *SnapshotRepository) Save(ctx context.Context, snapshot *entities.Snapshot) error {
	body, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	_, err = r.store.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, user_id, node_id, created_at, body) VALUES (?, ?, ?, ?, ?)`,
		snapshot.ID, snapshot.UserID, snapshot.NodeID, timeKey(snapshot.CreatedAt), string(body))
	if err != nil {
		return pkgerrors.NewDatabaseError("save snapshot", err)
	}
	return nil
}

// Latest returns the newest snapshot of a node, or nil
func (r *SnapshotRepository) Latest(ctx context.Context, userID string, nodeID valueobjects.NodeID) (*entities.Snapshot, error) {
	docs, err := queryDocs[entities.Snapshot](ctx, r.store.db, "latest snapshot", `
		SELECT body FROM snapshots WHERE user_id = ? AND node_id = ?
		ORDER BY created_at DESC, id DESC LIMIT 1`, userID, nodeID.String())
	if err != nil || len(docs) == 0 {
		return nil, err
	}
	return docs[0], nil
}

// ListSince returns a user's snapshots at or after since, oldest first
func (r *SnapshotRepository) ListSince(ctx context.Context, userID string, since time.Time) ([]*entities.Snapshot, error) {
	from := ""
	if !since.IsZero() {
		from = timeKey(since)
	}
	return queryDocs[entities.Snapshot](ctx, r.store.db, "list snapshots", `
		SELECT body FROM snapshots WHERE user_id = ? AND created_at >= ?
		ORDER BY created_at, id`, userID, from)
}

// UserProgressRepository implements ports.UserProgressRepository
type UserProgressRepository struct{ store *Store }

// NewUserProgressRepository creates a new UserProgressRepository
func NewUserProgressRepository(store *Store) *UserProgressRepository {
	return &UserProgressRepository{store: store}
}

// Get returns nil when the user has no progress row yet
func (r *UserProgressRepository) Get(ctx context.Context, userID string) (*entities.UserProgress, error) {
	docs, err := queryDocs[entities.UserProgress](ctx, r.store.db, "get progress",
		`SELECT body FROM user_progress WHERE user_id = ?`, userID)
	if err != nil || len(docs) == 0 {
		return nil, err
	}
	return docs[0], nil
}

// Save upserts the progress row
func (r *UserProgressRepository) Save(ctx context.Context, progress *entities.UserProgress) error {
	body, err := json.Marshal(progress)
	if err != nil {
		return fmt.Errorf("failed to marshal progress: %w", err)
	}
	_, err = r.store.db.ExecContext(ctx, `
		INSERT INTO user_progress (user_id, body) VALUES (?, ?)
		ON CONFLICT (user_id) DO UPDATE SET body = excluded.body`,
		progress.UserID, string(body))
	if err != nil {
		return pkgerrors.NewDatabaseError("save progress", err)
	}
	return nil
}

// queryDocs scans single-column JSON rows into T
func queryDocs[T any](ctx context.Context, db *sql.DB, op, query string, args ...any) ([]*T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError(op, err)
	}
	defer rows.Close()

	out := make([]*T, 0)
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, pkgerrors.NewDatabaseError(op, err)
		}
		doc := new(T)
		if err := json.Unmarshal([]byte(body), doc); err != nil {
			return nil, fmt.Errorf("%s: failed to unmarshal row: %w", op, err)
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, pkgerrors.NewDatabaseError(op, err)
	}
	return out, nil
}
