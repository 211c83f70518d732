package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"observador-backend/domain/core/entities"
	"observador-backend/domain/core/valueobjects"
)

// DailyEntryRepository stores one entry per user and day
type DailyEntryRepository struct {
	mu      sync.RWMutex
	entries map[string]map[time.Time]entities.DailyEntry
}

// NewDailyEntryRepository creates an empty repository
func NewDailyEntryRepository() *DailyEntryRepository {
	return &DailyEntryRepository{entries: make(map[string]map[time.Time]entities.DailyEntry)}
}

// Save stores the entry under its calendar day, overwriting that day's entry
func (r *DailyEntryRepository) Save(ctx context.Context, entry *entities.DailyEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	byDay, ok := r.entries[entry.UserID]
	if !ok {
		byDay = make(map[time.Time]entities.DailyEntry)
		r.entries[entry.UserID] = byDay
	}
	stored := *entry
	stored.Date = entities.Day(entry.Date)
	byDay[stored.Date] = stored
	return nil
}

// ListByUser returns entries dated on or after since, oldest first
func (r *DailyEntryRepository) ListByUser(ctx context.Context, userID string, since time.Time) ([]*entities.DailyEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entities.DailyEntry, 0, len(r.entries[userID]))
	for day, e := range r.entries[userID] {
		if !since.IsZero() && day.Before(entities.Day(since)) {
			continue
		}
		entry := e
		out = append(out, &entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// SnapshotRepository appends snapshots per user
type SnapshotRepository struct {
	mu        sync.RWMutex
	snapshots map[string][]entities.Snapshot
}

// NewSnapshotRepository creates an empty repository
func NewSnapshotRepository() *SnapshotRepository {
	return &SnapshotRepository{snapshots: make(map[string][]entities.Snapshot)}
}

// Latest returns the newest snapshot for a node, or nil
func (r *SnapshotRepository) Latest(ctx context.Context, userID string, nodeID valueobjects.NodeID) (*entities.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *entities.Snapshot
	for i := range r.snapshots[userID] {
		s := r.snapshots[userID][i]
		if s.NodeID != nodeID.String() {
			continue
		}
		if latest == nil || !s.CreatedAt.Before(latest.CreatedAt) {
			latest = &s
		}
	}
	return latest, nil
}

// Save appends a snapshot
func (r *SnapshotRepository) Save(ctx context.Context, snapshot *entities.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots[snapshot.UserID] = append(r.snapshots[snapshot.UserID], *snapshot)
	return nil
}

// ListSince returns a user's snapshots created at or after since, oldest first
func (r *SnapshotRepository) ListSince(ctx context.Context, userID string, since time.Time) ([]*entities.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entities.Snapshot, 0, len(r.snapshots[userID]))
	for _, s := range r.snapshots[userID] {
		if s.CreatedAt.Before(since) {
			continue
		}
		snapshot := s
		out = append(out, &snapshot)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// UserProgressRepository stores one progress record per user
type UserProgressRepository struct {
	mu       sync.RWMutex
	progress map[string]entities.UserProgress
}

// NewUserProgressRepository creates an empty repository
func NewUserProgressRepository() *UserProgressRepository {
	return &UserProgressRepository{progress: make(map[string]entities.UserProgress)}
}

// Get returns the stored progress or nil
func (r *UserProgressRepository) Get(ctx context.Context, userID string) (*entities.UserProgress, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.progress[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// Save replaces the user's progress
func (r *UserProgressRepository) Save(ctx context.Context, progress *entities.UserProgress) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress[progress.UserID] = *progress
	return nil
}
