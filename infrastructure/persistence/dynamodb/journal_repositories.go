package dynamodb

import (
	"context"
	"fmt"
	"time"

	"observador-backend/domain/core/entities"
	"observador-backend/domain/core/valueobjects"
	pkgerrors "observador-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// rangeQuery lists a user's items whose sort key falls in [from, to]
func (t *Table) rangeQuery(ctx context.Context, userID, from, to string) ([]map[string]types.AttributeValue, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(userPK(userID))).
		And(expression.Key("SK").Between(expression.Value(from), expression.Value(to)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	return t.queryAll(ctx, &dynamodb.QueryInput{
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
}

func (t *Table) put(ctx context.Context, item map[string]types.AttributeValue) error {
	_, err := t.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(t.name),
		Item:      item,
	})
	return err
}

// DailyEntryRepository implements ports.DailyEntryRepository
type DailyEntryRepository struct {
	table  *Table
	logger *zap.Logger
}

// NewDailyEntryRepository creates a new DailyEntryRepository
func NewDailyEntryRepository(table *Table, logger *zap.Logger) *DailyEntryRepository {
	return &DailyEntryRepository{table: table, logger: logger}
}

// Save writes the entry under its calendar day, replacing an earlier one
func (r *DailyEntryRepository) Save(ctx context.Context, entry *entities.DailyEntry) error {
	item, err := marshalRecord(entry, map[string]string{
		"PK":         userPK(entry.UserID),
		"SK":         entrySK(entities.Day(entry.Date)),
		"EntityType": "DAILY_ENTRY",
	})
	if err != nil {
		return fmt.Errorf("failed to marshal daily entry: %w", err)
	}
	if err := r.table.put(ctx, item); err != nil {
		r.logger.Error("Failed to save daily entry", zap.String("userID", entry.UserID), zap.Error(err))
		return pkgerrors.NewDatabaseError("save daily entry", err)
	}
	return nil
}

// ListByUser returns entries on or after since, oldest first. Day keys sort
// chronologically so the query result needs no reordering.
func (r *DailyEntryRepository) ListByUser(ctx context.Context, userID string, since time.Time) ([]*entities.DailyEntry, error) {
	from := "ENTRY#"
	if !since.IsZero() {
		from = entrySK(entities.Day(since))
	}
	items, err := r.table.rangeQuery(ctx, userID, from, "ENTRY#"+rangeEnd)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("list daily entries", err)
	}

	entries := make([]*entities.DailyEntry, 0, len(items))
	for _, item := range items {
		var entry entities.DailyEntry
		if err := unmarshalRecord(item, &entry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal daily entry: %w", err)
		}
		entries = append(entries, &entry)
	}
	return entries, nil
}

// SnapshotRepository implements ports.SnapshotRepository
type SnapshotRepository struct {
	table  *Table
	logger *zap.Logger
}

// NewSnapshotRepository creates a new SnapshotRepository
func NewSnapshotRepository(table *Table, logger *zap.Logger) *SnapshotRepository {
	return &SnapshotRepository{table: table, logger: logger}
}

// Save appends a snapshot; existing snapshots are never overwritten
func (r *SnapshotRepository) Save(ctx context.Context, snapshot *entities.Snapshot) error {
	item, err := marshalRecord(snapshot, map[string]string{
		"PK":         userPK(snapshot.UserID),
		"SK":         snapshotSK(snapshot.CreatedAt, snapshot.ID),
		"GSI1PK":     snapshotNodePK(snapshot.UserID, snapshot.NodeID),
		"GSI1SK":     timeKey(snapshot.CreatedAt),
		"EntityType": "SNAPSHOT",
	})
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	cond := expression.AttributeNotExists(expression.Name("PK"))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("failed to build condition: %w", err)
	}

	if _, err := r.table.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.table.name),
		Item:                     item,
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	}); err != nil {
		r.logger.Error("Failed to save snapshot",
			zap.String("userID", snapshot.UserID),
			zap.String("nodeID", snapshot.NodeID),
			zap.Error(err))
		return pkgerrors.NewDatabaseError("save snapshot", err)
	}
	return nil
}

// Latest reads the newest snapshot of one node from GSI1
func (r *SnapshotRepository) Latest(ctx context.Context, userID string, nodeID valueobjects.NodeID) (*entities.Snapshot, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(snapshotNodePK(userID, nodeID.String())))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	out, err := r.table.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.table.name),
		IndexName:                 aws.String(gsi1Name),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("latest snapshot", err)
	}
	if len(out.Items) == 0 {
		return nil, nil
	}

	var snapshot entities.Snapshot
	if err := unmarshalRecord(out.Items[0], &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snapshot, nil
}

// ListSince returns a user's snapshots at or after since, oldest first
func (r *SnapshotRepository) ListSince(ctx context.Context, userID string, since time.Time) ([]*entities.Snapshot, error) {
	from := "SNAPSHOT#"
	if !since.IsZero() {
		from = "SNAPSHOT#" + timeKey(since)
	}
	items, err := r.table.rangeQuery(ctx, userID, from, "SNAPSHOT#"+rangeEnd)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("list snapshots", err)
	}

	out := make([]*entities.Snapshot, 0, len(items))
	for _, item := range items {
		var snapshot entities.Snapshot
		if err := unmarshalRecord(item, &snapshot); err != nil {
			return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
		}
		out = append(out, &snapshot)
	}
	return out, nil
}

// UserProgressRepository implements ports.UserProgressRepository
type UserProgressRepository struct {
	table  *Table
	logger *zap.Logger
}

// NewUserProgressRepository creates a new UserProgressRepository
func NewUserProgressRepository(table *Table, logger *zap.Logger) *UserProgressRepository {
	return &UserProgressRepository{table: table, logger: logger}
}

// Get returns nil when the user has no progress item yet
func (r *UserProgressRepository) Get(ctx context.Context, userID string) (*entities.UserProgress, error) {
	out, err := r.table.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table.name),
		Key:       keyOf(userPK(userID), "PROGRESS"),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get progress", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var progress entities.UserProgress
	if err := unmarshalRecord(out.Item, &progress); err != nil {
		return nil, fmt.Errorf("failed to unmarshal progress: %w", err)
	}
	return &progress, nil
}

// Save writes the progress item
func (r *UserProgressRepository) Save(ctx context.Context, progress *entities.UserProgress) error {
	item, err := marshalRecord(progress, map[string]string{
		"PK":         userPK(progress.UserID),
		"SK":         "PROGRESS",
		"EntityType": "PROGRESS",
	})
	if err != nil {
		return fmt.Errorf("failed to marshal progress: %w", err)
	}
	if err := r.table.put(ctx, item); err != nil {
		return pkgerrors.NewDatabaseError("save progress", err)
	}
	return nil
}
