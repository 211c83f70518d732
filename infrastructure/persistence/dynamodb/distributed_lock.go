package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// ErrLockHeld is returned when another owner holds an unexpired lock
var ErrLockHeld = errors.New("lock already held")

// DistributedLock serializes work across Lambda invocations using
// conditional writes. The snapshot sweep takes one lock per user so two
// concurrent saves cannot both record the same change.
type DistributedLock struct {
	table  *Table
	logger *zap.Logger
	now    func() time.Time
}

// NewDistributedLock creates a new distributed lock instance
func NewDistributedLock(table *Table, logger *zap.Logger) *DistributedLock {
	return &DistributedLock{table: table, logger: logger, now: time.Now}
}

// Acquire takes the lock for resource or fails with ErrLockHeld
func (dl *DistributedLock) Acquire(ctx context.Context, resource, owner string, ttl time.Duration) (*Lock, error) {
	now := dl.now().UTC()
	expiresAt := now.Add(ttl)
	lockID := fmt.Sprintf("%s_%d", owner, now.UnixNano())

	item := keyOf("LOCK#"+resource, "LOCK")
	item["LockID"] = &types.AttributeValueMemberS{Value: lockID}
	item["Owner"] = &types.AttributeValueMemberS{Value: owner}
	item["ExpiresAt"] = &types.AttributeValueMemberS{Value: timeKey(expiresAt)}
	// DynamoDB TTL sweeps abandoned locks
	item["TTL"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(expiresAt.Unix(), 10)}

	cond := expression.AttributeNotExists(expression.Name("PK")).
		Or(expression.Name("ExpiresAt").LessThan(expression.Value(timeKey(now))))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build condition: %w", err)
	}

	_, err = dl.table.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(dl.table.name),
		Item:                      item,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		if isConditionFailed(err) {
			dl.logger.Debug("Lock already held",
				zap.String("resource", resource),
				zap.String("owner", owner))
			return nil, fmt.Errorf("%w: %s", ErrLockHeld, resource)
		}
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}

	dl.logger.Debug("Lock acquired",
		zap.String("resource", resource),
		zap.String("lockID", lockID),
		zap.Duration("ttl", ttl))

	return &Lock{dl: dl, resource: resource, lockID: lockID, owner: owner, expiresAt: expiresAt}, nil
}

// TryAcquire retries Acquire with backoff until timeout elapses
func (dl *DistributedLock) TryAcquire(ctx context.Context, resource, owner string, ttl, timeout time.Duration) (*Lock, error) {
	deadline := time.Now().Add(timeout)
	retry := 100 * time.Millisecond

	for {
		lock, err := dl.Acquire(ctx, resource, owner, ttl)
		if err == nil {
			return lock, nil
		}
		if !errors.Is(err, ErrLockHeld) {
			return nil, err
		}
		if time.Now().Add(retry).After(deadline) {
			return nil, fmt.Errorf("timeout acquiring lock for %s: %w", resource, err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retry):
			if retry < time.Second {
				retry = retry * 3 / 2
			}
		}
	}
}

// Release deletes the lock if this owner still holds it
func (dl *DistributedLock) Release(ctx context.Context, resource, lockID, owner string) error {
	cond := expression.Name("LockID").Equal(expression.Value(lockID)).
		And(expression.Name("Owner").Equal(expression.Value(owner)))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("failed to build condition: %w", err)
	}

	_, err = dl.table.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                 aws.String(dl.table.name),
		Key:                       keyOf("LOCK#"+resource, "LOCK"),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		if isConditionFailed(err) {
			dl.logger.Warn("Lock already released or taken over",
				zap.String("resource", resource),
				zap.String("lockID", lockID))
			return nil
		}
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}

// Lock is an acquired distributed lock
type Lock struct {
	dl        *DistributedLock
	resource  string
	lockID    string
	owner     string
	expiresAt time.Time
}

// Release releases the lock
func (l *Lock) Release(ctx context.Context) error {
	return l.dl.Release(ctx, l.resource, l.lockID, l.owner)
}

// ExpiresAt reports when the lock lapses on its own
func (l *Lock) ExpiresAt() time.Time {
	return l.expiresAt
}
