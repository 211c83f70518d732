package auth

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
)

// CounterStore is the slice of the DynamoDB client the limiter needs
type CounterStore interface {
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// DistributedRateLimiter counts requests per fixed window in the service
// table, so every Lambda instance shares one budget per key
type DistributedRateLimiter struct {
	client    CounterStore
	tableName string
	limit     int
	window    time.Duration
	keyPrefix string
	now       func() time.Time
}

// NewDistributedRateLimiter creates a distributed limiter. A nil client
// allows every request, which keeps local development working.
func NewDistributedRateLimiter(client CounterStore, tableName string, limit int, window time.Duration, keyPrefix string) *DistributedRateLimiter {
	return &DistributedRateLimiter{
		client:    client,
		tableName: tableName,
		limit:     limit,
		window:    window,
		keyPrefix: keyPrefix,
		now:       time.Now,
	}
}

func (r *DistributedRateLimiter) itemKey(key string, windowStart time.Time) map[string]types.AttributeValue {
	pk := fmt.Sprintf("RATELIMIT#%s#%s", r.keyPrefix, key)
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pk},
		"SK": &types.AttributeValueMemberS{Value: "WINDOW#" + strconv.FormatInt(windowStart.Unix(), 10)},
	}
}

// Allow atomically increments the window counter unless it already hit the limit
func (r *DistributedRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if r.client == nil {
		return true, nil
	}

	windowStart := r.now().Truncate(r.window)
	expiresAt := windowStart.Add(r.window).Add(time.Hour)

	update := expression.
		Set(expression.Name("Count"), expression.Plus(expression.IfNotExists(expression.Name("Count"), expression.Value(0)), expression.Value(1))).
		Set(expression.Name("TTL"), expression.Value(expiresAt.Unix()))
	condition := expression.Or(
		expression.AttributeNotExists(expression.Name("Count")),
		expression.LessThan(expression.Name("Count"), expression.Value(r.limit)),
	)
	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(condition).Build()
	if err != nil {
		return true, fmt.Errorf("failed to build rate limit expression: %w", err)
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       r.itemKey(key, windowStart),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return false, nil
		}
		// Fail open so a throttled table does not block legitimate traffic
		return true, fmt.Errorf("rate limiter error (failing open): %w", err)
	}
	return true, nil
}

// Reset clears the current window for key
func (r *DistributedRateLimiter) Reset(ctx context.Context, key string) error {
	if r.client == nil {
		return nil
	}
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       r.itemKey(key, r.now().Truncate(r.window)),
	})
	return err
}
