// Package dynamodb stores every record of the service in one DynamoDB table.
//
// Key layout:
//
//	USER#<user>            ENTITY#<type>#<id>          entity
//	USER#<user>            ENTRY#<yyyy-mm-dd>          daily entry
//	USER#<user>            SNAPSHOT#<time>#<id>        snapshot (GSI1: SNAPNODE#<user>#<node> / <time>)
//	USER#<user>            PROGRESS                    streak counters
//	USER#<user>            DECISION#<time>#<id>        agent decision
//	AGENTPROJECT#<id>      METADATA                    agent project (GSI1: USER#<user> / AGENTPROJECT#<time>#<id>)
//	APIKEY#<sha256>        APIKEY                      key hash -> project id
//	LOCK#<resource>        LOCK                        distributed lock
package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"observador-backend/domain/core/valueobjects"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Client is the slice of the DynamoDB API the repositories use
type Client interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

const (
	gsi1Name = "GSI1"

	// sortableTime keeps full precision and fixed width so keys order by time
	sortableTime = "2006-01-02T15:04:05.000000000Z"
	// rangeEnd sorts after every digit, closing open-ended BETWEEN ranges
	rangeEnd = "~"
)

func userPK(userID string) string { return "USER#" + userID }

func entitySK(nodeID valueobjects.NodeID) string {
	return fmt.Sprintf("ENTITY#%s#%s", nodeID.Type(), nodeID.EntityID())
}

func entrySK(day time.Time) string { return "ENTRY#" + day.UTC().Format("2006-01-02") }

func timeKey(t time.Time) string { return t.UTC().Format(sortableTime) }

func snapshotSK(createdAt time.Time, id string) string {
	return fmt.Sprintf("SNAPSHOT#%s#%s", timeKey(createdAt), id)
}

func snapshotNodePK(userID, nodeID string) string {
	return fmt.Sprintf("SNAPNODE#%s#%s", userID, nodeID)
}

func decisionSK(createdAt time.Time, id string) string {
	return fmt.Sprintf("DECISION#%s#%s", timeKey(createdAt), id)
}

func agentProjectPK(id string) string { return "AGENTPROJECT#" + id }
func apiKeyPK(hash string) string     { return "APIKEY#" + hash }

// Domain records carry json tags; the table reuses them as attribute names
func jsonTags(o *attributevalue.EncoderOptions)   { o.TagKey = "json" }
func jsonTagsIn(o *attributevalue.DecoderOptions) { o.TagKey = "json" }

// marshalRecord encodes a json-tagged record and adds the table keys
func marshalRecord(v interface{}, keys map[string]string) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMapWithOptions(v, jsonTags)
	if err != nil {
		return nil, err
	}
	for k, val := range keys {
		item[k] = &types.AttributeValueMemberS{Value: val}
	}
	return item, nil
}

func unmarshalRecord(item map[string]types.AttributeValue, out interface{}) error {
	return attributevalue.UnmarshalMapWithOptions(item, out, jsonTagsIn)
}

func keyOf(pk, sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pk},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}
}

// Table bundles the client with the table name
type Table struct {
	client Client
	name   string
}

// NewTable creates a table handle shared by the repositories
func NewTable(client Client, name string) *Table {
	return &Table{client: client, name: name}
}

// Ping implements ports.HealthChecker
func (t *Table) Ping(ctx context.Context) error {
	_, err := t.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(t.name)})
	return err
}

// queryAll follows pagination and returns every item of the query
func (t *Table) queryAll(ctx context.Context, input *dynamodb.QueryInput) ([]map[string]types.AttributeValue, error) {
	input.TableName = aws.String(t.name)
	var items []map[string]types.AttributeValue
	paginator := dynamodb.NewQueryPaginator(t.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		items = append(items, page.Items...)
	}
	return items, nil
}

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}
