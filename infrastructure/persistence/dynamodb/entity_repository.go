package dynamodb

import (
	"context"
	"fmt"
	"strings"

	"observador-backend/application/ports"
	"observador-backend/domain/core/entities"
	"observador-backend/domain/core/valueobjects"
	pkgerrors "observador-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// EntityRepository implements ports.EntityRepository on the single table
type EntityRepository struct {
	table  *Table
	logger *zap.Logger
}

// NewEntityRepository creates a new EntityRepository
func NewEntityRepository(table *Table, logger *zap.Logger) *EntityRepository {
	return &EntityRepository{table: table, logger: logger}
}

// Save persists an entity, replacing any previous version
func (r *EntityRepository) Save(ctx context.Context, entity entities.Entity) error {
	nodeID := entity.NodeID()
	item, err := marshalRecord(entity, map[string]string{
		"PK":         userPK(entity.GetUserID()),
		"SK":         entitySK(nodeID),
		"EntityType": "ENTITY",
		"NodeType":   string(entity.Kind()),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", nodeID, err)
	}

	if _, err := r.table.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table.name),
		Item:      item,
	}); err != nil {
		r.logger.Error("Failed to save entity",
			zap.String("nodeID", nodeID.String()),
			zap.Error(err))
		return pkgerrors.NewDatabaseError("save entity", err)
	}

	r.logger.Debug("Entity saved",
		zap.String("userID", entity.GetUserID()),
		zap.String("nodeID", nodeID.String()))
	return nil
}

// GetByNodeID loads one entity
func (r *EntityRepository) GetByNodeID(ctx context.Context, userID string, nodeID valueobjects.NodeID) (entities.Entity, error) {
	out, err := r.table.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table.name),
		Key:       keyOf(userPK(userID), entitySK(nodeID)),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get entity", err)
	}
	if len(out.Item) == 0 {
		return nil, pkgerrors.ErrEntityNotFound
	}
	return decodeEntity(nodeID.Type(), out.Item)
}

// ListByUser loads every entity of a user with one partition query
func (r *EntityRepository) ListByUser(ctx context.Context, userID string) (*ports.EntitySet, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(userPK(userID))).
		And(expression.Key("SK").BeginsWith("ENTITY#"))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	items, err := r.table.queryAll(ctx, &dynamodb.QueryInput{
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("list entities", err)
	}

	set := &ports.EntitySet{}
	for _, item := range items {
		kind := nodeTypeOf(item)
		entity, err := decodeEntity(kind, item)
		if err != nil {
			r.logger.Warn("Skipping unreadable entity item", zap.String("userID", userID), zap.Error(err))
			continue
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
	set.Sort()
	return set, nil
}

func nodeTypeOf(item map[string]types.AttributeValue) valueobjects.NodeType {
	if v, ok := item["NodeType"].(*types.AttributeValueMemberS); ok {
		return valueobjects.NodeType(v.Value)
	}
	// ENTITY#<type>#<id>
	if sk, ok := item["SK"].(*types.AttributeValueMemberS); ok {
		parts := strings.SplitN(sk.Value, "#", 3)
		if len(parts) == 3 {
			return valueobjects.NodeType(parts[1])
		}
	}
	return ""
}

func decodeEntity(kind valueobjects.NodeType, item map[string]types.AttributeValue) (entities.Entity, error) {
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
	if err := unmarshalRecord(item, entity); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", kind, err)
	}
	return entity, nil
}
