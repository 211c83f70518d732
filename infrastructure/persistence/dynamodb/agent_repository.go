package dynamodb

import (
	"context"
	"fmt"
	"sort"
	"time"

	"observador-backend/domain/core/entities"
	pkgerrors "observador-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// agentProjectItem spells out the stored shape; the key hash is hidden from
// JSON on the entity but has to reach the table
type agentProjectItem struct {
	PK           string    `dynamodbav:"PK"`
	SK           string    `dynamodbav:"SK"`
	GSI1PK       string    `dynamodbav:"GSI1PK"`
	GSI1SK       string    `dynamodbav:"GSI1SK"`
	EntityType   string    `dynamodbav:"EntityType"`
	ID           string    `dynamodbav:"id"`
	UserID       string    `dynamodbav:"userId"`
	Name         string    `dynamodbav:"name"`
	Description  string    `dynamodbav:"description,omitempty"`
	APIKeyHash   string    `dynamodbav:"apiKeyHash"`
	APIKeyPrefix string    `dynamodbav:"apiKeyPrefix"`
	Active       bool      `dynamodbav:"active"`
	CreatedAt    time.Time `dynamodbav:"createdAt"`
}

type apiKeyItem struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	ProjectID string `dynamodbav:"projectId"`
}

func (i agentProjectItem) toEntity() *entities.AgentProject {
	return &entities.AgentProject{
		ID:           i.ID,
		UserID:       i.UserID,
		Name:         i.Name,
		Description:  i.Description,
		APIKeyHash:   i.APIKeyHash,
		APIKeyPrefix: i.APIKeyPrefix,
		Active:       i.Active,
		CreatedAt:    i.CreatedAt,
	}
}

// AgentRepository implements ports.AgentRepository
type AgentRepository struct {
	table  *Table
	logger *zap.Logger
}

// NewAgentRepository creates a new AgentRepository
func NewAgentRepository(table *Table, logger *zap.Logger) *AgentRepository {
	return &AgentRepository{table: table, logger: logger}
}

// SaveProject writes the project and its key pointer in one transaction
func (r *AgentRepository) SaveProject(ctx context.Context, project *entities.AgentProject) error {
	projectAV, err := attributevalue.MarshalMap(agentProjectItem{
		PK:           agentProjectPK(project.ID),
		SK:           "METADATA",
		GSI1PK:       userPK(project.UserID),
		GSI1SK:       fmt.Sprintf("AGENTPROJECT#%s#%s", timeKey(project.CreatedAt), project.ID),
		EntityType:   "AGENT_PROJECT",
		ID:           project.ID,
		UserID:       project.UserID,
		Name:         project.Name,
		Description:  project.Description,
		APIKeyHash:   project.APIKeyHash,
		APIKeyPrefix: project.APIKeyPrefix,
		Active:       project.Active,
		CreatedAt:    project.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal agent project: %w", err)
	}

	writes := []types.TransactWriteItem{
		{Put: &types.Put{TableName: aws.String(r.table.name), Item: projectAV}},
	}
	if project.APIKeyHash != "" {
		keyAV, err := attributevalue.MarshalMap(apiKeyItem{
			PK:        apiKeyPK(project.APIKeyHash),
			SK:        "APIKEY",
			ProjectID: project.ID,
		})
		if err != nil {
			return fmt.Errorf("failed to marshal api key pointer: %w", err)
		}
		writes = append(writes, types.TransactWriteItem{
			Put: &types.Put{TableName: aws.String(r.table.name), Item: keyAV},
		})
	}

	if _, err := r.table.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: writes,
	}); err != nil {
		r.logger.Error("Failed to save agent project",
			zap.String("projectID", project.ID),
			zap.Error(err))
		return pkgerrors.NewDatabaseError("save agent project", err)
	}
	return nil
}

// GetProject loads a project by id
func (r *AgentRepository) GetProject(ctx context.Context, projectID string) (*entities.AgentProject, error) {
	out, err := r.table.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table.name),
		Key:       keyOf(agentProjectPK(projectID), "METADATA"),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get agent project", err)
	}
	if len(out.Item) == 0 {
		return nil, pkgerrors.ErrAgentProjectNotFound.Clone()
	}

	var item agentProjectItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal agent project: %w", err)
	}
	return item.toEntity(), nil
}

// FindProjectByKeyHash follows the key pointer item to its project
func (r *AgentRepository) FindProjectByKeyHash(ctx context.Context, keyHash string) (*entities.AgentProject, error) {
	out, err := r.table.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table.name),
		Key:       keyOf(apiKeyPK(keyHash), "APIKEY"),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("find agent project", err)
	}
	if len(out.Item) == 0 {
		return nil, pkgerrors.ErrAgentProjectNotFound.Clone()
	}

	var pointer apiKeyItem
	if err := attributevalue.UnmarshalMap(out.Item, &pointer); err != nil {
		return nil, fmt.Errorf("failed to unmarshal api key pointer: %w", err)
	}

	project, err := r.GetProject(ctx, pointer.ProjectID)
	if err != nil {
		return nil, err
	}
	// A rotated key leaves the old pointer behind
	if project.APIKeyHash != keyHash {
		return nil, pkgerrors.ErrAgentProjectNotFound.Clone()
	}
	return project, nil
}

// ListProjects returns a user's projects oldest first
func (r *AgentRepository) ListProjects(ctx context.Context, userID string) ([]*entities.AgentProject, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(userPK(userID))).
		And(expression.Key("GSI1SK").BeginsWith("AGENTPROJECT#"))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	items, err := r.table.queryAll(ctx, &dynamodb.QueryInput{
		IndexName:                 aws.String(gsi1Name),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("list agent projects", err)
	}

	projects := make([]*entities.AgentProject, 0, len(items))
	for _, av := range items {
		var item agentProjectItem
		if err := attributevalue.UnmarshalMap(av, &item); err != nil {
			return nil, fmt.Errorf("failed to unmarshal agent project: %w", err)
		}
		projects = append(projects, item.toEntity())
	}
	sort.SliceStable(projects, func(i, j int) bool {
		if !projects[i].CreatedAt.Equal(projects[j].CreatedAt) {
			return projects[i].CreatedAt.Before(projects[j].CreatedAt)
		}
		return projects[i].ID < projects[j].ID
	})
	return projects, nil
}

// SaveDecision appends a decision under its owner's partition
func (r *AgentRepository) SaveDecision(ctx context.Context, decision *entities.AgentDecision) error {
	item, err := marshalRecord(decision, map[string]string{
		"PK":         userPK(decision.UserID),
		"SK":         decisionSK(decision.CreatedAt, decision.ID),
		"EntityType": "AGENT_DECISION",
	})
	if err != nil {
		return fmt.Errorf("failed to marshal decision: %w", err)
	}
	if err := r.table.put(ctx, item); err != nil {
		r.logger.Error("Failed to save agent decision",
			zap.String("projectID", decision.ProjectID),
			zap.Error(err))
		return pkgerrors.NewDatabaseError("save agent decision", err)
	}
	return nil
}

// ListDecisions returns decisions at or after since, oldest first
func (r *AgentRepository) ListDecisions(ctx context.Context, userID string, since time.Time) ([]*entities.AgentDecision, error) {
	from := "DECISION#"
	if !since.IsZero() {
		from = "DECISION#" + timeKey(since)
	}
	items, err := r.table.rangeQuery(ctx, userID, from, "DECISION#"+rangeEnd)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("list agent decisions", err)
	}

	decisions := make([]*entities.AgentDecision, 0, len(items))
	for _, item := range items {
		var decision entities.AgentDecision
		if err := unmarshalRecord(item, &decision); err != nil {
			return nil, fmt.Errorf("failed to unmarshal decision: %w", err)
		}
		decisions = append(decisions, &decision)
	}
	return decisions, nil
}
