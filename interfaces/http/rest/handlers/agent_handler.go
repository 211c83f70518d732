package handlers

import (
	"net/http"

	"observador-backend/application/commands"
	"observador-backend/application/commands/bus"
	"observador-backend/application/queries"
	querybus "observador-backend/application/queries/bus"
	"observador-backend/pkg/auth"
	"observador-backend/pkg/common"
	pkgerrors "observador-backend/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AgentHandler manages agent projects and ingests their decisions
type AgentHandler struct {
	base
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
}

// NewAgentHandler creates a new agent handler
func NewAgentHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errs *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *AgentHandler {
	return &AgentHandler{
		base:       base{errs: errs, logger: logger},
		commandBus: commandBus,
		queryBus:   queryBus,
	}
}

// RegisterProjectRequest is the body of POST /agents/projects
type RegisterProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// RegisterProjectResponse carries the plain API key. It is shown once and
// cannot be recovered later.
type RegisterProjectResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	APIKey       string `json:"apiKey"`
	APIKeyPrefix string `json:"apiKeyPrefix"`
}

// RegisterProject handles POST /agents/projects
func (h *AgentHandler) RegisterProject(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var req RegisterProjectRequest
	if !h.decode(w, r, &req) {
		return
	}

	key := auth.GenerateAPIKey()
	cmd := commands.RegisterAgentProjectCommand{
		ProjectID:   uuid.NewString(),
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		APIKey:      key,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.fail(w, r, err)
		return
	}

	h.logger.Info("Agent project registered",
		zap.String("userID", userID),
		zap.String("projectID", cmd.ProjectID),
		zap.String("keyPrefix", auth.KeyPrefix(key)))

	common.RespondJSON(w, http.StatusCreated, RegisterProjectResponse{
		ID:           cmd.ProjectID,
		Name:         cmd.Name,
		APIKey:       key,
		APIKeyPrefix: auth.KeyPrefix(key),
	})
}

// ListProjects handles GET /agents/projects
func (h *AgentHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	result, err := h.queryBus.Ask(r.Context(), queries.ListAgentProjectsQuery{UserID: userID})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// GetDashboard handles GET /agents/dashboard?projectId=&days=N&topN=M
func (h *AgentHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	days, err := intParam(r, "days")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	topN, err := intParam(r, "topN")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetDecisionDashboardQuery{
		UserID:    userID,
		ProjectID: r.URL.Query().Get("projectId"),
		Days:      days,
		TopN:      topN,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// DecisionRequest is the webhook body. The project and its owner come from
// the API key, so the body cannot name them.
type DecisionRequest struct {
	ID             string         `json:"id"`
	AgentName      string         `json:"agentName"`
	DecisionType   string         `json:"decisionType"`
	Description    string         `json:"description"`
	RevenueImpact  float64        `json:"revenueImpact"`
	CoherenceScore *float64       `json:"coherenceScore"`
	Confidence     *float64       `json:"confidence"`
	Metadata       map[string]any `json:"metadata"`
}

// RecordDecision handles POST /webhooks/agent-decisions
func (h *AgentHandler) RecordDecision(w http.ResponseWriter, r *http.Request) {
	agent, err := auth.GetAgentFromContext(r.Context())
	if err != nil {
		h.errs.Handle(w, r, pkgerrors.ErrInvalidAPIKey)
		return
	}
	var req DecisionRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	cmd := commands.RecordAgentDecisionCommand{
		DecisionID:     req.ID,
		ProjectID:      agent.ProjectID,
		UserID:         agent.UserID,
		AgentName:      req.AgentName,
		DecisionType:   req.DecisionType,
		Description:    req.Description,
		RevenueImpact:  req.RevenueImpact,
		CoherenceScore: req.CoherenceScore,
		Confidence:     req.Confidence,
		Metadata:       req.Metadata,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.fail(w, r, err)
		return
	}
	common.RespondCreated(w, cmd.DecisionID, nil)
}
