package handlers

import (
	"net/http"

	"observador-backend/application/commands"
	"observador-backend/application/commands/bus"
	"observador-backend/domain/core/valueobjects"
	"observador-backend/pkg/common"
	pkgerrors "observador-backend/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EntityHandler creates and updates the four entity kinds. Saving with an
// existing id replaces the stored record.
type EntityHandler struct {
	base
	commandBus *bus.CommandBus
}

// NewEntityHandler creates a new entity handler
func NewEntityHandler(commandBus *bus.CommandBus, errs *pkgerrors.ErrorHandler, logger *zap.Logger) *EntityHandler {
	return &EntityHandler{
		base:       base{errs: errs, logger: logger},
		commandBus: commandBus,
	}
}

// SaveProject handles POST /projects
func (h *EntityHandler) SaveProject(w http.ResponseWriter, r *http.Request) {
	var cmd commands.SaveProjectCommand
	if !h.prepare(w, r, &cmd, &cmd.UserID, &cmd.ProjectID) {
		return
	}
	h.send(w, r, cmd, valueobjects.NodeTypeProject, cmd.ProjectID)
}

// SaveRelationship handles POST /relationships
func (h *EntityHandler) SaveRelationship(w http.ResponseWriter, r *http.Request) {
	var cmd commands.SaveRelationshipCommand
	if !h.prepare(w, r, &cmd, &cmd.UserID, &cmd.RelationshipID) {
		return
	}
	h.send(w, r, cmd, valueobjects.NodeTypeRelationship, cmd.RelationshipID)
}

// SaveIntention handles POST /intentions
func (h *EntityHandler) SaveIntention(w http.ResponseWriter, r *http.Request) {
	var cmd commands.SaveIntentionCommand
	if !h.prepare(w, r, &cmd, &cmd.UserID, &cmd.IntentionID) {
		return
	}
	h.send(w, r, cmd, valueobjects.NodeTypeIntention, cmd.IntentionID)
}

// SaveManifestation handles POST /manifestations
func (h *EntityHandler) SaveManifestation(w http.ResponseWriter, r *http.Request) {
	var cmd commands.SaveManifestationCommand
	if !h.prepare(w, r, &cmd, &cmd.UserID, &cmd.ManifestationID) {
		return
	}
	h.send(w, r, cmd, valueobjects.NodeTypeManifestation, cmd.ManifestationID)
}

// prepare decodes the body into cmd, then stamps the owner from the token
// and assigns an id when the client sent none
func (h *EntityHandler) prepare(w http.ResponseWriter, r *http.Request, cmd interface{}, userID, id *string) bool {
	owner, ok := h.userID(w, r)
	if !ok {
		return false
	}
	if !h.decode(w, r, cmd) {
		return false
	}
	*userID = owner
	if *id == "" {
		*id = uuid.NewString()
	}
	return true
}

func (h *EntityHandler) send(w http.ResponseWriter, r *http.Request, cmd bus.Command, kind valueobjects.NodeType, id string) {
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.fail(w, r, err)
		return
	}
	common.RespondCreated(w, id, map[string]interface{}{
		"nodeId": valueobjects.NewNodeID(kind, id).String(),
	})
}
