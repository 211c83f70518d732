package handlers

import (
	"net/http"

	"observador-backend/application/queries"
	querybus "observador-backend/application/queries/bus"
	"observador-backend/pkg/common"
	pkgerrors "observador-backend/pkg/errors"

	"go.uber.org/zap"
)

// SystemHandler serves the derived views of a user's whole system
type SystemHandler struct {
	base
	queryBus *querybus.QueryBus
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(queryBus *querybus.QueryBus, errs *pkgerrors.ErrorHandler, logger *zap.Logger) *SystemHandler {
	return &SystemHandler{
		base:     base{errs: errs, logger: logger},
		queryBus: queryBus,
	}
}

// GetGraph handles GET /system/graph
func (h *SystemHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	h.ask(w, r, queries.GetSystemGraphQuery{UserID: userID})
}

// GetInterpretation handles GET /system/interpretation?lookbackDays=N
func (h *SystemHandler) GetInterpretation(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	days, err := intParam(r, "lookbackDays")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ask(w, r, queries.GetSystemInterpretationQuery{UserID: userID, LookbackDays: days})
}

// GetTrends handles GET /system/trends?lookbackDays=N
func (h *SystemHandler) GetTrends(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	days, err := intParam(r, "lookbackDays")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ask(w, r, queries.GetNodeTrendsQuery{UserID: userID, LookbackDays: days})
}

// GetCoherence handles GET /system/coherence
func (h *SystemHandler) GetCoherence(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	h.ask(w, r, queries.GetCoherenceBreakdownQuery{UserID: userID})
}

// GetEnergyFlow handles GET /system/energy-flow
func (h *SystemHandler) GetEnergyFlow(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	h.ask(w, r, queries.GetEnergyFlowQuery{UserID: userID})
}

func (h *SystemHandler) ask(w http.ResponseWriter, r *http.Request, query querybus.Query) {
	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}
