package handlers

import (
	"net/http"

	"observador-backend/application/commands"
	"observador-backend/application/commands/bus"
	"observador-backend/application/queries"
	querybus "observador-backend/application/queries/bus"
	"observador-backend/pkg/common"
	pkgerrors "observador-backend/pkg/errors"
	"observador-backend/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EntryHandler records daily entries and summarizes them
type EntryHandler struct {
	base
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
}

// NewEntryHandler creates a new entry handler
func NewEntryHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errs *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *EntryHandler {
	return &EntryHandler{
		base:       base{errs: errs, logger: logger},
		commandBus: commandBus,
		queryBus:   queryBus,
	}
}

// SaveEntryRequest is the body of POST /entries. Date accepts YYYY-MM-DD or
// RFC3339; it shadows the command's own timestamp field.
type SaveEntryRequest struct {
	commands.SaveDailyEntryCommand
	Date string `json:"date"`
}

// SaveEntry handles POST /entries
func (h *EntryHandler) SaveEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req SaveEntryRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Date == "" {
		h.fail(w, r, pkgerrors.NewValidationError("date is required"))
		return
	}
	date, err := utils.ParseDate(req.Date)
	if err != nil {
		h.fail(w, r, pkgerrors.NewValidationError(err.Error()))
		return
	}

	cmd := req.SaveDailyEntryCommand
	cmd.UserID = userID
	cmd.Date = date
	if cmd.EntryID == "" {
		cmd.EntryID = uuid.NewString()
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.fail(w, r, err)
		return
	}
	common.RespondCreated(w, cmd.EntryID, map[string]interface{}{"date": utils.FormatDate(date)})
}

// GetStatistics handles GET /entries/stats?days=N&topN=M
func (h *EntryHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
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

	result, err := h.queryBus.Ask(r.Context(), queries.GetEntryStatisticsQuery{UserID: userID, Days: days, TopN: topN})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	stats := result.(*queries.EntryStatisticsResult)
	common.RespondWithMeta(w, http.StatusOK, stats, &common.MetaInfo{Days: stats.Days})
}
