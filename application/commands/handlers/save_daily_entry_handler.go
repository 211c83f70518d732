package handlers

import (
	"context"
	"fmt"
	"time"

	"observador-backend/application/commands"
	"observador-backend/application/ports"
	"observador-backend/domain/core/entities"
	"observador-backend/domain/core/validators"
	"observador-backend/domain/events"
	"observador-backend/domain/services/metrics"
	"observador-backend/domain/services/statistics"

	"go.uber.org/zap"
)

// SaveDailyEntryHandler stores an entry and writes the recomputed streaks
// back to the user's progress record.
type SaveDailyEntryHandler struct {
	entryRepo    ports.DailyEntryRepository
	progressRepo ports.UserProgressRepository
	publisher    ports.EventPublisher
	configs      ports.MetricsConfigProvider
	validator    *validators.EntityValidator
	logger       *zap.Logger
	now          func() time.Time
}

// NewSaveDailyEntryHandler creates a new handler instance
func NewSaveDailyEntryHandler(
	entryRepo ports.DailyEntryRepository,
	progressRepo ports.UserProgressRepository,
	publisher ports.EventPublisher,
	configs ports.MetricsConfigProvider,
	logger *zap.Logger,
) *SaveDailyEntryHandler {
	return &SaveDailyEntryHandler{
		entryRepo:    entryRepo,
		progressRepo: progressRepo,
		publisher:    publisher,
		configs:      configs,
		validator:    validators.NewEntityValidator(),
		logger:       logger,
		now:          time.Now,
	}
}

// Handle executes the save daily entry command
func (h *SaveDailyEntryHandler) Handle(ctx context.Context, cmd commands.SaveDailyEntryCommand) error {
	now := h.now()
	entry := cmd.ToEntry()
	if err := h.validator.ValidateDailyEntry(entry, now); err != nil {
		return err
	}

	if entry.CoherenceLevel == nil {
		calc := metrics.NewCalculator(h.configs.Current())
		entry.CoherenceLevel = entities.Float(calc.EntryCoherence(metrics.DefaultEntry(entry)))
	}
	createdAt, err := h.existingCreatedAt(ctx, entry)
	if err != nil {
		return err
	}
	entry.CreatedAt = createdAt
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now

	if err := h.entryRepo.Save(ctx, entry); err != nil {
		return fmt.Errorf("failed to save daily entry: %w", err)
	}

	history, err := h.entryRepo.ListByUser(ctx, cmd.UserID, time.Time{})
	if err != nil {
		return fmt.Errorf("failed to load entry history: %w", err)
	}
	dates := make([]time.Time, 0, len(history))
	var last time.Time
	for _, e := range history {
		dates = append(dates, e.Date)
		if e.Date.After(last) {
			last = e.Date
		}
	}
	streaks := statistics.ComputeStreaks(dates, now)

	progress := &entities.UserProgress{
		UserID:        cmd.UserID,
		CurrentStreak: streaks.Current,
		LongestStreak: streaks.Longest,
		TotalEntries:  len(history),
		LastEntryDate: last,
		UpdatedAt:     now,
	}
	if err := h.progressRepo.Save(ctx, progress); err != nil {
		return fmt.Errorf("failed to save user progress: %w", err)
	}

	event := events.NewDailyEntrySaved(cmd.UserID, entry.ID, entry.Date, streaks.Current, streaks.Longest, now)
	if err := h.publisher.Publish(ctx, event); err != nil {
		h.logger.Warn("Failed to publish daily entry event", zap.String("entryID", entry.ID), zap.Error(err))
	}

	h.logger.Info("Daily entry saved",
		zap.String("userID", cmd.UserID),
		zap.Time("date", entry.Date),
		zap.Int("currentStreak", streaks.Current),
		zap.Int("longestStreak", streaks.Longest),
	)
	return nil
}

// existingCreatedAt returns the creation time of the entry already stored
// for the same day, or zero when the day is new
func (h *SaveDailyEntryHandler) existingCreatedAt(ctx context.Context, entry *entities.DailyEntry) (time.Time, error) {
	sameDay, err := h.entryRepo.ListByUser(ctx, entry.UserID, entry.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to load existing entry: %w", err)
	}
	for _, e := range sameDay {
		if entities.Day(e.Date).Equal(entry.Date) {
			return e.CreatedAt, nil
		}
	}
	return time.Time{}, nil
}
