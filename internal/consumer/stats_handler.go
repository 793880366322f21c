package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Dindas01/THRIV/internal/events"
)

type contributionApplier interface {
	ApplyMealContribution(ctx context.Context, evt events.MealLogged, dedupeKey string) (bool, error)
}

// StatsHandler projects meal.logged events into the daily_stats table. Other
// event types on the same topics are acknowledged without side effects:
// meal.deleted in particular never reverses a day's totals.
type StatsHandler struct {
	repo contributionApplier
}

// NewStatsHandler constructs a handler backed by the provided repository.
func NewStatsHandler(repo contributionApplier) *StatsHandler {
	return &StatsHandler{repo: repo}
}

// Handle folds a meal's scaled nutrients into its day's running totals.
// Redelivered events are detected via the applied_events table and skipped,
// keeping the fold exactly-once despite at-least-once consumption.
func (h *StatsHandler) Handle(ctx context.Context, msg Message) error {
	if msg.EventType != "meal.logged" {
		return nil
	}

	var evt events.MealLogged
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		return fmt.Errorf("decode meal.logged payload: %w", err)
	}
	if evt.MealID == "" || evt.Day == "" {
		return fmt.Errorf("meal.logged payload missing identity (meal_id=%q, day=%q)", evt.MealID, evt.Day)
	}

	applied, err := h.repo.ApplyMealContribution(ctx, evt, "meal.logged:"+evt.MealID)
	if err != nil {
		return err
	}
	if !applied {
		recordDuplicate(msg.Topic)
	}
	return nil
}
