// Package postgres provides pgx-backed persistence for profiles, goals,
// meals, workouts, and daily stats, with a transactional outbox.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Dindas01/THRIV/internal/domain"
	"github.com/Dindas01/THRIV/internal/events"
	"github.com/Dindas01/THRIV/internal/observability"
)

// Repository provides Postgres-backed persistence for the backend.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// tenantTx begins a transaction with the row-level-security tenant set.
func (r *Repository) tenantTx(ctx context.Context, tenantID string) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, "SELECT set_config('app.tenant_id', $1, true)", tenantID); err != nil {
		tx.Rollback(ctx)
		return nil, err
	}
	return tx, nil
}

// SaveProfile upserts the body profile and, when goals are supplied, the
// recomputed daily goals plus a goals.updated outbox event, all in one
// transaction.
func (r *Repository) SaveProfile(ctx context.Context, profile domain.StoredProfile, goals *domain.StoredGoals) error {
	tx, err := r.tenantTx(ctx, profile.TenantID)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const upsertProfile = `INSERT INTO profiles (tenant_id, user_id, sex, age, weight_kg, height_cm, activity_level, goal, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        ON CONFLICT (tenant_id, user_id) DO UPDATE SET
            sex=EXCLUDED.sex, age=EXCLUDED.age, weight_kg=EXCLUDED.weight_kg,
            height_cm=EXCLUDED.height_cm, activity_level=EXCLUDED.activity_level,
            goal=EXCLUDED.goal, updated_at=EXCLUDED.updated_at`

	if _, err := tx.Exec(ctx, upsertProfile,
		profile.TenantID,
		profile.UserID,
		profile.Profile.Sex,
		profile.Profile.Age,
		profile.Profile.WeightKg,
		profile.Profile.HeightCm,
		profile.Profile.ActivityLevel,
		profile.Profile.Goal,
		profile.CreatedAt,
		profile.UpdatedAt,
	); err != nil {
		return err
	}

	if goals != nil {
		if err := r.upsertGoals(ctx, tx, *goals); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	if goals != nil {
		observability.RecordGoalsComputed()
	}
	return nil
}

// GetProfile retrieves the body profile for a user, or nil when absent.
func (r *Repository) GetProfile(ctx context.Context, tenantID, userID string) (*domain.StoredProfile, error) {
	tx, err := r.tenantTx(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const query = `SELECT tenant_id, user_id, sex, age, weight_kg, height_cm, activity_level, goal, created_at, updated_at
        FROM profiles WHERE tenant_id=$1 AND user_id=$2`

	row := tx.QueryRow(ctx, query, tenantID, userID)
	var stored domain.StoredProfile
	if err := row.Scan(
		&stored.TenantID,
		&stored.UserID,
		&stored.Profile.Sex,
		&stored.Profile.Age,
		&stored.Profile.WeightKg,
		&stored.Profile.HeightCm,
		&stored.Profile.ActivityLevel,
		&stored.Profile.Goal,
		&stored.CreatedAt,
		&stored.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tx.Commit(ctx)
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &stored, nil
}

// SaveGoals upserts daily goals and records a goals.updated outbox event.
func (r *Repository) SaveGoals(ctx context.Context, goals domain.StoredGoals) error {
	tx, err := r.tenantTx(ctx, goals.TenantID)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := r.upsertGoals(ctx, tx, goals); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repository) upsertGoals(ctx context.Context, tx pgx.Tx, goals domain.StoredGoals) error {
	const upsert = `INSERT INTO daily_goals (tenant_id, user_id, calories_goal, protein_goal, carbs_goal, fat_goal, manual_override, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        ON CONFLICT (tenant_id, user_id) DO UPDATE SET
            calories_goal=EXCLUDED.calories_goal, protein_goal=EXCLUDED.protein_goal,
            carbs_goal=EXCLUDED.carbs_goal, fat_goal=EXCLUDED.fat_goal,
            manual_override=EXCLUDED.manual_override, updated_at=EXCLUDED.updated_at`

	if _, err := tx.Exec(ctx, upsert,
		goals.TenantID,
		goals.UserID,
		goals.Goals.Calories,
		goals.Goals.ProteinG,
		goals.Goals.CarbsG,
		goals.Goals.FatG,
		goals.ManualOverride,
		goals.UpdatedAt,
	); err != nil {
		return err
	}

	return insertOutbox(ctx, tx, outboxRecord{
		TenantID:      goals.TenantID,
		AggregateType: "goals",
		AggregateID:   goals.UserID,
		EventType:     "goals.updated",
		PartitionKey:  fmt.Sprintf("%s:%s", goals.TenantID, goals.UserID),
		DedupeKey:     fmt.Sprintf("goals:%s:%d", goals.UserID, goals.UpdatedAt.UnixNano()),
	}, events.GoalsUpdated{
		TenantID:       goals.TenantID,
		UserID:         goals.UserID,
		CaloriesGoal:   goals.Goals.Calories,
		ProteinGoal:    goals.Goals.ProteinG,
		CarbsGoal:      goals.Goals.CarbsG,
		FatGoal:        goals.Goals.FatG,
		ManualOverride: goals.ManualOverride,
		OccurredAt:     goals.UpdatedAt,
	})
}

// GetGoals retrieves the stored daily goals for a user, or nil when absent.
func (r *Repository) GetGoals(ctx context.Context, tenantID, userID string) (*domain.StoredGoals, error) {
	tx, err := r.tenantTx(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const query = `SELECT tenant_id, user_id, calories_goal, protein_goal, carbs_goal, fat_goal, manual_override, updated_at
        FROM daily_goals WHERE tenant_id=$1 AND user_id=$2`

	row := tx.QueryRow(ctx, query, tenantID, userID)
	var stored domain.StoredGoals
	if err := row.Scan(
		&stored.TenantID,
		&stored.UserID,
		&stored.Goals.Calories,
		&stored.Goals.ProteinG,
		&stored.Goals.CarbsG,
		&stored.Goals.FatG,
		&stored.ManualOverride,
		&stored.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tx.Commit(ctx)
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &stored, nil
}

// outboxRecord describes routing metadata for an event written with a domain change.
type outboxRecord struct {
	TenantID      string
	AggregateType string
	AggregateID   string
	EventType     string
	PartitionKey  string
	DedupeKey     string
}

func insertOutbox(ctx context.Context, tx pgx.Tx, record outboxRecord, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	meta, ok := eventCatalog[record.EventType]
	if !ok {
		return fmt.Errorf("unknown event type: %s", record.EventType)
	}

	const stmt = `INSERT INTO outbox (tenant_id, aggregate_type, aggregate_id, event_type, topic, schema_subject, partition_key, payload, dedupe_key)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`

	_, err = tx.Exec(ctx, stmt,
		record.TenantID,
		record.AggregateType,
		record.AggregateID,
		record.EventType,
		meta.Topic,
		meta.SchemaSubject,
		record.PartitionKey,
		body,
		record.DedupeKey,
	)
	return err
}

// EventMetadata describes how to route an outbox event.
type EventMetadata struct {
	Topic         string
	SchemaSubject string
}

var eventCatalog = map[string]EventMetadata{
	"meal.logged":    {Topic: "meal_events", SchemaSubject: "meal_events-value"},
	"meal.deleted":   {Topic: "meal_events", SchemaSubject: "meal_events-value"},
	"workout.logged": {Topic: "workout_events", SchemaSubject: "workout_events-value"},
	"goals.updated":  {Topic: "goals_events", SchemaSubject: "goals_events-value"},
}

func nullIfEmpty(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}
