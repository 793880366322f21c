package postgres

import (
	"context"
	"fmt"

	"github.com/Dindas01/THRIV/internal/domain"
	"github.com/Dindas01/THRIV/internal/events"
)

// CreateWorkout persists the workout and records a workout.logged outbox event.
func (r *Repository) CreateWorkout(ctx context.Context, workout domain.LoggedWorkout) error {
	tx, err := r.tenantTx(ctx, workout.TenantID)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const insertWorkout = `INSERT INTO workouts (workout_id, tenant_id, user_id, workout_type, duration_min, calories_burned, started_at, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`

	if _, err := tx.Exec(ctx, insertWorkout,
		workout.ID,
		workout.TenantID,
		workout.UserID,
		workout.WorkoutType,
		workout.DurationMin,
		workout.CaloriesBurned,
		workout.StartedAt,
		workout.CreatedAt,
	); err != nil {
		return err
	}

	if err := insertOutbox(ctx, tx, outboxRecord{
		TenantID:      workout.TenantID,
		AggregateType: "workout",
		AggregateID:   workout.ID,
		EventType:     "workout.logged",
		PartitionKey:  fmt.Sprintf("%s:%s", workout.TenantID, workout.UserID),
		DedupeKey:     fmt.Sprintf("%s:workout.logged", workout.ID),
	}, events.WorkoutLogged{
		WorkoutID:      workout.ID,
		TenantID:       workout.TenantID,
		UserID:         workout.UserID,
		WorkoutType:    string(workout.WorkoutType),
		DurationMin:    workout.DurationMin,
		CaloriesBurned: workout.CaloriesBurned,
		StartedAt:      workout.StartedAt,
	}); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ListWorkouts returns the most recent workouts, newest first.
func (r *Repository) ListWorkouts(ctx context.Context, tenantID, userID string, limit int) ([]domain.LoggedWorkout, error) {
	tx, err := r.tenantTx(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const query = `SELECT workout_id, tenant_id, user_id, workout_type, duration_min, calories_burned, started_at, created_at
        FROM workouts WHERE tenant_id=$1 AND user_id=$2 ORDER BY started_at DESC, workout_id DESC LIMIT $3`

	rows, err := tx.Query(ctx, query, tenantID, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	workouts := make([]domain.LoggedWorkout, 0, limit)
	for rows.Next() {
		var workout domain.LoggedWorkout
		if err := rows.Scan(
			&workout.ID,
			&workout.TenantID,
			&workout.UserID,
			&workout.WorkoutType,
			&workout.DurationMin,
			&workout.CaloriesBurned,
			&workout.StartedAt,
			&workout.CreatedAt,
		); err != nil {
			return nil, err
		}
		workouts = append(workouts, workout)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return workouts, nil
}
