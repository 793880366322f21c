package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Dindas01/THRIV/internal/domain"
	"github.com/Dindas01/THRIV/internal/events"
	"github.com/Dindas01/THRIV/internal/observability"
)

const mealColumns = `meal_id, tenant_id, user_id, name, brand, image_url, calories, protein_g, carbs_g, fat_g, portion_grams, meal_type, day, logged_at, created_at`

func scanMeal(row pgx.Row) (domain.LoggedMeal, error) {
	var meal domain.LoggedMeal
	err := row.Scan(
		&meal.ID,
		&meal.TenantID,
		&meal.UserID,
		&meal.Name,
		&meal.Brand,
		&meal.ImageURL,
		&meal.Nutrients.Calories,
		&meal.Nutrients.ProteinG,
		&meal.Nutrients.CarbsG,
		&meal.Nutrients.FatG,
		&meal.PortionGrams,
		&meal.MealType,
		&meal.Day,
		&meal.LoggedAt,
		&meal.CreatedAt,
	)
	return meal, err
}

// FindMealByIdempotency checks if a meal already exists for the supplied idempotency key.
func (r *Repository) FindMealByIdempotency(ctx context.Context, tenantID, userID, idempotencyKey string) (*domain.LoggedMeal, error) {
	if idempotencyKey == "" {
		return nil, nil
	}

	tx, err := r.tenantTx(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	query := `SELECT ` + mealColumns + ` FROM meals WHERE tenant_id=$1 AND user_id=$2 AND idempotency_key=$3`
	meal, err := scanMeal(tx.QueryRow(ctx, query, tenantID, userID, idempotencyKey))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tx.Commit(ctx)
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &meal, nil
}

// CreateMeal persists the meal and records a meal.logged outbox event inside
// a single transaction. The daily-stats contribution is applied downstream by
// the stats projector consuming that event.
func (r *Repository) CreateMeal(ctx context.Context, meal domain.LoggedMeal, idempotencyKey string) error {
	tx, err := r.tenantTx(ctx, meal.TenantID)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const insertMeal = `INSERT INTO meals (meal_id, tenant_id, user_id, name, brand, image_url, calories, protein_g, carbs_g, fat_g, portion_grams, meal_type, day, logged_at, idempotency_key, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`

	if _, err := tx.Exec(ctx, insertMeal,
		meal.ID,
		meal.TenantID,
		meal.UserID,
		meal.Name,
		meal.Brand,
		meal.ImageURL,
		meal.Nutrients.Calories,
		meal.Nutrients.ProteinG,
		meal.Nutrients.CarbsG,
		meal.Nutrients.FatG,
		meal.PortionGrams,
		meal.MealType,
		meal.Day,
		meal.LoggedAt,
		nullIfEmpty(idempotencyKey),
		meal.CreatedAt,
	); err != nil {
		return err
	}

	if err := insertOutbox(ctx, tx, outboxRecord{
		TenantID:      meal.TenantID,
		AggregateType: "meal",
		AggregateID:   meal.ID,
		EventType:     "meal.logged",
		PartitionKey:  fmt.Sprintf("%s:%s", meal.TenantID, meal.UserID),
		DedupeKey:     fmt.Sprintf("%s:meal.logged", meal.ID),
	}, events.MealLogged{
		MealID:       meal.ID,
		TenantID:     meal.TenantID,
		UserID:       meal.UserID,
		Name:         meal.Name,
		MealType:     string(meal.MealType),
		Day:          meal.Day,
		Calories:     meal.Nutrients.Calories,
		ProteinG:     meal.Nutrients.ProteinG,
		CarbsG:       meal.Nutrients.CarbsG,
		FatG:         meal.Nutrients.FatG,
		PortionGrams: meal.PortionGrams,
		LoggedAt:     meal.LoggedAt,
	}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	observability.RecordMealPersisted(meal.CreatedAt)
	return nil
}

// GetMeal retrieves a meal by ID, or nil when absent.
func (r *Repository) GetMeal(ctx context.Context, tenantID, userID, mealID string) (*domain.LoggedMeal, error) {
	tx, err := r.tenantTx(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	query := `SELECT ` + mealColumns + ` FROM meals WHERE tenant_id=$1 AND user_id=$2 AND meal_id=$3`
	meal, err := scanMeal(tx.QueryRow(ctx, query, tenantID, userID, mealID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tx.Commit(ctx)
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &meal, nil
}

// DeleteMeal removes a meal row and records a meal.deleted outbox event.
// Daily-stats totals are left untouched.
func (r *Repository) DeleteMeal(ctx context.Context, tenantID, userID, mealID string) error {
	tx, err := r.tenantTx(ctx, tenantID)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var day string
	err = tx.QueryRow(ctx, `DELETE FROM meals WHERE tenant_id=$1 AND user_id=$2 AND meal_id=$3 RETURNING day`, tenantID, userID, mealID).Scan(&day)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrMealNotFound
		}
		return err
	}

	deletedAt := time.Now().UTC()
	if err := insertOutbox(ctx, tx, outboxRecord{
		TenantID:      tenantID,
		AggregateType: "meal",
		AggregateID:   mealID,
		EventType:     "meal.deleted",
		PartitionKey:  fmt.Sprintf("%s:%s", tenantID, userID),
		DedupeKey:     fmt.Sprintf("%s:meal.deleted", mealID),
	}, events.MealDeleted{
		MealID:     mealID,
		TenantID:   tenantID,
		UserID:     userID,
		Day:        day,
		OccurredAt: deletedAt,
	}); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ListMealsByDay returns the meals logged on a calendar day, oldest first.
func (r *Repository) ListMealsByDay(ctx context.Context, tenantID, userID, day string) ([]domain.LoggedMeal, error) {
	tx, err := r.tenantTx(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	query := `SELECT ` + mealColumns + ` FROM meals WHERE tenant_id=$1 AND user_id=$2 AND day=$3 ORDER BY logged_at ASC`
	rows, err := tx.Query(ctx, query, tenantID, userID, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	meals := make([]domain.LoggedMeal, 0)
	for rows.Next() {
		meal, err := scanMeal(rows)
		if err != nil {
			return nil, err
		}
		meals = append(meals, meal)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return meals, nil
}
