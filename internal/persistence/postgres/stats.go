package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/Dindas01/THRIV/internal/domain"
	"github.com/Dindas01/THRIV/internal/events"
)

// GetDailyStats retrieves the running totals for one day, or nil when the day
// has no recorded entries.
func (r *Repository) GetDailyStats(ctx context.Context, tenantID, userID, day string) (*domain.DailyStats, error) {
	tx, err := r.tenantTx(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const query = `SELECT day, calories_consumed, protein_consumed, carbs_consumed, fat_consumed, water_glasses
        FROM daily_stats WHERE tenant_id=$1 AND user_id=$2 AND day=$3`

	var stats domain.DailyStats
	err = tx.QueryRow(ctx, query, tenantID, userID, day).Scan(
		&stats.Day,
		&stats.CaloriesConsumed,
		&stats.ProteinConsumed,
		&stats.CarbsConsumed,
		&stats.FatConsumed,
		&stats.WaterGlasses,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tx.Commit(ctx)
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ListDailyStats returns stats rows between two days inclusive, ascending.
func (r *Repository) ListDailyStats(ctx context.Context, tenantID, userID, fromDay, toDay string) ([]domain.DailyStats, error) {
	tx, err := r.tenantTx(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const query = `SELECT day, calories_consumed, protein_consumed, carbs_consumed, fat_consumed, water_glasses
        FROM daily_stats WHERE tenant_id=$1 AND user_id=$2 AND day BETWEEN $3 AND $4 ORDER BY day ASC`

	rows, err := tx.Query(ctx, query, tenantID, userID, fromDay, toDay)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.DailyStats, 0)
	for rows.Next() {
		var stats domain.DailyStats
		if err := rows.Scan(
			&stats.Day,
			&stats.CaloriesConsumed,
			&stats.ProteinConsumed,
			&stats.CarbsConsumed,
			&stats.FatConsumed,
			&stats.WaterGlasses,
		); err != nil {
			return nil, err
		}
		out = append(out, stats)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

// AddWaterGlass increments the day's water-glass count by one and returns the
// new total. The increment is commutative, so concurrent devices converge.
func (r *Repository) AddWaterGlass(ctx context.Context, tenantID, userID, day string) (int, error) {
	tx, err := r.tenantTx(ctx, tenantID)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	const upsert = `INSERT INTO daily_stats (tenant_id, user_id, day, water_glasses, updated_at)
        VALUES ($1,$2,$3,1,NOW())
        ON CONFLICT (tenant_id, user_id, day) DO UPDATE SET
            water_glasses = daily_stats.water_glasses + 1, updated_at = NOW()
        RETURNING water_glasses`

	var count int
	if err := tx.QueryRow(ctx, upsert, tenantID, userID, day).Scan(&count); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return count, nil
}

// ApplyMealContribution folds one meal.logged event into daily_stats. The
// dedupe key guards against Kafka redelivery: a key already recorded in
// applied_events means the increment was applied before and is skipped, so
// the projection stays an exactly-once additive fold.
func (r *Repository) ApplyMealContribution(ctx context.Context, evt events.MealLogged, dedupeKey string) (bool, error) {
	tx, err := r.tenantTx(ctx, evt.TenantID)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `INSERT INTO applied_events (dedupe_key, applied_at) VALUES ($1, NOW()) ON CONFLICT (dedupe_key) DO NOTHING`, dedupeKey)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, tx.Commit(ctx)
	}

	const upsert = `INSERT INTO daily_stats (tenant_id, user_id, day, calories_consumed, protein_consumed, carbs_consumed, fat_consumed, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,NOW())
        ON CONFLICT (tenant_id, user_id, day) DO UPDATE SET
            calories_consumed = daily_stats.calories_consumed + EXCLUDED.calories_consumed,
            protein_consumed  = daily_stats.protein_consumed  + EXCLUDED.protein_consumed,
            carbs_consumed    = daily_stats.carbs_consumed    + EXCLUDED.carbs_consumed,
            fat_consumed      = daily_stats.fat_consumed      + EXCLUDED.fat_consumed,
            updated_at = NOW()`

	if _, err := tx.Exec(ctx, upsert,
		evt.TenantID,
		evt.UserID,
		evt.Day,
		evt.Calories,
		evt.ProteinG,
		evt.CarbsG,
		evt.FatG,
	); err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}
