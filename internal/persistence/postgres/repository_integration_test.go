//go:build integration

package postgres

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/Dindas01/THRIV/internal/domain"
	"github.com/Dindas01/THRIV/internal/events"
)

func startPostgres(t *testing.T, ctx context.Context) *pgxpool.Pool {
	t.Helper()

	pg, err := postgrescontainer.RunContainer(ctx,
		postgrescontainer.WithDatabase("thriv"),
		postgrescontainer.WithUsername("thriv"),
		postgrescontainer.WithPassword("thriv"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, waitForDatabase(ctx, connStr))
	runMigrations(t, ctx, connStr)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })
	return pool
}

func TestRepositoryRespectsTenantIsolation(t *testing.T) {
	ctx := context.Background()
	pool := startPostgres(t, ctx)
	repo := NewRepository(pool)

	meal := domain.LoggedMeal{
		ID:       uuid.NewString(),
		TenantID: uuid.NewString(),
		UserID:   uuid.NewString(),
		Name:     "Integration Salad",
		Nutrients: domain.ScaledNutrients{
			Calories: 120,
			ProteinG: 4.5,
			CarbsG:   10.0,
			FatG:     7.2,
		},
		PortionGrams: 150,
		MealType:     domain.MealLunch,
		Day:          "2026-08-30",
		LoggedAt:     time.Now().UTC(),
		CreatedAt:    time.Now().UTC(),
	}

	require.NoError(t, repo.CreateMeal(ctx, meal, "key-1"))

	stored, err := repo.GetMeal(ctx, meal.TenantID, meal.UserID, meal.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Equal(t, meal.Nutrients.Calories, stored.Nutrients.Calories)

	storedOther, err := repo.GetMeal(ctx, uuid.NewString(), meal.UserID, meal.ID)
	require.NoError(t, err)
	require.Nil(t, storedOther, "RLS should prevent cross-tenant access")
}

func TestRepositoryIdempotencyLookup(t *testing.T) {
	ctx := context.Background()
	pool := startPostgres(t, ctx)
	repo := NewRepository(pool)

	tenantID := uuid.NewString()
	userID := uuid.NewString()

	meal := domain.LoggedMeal{
		ID:           uuid.NewString(),
		TenantID:     tenantID,
		UserID:       userID,
		Name:         "Oats",
		Nutrients:    domain.ScaledNutrients{Calories: 156, ProteinG: 6.8, CarbsG: 26.5, FatG: 2.8},
		PortionGrams: 40,
		MealType:     domain.MealBreakfast,
		Day:          "2026-08-30",
		LoggedAt:     time.Now().UTC(),
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, repo.CreateMeal(ctx, meal, "retry-key"))

	found, err := repo.FindMealByIdempotency(ctx, tenantID, userID, "retry-key")
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, meal.ID, found.ID)

	missing, err := repo.FindMealByIdempotency(ctx, tenantID, userID, "other-key")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestApplyMealContributionFoldsAdditively(t *testing.T) {
	ctx := context.Background()
	pool := startPostgres(t, ctx)
	repo := NewRepository(pool)

	tenantID := uuid.NewString()
	userID := uuid.NewString()
	day := "2026-08-30"

	contributions := []events.MealLogged{
		{MealID: uuid.NewString(), TenantID: tenantID, UserID: userID, Day: day, Calories: 248, ProteinG: 46.5, CarbsG: 0, FatG: 5.4},
		{MealID: uuid.NewString(), TenantID: tenantID, UserID: userID, Day: day, Calories: 156, ProteinG: 6.8, CarbsG: 26.5, FatG: 2.8},
		{MealID: uuid.NewString(), TenantID: tenantID, UserID: userID, Day: day, Calories: 200, ProteinG: 5.0, CarbsG: 25.0, FatG: 7.5},
	}

	for _, evt := range contributions {
		applied, err := repo.ApplyMealContribution(ctx, evt, "meal.logged:"+evt.MealID)
		require.NoError(t, err)
		require.True(t, applied)
	}

	// Redeliver everything; the dedupe table must absorb the duplicates.
	for _, evt := range contributions {
		applied, err := repo.ApplyMealContribution(ctx, evt, "meal.logged:"+evt.MealID)
		require.NoError(t, err)
		require.False(t, applied)
	}

	stats, err := repo.GetDailyStats(ctx, tenantID, userID, day)
	require.NoError(t, err)
	require.NotNil(t, stats)
	require.Equal(t, 604, stats.CaloriesConsumed)
	require.InDelta(t, 58.3, stats.ProteinConsumed, 1e-9)
	require.InDelta(t, 51.5, stats.CarbsConsumed, 1e-9)
	require.InDelta(t, 15.7, stats.FatConsumed, 1e-9)
}

func TestAddWaterGlassIncrements(t *testing.T) {
	ctx := context.Background()
	pool := startPostgres(t, ctx)
	repo := NewRepository(pool)

	tenantID := uuid.NewString()
	userID := uuid.NewString()

	for i := 1; i <= 3; i++ {
		glasses, err := repo.AddWaterGlass(ctx, tenantID, userID, "2026-08-30")
		require.NoError(t, err)
		require.Equal(t, i, glasses)
	}

	stats, err := repo.GetDailyStats(ctx, tenantID, userID, "2026-08-30")
	require.NoError(t, err)
	require.NotNil(t, stats)
	require.Equal(t, 3, stats.WaterGlasses)
	require.Equal(t, 0, stats.CaloriesConsumed)
}

func runMigrations(t *testing.T, ctx context.Context, connStr string) {
	files := []string{
		"../../../db/postgres/migrations/0001_init.up.sql",
	}

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	defer pool.Close()

	for _, rel := range files {
		path := resolvePath(t, rel)
		contents, readErr := os.ReadFile(path)
		require.NoError(t, readErr)

		_, execErr := pool.Exec(ctx, string(contents))
		require.NoError(t, execErr)
	}
}

func resolvePath(t *testing.T, rel string) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), rel)
}

func waitForDatabase(ctx context.Context, connStr string) error {
	deadline := time.Now().Add(30 * time.Second)
	for {
		pool, err := pgxpool.New(ctx, connStr)
		if err == nil {
			err = pool.Ping(ctx)
			pool.Close()
			if err == nil {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return err
		}
		time.Sleep(time.Second)
	}
}
