// Package domain defines the business logic for the nutrition backend:
// goal calculation, portion scaling, daily aggregation, and the workflows
// that tie them to persistence.
package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const dayFormat = "2006-01-02"

// ErrInvalidWorkout indicates a workout log failed validation.
var ErrInvalidWorkout = errors.New("invalid workout")

// StoredProfile wraps a BodyProfile with its ownership and timestamps.
type StoredProfile struct {
	TenantID  string
	UserID    string
	Profile   BodyProfile
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StoredGoals wraps DailyGoals with ownership and the override flag. Goals
// saved with ManualOverride set are never recomputed from profile edits.
type StoredGoals struct {
	TenantID       string
	UserID         string
	Goals          DailyGoals
	ManualOverride bool
	UpdatedAt      time.Time
}

// ProfileRepository persists body profiles and daily goals.
// Lookups return (nil, nil) when no record exists.
type ProfileRepository interface {
	SaveProfile(ctx context.Context, profile StoredProfile, goals *StoredGoals) error
	GetProfile(ctx context.Context, tenantID, userID string) (*StoredProfile, error)
	SaveGoals(ctx context.Context, goals StoredGoals) error
	GetGoals(ctx context.Context, tenantID, userID string) (*StoredGoals, error)
}

// MealRepository persists logged meals.
type MealRepository interface {
	FindMealByIdempotency(ctx context.Context, tenantID, userID, idempotencyKey string) (*LoggedMeal, error)
	CreateMeal(ctx context.Context, meal LoggedMeal, idempotencyKey string) error
	GetMeal(ctx context.Context, tenantID, userID, mealID string) (*LoggedMeal, error)
	DeleteMeal(ctx context.Context, tenantID, userID, mealID string) error
	ListMealsByDay(ctx context.Context, tenantID, userID, day string) ([]LoggedMeal, error)
}

// WorkoutRepository persists logged workouts.
type WorkoutRepository interface {
	CreateWorkout(ctx context.Context, workout LoggedWorkout) error
	ListWorkouts(ctx context.Context, tenantID, userID string, limit int) ([]LoggedWorkout, error)
}

// StatsRepository reads and increments per-day running totals.
type StatsRepository interface {
	GetDailyStats(ctx context.Context, tenantID, userID, day string) (*DailyStats, error)
	ListDailyStats(ctx context.Context, tenantID, userID, fromDay, toDay string) ([]DailyStats, error)
	AddWaterGlass(ctx context.Context, tenantID, userID, day string) (int, error)
}

// Repository captures all persistence operations used by the service.
type Repository interface {
	ProfileRepository
	MealRepository
	WorkoutRepository
	StatsRepository
}

// Service orchestrates nutrition workflows.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// UpsertProfileInput captures a profile create/edit from the API layer.
type UpsertProfileInput struct {
	TenantID string
	UserID   string
	Profile  BodyProfile
}

// UpsertProfile stores the body profile and recomputes daily goals from it.
// Goals the user overrode manually are left untouched.
func (s *Service) UpsertProfile(ctx context.Context, input UpsertProfileInput) (*StoredProfile, *StoredGoals, error) {
	if err := input.Profile.Validate(); err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	profile := StoredProfile{
		TenantID:  input.TenantID,
		UserID:    input.UserID,
		Profile:   input.Profile,
		CreatedAt: now,
		UpdatedAt: now,
	}

	existing, err := s.repo.GetGoals(ctx, input.TenantID, input.UserID)
	if err != nil {
		return nil, nil, err
	}
	if existing != nil && existing.ManualOverride {
		if err := s.repo.SaveProfile(ctx, profile, nil); err != nil {
			return nil, nil, err
		}
		return &profile, existing, nil
	}

	computed, err := CalculateGoals(input.Profile)
	if err != nil {
		return nil, nil, err
	}
	goals := StoredGoals{
		TenantID:  input.TenantID,
		UserID:    input.UserID,
		Goals:     computed,
		UpdatedAt: now,
	}

	if err := s.repo.SaveProfile(ctx, profile, &goals); err != nil {
		return nil, nil, err
	}
	return &profile, &goals, nil
}

// GetProfile fetches the stored body profile.
func (s *Service) GetProfile(ctx context.Context, tenantID, userID string) (*StoredProfile, error) {
	profile, err := s.repo.GetProfile(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}

// GetGoals fetches the stored daily goals.
func (s *Service) GetGoals(ctx context.Context, tenantID, userID string) (*StoredGoals, error) {
	goals, err := s.repo.GetGoals(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	if goals == nil {
		return nil, ErrGoalsNotFound
	}
	return goals, nil
}

// OverrideGoals stores user-chosen targets and pins them against recomputation.
func (s *Service) OverrideGoals(ctx context.Context, tenantID, userID string, goals DailyGoals) (*StoredGoals, error) {
	if goals.Calories < 0 || goals.ProteinG < 0 || goals.CarbsG < 0 || goals.FatG < 0 {
		return nil, fmt.Errorf("%w: goals must be non-negative", ErrInvalidProfile)
	}

	stored := StoredGoals{
		TenantID:       tenantID,
		UserID:         userID,
		Goals:          goals,
		ManualOverride: true,
		UpdatedAt:      time.Now().UTC(),
	}
	if err := s.repo.SaveGoals(ctx, stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

// LogMealInput captures a confirmed food entry from the API layer.
type LogMealInput struct {
	TenantID       string
	UserID         string
	Food           FoodItem
	PortionGrams   float64
	MealType       MealType
	LoggedAt       time.Time
	IdempotencyKey string
}

// LogMeal scales the food's nutrients to the portion and persists the meal.
// The daily-stats contribution is applied downstream by the stats projector,
// so concurrent logs from multiple devices converge by pure addition.
func (s *Service) LogMeal(ctx context.Context, input LogMealInput) (*LoggedMeal, bool, error) {
	if !KnownMealType(input.MealType) {
		input.MealType = MealSnack
	}

	nutrients, err := ScalePortion(input.Food.Per100g, input.PortionGrams)
	if err != nil {
		return nil, false, err
	}

	existing, err := s.repo.FindMealByIdempotency(ctx, input.TenantID, input.UserID, input.IdempotencyKey)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, true, nil
	}

	now := time.Now().UTC()
	loggedAt := input.LoggedAt.UTC()
	if loggedAt.IsZero() {
		loggedAt = now
	}

	meal := LoggedMeal{
		ID:           uuid.NewString(),
		TenantID:     input.TenantID,
		UserID:       input.UserID,
		Name:         input.Food.Name,
		Brand:        input.Food.Brand,
		ImageURL:     input.Food.ImageURL,
		Nutrients:    nutrients,
		PortionGrams: input.PortionGrams,
		MealType:     input.MealType,
		Day:          loggedAt.Format(dayFormat),
		LoggedAt:     loggedAt,
		CreatedAt:    now,
	}

	if err := s.repo.CreateMeal(ctx, meal, input.IdempotencyKey); err != nil {
		return nil, false, err
	}
	return &meal, false, nil
}

// DeleteMeal removes a logged meal. The meal's past contribution to
// daily_stats is intentionally not reversed, matching the aggregate's
// append-only contract.
func (s *Service) DeleteMeal(ctx context.Context, tenantID, userID, mealID string) error {
	return s.repo.DeleteMeal(ctx, tenantID, userID, mealID)
}

// ListMealsByDay returns the meals logged on a calendar day.
func (s *Service) ListMealsByDay(ctx context.Context, tenantID, userID, day string) ([]LoggedMeal, error) {
	if _, err := time.Parse(dayFormat, day); err != nil {
		return nil, fmt.Errorf("invalid day %q (expected YYYY-MM-DD)", day)
	}
	return s.repo.ListMealsByDay(ctx, tenantID, userID, day)
}

// LogWorkoutInput captures a workout entry from the API layer.
type LogWorkoutInput struct {
	TenantID    string
	UserID      string
	WorkoutType WorkoutType
	DurationMin int
	StartedAt   time.Time
}

// LogWorkout estimates calories burned and persists the workout. Unknown
// workout types are normalized to "other".
func (s *Service) LogWorkout(ctx context.Context, input LogWorkoutInput) (*LoggedWorkout, error) {
	if input.DurationMin <= 0 {
		return nil, fmt.Errorf("%w: duration must be > 0 minutes", ErrInvalidWorkout)
	}
	if _, ok := workoutCaloriesPerMinute[input.WorkoutType]; !ok {
		input.WorkoutType = WorkoutOther
	}

	now := time.Now().UTC()
	startedAt := input.StartedAt.UTC()
	if startedAt.IsZero() {
		startedAt = now
	}

	workout := LoggedWorkout{
		ID:             uuid.NewString(),
		TenantID:       input.TenantID,
		UserID:         input.UserID,
		WorkoutType:    input.WorkoutType,
		DurationMin:    input.DurationMin,
		CaloriesBurned: EstimateWorkoutCalories(input.WorkoutType, input.DurationMin),
		StartedAt:      startedAt,
		CreatedAt:      now,
	}

	if err := s.repo.CreateWorkout(ctx, workout); err != nil {
		return nil, err
	}
	return &workout, nil
}

// ListWorkouts returns recent workouts, newest first.
func (s *Service) ListWorkouts(ctx context.Context, tenantID, userID string, limit int) ([]LoggedWorkout, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.ListWorkouts(ctx, tenantID, userID, limit)
}

// AddWaterGlass increments the day's water-glass count and returns the new total.
func (s *Service) AddWaterGlass(ctx context.Context, tenantID, userID, day string) (int, error) {
	if day == "" {
		day = time.Now().UTC().Format(dayFormat)
	}
	if _, err := time.Parse(dayFormat, day); err != nil {
		return 0, fmt.Errorf("invalid day %q (expected YYYY-MM-DD)", day)
	}
	return s.repo.AddWaterGlass(ctx, tenantID, userID, day)
}

// GetDailyStats returns the running totals for one day. A day with no
// recorded entries yields zero totals rather than an error.
func (s *Service) GetDailyStats(ctx context.Context, tenantID, userID, day string) (*DailyStats, error) {
	if day == "" {
		day = time.Now().UTC().Format(dayFormat)
	}
	if _, err := time.Parse(dayFormat, day); err != nil {
		return nil, fmt.Errorf("invalid day %q (expected YYYY-MM-DD)", day)
	}

	stats, err := s.repo.GetDailyStats(ctx, tenantID, userID, day)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		return &DailyStats{Day: day}, nil
	}
	return stats, nil
}

// GetProgress returns a contiguous series of daily stats covering the last
// `days` calendar days up to today, zero-filling days without entries.
func (s *Service) GetProgress(ctx context.Context, tenantID, userID string, days int) ([]DailyStats, error) {
	if days <= 0 {
		days = 7
	}
	if days > 90 {
		days = 90
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	from := today.AddDate(0, 0, -(days - 1))

	stored, err := s.repo.ListDailyStats(ctx, tenantID, userID, from.Format(dayFormat), today.Format(dayFormat))
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]DailyStats, len(stored))
	for _, stats := range stored {
		byDay[stats.Day] = stats
	}

	series := make([]DailyStats, 0, days)
	for d := from; !d.After(today); d = d.AddDate(0, 0, 1) {
		day := d.Format(dayFormat)
		if stats, ok := byDay[day]; ok {
			series = append(series, stats)
		} else {
			series = append(series, DailyStats{Day: day})
		}
	}
	return series, nil
}
