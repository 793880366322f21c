// Package memory provides an in-memory repository for local development and
// tests. Increments take the same commutative form as the Postgres
// implementation so both backends converge identically.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Dindas01/THRIV/internal/domain"
)

// Repository stores all entities in process memory.
type Repository struct {
	mu       sync.RWMutex
	profiles map[string]domain.StoredProfile
	goals    map[string]domain.StoredGoals
	meals    map[string]domain.LoggedMeal
	byIdem   map[string]string
	workouts map[string][]domain.LoggedWorkout
	stats    map[string]map[string]domain.DailyStats
	applied  map[string]struct{}
}

// NewRepository constructs an empty Repository.
func NewRepository() *Repository {
	return &Repository{
		profiles: make(map[string]domain.StoredProfile),
		goals:    make(map[string]domain.StoredGoals),
		meals:    make(map[string]domain.LoggedMeal),
		byIdem:   make(map[string]string),
		workouts: make(map[string][]domain.LoggedWorkout),
		stats:    make(map[string]map[string]domain.DailyStats),
		applied:  make(map[string]struct{}),
	}
}

func userKey(tenantID, userID string) string { return tenantID + "\x00" + userID }

// SaveProfile implements domain.ProfileRepository.
func (r *Repository) SaveProfile(ctx context.Context, profile domain.StoredProfile, goals *domain.StoredGoals) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := userKey(profile.TenantID, profile.UserID)
	// Match the SQL upsert: created_at sticks to the first insert.
	if prior, ok := r.profiles[key]; ok {
		profile.CreatedAt = prior.CreatedAt
	}
	r.profiles[key] = profile
	if goals != nil {
		r.goals[userKey(goals.TenantID, goals.UserID)] = *goals
	}
	return nil
}

// GetProfile implements domain.ProfileRepository.
func (r *Repository) GetProfile(ctx context.Context, tenantID, userID string) (*domain.StoredProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if profile, ok := r.profiles[userKey(tenantID, userID)]; ok {
		return &profile, nil
	}
	return nil, nil
}

// SaveGoals implements domain.ProfileRepository.
func (r *Repository) SaveGoals(ctx context.Context, goals domain.StoredGoals) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.goals[userKey(goals.TenantID, goals.UserID)] = goals
	return nil
}

// GetGoals implements domain.ProfileRepository.
func (r *Repository) GetGoals(ctx context.Context, tenantID, userID string) (*domain.StoredGoals, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if goals, ok := r.goals[userKey(tenantID, userID)]; ok {
		return &goals, nil
	}
	return nil, nil
}

// FindMealByIdempotency implements domain.MealRepository.
func (r *Repository) FindMealByIdempotency(ctx context.Context, tenantID, userID, idempotencyKey string) (*domain.LoggedMeal, error) {
	if idempotencyKey == "" {
		return nil, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if id, ok := r.byIdem[userKey(tenantID, userID)+"\x00"+idempotencyKey]; ok {
		meal := r.meals[id]
		return &meal, nil
	}
	return nil, nil
}

// CreateMeal implements domain.MealRepository. The meal's contribution is
// folded into daily stats immediately; there is no outbox hop in memory.
func (r *Repository) CreateMeal(ctx context.Context, meal domain.LoggedMeal, idempotencyKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.meals[meal.ID] = meal
	if idempotencyKey != "" {
		r.byIdem[userKey(meal.TenantID, meal.UserID)+"\x00"+idempotencyKey] = meal.ID
	}
	r.addToStats(meal.TenantID, meal.UserID, meal.Day, meal.Nutrients)
	return nil
}

func (r *Repository) addToStats(tenantID, userID, day string, n domain.ScaledNutrients) {
	key := userKey(tenantID, userID)
	if r.stats[key] == nil {
		r.stats[key] = make(map[string]domain.DailyStats)
	}
	stats := r.stats[key][day]
	stats.Day = day
	stats.Add(n)
	r.stats[key][day] = stats
}

// GetMeal implements domain.MealRepository.
func (r *Repository) GetMeal(ctx context.Context, tenantID, userID, mealID string) (*domain.LoggedMeal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if meal, ok := r.meals[mealID]; ok && meal.TenantID == tenantID && meal.UserID == userID {
		return &meal, nil
	}
	return nil, nil
}

// DeleteMeal implements domain.MealRepository. Daily stats keep the deleted
// meal's contribution.
func (r *Repository) DeleteMeal(ctx context.Context, tenantID, userID, mealID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	meal, ok := r.meals[mealID]
	if !ok || meal.TenantID != tenantID || meal.UserID != userID {
		return domain.ErrMealNotFound
	}
	delete(r.meals, mealID)
	return nil
}

// ListMealsByDay implements domain.MealRepository.
func (r *Repository) ListMealsByDay(ctx context.Context, tenantID, userID, day string) ([]domain.LoggedMeal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	meals := make([]domain.LoggedMeal, 0)
	for _, meal := range r.meals {
		if meal.TenantID == tenantID && meal.UserID == userID && meal.Day == day {
			meals = append(meals, meal)
		}
	}
	sort.Slice(meals, func(i, j int) bool { return meals[i].LoggedAt.Before(meals[j].LoggedAt) })
	return meals, nil
}

// CreateWorkout implements domain.WorkoutRepository.
func (r *Repository) CreateWorkout(ctx context.Context, workout domain.LoggedWorkout) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := userKey(workout.TenantID, workout.UserID)
	r.workouts[key] = append(r.workouts[key], workout)
	return nil
}

// ListWorkouts implements domain.WorkoutRepository.
func (r *Repository) ListWorkouts(ctx context.Context, tenantID, userID string, limit int) ([]domain.LoggedWorkout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := r.workouts[userKey(tenantID, userID)]
	out := make([]domain.LoggedWorkout, len(all))
	copy(out, all)
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// GetDailyStats implements domain.StatsRepository.
func (r *Repository) GetDailyStats(ctx context.Context, tenantID, userID, day string) (*domain.DailyStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if byDay, ok := r.stats[userKey(tenantID, userID)]; ok {
		if stats, ok := byDay[day]; ok {
			return &stats, nil
		}
	}
	return nil, nil
}

// ListDailyStats implements domain.StatsRepository.
func (r *Repository) ListDailyStats(ctx context.Context, tenantID, userID, fromDay, toDay string) ([]domain.DailyStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.DailyStats, 0)
	for day, stats := range r.stats[userKey(tenantID, userID)] {
		if day >= fromDay && day <= toDay {
			out = append(out, stats)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out, nil
}

// AddWaterGlass implements domain.StatsRepository.
func (r *Repository) AddWaterGlass(ctx context.Context, tenantID, userID, day string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := userKey(tenantID, userID)
	if r.stats[key] == nil {
		r.stats[key] = make(map[string]domain.DailyStats)
	}
	stats := r.stats[key][day]
	stats.Day = day
	stats.WaterGlasses++
	r.stats[key][day] = stats
	return stats.WaterGlasses, nil
}

// ApplyContribution folds scaled nutrients into a day's stats with dedupe,
// mirroring the Postgres projection used by the Kafka consumer.
func (r *Repository) ApplyContribution(tenantID, userID, day, dedupeKey string, n domain.ScaledNutrients) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, seen := r.applied[dedupeKey]; seen {
		return false
	}
	r.applied[dedupeKey] = struct{}{}
	r.addToStats(tenantID, userID, day, n)
	return true
}

var _ domain.Repository = (*Repository)(nil)
