// Package events defines the payloads published through the outbox.
package events

import "time"

// MealLogged is emitted when a meal entry is accepted. It carries the
// portion-scaled nutrients so downstream projections fold them into daily
// totals without re-reading the meal row.
type MealLogged struct {
	MealID       string    `json:"meal_id"`
	TenantID     string    `json:"tenant_id"`
	UserID       string    `json:"user_id"`
	Name         string    `json:"name"`
	MealType     string    `json:"meal_type"`
	Day          string    `json:"day"`
	Calories     int       `json:"calories"`
	ProteinG     float64   `json:"protein_g"`
	CarbsG       float64   `json:"carbs_g"`
	FatG         float64   `json:"fat_g"`
	PortionGrams float64   `json:"portion_grams"`
	LoggedAt     time.Time `json:"logged_at"`
}

// MealDeleted is emitted when a meal entry is removed. Consumers do not
// reverse the meal's daily-stats contribution; the event exists for audit
// trails and client cache invalidation.
type MealDeleted struct {
	MealID     string    `json:"meal_id"`
	TenantID   string    `json:"tenant_id"`
	UserID     string    `json:"user_id"`
	Day        string    `json:"day"`
	OccurredAt time.Time `json:"occurred_at"`
}

// WorkoutLogged is emitted when a workout entry is accepted.
type WorkoutLogged struct {
	WorkoutID      string    `json:"workout_id"`
	TenantID       string    `json:"tenant_id"`
	UserID         string    `json:"user_id"`
	WorkoutType    string    `json:"workout_type"`
	DurationMin    int       `json:"duration_min"`
	CaloriesBurned int       `json:"calories_burned"`
	StartedAt      time.Time `json:"started_at"`
}

// GoalsUpdated is emitted whenever daily goals are recomputed or overridden.
type GoalsUpdated struct {
	TenantID       string    `json:"tenant_id"`
	UserID         string    `json:"user_id"`
	CaloriesGoal   int       `json:"calories_goal"`
	ProteinGoal    int       `json:"protein_goal"`
	CarbsGoal      int       `json:"carbs_goal"`
	FatGoal        int       `json:"fat_goal"`
	ManualOverride bool      `json:"manual_override"`
	OccurredAt     time.Time `json:"occurred_at"`
}
