package api

import (
	"errors"
	"strings"
	"time"

	"github.com/Dindas01/THRIV/internal/domain"
)

// UpsertProfileRequest is the payload for PUT /v1/profile.
type UpsertProfileRequest struct {
	Sex           string  `json:"sex"`
	Age           int     `json:"age"`
	WeightKg      float64 `json:"weight_kg"`
	HeightCm      float64 `json:"height_cm"`
	ActivityLevel string  `json:"activity_level"`
	Goal          string  `json:"goal"`
}

// Validate ensures request correctness. Value-level rules (ranges, known
// enum members) are enforced by the domain layer.
func (r UpsertProfileRequest) Validate() error {
	if strings.TrimSpace(r.Sex) == "" {
		return errors.New("sex is required")
	}
	if strings.TrimSpace(r.ActivityLevel) == "" {
		return errors.New("activity_level is required")
	}
	if strings.TrimSpace(r.Goal) == "" {
		return errors.New("goal is required")
	}
	return nil
}

// UpsertProfileResponse couples the stored profile with the goals derived
// from it.
type UpsertProfileResponse struct {
	Profile ProfileView `json:"profile"`
	Goals   GoalsView   `json:"goals"`
}

// ProfileView exposes a stored body profile.
type ProfileView struct {
	Sex           string    `json:"sex"`
	Age           int       `json:"age"`
	WeightKg      float64   `json:"weight_kg"`
	HeightCm      float64   `json:"height_cm"`
	ActivityLevel string    `json:"activity_level"`
	Goal          string    `json:"goal"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// OverrideGoalsRequest is the payload for PUT /v1/goals.
type OverrideGoalsRequest struct {
	Calories int `json:"calories"`
	ProteinG int `json:"protein_g"`
	CarbsG   int `json:"carbs_g"`
	FatG     int `json:"fat_g"`
}

// Validate ensures request correctness.
func (r OverrideGoalsRequest) Validate() error {
	if r.Calories <= 0 {
		return errors.New("calories must be > 0")
	}
	if r.ProteinG < 0 || r.CarbsG < 0 || r.FatG < 0 {
		return errors.New("macro goals must be >= 0")
	}
	return nil
}

// GoalsView exposes daily goals.
type GoalsView struct {
	Calories       int       `json:"calories"`
	ProteinG       int       `json:"protein_g"`
	CarbsG         int       `json:"carbs_g"`
	FatG           int       `json:"fat_g"`
	ManualOverride bool      `json:"manual_override"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// LogMealRequest is the payload for POST /v1/meals. Nutrients are given per
// 100 grams and scaled server-side by portion_grams.
type LogMealRequest struct {
	Name            string    `json:"name"`
	Brand           string    `json:"brand"`
	Barcode         string    `json:"barcode"`
	ImageURL        string    `json:"image_url"`
	CaloriesPer100g float64   `json:"calories_per_100g"`
	ProteinPer100g  float64   `json:"protein_per_100g"`
	CarbsPer100g    float64   `json:"carbs_per_100g"`
	FatPer100g      float64   `json:"fat_per_100g"`
	PortionGrams    float64   `json:"portion_grams"`
	MealType        string    `json:"meal_type"`
	LoggedAt        time.Time `json:"logged_at"`
}

// Validate ensures request correctness.
func (r LogMealRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required")
	}
	if r.PortionGrams <= 0 {
		return errors.New("portion_grams must be > 0")
	}
	if r.CaloriesPer100g < 0 || r.ProteinPer100g < 0 || r.CarbsPer100g < 0 || r.FatPer100g < 0 {
		return errors.New("nutrients must be >= 0")
	}
	return nil
}

// LogMealResponse describes the response body for meal creation.
type LogMealResponse struct {
	Meal   MealView `json:"meal"`
	Replay bool     `json:"idempotent_replay"`
}

// MealView exposes a logged meal with its portion-scaled nutrients.
type MealView struct {
	MealID       string    `json:"meal_id"`
	Name         string    `json:"name"`
	Brand        string    `json:"brand,omitempty"`
	ImageURL     string    `json:"image_url,omitempty"`
	MealType     string    `json:"meal_type"`
	Day          string    `json:"day"`
	PortionGrams float64   `json:"portion_grams"`
	Calories     int       `json:"calories"`
	ProteinG     float64   `json:"protein_g"`
	CarbsG       float64   `json:"carbs_g"`
	FatG         float64   `json:"fat_g"`
	LoggedAt     time.Time `json:"logged_at"`
}

// ListMealsResponse packages a day's meals.
type ListMealsResponse struct {
	Day   string     `json:"day"`
	Items []MealView `json:"items"`
}

// LogWorkoutRequest is the payload for POST /v1/workouts.
type LogWorkoutRequest struct {
	WorkoutType string    `json:"workout_type"`
	DurationMin int       `json:"duration_min"`
	StartedAt   time.Time `json:"started_at"`
}

// Validate ensures request correctness.
func (r LogWorkoutRequest) Validate() error {
	if strings.TrimSpace(r.WorkoutType) == "" {
		return errors.New("workout_type is required")
	}
	if r.DurationMin <= 0 {
		return errors.New("duration_min must be > 0")
	}
	return nil
}

// WorkoutView exposes a logged workout.
type WorkoutView struct {
	WorkoutID      string    `json:"workout_id"`
	WorkoutType    string    `json:"workout_type"`
	DurationMin    int       `json:"duration_min"`
	CaloriesBurned int       `json:"calories_burned"`
	StartedAt      time.Time `json:"started_at"`
}

// ListWorkoutsResponse packages list results.
type ListWorkoutsResponse struct {
	Items []WorkoutView `json:"items"`
}

// AddWaterRequest is the payload for POST /v1/water. Day defaults to today.
type AddWaterRequest struct {
	Day string `json:"day"`
}

// AddWaterResponse carries the new glass count for the day.
type AddWaterResponse struct {
	Day          string `json:"day"`
	WaterGlasses int    `json:"water_glasses"`
}

// StatsView exposes one day's running totals.
type StatsView struct {
	Day              string  `json:"day"`
	CaloriesConsumed int     `json:"calories_consumed"`
	ProteinConsumed  float64 `json:"protein_consumed"`
	CarbsConsumed    float64 `json:"carbs_consumed"`
	FatConsumed      float64 `json:"fat_consumed"`
	WaterGlasses     int     `json:"water_glasses"`
}

// ProgressResponse packages a contiguous daily series ending today.
type ProgressResponse struct {
	Items []StatsView `json:"items"`
}

func toProfileView(p domain.StoredProfile) ProfileView {
	return ProfileView{
		Sex:           string(p.Profile.Sex),
		Age:           p.Profile.Age,
		WeightKg:      p.Profile.WeightKg,
		HeightCm:      p.Profile.HeightCm,
		ActivityLevel: string(p.Profile.ActivityLevel),
		Goal:          string(p.Profile.Goal),
		UpdatedAt:     p.UpdatedAt,
	}
}

func toGoalsView(g domain.StoredGoals) GoalsView {
	return GoalsView{
		Calories:       g.Goals.Calories,
		ProteinG:       g.Goals.ProteinG,
		CarbsG:         g.Goals.CarbsG,
		FatG:           g.Goals.FatG,
		ManualOverride: g.ManualOverride,
		UpdatedAt:      g.UpdatedAt,
	}
}

func toMealView(m domain.LoggedMeal) MealView {
	return MealView{
		MealID:       m.ID,
		Name:         m.Name,
		Brand:        m.Brand,
		ImageURL:     m.ImageURL,
		MealType:     string(m.MealType),
		Day:          m.Day,
		PortionGrams: m.PortionGrams,
		Calories:     m.Nutrients.Calories,
		ProteinG:     m.Nutrients.ProteinG,
		CarbsG:       m.Nutrients.CarbsG,
		FatG:         m.Nutrients.FatG,
		LoggedAt:     m.LoggedAt,
	}
}

func toWorkoutView(w domain.LoggedWorkout) WorkoutView {
	return WorkoutView{
		WorkoutID:      w.ID,
		WorkoutType:    string(w.WorkoutType),
		DurationMin:    w.DurationMin,
		CaloriesBurned: w.CaloriesBurned,
		StartedAt:      w.StartedAt,
	}
}

func toStatsView(s domain.DailyStats) StatsView {
	return StatsView{
		Day:              s.Day,
		CaloriesConsumed: s.CaloriesConsumed,
		ProteinConsumed:  s.ProteinConsumed,
		CarbsConsumed:    s.CarbsConsumed,
		FatConsumed:      s.FatConsumed,
		WaterGlasses:     s.WaterGlasses,
	}
}
