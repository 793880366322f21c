package domain

import (
	"math"
	"time"
)

// WorkoutType categorizes a logged workout for calorie estimation.
type WorkoutType string

const (
	WorkoutCardio      WorkoutType = "cardio"
	WorkoutStrength    WorkoutType = "strength"
	WorkoutFlexibility WorkoutType = "flexibility"
	WorkoutSports      WorkoutType = "sports"
	WorkoutOther       WorkoutType = "other"
)

// Approximate kcal/min for an average adult.
var workoutCaloriesPerMinute = map[WorkoutType]float64{
	WorkoutCardio:      10,
	WorkoutStrength:    6,
	WorkoutFlexibility: 3,
	WorkoutSports:      8,
	WorkoutOther:       5,
}

// EstimateWorkoutCalories estimates calories burned for a workout. Unknown
// types fall back to the "other" rate rather than failing.
func EstimateWorkoutCalories(workoutType WorkoutType, durationMin int) int {
	rate, ok := workoutCaloriesPerMinute[workoutType]
	if !ok {
		rate = workoutCaloriesPerMinute[WorkoutOther]
	}
	return int(math.Round(rate * float64(durationMin)))
}

// LoggedWorkout is the aggregate stored when a user records a training session.
// Immutable after creation except for deletion.
type LoggedWorkout struct {
	ID             string
	TenantID       string
	UserID         string
	WorkoutType    WorkoutType
	DurationMin    int
	CaloriesBurned int
	StartedAt      time.Time
	CreatedAt      time.Time
}
