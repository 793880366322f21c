package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEstimateWorkoutCaloriesPerTypeRates(t *testing.T) {
	cases := []struct {
		workoutType WorkoutType
		durationMin int
		want        int
	}{
		{WorkoutCardio, 30, 300},
		{WorkoutStrength, 45, 270},
		{WorkoutFlexibility, 60, 180},
		{WorkoutSports, 15, 120},
		{WorkoutOther, 10, 50},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, EstimateWorkoutCalories(tc.workoutType, tc.durationMin), "type=%s", tc.workoutType)
	}
}

func TestEstimateWorkoutCaloriesZeroDuration(t *testing.T) {
	for workoutType := range workoutCaloriesPerMinute {
		require.Zero(t, EstimateWorkoutCalories(workoutType, 0), "type=%s", workoutType)
	}
}

func TestEstimateWorkoutCaloriesUnknownTypeUsesOtherRate(t *testing.T) {
	require.Equal(t, EstimateWorkoutCalories(WorkoutOther, 40), EstimateWorkoutCalories("swimming", 40))
}
