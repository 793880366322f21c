package domain

import "math"

// DailyGoals is the calorie and macro budget derived from a BodyProfile,
// or set manually by the user.
type DailyGoals struct {
	Calories int
	ProteinG int
	CarbsG   int
	FatG     int
}

// CalculateGoals derives daily targets from a body profile using the
// Mifflin-St Jeor BMR formula scaled by activity level and goal.
//
// Rounding order: protein and fat are rounded individually, carbs are derived
// from the unrounded calorie figure minus the rounded protein and fat
// contributions, and the calorie total is rounded last. Chained rounding is
// not associative, so this order is fixed and covered by tests. A carb
// remainder below zero is clamped to zero.
func CalculateGoals(p BodyProfile) (DailyGoals, error) {
	if err := p.Validate(); err != nil {
		return DailyGoals{}, err
	}

	var bmr float64
	switch p.Sex {
	case SexMale:
		bmr = 10*p.WeightKg + 6.25*p.HeightCm - 5*float64(p.Age) + 5
	case SexFemale:
		bmr = 10*p.WeightKg + 6.25*p.HeightCm - 5*float64(p.Age) - 161
	}

	multiplier, _ := p.ActivityLevel.Multiplier()
	tdee := bmr * multiplier

	plan := goalPlans[p.Goal]
	calories := tdee * plan.CalorieFactor

	protein := math.Round(p.WeightKg * plan.ProteinPerKg)
	fat := math.Round(calories * 0.25 / 9)
	carbs := math.Round((calories - protein*4 - fat*9) / 4)
	if carbs < 0 {
		carbs = 0
	}

	return DailyGoals{
		Calories: int(math.Round(calories)),
		ProteinG: int(protein),
		CarbsG:   int(carbs),
		FatG:     int(fat),
	}, nil
}
