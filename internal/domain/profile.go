package domain

import "fmt"

// Sex is the biological sex used by the Mifflin-St Jeor formula.
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// ActivityLevel describes habitual activity and maps to a TDEE multiplier.
type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLight      ActivityLevel = "light"
	ActivityModerate   ActivityLevel = "moderate"
	ActivityActive     ActivityLevel = "active"
	ActivityVeryActive ActivityLevel = "very_active"
)

var activityMultipliers = map[ActivityLevel]float64{
	ActivitySedentary:  1.2,
	ActivityLight:      1.375,
	ActivityModerate:   1.55,
	ActivityActive:     1.725,
	ActivityVeryActive: 1.9,
}

// Multiplier returns the TDEE multiplier for the level.
func (l ActivityLevel) Multiplier() (float64, bool) {
	m, ok := activityMultipliers[l]
	return m, ok
}

// FitnessGoal selects the calorie adjustment and protein target applied on top of TDEE.
type FitnessGoal string

const (
	GoalLoseWeight FitnessGoal = "lose_weight"
	GoalMaintain   FitnessGoal = "maintain"
	GoalGainMuscle FitnessGoal = "gain_muscle"
	GoalCut        FitnessGoal = "cut"
)

type goalPlan struct {
	CalorieFactor float64
	ProteinPerKg  float64
}

var goalPlans = map[FitnessGoal]goalPlan{
	GoalLoseWeight: {CalorieFactor: 0.80, ProteinPerKg: 2.0},
	GoalMaintain:   {CalorieFactor: 1.00, ProteinPerKg: 1.6},
	GoalGainMuscle: {CalorieFactor: 1.15, ProteinPerKg: 2.2},
	GoalCut:        {CalorieFactor: 0.85, ProteinPerKg: 2.2},
}

// BodyProfile holds the body metrics and stated goal a user sets during onboarding.
type BodyProfile struct {
	Sex           Sex
	Age           int
	WeightKg      float64
	HeightCm      float64
	ActivityLevel ActivityLevel
	Goal          FitnessGoal
}

// Validate checks the preconditions for goal calculation.
func (p BodyProfile) Validate() error {
	if p.Sex != SexMale && p.Sex != SexFemale {
		return fmt.Errorf("%w: sex %q", ErrInvalidProfile, p.Sex)
	}
	if p.Age <= 0 {
		return fmt.Errorf("%w: age must be > 0", ErrInvalidProfile)
	}
	if p.WeightKg <= 0 {
		return fmt.Errorf("%w: weight must be > 0", ErrInvalidProfile)
	}
	if p.HeightCm <= 0 {
		return fmt.Errorf("%w: height must be > 0", ErrInvalidProfile)
	}
	if _, ok := p.ActivityLevel.Multiplier(); !ok {
		return fmt.Errorf("%w: activity level %q", ErrInvalidProfile, p.ActivityLevel)
	}
	if _, ok := goalPlans[p.Goal]; !ok {
		return fmt.Errorf("%w: goal %q", ErrInvalidProfile, p.Goal)
	}
	return nil
}
