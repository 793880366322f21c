package domain

import "time"

// MealType buckets a logged meal into one of the four diary sections.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

// KnownMealType reports whether the value is one of the diary sections.
func KnownMealType(t MealType) bool {
	switch t {
	case MealBreakfast, MealLunch, MealDinner, MealSnack:
		return true
	}
	return false
}

// LoggedMeal is the aggregate stored when a user confirms adding a food.
// Nutrients are the food's per-100g profile already scaled to the portion;
// the record is immutable after creation except for deletion.
type LoggedMeal struct {
	ID           string
	TenantID     string
	UserID       string
	Name         string
	Brand        string
	ImageURL     string
	Nutrients    ScaledNutrients
	PortionGrams float64
	MealType     MealType
	Day          string
	LoggedAt     time.Time
	CreatedAt    time.Time
}
