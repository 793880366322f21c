package domain

import (
	"fmt"
	"math"
)

// NutrientProfile holds nutrient values per 100 grams of a food.
// Fields the source database does not report stay at zero.
type NutrientProfile struct {
	Calories float64
	ProteinG float64
	CarbsG   float64
	FatG     float64
}

// FoodItem is an immutable snapshot of a product fetched from the food
// database, keyed per 100 grams.
type FoodItem struct {
	Barcode  string
	Name     string
	Brand    string
	ImageURL string
	Per100g  NutrientProfile
}

// ScaledNutrients is a nutrient profile scaled to a concrete portion.
// Calories are kept as a whole number, macros to one decimal place.
type ScaledNutrients struct {
	Calories int
	ProteinG float64
	CarbsG   float64
	FatG     float64
}

// ScalePortion scales a per-100g profile linearly to the given portion.
func ScalePortion(per100g NutrientProfile, portionGrams float64) (ScaledNutrients, error) {
	if portionGrams <= 0 || math.IsNaN(portionGrams) || math.IsInf(portionGrams, 0) {
		return ScaledNutrients{}, fmt.Errorf("%w: portion %v grams", ErrInvalidPortion, portionGrams)
	}

	multiplier := portionGrams / 100
	return ScaledNutrients{
		Calories: int(math.Round(per100g.Calories * multiplier)),
		ProteinG: round1(per100g.ProteinG * multiplier),
		CarbsG:   round1(per100g.CarbsG * multiplier),
		FatG:     round1(per100g.FatG * multiplier),
	}, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// DailyStats is the running per-day accumulation of consumed nutrients and
// water glasses. It is only ever advanced by commutative additive updates, so
// increments from multiple devices converge regardless of apply order.
type DailyStats struct {
	Day              string
	CaloriesConsumed int
	ProteinConsumed  float64
	CarbsConsumed    float64
	FatConsumed      float64
	WaterGlasses     int
}

// Add folds one portion of scaled nutrients into the running totals.
func (s *DailyStats) Add(n ScaledNutrients) {
	s.CaloriesConsumed += n.Calories
	s.ProteinConsumed = round1(s.ProteinConsumed + n.ProteinG)
	s.CarbsConsumed = round1(s.CarbsConsumed + n.CarbsG)
	s.FatConsumed = round1(s.FatConsumed + n.FatG)
}
