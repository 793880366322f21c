package domain

import "errors"

var (
	// ErrInvalidProfile indicates a body profile failed goal-calculation preconditions.
	ErrInvalidProfile = errors.New("invalid body profile")
	// ErrInvalidPortion indicates a non-positive portion size.
	ErrInvalidPortion = errors.New("invalid portion")
	// ErrIdempotentReplay indicates an existing meal was found for the provided idempotency key.
	ErrIdempotentReplay = errors.New("meal already exists for idempotency key")
	// ErrMealNotFound is returned when a meal cannot be located.
	ErrMealNotFound = errors.New("meal not found")
	// ErrProfileNotFound is returned when a user has not completed onboarding.
	ErrProfileNotFound = errors.New("body profile not found")
	// ErrGoalsNotFound is returned when no daily goals exist for a user.
	ErrGoalsNotFound = errors.New("daily goals not found")
)
