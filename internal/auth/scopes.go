package auth

// Known OAuth scopes used by the backend.
const (
	ScopeProfileRead   = "profile:read"
	ScopeProfileWrite  = "profile:write"
	ScopeMealsRead     = "meals:read"
	ScopeMealsWrite    = "meals:write"
	ScopeWorkoutsRead  = "workouts:read"
	ScopeWorkoutsWrite = "workouts:write"
	ScopeStatsRead     = "stats:read"
	ScopeFoodsRead     = "foods:read"
)
