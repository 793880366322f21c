// Package api exposes HTTP handlers for the nutrition service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Dindas01/THRIV/internal/auth"
	"github.com/Dindas01/THRIV/internal/domain"
)

// FoodSearcher resolves food items from the external food database.
type FoodSearcher interface {
	Search(ctx context.Context, query string, pageSize int) ([]domain.FoodItem, error)
	LookupBarcode(ctx context.Context, code string) (*domain.FoodItem, error)
}

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service  *domain.Service
	foods    FoodSearcher
	detector LabelDetector
}

// NewHandler builds a Handler. foods and detector may be nil when the
// corresponding provider is not configured; their routes then return 503.
func NewHandler(service *domain.Service, foods FoodSearcher, detector LabelDetector) *Handler {
	return &Handler{service: service, foods: foods, detector: detector}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/profile", h.profile)
	mux.HandleFunc("/v1/goals", h.goals)
	mux.HandleFunc("/v1/meals", h.meals)
	mux.HandleFunc("/v1/meals/", h.mealByID)
	mux.HandleFunc("/v1/workouts", h.workouts)
	mux.HandleFunc("/v1/water", h.water)
	mux.HandleFunc("/v1/stats/daily", h.dailyStats)
	mux.HandleFunc("/v1/stats/progress", h.progress)
	mux.HandleFunc("/v1/foods/search", h.searchFoods)
	mux.HandleFunc("/v1/foods/barcode/", h.foodByBarcode)
	mux.HandleFunc("/v1/foods/detect", h.detectFood)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPut:
		h.upsertProfile(w, r)
	case http.MethodGet:
		h.getProfile(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) upsertProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireScope(w, r, auth.ScopeProfileWrite)
	if !ok {
		return
	}

	var req UpsertProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	profile, goals, err := h.service.UpsertProfile(r.Context(), domain.UpsertProfileInput{
		TenantID: claims.TenantID,
		UserID:   claims.Subject,
		Profile: domain.BodyProfile{
			Sex:           domain.Sex(req.Sex),
			Age:           req.Age,
			WeightKg:      req.WeightKg,
			HeightCm:      req.HeightCm,
			ActivityLevel: domain.ActivityLevel(req.ActivityLevel),
			Goal:          domain.FitnessGoal(req.Goal),
		},
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidProfile) {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, UpsertProfileResponse{
		Profile: toProfileView(*profile),
		Goals:   toGoalsView(*goals),
	})
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireScope(w, r, auth.ScopeProfileRead, auth.ScopeProfileWrite)
	if !ok {
		return
	}

	profile, err := h.service.GetProfile(r.Context(), claims.TenantID, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "profile not set")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toProfileView(*profile))
}

func (h *Handler) goals(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.getGoals(w, r)
	case http.MethodPut:
		h.overrideGoals(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) getGoals(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireScope(w, r, auth.ScopeProfileRead, auth.ScopeProfileWrite)
	if !ok {
		return
	}

	goals, err := h.service.GetGoals(r.Context(), claims.TenantID, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrGoalsNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "goals not computed yet")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toGoalsView(*goals))
}

func (h *Handler) overrideGoals(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireScope(w, r, auth.ScopeProfileWrite)
	if !ok {
		return
	}

	var req OverrideGoalsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	goals, err := h.service.OverrideGoals(r.Context(), claims.TenantID, claims.Subject, domain.DailyGoals{
		Calories: req.Calories,
		ProteinG: req.ProteinG,
		CarbsG:   req.CarbsG,
		FatG:     req.FatG,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toGoalsView(*goals))
}

func (h *Handler) meals(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.logMeal(w, r)
	case http.MethodGet:
		h.listMeals(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) logMeal(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireScope(w, r, auth.ScopeMealsWrite)
	if !ok {
		return
	}

	var req LogMealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	loggedAt := req.LoggedAt
	if loggedAt.IsZero() {
		loggedAt = time.Now().UTC()
	}

	meal, replay, err := h.service.LogMeal(r.Context(), domain.LogMealInput{
		TenantID: claims.TenantID,
		UserID:   claims.Subject,
		Food: domain.FoodItem{
			Barcode:  req.Barcode,
			Name:     req.Name,
			Brand:    req.Brand,
			ImageURL: req.ImageURL,
			Per100g: domain.NutrientProfile{
				Calories: req.CaloriesPer100g,
				ProteinG: req.ProteinPer100g,
				CarbsG:   req.CarbsPer100g,
				FatG:     req.FatPer100g,
			},
		},
		PortionGrams:   req.PortionGrams,
		MealType:       domain.MealType(req.MealType),
		LoggedAt:       loggedAt,
		IdempotencyKey: r.Header.Get("Idempotency-Key"),
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidPortion) {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	status := http.StatusCreated
	if replay {
		status = http.StatusOK
	}
	writeJSON(w, status, LogMealResponse{
		Meal:   toMealView(*meal),
		Replay: replay,
	})
}

func (h *Handler) listMeals(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireScope(w, r, auth.ScopeMealsRead, auth.ScopeMealsWrite)
	if !ok {
		return
	}

	day := r.URL.Query().Get("day")
	if day == "" {
		day = time.Now().UTC().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", day); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "day must be YYYY-MM-DD")
		return
	}

	meals, err := h.service.ListMealsByDay(r.Context(), claims.TenantID, claims.Subject, day)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	items := make([]MealView, 0, len(meals))
	for _, meal := range meals {
		items = append(items, toMealView(meal))
	}
	writeJSON(w, http.StatusOK, ListMealsResponse{Day: day, Items: items})
}

func (h *Handler) mealByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/meals/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing meal id")
		return
	}

	switch r.Method {
	case http.MethodDelete:
		h.deleteMeal(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) deleteMeal(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := requireScope(w, r, auth.ScopeMealsWrite)
	if !ok {
		return
	}

	if err := h.service.DeleteMeal(r.Context(), claims.TenantID, claims.Subject, id); err != nil {
		if errors.Is(err, domain.ErrMealNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "meal not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) workouts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.logWorkout(w, r)
	case http.MethodGet:
		h.listWorkouts(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) logWorkout(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireScope(w, r, auth.ScopeWorkoutsWrite)
	if !ok {
		return
	}

	var req LogWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	startedAt := req.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now().UTC()
	}

	workout, err := h.service.LogWorkout(r.Context(), domain.LogWorkoutInput{
		TenantID:    claims.TenantID,
		UserID:      claims.Subject,
		WorkoutType: domain.WorkoutType(req.WorkoutType),
		DurationMin: req.DurationMin,
		StartedAt:   startedAt,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidWorkout) {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, toWorkoutView(*workout))
}

func (h *Handler) listWorkouts(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireScope(w, r, auth.ScopeWorkoutsRead, auth.ScopeWorkoutsWrite)
	if !ok {
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			if parsed > 100 {
				parsed = 100
			}
			limit = parsed
		}
	}

	workouts, err := h.service.ListWorkouts(r.Context(), claims.TenantID, claims.Subject, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	items := make([]WorkoutView, 0, len(workouts))
	for _, workout := range workouts {
		items = append(items, toWorkoutView(workout))
	}
	writeJSON(w, http.StatusOK, ListWorkoutsResponse{Items: items})
}

func (h *Handler) water(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	claims, ok := requireScope(w, r, auth.ScopeMealsWrite)
	if !ok {
		return
	}

	// An empty body means "today".
	var req AddWaterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	day := req.Day
	if day == "" {
		day = time.Now().UTC().Format("2006-01-02")
	}

	glasses, err := h.service.AddWaterGlass(r.Context(), claims.TenantID, claims.Subject, day)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, AddWaterResponse{Day: day, WaterGlasses: glasses})
}

func (h *Handler) dailyStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	claims, ok := requireScope(w, r, auth.ScopeStatsRead)
	if !ok {
		return
	}

	day := r.URL.Query().Get("day")
	if day == "" {
		day = time.Now().UTC().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", day); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "day must be YYYY-MM-DD")
		return
	}

	stats, err := h.service.GetDailyStats(r.Context(), claims.TenantID, claims.Subject, day)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toStatsView(*stats))
}

func (h *Handler) progress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	claims, ok := requireScope(w, r, auth.ScopeStatsRead)
	if !ok {
		return
	}

	days := 7
	if raw := r.URL.Query().Get("days"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			days = parsed
		}
	}

	series, err := h.service.GetProgress(r.Context(), claims.TenantID, claims.Subject, days)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	items := make([]StatsView, 0, len(series))
	for _, stats := range series {
		items = append(items, toStatsView(stats))
	}
	writeJSON(w, http.StatusOK, ProgressResponse{Items: items})
}

func requireScope(w http.ResponseWriter, r *http.Request, scopes ...string) (*auth.Claims, bool) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return nil, false
	}
	for _, scope := range scopes {
		if claims.HasScope(scope) {
			return claims, true
		}
	}
	writeError(w, http.StatusForbidden, "forbidden", "scope "+scopes[0]+" required")
	return nil, false
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
