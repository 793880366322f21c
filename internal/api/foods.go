package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/Dindas01/THRIV/internal/auth"
	"github.com/Dindas01/THRIV/internal/domain"
	"github.com/Dindas01/THRIV/internal/provider/vision"
)

// LabelDetector identifies food labels on an uploaded photo.
type LabelDetector interface {
	DetectLabels(ctx context.Context, imageBase64 string, maxResults int) ([]vision.Label, error)
}

func (h *Handler) searchFoods(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if _, ok := requireScope(w, r, auth.ScopeFoodsRead); !ok {
		return
	}
	if h.foods == nil {
		writeError(w, http.StatusServiceUnavailable, "provider_unavailable", "food database not configured")
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "missing q parameter")
		return
	}

	pageSize := 10
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			pageSize = parsed
		}
	}

	items, err := h.foods.Search(r.Context(), query, pageSize)
	if err != nil {
		writeError(w, http.StatusBadGateway, "provider_error", err.Error())
		return
	}

	views := make([]FoodView, 0, len(items))
	for _, item := range items {
		views = append(views, toFoodView(item))
	}
	writeJSON(w, http.StatusOK, SearchFoodsResponse{Items: views})
}

func (h *Handler) foodByBarcode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if _, ok := requireScope(w, r, auth.ScopeFoodsRead); !ok {
		return
	}
	if h.foods == nil {
		writeError(w, http.StatusServiceUnavailable, "provider_unavailable", "food database not configured")
		return
	}

	code := strings.TrimPrefix(r.URL.Path, "/v1/foods/barcode/")
	if code == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing barcode")
		return
	}

	item, err := h.foods.LookupBarcode(r.Context(), code)
	if err != nil {
		writeError(w, http.StatusBadGateway, "provider_error", err.Error())
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "not_found", "no product for barcode")
		return
	}

	writeJSON(w, http.StatusOK, toFoodView(*item))
}

func (h *Handler) detectFood(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if _, ok := requireScope(w, r, auth.ScopeFoodsRead); !ok {
		return
	}
	if h.detector == nil {
		writeError(w, http.StatusServiceUnavailable, "provider_unavailable", "label detection not configured")
		return
	}

	var req DetectFoodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	labels, err := h.detector.DetectLabels(r.Context(), req.ImageBase64, req.MaxResults)
	if err != nil {
		writeError(w, http.StatusBadGateway, "provider_error", err.Error())
		return
	}

	foodLabels := vision.FilterFoodLabels(labels)
	views := make([]LabelView, 0, len(foodLabels))
	for _, label := range foodLabels {
		views = append(views, LabelView{Description: label.Description, Score: label.Score})
	}
	writeJSON(w, http.StatusOK, DetectFoodResponse{Labels: views})
}

// FoodView exposes a food database product with per-100g nutrients.
type FoodView struct {
	Barcode         string  `json:"barcode,omitempty"`
	Name            string  `json:"name"`
	Brand           string  `json:"brand,omitempty"`
	ImageURL        string  `json:"image_url,omitempty"`
	CaloriesPer100g float64 `json:"calories_per_100g"`
	ProteinPer100g  float64 `json:"protein_per_100g"`
	CarbsPer100g    float64 `json:"carbs_per_100g"`
	FatPer100g      float64 `json:"fat_per_100g"`
}

// SearchFoodsResponse packages search results.
type SearchFoodsResponse struct {
	Items []FoodView `json:"items"`
}

// DetectFoodRequest is the payload for POST /v1/foods/detect.
type DetectFoodRequest struct {
	ImageBase64 string `json:"image_base64"`
	MaxResults  int    `json:"max_results"`
}

// Validate ensures request correctness.
func (r DetectFoodRequest) Validate() error {
	if strings.TrimSpace(r.ImageBase64) == "" {
		return errors.New("image_base64 is required")
	}
	return nil
}

// LabelView exposes a food-related annotation.
type LabelView struct {
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

// DetectFoodResponse packages filtered food labels.
type DetectFoodResponse struct {
	Labels []LabelView `json:"labels"`
}

func toFoodView(item domain.FoodItem) FoodView {
	return FoodView{
		Barcode:         item.Barcode,
		Name:            item.Name,
		Brand:           item.Brand,
		ImageURL:        item.ImageURL,
		CaloriesPer100g: item.Per100g.Calories,
		ProteinPer100g:  item.Per100g.ProteinG,
		CarbsPer100g:    item.Per100g.CarbsG,
		FatPer100g:      item.Per100g.FatG,
	}
}
