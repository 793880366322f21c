// Package openfoodfacts queries the Open Food Facts HTTP API for per-100g
// nutrient profiles.
package openfoodfacts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Dindas01/THRIV/internal/domain"
	"github.com/Dindas01/THRIV/internal/observability"
)

const (
	providerName  = "openfoodfacts"
	productFields = "product_name,nutriments,image_url,brands,code"
	userAgent     = "THRIV/1.0 (nutrition tracker)"
)

// Client talks to an Open Food Facts compatible endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a Client against the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Search queries the legacy search endpoint and returns products that carry
// usable nutrient data. Products without a kcal figure are dropped.
func (c *Client) Search(ctx context.Context, query string, pageSize int) ([]domain.FoodItem, error) {
	if pageSize <= 0 || pageSize > 50 {
		pageSize = 10
	}

	params := url.Values{}
	params.Set("search_terms", query)
	params.Set("search_simple", "1")
	params.Set("action", "process")
	params.Set("json", "true")
	params.Set("page_size", strconv.Itoa(pageSize))
	params.Set("fields", productFields)

	var payload struct {
		Products []product `json:"products"`
	}
	if err := c.get(ctx, "/cgi/search.pl?"+params.Encode(), &payload); err != nil {
		return nil, err
	}

	items := make([]domain.FoodItem, 0, len(payload.Products))
	for _, p := range payload.Products {
		if item, ok := p.toFoodItem(); ok {
			items = append(items, item)
		}
	}
	return items, nil
}

// LookupBarcode resolves a single product by its barcode. A missing product
// returns (nil, nil).
func (c *Client) LookupBarcode(ctx context.Context, code string) (*domain.FoodItem, error) {
	var payload struct {
		Status  int     `json:"status"`
		Product product `json:"product"`
	}
	if err := c.get(ctx, "/api/v0/product/"+url.PathEscape(code)+".json", &payload); err != nil {
		return nil, err
	}
	if payload.Status != 1 {
		return nil, nil
	}

	item, ok := payload.Product.toFoodItem()
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		observability.RecordProviderRequest(providerName, err, time.Since(start))
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		err := fmt.Errorf("openfoodfacts: unexpected status %d", resp.StatusCode)
		observability.RecordProviderRequest(providerName, err, time.Since(start))
		return err
	}

	err = json.NewDecoder(resp.Body).Decode(out)
	observability.RecordProviderRequest(providerName, err, time.Since(start))
	return err
}

type product struct {
	Code        string     `json:"code"`
	ProductName string     `json:"product_name"`
	Brands      string     `json:"brands"`
	ImageURL    string     `json:"image_url"`
	Nutriments  nutriments `json:"nutriments"`
}

// nutriments carries both the per-100g keys and the bare fallbacks the API
// serves for older products.
type nutriments struct {
	EnergyKcal100g float64 `json:"energy-kcal_100g"`
	EnergyKcal     float64 `json:"energy-kcal"`
	Proteins100g   float64 `json:"proteins_100g"`
	Proteins       float64 `json:"proteins"`
	Carbs100g      float64 `json:"carbohydrates_100g"`
	Carbs          float64 `json:"carbohydrates"`
	Fat100g        float64 `json:"fat_100g"`
	Fat            float64 `json:"fat"`
}

func (p product) toFoodItem() (domain.FoodItem, bool) {
	kcal := firstNonZero(p.Nutriments.EnergyKcal100g, p.Nutriments.EnergyKcal)
	if kcal == 0 {
		return domain.FoodItem{}, false
	}

	return domain.FoodItem{
		Barcode:  p.Code,
		Name:     p.ProductName,
		Brand:    p.Brands,
		ImageURL: p.ImageURL,
		Per100g: domain.NutrientProfile{
			Calories: kcal,
			ProteinG: firstNonZero(p.Nutriments.Proteins100g, p.Nutriments.Proteins),
			CarbsG:   firstNonZero(p.Nutriments.Carbs100g, p.Nutriments.Carbs),
			FatG:     firstNonZero(p.Nutriments.Fat100g, p.Nutriments.Fat),
		},
	}, true
}

func firstNonZero(values ...float64) float64 {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}
