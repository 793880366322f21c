package openfoodfacts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSearchFiltersProductsWithoutCalories(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/cgi/search.pl", r.URL.Path)
		require.Equal(t, "chicken breast", r.URL.Query().Get("search_terms"))
		require.Equal(t, "5", r.URL.Query().Get("page_size"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"products": [
				{
					"code": "123",
					"product_name": "Chicken Breast",
					"brands": "FarmCo",
					"image_url": "https://img.example/chicken.jpg",
					"nutriments": {"energy-kcal_100g": 165, "proteins_100g": 31, "carbohydrates_100g": 0, "fat_100g": 3.6}
				},
				{
					"code": "456",
					"product_name": "Mystery Item",
					"nutriments": {}
				}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 2*time.Second)
	items, err := client.Search(context.Background(), "chicken breast", 5)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "Chicken Breast", items[0].Name)
	require.Equal(t, "FarmCo", items[0].Brand)
	require.Equal(t, 165.0, items[0].Per100g.Calories)
	require.Equal(t, 31.0, items[0].Per100g.ProteinG)
}

func TestSearchFallsBackToBareNutrimentKeys(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"products": [
				{
					"code": "789",
					"product_name": "Legacy Rice",
					"nutriments": {"energy-kcal": 130, "proteins": 2.7, "carbohydrates": 28, "fat": 0.3}
				}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 2*time.Second)
	items, err := client.Search(context.Background(), "rice", 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, 130.0, items[0].Per100g.Calories)
	require.Equal(t, 28.0, items[0].Per100g.CarbsG)
}

func TestLookupBarcodeReturnsNilForUnknownCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v0/product/000.json", r.URL.Path)
		w.Write([]byte(`{"status": 0}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 2*time.Second)
	item, err := client.LookupBarcode(context.Background(), "000")
	require.NoError(t, err)
	require.Nil(t, item)
}

func TestLookupBarcodeResolvesProduct(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v0/product/7622210449283.json", r.URL.Path)
		w.Write([]byte(`{
			"status": 1,
			"product": {
				"code": "7622210449283",
				"product_name": "Biscuit",
				"brands": "SnackCo",
				"nutriments": {"energy-kcal_100g": 480, "proteins_100g": 6.5, "carbohydrates_100g": 62, "fat_100g": 22}
			}
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 2*time.Second)
	item, err := client.LookupBarcode(context.Background(), "7622210449283")
	require.NoError(t, err)
	require.NotNil(t, item)
	require.Equal(t, "7622210449283", item.Barcode)
	require.Equal(t, 480.0, item.Per100g.Calories)
}

func TestSearchSurfacesServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, 2*time.Second)
	_, err := client.Search(context.Background(), "anything", 10)
	require.Error(t, err)
}
