package vision

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDetectLabelsSendsAnnotateRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/images:annotate", r.URL.Path)
		require.Equal(t, "secret-key", r.URL.Query().Get("key"))

		var body struct {
			Requests []struct {
				Image struct {
					Content string `json:"content"`
				} `json:"image"`
				Features []struct {
					Type       string `json:"type"`
					MaxResults int    `json:"maxResults"`
				} `json:"features"`
			} `json:"requests"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Requests, 1)
		require.Equal(t, "aW1hZ2U=", body.Requests[0].Image.Content)
		require.Equal(t, "LABEL_DETECTION", body.Requests[0].Features[0].Type)
		require.Equal(t, 10, body.Requests[0].Features[0].MaxResults)

		w.Write([]byte(`{
			"responses": [
				{
					"labelAnnotations": [
						{"description": "Food", "score": 0.98},
						{"description": "Tableware", "score": 0.91},
						{"description": "Pizza", "score": 0.88}
					]
				}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret-key", 2*time.Second)
	labels, err := client.DetectLabels(context.Background(), "aW1hZ2U=", 0)
	require.NoError(t, err)
	require.Len(t, labels, 3)
	require.Equal(t, "Food", labels[0].Description)
}

func TestDetectLabelsSurfacesAPIErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(server.URL, "bad-key", 2*time.Second)
	_, err := client.DetectLabels(context.Background(), "aW1hZ2U=", 10)
	require.Error(t, err)
}

func TestFilterFoodLabels(t *testing.T) {
	labels := []Label{
		{Description: "Fast food", Score: 0.95},
		{Description: "Tableware", Score: 0.92},
		{Description: "Pizza", Score: 0.90},
		{Description: "Wood", Score: 0.85},
		{Description: "Sparkling Beverage", Score: 0.80},
	}

	kept := FilterFoodLabels(labels)
	require.Len(t, kept, 3)
	require.Equal(t, "Fast food", kept[0].Description)
	require.Equal(t, "Pizza", kept[1].Description)
	require.Equal(t, "Sparkling Beverage", kept[2].Description)
}

func TestFilterFoodLabelsEmptyInput(t *testing.T) {
	require.Empty(t, FilterFoodLabels(nil))
}
