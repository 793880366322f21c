// Package vision detects food labels on meal photographs via the Google
// Cloud Vision annotate endpoint.
package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Dindas01/THRIV/internal/observability"
)

const providerName = "vision"

// Label is a single annotation returned by the detection API.
type Label struct {
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

// Client talks to an images:annotate compatible endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient constructs a Client. apiKey is passed as the key query parameter.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// DetectLabels runs LABEL_DETECTION on a base64-encoded image and returns up
// to maxResults raw labels, unfiltered.
func (c *Client) DetectLabels(ctx context.Context, imageBase64 string, maxResults int) ([]Label, error) {
	if maxResults <= 0 {
		maxResults = 10
	}

	body, err := json.Marshal(annotateRequest{
		Requests: []imageRequest{
			{
				Image: imageContent{Content: imageBase64},
				Features: []feature{
					{Type: "LABEL_DETECTION", MaxResults: maxResults},
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}

	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/images:annotate?key="+c.apiKey, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		observability.RecordProviderRequest(providerName, err, time.Since(start))
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		err := fmt.Errorf("vision: unexpected status %d", resp.StatusCode)
		observability.RecordProviderRequest(providerName, err, time.Since(start))
		return nil, err
	}

	var payload annotateResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		observability.RecordProviderRequest(providerName, err, time.Since(start))
		return nil, err
	}
	observability.RecordProviderRequest(providerName, nil, time.Since(start))

	if len(payload.Responses) == 0 {
		return nil, nil
	}
	return payload.Responses[0].LabelAnnotations, nil
}

type annotateRequest struct {
	Requests []imageRequest `json:"requests"`
}

type imageRequest struct {
	Image    imageContent `json:"image"`
	Features []feature    `json:"features"`
}

type imageContent struct {
	Content string `json:"content"`
}

type feature struct {
	Type       string `json:"type"`
	MaxResults int    `json:"maxResults"`
}

type annotateResponse struct {
	Responses []struct {
		LabelAnnotations []Label `json:"labelAnnotations"`
	} `json:"responses"`
}

var foodKeywords = []string{
	"food", "dish", "meal", "cuisine", "recipe", "ingredient",
	"snack", "breakfast", "lunch", "dinner", "dessert", "fruit",
	"vegetable", "meat", "drink", "beverage", "bread", "pasta",
	"rice", "salad", "soup", "sandwich", "pizza", "burger",
}

// FilterFoodLabels keeps labels whose description contains a known food
// keyword, case-insensitively, preserving the API's confidence ordering.
func FilterFoodLabels(labels []Label) []Label {
	kept := make([]Label, 0, len(labels))
	for _, label := range labels {
		lowered := strings.ToLower(label.Description)
		for _, keyword := range foodKeywords {
			if strings.Contains(lowered, keyword) {
				kept = append(kept, label)
				break
			}
		}
	}
	return kept
}
