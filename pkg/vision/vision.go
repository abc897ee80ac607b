package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"doorstep-clean/internal/models"
)

// ClientInterface defines the contract for the garment image classifier.
type ClientInterface interface {
	Analyze(ctx context.Context, imageBase64 string) (*models.GarmentAssessment, error)
}

// Client calls the external vision API that classifies garment photos for
// the booking form.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a vision API client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Analyze sends the base64 image and parses the structured assessment. Any
// transport, status, or parse failure maps to ErrAnalysisFailed so the
// booking form can fall back to manual entry.
func (c *Client) Analyze(ctx context.Context, imageBase64 string) (*models.GarmentAssessment, error) {
	payload, err := json.Marshal(map[string]string{"image": imageBase64})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/analyze", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, models.ErrAnalysisFailed
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, models.ErrAnalysisFailed
	}

	var out models.GarmentAssessment
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, models.ErrAnalysisFailed
	}
	if out.GarmentType == "" {
		return nil, models.ErrAnalysisFailed
	}
	return &out, nil
}
