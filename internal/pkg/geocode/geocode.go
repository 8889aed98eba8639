// Package geocode resolves coordinates into a readable place name using a
// Nominatim-compatible reverse geocoding endpoint.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultBaseURL = "https://nominatim.openstreetmap.org"

var ErrNoResult = errors.New("no place found for the coordinates")

// Reverser turns a coordinate pair into a display name.
type Reverser interface {
	Reverse(ctx context.Context, lat, lon float64) (string, error)
}

type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

type NominatimClient struct {
	cfg        Config
	httpClient *http.Client
}

func NewNominatimClient(cfg Config) *NominatimClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "attendance-backend"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &NominatimClient{cfg: cfg, httpClient: &http.Client{Timeout: cfg.Timeout}}
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
}

func (c *NominatimClient) Reverse(ctx context.Context, lat, lon float64) (string, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build reverse geocode request: %w", err)
	}
	// Nominatim's usage policy requires an identifying agent.
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("reverse geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reverse geocode returned status %d", resp.StatusCode)
	}

	var body reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode reverse geocode response: %w", err)
	}
	if body.DisplayName == "" {
		return "", ErrNoResult
	}
	return body.DisplayName, nil
}
