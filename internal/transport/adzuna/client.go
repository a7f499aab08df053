// Package adzuna is a minimal client for the Adzuna job search API.
package adzuna

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// Client queries the Adzuna job listing service.
type Client struct {
	httpClient *http.Client
	baseURL    string
	country    string
	appID      string
	appKey     string
	logger     *zap.Logger
}

// Config holds Adzuna client settings.
type Config struct {
	BaseURL string
	Country string
	AppID   string
	AppKey  string
	Timeout time.Duration
	Logger  *zap.Logger
}

// New creates an Adzuna client.
func New(cfg *Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	country := cfg.Country
	if country == "" {
		country = "us"
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		country:    country,
		appID:      cfg.AppID,
		appKey:     cfg.AppKey,
		logger:     cfg.Logger,
	}
}

type searchResponse struct {
	Results []struct {
		Description string `json:"description"`
	} `json:"results"`
}

// Search returns the description of the first listing matching the query and
// location. Empty result sets and transport failures are errors; the caller
// decides the fallback policy.
func (c *Client) Search(ctx context.Context, query, location string) (string, error) {
	endpoint := fmt.Sprintf("%s/v1/api/jobs/%s/search/1", c.baseURL, c.country)

	params := url.Values{}
	params.Set("app_id", c.appID)
	params.Set("app_key", c.appKey)
	params.Set("what", query)
	params.Set("where", location)
	params.Set("results_per_page", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("job search request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("job search: unexpected status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode job search response: %w", err)
	}

	if len(parsed.Results) == 0 || parsed.Results[0].Description == "" {
		return "", fmt.Errorf("job search: no results for %q in %q", query, location)
	}

	return parsed.Results[0].Description, nil
}
