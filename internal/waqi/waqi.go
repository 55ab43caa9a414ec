// Package waqi fetches a reference Air Quality Index from the World Air
// Quality Index project's geo-indexed feed. Every failure mode collapses
// to the AQI sentinel -1; callers never see an error from a fetch.
package waqi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/envsense/enviroctl/internal/logger"
)

const (
	// Unavailable is the sentinel returned when no reading could be
	// fetched. Consumers must treat it as missing, not as a reading.
	Unavailable = -1

	defaultBaseURL = "https://api.waqi.info"
	fetchTimeout   = 10 * time.Second
)

type feedResponse struct {
	Status string `json:"status"`
	Data   struct {
		AQI json.Number `json:"aqi"`
	} `json:"data"`
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	latitude   string
	longitude  string
	apiKey     string
}

func NewClient(latitude, longitude, apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: fetchTimeout},
		baseURL:    defaultBaseURL,
		latitude:   latitude,
		longitude:  longitude,
		apiKey:     apiKey,
	}
}

// WithBaseURL overrides the feed endpoint. Used in tests.
func (c *Client) WithBaseURL(url string) *Client {
	c.baseURL = url
	return c
}

// Fetch returns the current AQI for the configured location, or
// Unavailable on any failure. The root cause is logged, never returned.
func (c *Client) Fetch(ctx context.Context) int {
	url := fmt.Sprintf("%s/feed/geo:%s;%s/?token=%s", c.baseURL, c.latitude, c.longitude, c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to build AQI request")
		return Unavailable
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to fetch external AQI")
		return Unavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Warn().Int("status_code", resp.StatusCode).Msg("External AQI request rejected")
		return Unavailable
	}

	var feed feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		logger.Warn().Err(err).Msg("Failed to decode AQI response")
		return Unavailable
	}

	if feed.Status != "ok" {
		logger.Warn().Str("status", feed.Status).Msg("External AQI feed returned error status")
		return Unavailable
	}

	// The feed reports "-" for stations with no current reading.
	aqi, err := feed.Data.AQI.Int64()
	if err != nil {
		logger.Warn().Str("aqi", feed.Data.AQI.String()).Msg("External AQI value is not numeric")
		return Unavailable
	}

	return int(aqi)
}
