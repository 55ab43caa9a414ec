package forward

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/envsense/enviroctl/internal/logger"
)

const (
	safecastProductionURL = "https://api.safecast.org"
	safecastDevURL        = "https://dev.safecast.org"
	safecastPostLimit     = 10 * time.Second
)

type SafecastConfig struct {
	APIKey       string
	DeviceID     int
	LocationName string
	Latitude     float64
	Longitude    float64
	Dev          bool
	Interval     time.Duration
}

type safecastMeasurement struct {
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	Value        float64 `json:"value"`
	Unit         string  `json:"unit"`
	CapturedAt   string  `json:"captured_at"`
	DeviceID     int     `json:"device_id"`
	LocationName string  `json:"location_name,omitempty"`
	Height       *int    `json:"height,omitempty"`
}

type SafecastForwarder struct {
	httpClient *http.Client
	baseURL    string
	cfg        SafecastConfig
	source     SnapshotSource
	now        func() time.Time
}

func NewSafecastForwarder(cfg SafecastConfig, source SnapshotSource) *SafecastForwarder {
	baseURL := safecastProductionURL
	if cfg.Dev {
		baseURL = safecastDevURL
	}

	return &SafecastForwarder{
		httpClient: &http.Client{Timeout: safecastPostLimit},
		baseURL:    baseURL,
		cfg:        cfg,
		source:     source,
		now:        time.Now,
	}
}

// WithBaseURL overrides the API endpoint. Used in tests.
func (f *SafecastForwarder) WithBaseURL(url string) *SafecastForwarder {
	f.baseURL = url
	return f
}

func (f *SafecastForwarder) Name() string {
	return "safecast"
}

func (f *SafecastForwarder) Run(ctx context.Context) {
	loop(ctx, f.cfg.Interval, f.post)
}

func (f *SafecastForwarder) post(ctx context.Context) {
	snapshot := f.source.Latest()
	if snapshot == nil {
		return
	}

	capturedAt := f.now().UTC().Format(time.RFC3339)
	readings := []struct {
		key  string
		unit string
	}{
		{"pm1", "PM1 ug/m3"},
		{"pm25", "PM2.5 ug/m3"},
		{"pm10", "PM10 ug/m3"},
		{"temperature", "Temperature C"},
		{"humidity", "Humidity %"},
		{"cpu_temperature", "CPU temperature C"},
	}

	for _, reading := range readings {
		measurement := safecastMeasurement{
			Latitude:     f.cfg.Latitude,
			Longitude:    f.cfg.Longitude,
			Value:        snapshot[reading.key],
			Unit:         reading.unit,
			CapturedAt:   capturedAt,
			DeviceID:     f.cfg.DeviceID,
			LocationName: f.cfg.LocationName,
		}
		if !f.push(ctx, measurement) {
			logger.Warn().Str("unit", reading.unit).Msg("Safecast response: Failed")
			return
		}
	}

	logger.Debug().Msg("Safecast response: OK")
}

func (f *SafecastForwarder) push(ctx context.Context, measurement safecastMeasurement) bool {
	body, err := json.Marshal(struct {
		Measurement safecastMeasurement `json:"measurement"`
	}{measurement})
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to encode Safecast measurement")
		return false
	}

	url := fmt.Sprintf("%s/measurements.json?api_key=%s", f.baseURL, f.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to build Safecast request")
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to post to Safecast")
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
