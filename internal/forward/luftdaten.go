package forward

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/envsense/enviroctl/internal/logger"
)

const (
	luftdatenURL       = "https://api.luftdaten.info/v1/push-sensor-data/"
	luftdatenSoftware  = "enviroctl 0.0.1"
	cpuInfoPath        = "/proc/cpuinfo"
	luftdatenPinPM     = "1"
	luftdatenPinTemp   = "11"
	luftdatenPostLimit = 10 * time.Second
)

type LuftdatenConfig struct {
	Interval time.Duration
}

type sensorDataValue struct {
	ValueType string `json:"value_type"`
	Value     string `json:"value"`
}

type luftdatenPayload struct {
	SoftwareVersion  string            `json:"software_version"`
	SensorDataValues []sensorDataValue `json:"sensordatavalues"`
}

type LuftdatenForwarder struct {
	httpClient *http.Client
	baseURL    string
	sensorUID  string
	cfg        LuftdatenConfig
	source     SnapshotSource
}

func NewLuftdatenForwarder(cfg LuftdatenConfig, source SnapshotSource) *LuftdatenForwarder {
	return &LuftdatenForwarder{
		httpClient: &http.Client{Timeout: luftdatenPostLimit},
		baseURL:    luftdatenURL,
		sensorUID:  fmt.Sprintf("raspi-%s", serialNumber()),
		cfg:        cfg,
		source:     source,
	}
}

// WithBaseURL overrides the push endpoint. Used in tests.
func (f *LuftdatenForwarder) WithBaseURL(url string) *LuftdatenForwarder {
	f.baseURL = url
	return f
}

func (f *LuftdatenForwarder) Name() string {
	return "luftdaten"
}

func (f *LuftdatenForwarder) SensorUID() string {
	return f.sensorUID
}

func (f *LuftdatenForwarder) Run(ctx context.Context) {
	loop(ctx, f.cfg.Interval, f.post)
}

func (f *LuftdatenForwarder) post(ctx context.Context) {
	snapshot := f.source.Latest()
	if snapshot == nil {
		return
	}

	// Particulates and climate values are posted as separate sensors,
	// identified by the X-PIN header.
	pmPayload := luftdatenPayload{
		SoftwareVersion: luftdatenSoftware,
		SensorDataValues: []sensorDataValue{
			{ValueType: "P2", Value: fmt.Sprintf("%v", snapshot["pm25"])},
			{ValueType: "P1", Value: fmt.Sprintf("%v", snapshot["pm10"])},
		},
	}
	climatePayload := luftdatenPayload{
		SoftwareVersion: luftdatenSoftware,
		SensorDataValues: []sensorDataValue{
			{ValueType: "temperature", Value: fmt.Sprintf("%.2f", snapshot["temperature"])},
			{ValueType: "pressure", Value: fmt.Sprintf("%.2f", snapshot["pressure"]*100)},
			{ValueType: "humidity", Value: fmt.Sprintf("%.2f", snapshot["humidity"])},
		},
	}

	pmOK := f.push(ctx, luftdatenPinPM, pmPayload)
	climateOK := f.push(ctx, luftdatenPinTemp, climatePayload)

	if pmOK && climateOK {
		logger.Debug().Msg("Luftdaten response: OK")
	} else {
		logger.Warn().Msg("Luftdaten response: Failed")
	}
}

func (f *LuftdatenForwarder) push(ctx context.Context, pin string, payload luftdatenPayload) bool {
	body, err := json.Marshal(payload)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to encode Luftdaten payload")
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL, bytes.NewReader(body))
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to build Luftdaten request")
		return false
	}
	req.Header.Set("X-PIN", pin)
	req.Header.Set("X-Sensor", f.sensorUID)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("cache-control", "no-cache")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to post to Luftdaten")
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// serialNumber reads the Raspberry Pi serial number used as the sensor
// UID. Falls back to "unknown" off-device.
func serialNumber() string {
	raw, err := os.ReadFile(cpuInfoPath)
	if err != nil {
		return "unknown"
	}

	for _, line := range strings.Split(string(raw), "\n") {
		if strings.HasPrefix(line, "Serial") {
			if _, value, found := strings.Cut(line, ":"); found {
				return strings.TrimSpace(value)
			}
		}
	}

	return "unknown"
}
