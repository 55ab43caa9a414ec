package exporter

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistersAllMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := New(registry)

	metrics.Temperature.Set(21.5)
	metrics.AQI.Set(42)
	metrics.OxidisingHist.Observe(12000)

	families, err := registry.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, family := range families {
		names[family.GetName()] = true
	}

	for _, name := range []string{
		"temperature", "pressure", "humidity",
		"oxidising", "reducing", "NH3",
		"lux", "proximity",
		"PM1", "PM25", "PM10", "AQI",
		"cpu_temperature", "battery_voltage", "battery_percentage",
		"oxidising_measurements", "reducing_measurements", "nh3_measurements",
		"pm1_measurements", "pm25_measurements", "pm10_measurements",
		"aqi_measurements",
	} {
		assert.True(t, names[name], "metric %q not registered", name)
	}
}

func TestSeparateRegistriesAreIndependent(t *testing.T) {
	first := New(prometheus.NewRegistry())
	second := New(prometheus.NewRegistry())

	first.Temperature.Set(10)
	second.Temperature.Set(20)

	recorder := httptest.NewRecorder()
	first.Handler().ServeHTTP(recorder, httptest.NewRequest("GET", "/metrics", nil))

	body := recorder.Body.String()
	assert.Contains(t, body, "temperature 10")
	assert.NotContains(t, body, "temperature 20")
}
