package collector_test

import (
	"context"
	"testing"

	"github.com/envsense/enviroctl/internal/atmosphere"
	"github.com/envsense/enviroctl/internal/collector"
	"github.com/envsense/enviroctl/internal/exporter"
	"github.com/envsense/enviroctl/internal/sensors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStation struct {
	temperature float64
	humidity    float64
	pressure    float64
	gas         sensors.GasReadings
	lux         float64
	proximity   float64
	pm          sensors.Particulates

	failTemperature  bool
	failHumidity     bool
	failPressure     bool
	failGas          bool
	failLight        bool
	failParticulates bool
}

type failErr struct{}

func (failErr) Error() string { return "sensor read failed" }

func (s *fakeStation) Temperature() (float64, error) {
	if s.failTemperature {
		return 0, failErr{}
	}
	return s.temperature, nil
}

func (s *fakeStation) Humidity() (float64, error) {
	if s.failHumidity {
		return 0, failErr{}
	}
	return s.humidity, nil
}

func (s *fakeStation) Pressure() (float64, error) {
	if s.failPressure {
		return 0, failErr{}
	}
	return s.pressure, nil
}

func (s *fakeStation) Gas() (sensors.GasReadings, error) {
	if s.failGas {
		return sensors.GasReadings{}, failErr{}
	}
	return s.gas, nil
}

func (s *fakeStation) Light() (float64, float64, error) {
	if s.failLight {
		return 0, 0, failErr{}
	}
	return s.lux, s.proximity, nil
}

func (s *fakeStation) Particulates() (sensors.Particulates, error) {
	if s.failParticulates {
		return sensors.Particulates{}, failErr{}
	}
	return s.pm, nil
}

func (s *fakeStation) Close() error { return nil }

type fakeCPU struct {
	temperature float64
	fail        bool
}

func (c *fakeCPU) Temperature() (float64, error) {
	if c.fail {
		return 0, failErr{}
	}
	return c.temperature, nil
}

type fakeBattery struct {
	present bool
	status  sensors.BatteryStatus
}

func (b *fakeBattery) Present() bool { return b.present }

func (b *fakeBattery) Read() (sensors.BatteryStatus, error) { return b.status, nil }

type fakeAQI struct {
	value int
}

func (f *fakeAQI) Fetch(context.Context) int { return f.value }

func defaultConfig() collector.Config {
	return collector.Config{
		Factor:          2.25,
		SmoothingCount:  5,
		PressureWindow:  1000,
		HasParticulates: true,
	}
}

func newCollector(station *fakeStation, cpu *fakeCPU, battery *fakeBattery, aqi *fakeAQI, cfg collector.Config) *collector.Collector {
	metrics := exporter.New(prometheus.NewRegistry())
	return collector.New(station, battery, cpu, aqi, metrics, cfg)
}

func TestCollectSnapshotCompleteness(t *testing.T) {
	station := &fakeStation{
		temperature: 24.0, humidity: 45.0, pressure: 1013.0,
		gas: sensors.GasReadings{Oxidising: 12000, Reducing: 450000, NH3: 310000},
		lux: 120, proximity: 0,
		pm: sensors.Particulates{PM1: 2, PM25: 6, PM10: 11},
	}
	c := newCollector(station, &fakeCPU{temperature: 48}, &fakeBattery{}, &fakeAQI{value: 55}, defaultConfig())

	cycle := c.Collect(context.Background())

	for _, key := range collector.Keys {
		assert.Contains(t, cycle.Snapshot, key, "missing key %q", key)
	}
	assert.Len(t, cycle.Snapshot, len(collector.Keys))
}

func TestCollectSnapshotCompleteOnFailedReads(t *testing.T) {
	station := &fakeStation{
		failTemperature: true, failHumidity: true, failPressure: true,
		failGas: true, failLight: true, failParticulates: true,
	}
	c := newCollector(station, &fakeCPU{fail: true}, &fakeBattery{}, &fakeAQI{value: -1}, defaultConfig())

	cycle := c.Collect(context.Background())

	for _, key := range collector.Keys {
		assert.Contains(t, cycle.Snapshot, key, "missing key %q", key)
	}
	assert.Equal(t, float64(-1), cycle.Snapshot["external_aqi"])
}

func TestCollectCompensatesTemperature(t *testing.T) {
	station := &fakeStation{temperature: 22.0, pressure: 1000, humidity: 50}
	c := newCollector(station, &fakeCPU{temperature: 49.0}, &fakeBattery{}, &fakeAQI{}, defaultConfig())

	cycle := c.Collect(context.Background())

	// CPU runs hotter than ambient, so the correction pulls the reading
	// down from the raw value.
	want := 22.0 - ((49.0 - 22.0) / 2.25)
	assert.InDelta(t, want, cycle.Snapshot["temperature"], 1e-9)
}

func TestCollectAppliesOffsets(t *testing.T) {
	station := &fakeStation{temperature: 25.0, humidity: 40.0, pressure: 1000}
	cfg := defaultConfig()
	cfg.TemperatureOffset = 2.0
	cfg.HumidityOffset = 5.0
	// CPU at ambient so the smoothing correction is a no-op.
	c := newCollector(station, &fakeCPU{temperature: 23.0}, &fakeBattery{}, &fakeAQI{}, cfg)

	cycle := c.Collect(context.Background())

	assert.InDelta(t, 23.0, cycle.Snapshot["temperature"], 1e-9)
	assert.InDelta(t, 45.0, cycle.Snapshot["humidity"], 1e-9)
}

func TestCollectRetainsPreviousValueOnFailure(t *testing.T) {
	station := &fakeStation{humidity: 55.0, temperature: 20, pressure: 1000}
	c := newCollector(station, &fakeCPU{temperature: 40}, &fakeBattery{}, &fakeAQI{}, defaultConfig())

	first := c.Collect(context.Background())
	require.InDelta(t, 55.0, first.Snapshot["humidity"], 1e-9)

	station.failHumidity = true
	station.humidity = 99.0
	second := c.Collect(context.Background())

	assert.InDelta(t, 55.0, second.Snapshot["humidity"], 1e-9, "previous value must persist")
}

func TestCollectComputesInternalAQI(t *testing.T) {
	station := &fakeStation{
		pm:          sensors.Particulates{PM1: 10, PM25: 35.4, PM10: 50},
		temperature: 20, humidity: 50, pressure: 1000,
	}
	c := newCollector(station, &fakeCPU{temperature: 40}, &fakeBattery{}, &fakeAQI{}, defaultConfig())

	cycle := c.Collect(context.Background())

	assert.InDelta(t, 100.0, cycle.Snapshot["internal_aqi"], 0.5)
}

func TestCollectWithoutParticulateSensor(t *testing.T) {
	station := &fakeStation{temperature: 20, humidity: 50, pressure: 1000}
	cfg := defaultConfig()
	cfg.HasParticulates = false
	c := newCollector(station, &fakeCPU{temperature: 40}, &fakeBattery{}, &fakeAQI{}, cfg)

	cycle := c.Collect(context.Background())

	assert.Zero(t, cycle.Snapshot["pm25"])
	assert.Zero(t, cycle.Snapshot["internal_aqi"])
}

func TestCollectBatteryAbsentIsNotZeroReading(t *testing.T) {
	station := &fakeStation{temperature: 20, humidity: 50, pressure: 1000}

	c := newCollector(station, &fakeCPU{temperature: 40}, &fakeBattery{present: false}, &fakeAQI{}, defaultConfig())
	cycle := c.Collect(context.Background())
	assert.False(t, cycle.BatteryPresent)

	withBattery := &fakeBattery{present: true, status: sensors.BatteryStatus{Voltage: 3.7, Percentage: 82}}
	c = newCollector(station, &fakeCPU{temperature: 40}, withBattery, &fakeAQI{}, defaultConfig())
	cycle = c.Collect(context.Background())
	assert.True(t, cycle.BatteryPresent)
	assert.InDelta(t, 3.7, cycle.Snapshot["battery_voltage"], 1e-9)
	assert.InDelta(t, 82.0, cycle.Snapshot["battery_percentage"], 1e-9)
}

func TestCollectExternalAQIPropagates(t *testing.T) {
	station := &fakeStation{temperature: 20, humidity: 50, pressure: 1000}
	c := newCollector(station, &fakeCPU{temperature: 40}, &fakeBattery{}, &fakeAQI{value: 137}, defaultConfig())

	cycle := c.Collect(context.Background())
	assert.InDelta(t, 137.0, cycle.Snapshot["external_aqi"], 1e-9)
}

func TestCollectTrendStartsSteady(t *testing.T) {
	station := &fakeStation{temperature: 20, humidity: 50, pressure: 1000}
	c := newCollector(station, &fakeCPU{temperature: 40}, &fakeBattery{}, &fakeAQI{}, defaultConfig())

	cycle := c.Collect(context.Background())
	assert.Equal(t, atmosphere.TrendSteady, cycle.Trend)
	assert.Zero(t, cycle.ChangePerHour)
	assert.InDelta(t, 1000.0, cycle.MeanPressure, 1e-9)
}

func TestLatestPublishedAtomically(t *testing.T) {
	station := &fakeStation{temperature: 20, humidity: 50, pressure: 1000}
	c := newCollector(station, &fakeCPU{temperature: 40}, &fakeBattery{}, &fakeAQI{}, defaultConfig())

	assert.Nil(t, c.Latest(), "no snapshot before the first cycle")

	first := c.Collect(context.Background())
	published := c.Latest()
	require.NotNil(t, published)
	assert.Equal(t, first.Snapshot, published)

	station.humidity = 60
	c.Collect(context.Background())
	assert.InDelta(t, 50.0, published["humidity"], 1e-9, "published snapshot must not be mutated")
	assert.InDelta(t, 60.0, c.Latest()["humidity"], 1e-9)
}
