// Package collector orchestrates one polling cycle: it triggers the sensor
// reads, feeds the derived-metric engines, updates the exported gauges and
// publishes one consistent snapshot per cycle.
package collector

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/envsense/enviroctl/internal/atmosphere"
	"github.com/envsense/enviroctl/internal/exporter"
	"github.com/envsense/enviroctl/internal/logger"
	"github.com/envsense/enviroctl/internal/sensors"
	"github.com/envsense/enviroctl/internal/waqi"
)

// Snapshot is the flat metric-name to value record produced once per
// polling cycle. The key set is a compatibility contract with downstream
// exporters and renderers.
type Snapshot map[string]float64

// Keys enumerates every metric a snapshot carries, in contract order.
var Keys = []string{
	"temperature",
	"humidity",
	"pressure",
	"oxidising",
	"reducing",
	"nh3",
	"lux",
	"proximity",
	"pm1",
	"pm25",
	"pm10",
	"cpu_temperature",
	"battery_voltage",
	"battery_percentage",
	"internal_aqi",
	"external_aqi",
}

// Cycle carries the snapshot plus the derived barometric state for logging
// and display consumers.
type Cycle struct {
	Snapshot       Snapshot
	MeanPressure   float64
	ChangePerHour  float64
	Trend          atmosphere.Trend
	BatteryPresent bool
}

// AQIFetcher is the remote reference-AQI lookup. Implementations return
// the sentinel -1 instead of failing.
type AQIFetcher interface {
	Fetch(ctx context.Context) int
}

type Config struct {
	Factor            float64
	SmoothingCount    int
	PressureWindow    int
	TemperatureOffset float64
	HumidityOffset    float64
	// HasParticulates is false on boards without the PM sensor.
	HasParticulates bool
}

type Collector struct {
	station sensors.Station
	battery sensors.Battery
	cpu     sensors.CPUThermal
	aqi     AQIFetcher
	metrics *exporter.Metrics
	cfg     Config

	compensator *atmosphere.Compensator
	trend       *atmosphere.TrendAnalyzer

	// last holds the previous cycle's values so a failed read degrades to
	// a stale value instead of aborting the cycle.
	last   Snapshot
	latest atomic.Pointer[Snapshot]

	now func() time.Time
}

func New(
	station sensors.Station,
	battery sensors.Battery,
	cpu sensors.CPUThermal,
	aqi AQIFetcher,
	metrics *exporter.Metrics,
	cfg Config,
) *Collector {
	// Seed the smoothing window with the first CPU reading so the first
	// compensated value is defined. A failed first read seeds with zero
	// and smooths out over the next cycles.
	initialCPU, err := cpu.Temperature()
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to read CPU temperature for window seed")
	}

	last := make(Snapshot, len(Keys))
	for _, key := range Keys {
		last[key] = 0
	}
	last["external_aqi"] = waqi.Unavailable

	return &Collector{
		station:     station,
		battery:     battery,
		cpu:         cpu,
		aqi:         aqi,
		metrics:     metrics,
		cfg:         cfg,
		compensator: atmosphere.NewCompensator(cfg.Factor, cfg.SmoothingCount, initialCPU),
		trend:       atmosphere.NewTrendAnalyzer(cfg.PressureWindow),
		last:        last,
		now:         time.Now,
	}
}

// Collect runs one polling cycle and publishes the resulting snapshot.
// Sensor failures are logged and degrade to the previous value; the cycle
// itself never fails.
func (c *Collector) Collect(ctx context.Context) Cycle {
	snapshot := make(Snapshot, len(Keys))
	for k, v := range c.last {
		snapshot[k] = v
	}

	cpuTemp, cpuOK := c.readCPUTemperature(snapshot)
	c.readTemperature(snapshot, cpuTemp, cpuOK)
	c.readHumidity(snapshot)
	meanPressure, changePerHour := c.readPressure(snapshot)
	c.readGas(snapshot)
	c.readLight(snapshot)
	c.readParticulates(snapshot)
	batteryPresent := c.readBattery(snapshot)

	internalAQI := atmosphere.CalculateAQI(snapshot["pm25"], snapshot["pm10"])
	snapshot["internal_aqi"] = internalAQI
	c.metrics.AQI.Set(internalAQI)
	c.metrics.AQIHist.Observe(internalAQI)

	snapshot["external_aqi"] = float64(c.aqi.Fetch(ctx))

	c.last = snapshot
	published := snapshot
	c.latest.Store(&published)

	return Cycle{
		Snapshot:       snapshot,
		MeanPressure:   meanPressure,
		ChangePerHour:  changePerHour,
		Trend:          c.trend.Trend(),
		BatteryPresent: batteryPresent,
	}
}

// Latest returns the most recently published snapshot, or nil before the
// first cycle completes. The returned snapshot is replaced, never mutated,
// so readers need no locking.
func (c *Collector) Latest() Snapshot {
	if s := c.latest.Load(); s != nil {
		return *s
	}

	return nil
}

func (c *Collector) readCPUTemperature(snapshot Snapshot) (float64, bool) {
	cpuTemp, err := c.cpu.Temperature()
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to read CPU temperature")
		return snapshot["cpu_temperature"], false
	}

	snapshot["cpu_temperature"] = cpuTemp
	c.metrics.CPUTemperature.Set(cpuTemp)

	return cpuTemp, true
}

func (c *Collector) readTemperature(snapshot Snapshot, cpuTemp float64, cpuOK bool) {
	raw, err := c.station.Temperature()
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to read temperature sensor")
		return
	}

	raw -= c.cfg.TemperatureOffset

	if !cpuOK {
		// No fresh CPU sample; smooth against the current window mean.
		cpuTemp = c.compensator.AverageCPUTemp()
	}
	compensated := c.compensator.Compensate(raw, cpuTemp)

	snapshot["temperature"] = compensated
	c.metrics.Temperature.Set(compensated)
}

func (c *Collector) readHumidity(snapshot Snapshot) {
	humidity, err := c.station.Humidity()
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to read humidity sensor")
		return
	}

	humidity += c.cfg.HumidityOffset

	snapshot["humidity"] = humidity
	c.metrics.Humidity.Set(humidity)
}

func (c *Collector) readPressure(snapshot Snapshot) (meanPressure, changePerHour float64) {
	pressure, err := c.station.Pressure()
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to read pressure sensor")
		return 0, 0
	}

	snapshot["pressure"] = pressure
	c.metrics.Pressure.Set(pressure)

	timestamp := float64(c.now().UnixNano()) / float64(time.Second)
	meanPressure, changePerHour, _ = c.trend.Analyse(pressure, timestamp)

	return meanPressure, changePerHour
}

func (c *Collector) readGas(snapshot Snapshot) {
	readings, err := c.station.Gas()
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to read gas sensor")
		return
	}

	snapshot["oxidising"] = readings.Oxidising
	snapshot["reducing"] = readings.Reducing
	snapshot["nh3"] = readings.NH3

	c.metrics.Oxidising.Set(readings.Oxidising)
	c.metrics.OxidisingHist.Observe(readings.Oxidising)
	c.metrics.Reducing.Set(readings.Reducing)
	c.metrics.ReducingHist.Observe(readings.Reducing)
	c.metrics.NH3.Set(readings.NH3)
	c.metrics.NH3Hist.Observe(readings.NH3)
}

func (c *Collector) readLight(snapshot Snapshot) {
	lux, proximity, err := c.station.Light()
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to read light sensor")
		return
	}

	snapshot["lux"] = lux
	snapshot["proximity"] = proximity
	c.metrics.Lux.Set(lux)
	c.metrics.Proximity.Set(proximity)
}

func (c *Collector) readParticulates(snapshot Snapshot) {
	if !c.cfg.HasParticulates {
		return
	}

	pm, err := c.station.Particulates()
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to read particulate sensor")
		return
	}

	snapshot["pm1"] = pm.PM1
	snapshot["pm25"] = pm.PM25
	snapshot["pm10"] = pm.PM10

	c.metrics.PM1.Set(pm.PM1)
	c.metrics.PM25.Set(pm.PM25)
	c.metrics.PM10.Set(pm.PM10)

	// Histogram buckets track the per-band mass, not the cumulative
	// concentrations the sensor reports.
	c.metrics.PM1Hist.Observe(pm.PM1)
	c.metrics.PM25Hist.Observe(pm.PM25 - pm.PM1)
	c.metrics.PM10Hist.Observe(pm.PM10 - pm.PM25)
}

func (c *Collector) readBattery(snapshot Snapshot) bool {
	if !c.battery.Present() {
		return false
	}

	status, err := c.battery.Read()
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to read battery monitor")
		return true
	}

	snapshot["battery_voltage"] = status.Voltage
	snapshot["battery_percentage"] = status.Percentage
	c.metrics.BatteryVoltage.Set(status.Voltage)
	c.metrics.BatteryPercentage.Set(status.Percentage)

	return true
}
