// Package exporter exposes sensor readings in Prometheus format. The
// registry is constructed by the caller and passed in; nothing here is
// process-global.
package exporter

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metric names are a compatibility contract with existing dashboards and
// scrape configs; do not rename.
type Metrics struct {
	registry *prometheus.Registry

	Temperature       prometheus.Gauge
	Pressure          prometheus.Gauge
	Humidity          prometheus.Gauge
	Oxidising         prometheus.Gauge
	Reducing          prometheus.Gauge
	NH3               prometheus.Gauge
	Lux               prometheus.Gauge
	Proximity         prometheus.Gauge
	PM1               prometheus.Gauge
	PM25              prometheus.Gauge
	PM10              prometheus.Gauge
	AQI               prometheus.Gauge
	CPUTemperature    prometheus.Gauge
	BatteryVoltage    prometheus.Gauge
	BatteryPercentage prometheus.Gauge

	OxidisingHist prometheus.Histogram
	ReducingHist  prometheus.Histogram
	NH3Hist       prometheus.Histogram
	PM1Hist       prometheus.Histogram
	PM25Hist      prometheus.Histogram
	PM10Hist      prometheus.Histogram
	AQIHist       prometheus.Histogram
}

var (
	oxidisingBuckets = []float64{
		0, 10000, 15000, 20000, 25000, 30000, 35000, 40000, 45000, 50000,
		55000, 60000, 65000, 70000, 75000, 80000, 85000, 90000, 100000,
	}
	reducingBuckets = []float64{
		0, 100000, 200000, 300000, 400000, 500000, 600000, 700000, 800000,
		900000, 1000000, 1100000, 1200000, 1300000, 1400000, 1500000,
	}
	nh3Buckets = []float64{
		0, 10000, 110000, 210000, 310000, 410000, 510000, 610000, 710000,
		810000, 910000, 1010000, 1110000, 1210000, 1310000, 1410000,
		1510000, 1610000, 1710000, 1810000, 1910000, 2000000,
	}
	particulateBuckets = []float64{
		0, 5, 10, 15, 20, 25, 30, 35, 40, 45, 50,
		55, 60, 65, 70, 75, 80, 85, 90, 95, 100,
	}
)

func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,

		Temperature: gauge("temperature", "Temperature measured (*C)"),
		Pressure:    gauge("pressure", "Pressure measured (hPa)"),
		Humidity:    gauge("humidity", "Relative humidity measured (%)"),
		Oxidising:   gauge("oxidising", "Mostly nitrogen dioxide but could include NO and Hydrogen (Ohms)"),
		Reducing: gauge("reducing",
			"Mostly carbon monoxide but could include H2S, Ammonia, Ethanol, Hydrogen, Methane, Propane, Iso-butane (Ohms)"),
		NH3: gauge("NH3",
			"mostly Ammonia but could also include Hydrogen, Ethanol, Propane, Iso-butane (Ohms)"),
		Lux:       gauge("lux", "current ambient light level (lux)"),
		Proximity: gauge("proximity", "proximity, with larger numbers being closer proximity and vice versa"),
		PM1: gauge("PM1",
			"Particulate Matter of diameter less than 1 micron. Measured in micrograms per cubic metre (ug/m3)"),
		PM25: gauge("PM25",
			"Particulate Matter of diameter less than 2.5 microns. Measured in micrograms per cubic metre (ug/m3)"),
		PM10: gauge("PM10",
			"Particulate Matter of diameter less than 10 microns. Measured in micrograms per cubic metre (ug/m3)"),
		AQI:               gauge("AQI", "EPA Air Quality Measurement"),
		CPUTemperature:    gauge("cpu_temperature", "CPU temperature measured (*C)"),
		BatteryVoltage:    gauge("battery_voltage", "Voltage of the battery (Volts)"),
		BatteryPercentage: gauge("battery_percentage", "Percentage of the battery remaining (%)"),

		OxidisingHist: histogram("oxidising_measurements", "Histogram of oxidising measurements", oxidisingBuckets),
		ReducingHist:  histogram("reducing_measurements", "Histogram of reducing measurements", reducingBuckets),
		NH3Hist:       histogram("nh3_measurements", "Histogram of nh3 measurements", nh3Buckets),
		PM1Hist: histogram("pm1_measurements",
			"Histogram of Particulate Matter of diameter less than 1 micron measurements", particulateBuckets),
		PM25Hist: histogram("pm25_measurements",
			"Histogram of Particulate Matter of diameter less than 2.5 micron measurements", particulateBuckets),
		PM10Hist: histogram("pm10_measurements",
			"Histogram of Particulate Matter of diameter less than 10 micron measurements", particulateBuckets),
		AQIHist: histogram("aqi_measurements", "Histogram of EPA AQI measurements", particulateBuckets),
	}

	registry.MustRegister(
		m.Temperature, m.Pressure, m.Humidity,
		m.Oxidising, m.Reducing, m.NH3,
		m.Lux, m.Proximity,
		m.PM1, m.PM25, m.PM10, m.AQI,
		m.CPUTemperature, m.BatteryVoltage, m.BatteryPercentage,
		m.OxidisingHist, m.ReducingHist, m.NH3Hist,
		m.PM1Hist, m.PM25Hist, m.PM10Hist, m.AQIHist,
	)

	return m
}

// Handler returns the /metrics HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func gauge(name, help string) prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: help})
}

func histogram(name, help string, buckets []float64) prometheus.Histogram {
	return prometheus.NewHistogram(prometheus.HistogramOpts{Name: name, Help: help, Buckets: buckets})
}
