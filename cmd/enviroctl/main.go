package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/envsense/enviroctl/internal/atmosphere"
	"github.com/envsense/enviroctl/internal/collector"
	"github.com/envsense/enviroctl/internal/config"
	"github.com/envsense/enviroctl/internal/exporter"
	"github.com/envsense/enviroctl/internal/forward"
	"github.com/envsense/enviroctl/internal/logger"
	"github.com/envsense/enviroctl/internal/pid"
	"github.com/envsense/enviroctl/internal/sensors"
	"github.com/envsense/enviroctl/internal/telemetry"
	"github.com/envsense/enviroctl/internal/waqi"
)

const shutdownTimeout = 5 * time.Second

var cfg *config.Config

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Debug, cfg.Verbose, logger.IsService())
	logger.Debug().Msg("Config loaded")
}

func main() {
	if err := pid.Write(); err != nil {
		logger.Fatal().Err(err).Msg("failed to write PID file")
	}
	defer pid.Remove()

	station, err := sensors.NewStation()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize sensor station")
	}
	defer station.Close()

	registry := prometheus.NewRegistry()
	metrics := exporter.New(registry)

	coll := collector.New(
		station,
		sensors.NoBattery{},
		sensors.NewCPUThermal(),
		waqi.NewClient(cfg.Latitude, cfg.Longitude, cfg.WAQIAPIKey),
		metrics,
		collector.Config{
			Factor:            cfg.Factor,
			SmoothingCount:    cfg.SmoothingCount,
			PressureWindow:    cfg.PressureWindow,
			TemperatureOffset: cfg.TemperatureOffset,
			HumidityOffset:    cfg.HumidityOffset,
			HasParticulates:   !cfg.Enviro,
		},
	)

	recorder, err := telemetry.NewService(telemetryConfig())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer recorder.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	server := startMetricsServer(metrics, cancel)
	defer stopMetricsServer(server)

	var wg sync.WaitGroup
	for _, forwarder := range buildForwarders(coll) {
		wg.Add(1)
		go func(f forward.Forwarder) {
			defer wg.Done()
			logger.Info().Msgf("Starting %s forwarder", f.Name())
			f.Run(ctx)
		}(forwarder)
	}

	if err := loop(ctx, coll, recorder); err != nil {
		logger.Error().Err(err).Msg("error in main loop")
	}

	cancel()
	wg.Wait()
	logger.Info().Msg("Exiting...")
}

func loop(ctx context.Context, coll *collector.Collector, recorder telemetry.Recorder) error {
	if cfg.Interval <= 0 {
		return fmt.Errorf("invalid interval: %d", cfg.Interval)
	}

	interval := time.Duration(cfg.Interval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			cycle := coll.Collect(ctx)
			if err := recorder.Record(ctx, &cycle); err != nil {
				logger.Warn().Err(err).Msg("failed to record telemetry")
			}
			logCycle(cycle)
		}
	}
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

func startMetricsServer(metrics *exporter.Metrics, cancel context.CancelFunc) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Bind, cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Msgf("Serving metrics at http://%s/metrics", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics server failed")
			cancel()
		}
	}()

	return server
}

func stopMetricsServer(server *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to shut down metrics server")
	}
}

func telemetryConfig() telemetry.Config {
	tcfg := telemetry.DefaultConfig()
	tcfg.Enabled = cfg.Telemetry
	if cfg.Database != "" {
		tcfg.DBPath = cfg.Database
	}

	return tcfg
}

func buildForwarders(coll *collector.Collector) []forward.Forwarder {
	var forwarders []forward.Forwarder

	if cfg.InfluxDB.Enabled {
		forwarders = append(forwarders, forward.NewInfluxForwarder(forward.InfluxConfig{
			URL:      cfg.InfluxDB.URL,
			Token:    cfg.InfluxDB.Token,
			Org:      cfg.InfluxDB.Org,
			Bucket:   cfg.InfluxDB.Bucket,
			Location: cfg.InfluxDB.Location,
			Interval: time.Duration(cfg.InfluxDB.Interval) * time.Second,
		}, coll))
	}

	if cfg.Luftdaten.Enabled {
		forwarders = append(forwarders, forward.NewLuftdatenForwarder(forward.LuftdatenConfig{
			Interval: time.Duration(cfg.Luftdaten.Interval) * time.Second,
		}, coll))
	}

	if cfg.Safecast.Enabled {
		forwarders = append(forwarders, forward.NewSafecastForwarder(forward.SafecastConfig{
			APIKey:       cfg.Safecast.APIKey,
			DeviceID:     cfg.Safecast.DeviceID,
			LocationName: cfg.Safecast.LocationName,
			Latitude:     parseCoordinate(cfg.Safecast.Latitude, "safecast latitude"),
			Longitude:    parseCoordinate(cfg.Safecast.Longitude, "safecast longitude"),
			Dev:          cfg.Safecast.DevMode,
			Interval:     time.Duration(cfg.Safecast.Interval) * time.Second,
		}, coll))
	}

	return forwarders
}

func parseCoordinate(raw, name string) float64 {
	if raw == "" {
		return 0
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		logger.Warn().Str("value", raw).Msgf("invalid %s, using 0", name)
		return 0
	}

	return value
}

func logCycle(cycle collector.Cycle) {
	snapshot := cycle.Snapshot

	if cfg.Debug {
		event := logger.Debug()
		for _, key := range collector.Keys {
			event.Float64(key, snapshot[key])
		}
		event.
			Float64("mean_pressure", cycle.MeanPressure).
			Float64("pressure_change_per_hour", cycle.ChangePerHour).
			Str("pressure_trend", string(cycle.Trend)).
			Bool("battery_present", cycle.BatteryPresent).
			Msg("")
	} else if cfg.Verbose {
		logger.Info().
			Float64("temperature", snapshot["temperature"]).
			Float64("humidity", snapshot["humidity"]).
			Str("humidity_conditions", atmosphere.DescribeHumidity(snapshot["humidity"])).
			Float64("pressure", snapshot["pressure"]).
			Str("pressure_trend", string(cycle.Trend)).
			Str("forecast", atmosphere.DescribePressure(cycle.MeanPressure)).
			Float64("lux", snapshot["lux"]).
			Str("light_conditions", atmosphere.DescribeLight(snapshot["lux"])).
			Float64("internal_aqi", snapshot["internal_aqi"]).
			Str("air_quality", atmosphere.DescribeAQI(snapshot["internal_aqi"])).
			Float64("external_aqi", snapshot["external_aqi"]).
			Msg("")
	}
}
