package telemetry

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/envsense/enviroctl/internal/collector"
	"github.com/envsense/enviroctl/internal/errors"
	"github.com/envsense/enviroctl/internal/logger"

	_ "github.com/mattn/go-sqlite3"
)

type Repository interface {
	Store(ctx context.Context, cycle *collector.Cycle) error
	Close() error
}

type sqliteRepository struct {
	db  *sql.DB
	mu  sync.Mutex
	now func() time.Time
}

func NewRepository(cfg Config) (Repository, error) {
	errFactory := errors.New()

	if cfg.DBPath == "" {
		return nil, errFactory.WithMessage(errors.ErrInvalidConfig, "telemetry database path is empty")
	}

	logger.Debug().Msgf("Initializing telemetry repository at: %s", cfg.DBPath)

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), defaultDirPerm); err != nil {
		return nil, errFactory.Wrap(errors.ErrInitTelemetry, err)
	}

	db, err := sql.Open("sqlite3", cfg.DBPath)
	if err != nil {
		return nil, errFactory.Wrap(errors.ErrInitTelemetry, err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, errFactory.Wrap(errors.ErrInitTelemetry, err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, errFactory.Wrap(errors.ErrInitTelemetry, err)
	}

	return &sqliteRepository{
		db:  db,
		now: time.Now,
	}, nil
}

func (r *sqliteRepository) Store(ctx context.Context, cycle *collector.Cycle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	errFactory := errors.New()

	snapshot := cycle.Snapshot
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO readings (
            timestamp, temperature, humidity, pressure,
            oxidising, reducing, nh3, lux, proximity,
            pm1, pm25, pm10, cpu_temperature,
            battery_voltage, battery_percentage, battery_present,
            internal_aqi, external_aqi,
            mean_pressure, change_per_hour, trend
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(timestamp) DO UPDATE SET
            temperature = excluded.temperature,
            humidity = excluded.humidity,
            pressure = excluded.pressure,
            oxidising = excluded.oxidising,
            reducing = excluded.reducing,
            nh3 = excluded.nh3,
            lux = excluded.lux,
            proximity = excluded.proximity,
            pm1 = excluded.pm1,
            pm25 = excluded.pm25,
            pm10 = excluded.pm10,
            cpu_temperature = excluded.cpu_temperature,
            battery_voltage = excluded.battery_voltage,
            battery_percentage = excluded.battery_percentage,
            battery_present = excluded.battery_present,
            internal_aqi = excluded.internal_aqi,
            external_aqi = excluded.external_aqi,
            mean_pressure = excluded.mean_pressure,
            change_per_hour = excluded.change_per_hour,
            trend = excluded.trend
    `,
		r.now().Unix(),
		snapshot["temperature"],
		snapshot["humidity"],
		snapshot["pressure"],
		snapshot["oxidising"],
		snapshot["reducing"],
		snapshot["nh3"],
		snapshot["lux"],
		snapshot["proximity"],
		snapshot["pm1"],
		snapshot["pm25"],
		snapshot["pm10"],
		snapshot["cpu_temperature"],
		snapshot["battery_voltage"],
		snapshot["battery_percentage"],
		boolToInt(cycle.BatteryPresent),
		snapshot["internal_aqi"],
		snapshot["external_aqi"],
		cycle.MeanPressure,
		cycle.ChangePerHour,
		string(cycle.Trend),
	)
	if err != nil {
		return errFactory.Wrap(errors.ErrRecordTelemetry, err)
	}

	return nil
}

func (r *sqliteRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	errFactory := errors.New()

	if err := r.db.Close(); err != nil {
		return errFactory.Wrap(errors.ErrCloseTelemetry, err)
	}
	return nil
}
