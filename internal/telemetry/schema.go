package telemetry

import (
	"database/sql"

	"github.com/envsense/enviroctl/internal/errors"
)

func initSchema(db *sql.DB) error {
	errFactory := errors.New()

	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS readings (
            timestamp INTEGER PRIMARY KEY,
            temperature REAL,
            humidity REAL,
            pressure REAL,
            oxidising REAL,
            reducing REAL,
            nh3 REAL,
            lux REAL,
            proximity REAL,
            pm1 REAL,
            pm25 REAL,
            pm10 REAL,
            cpu_temperature REAL,
            battery_voltage REAL,
            battery_percentage REAL,
            battery_present INTEGER,
            internal_aqi REAL,
            external_aqi REAL,
            mean_pressure REAL,
            change_per_hour REAL,
            trend TEXT
        )
    `)
	if err != nil {
		return errFactory.Wrap(errors.ErrInitTelemetry, err)
	}

	return nil
}
