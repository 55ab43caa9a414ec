package sensors

import (
	"github.com/envsense/enviroctl/internal/errors"
	"github.com/envsense/enviroctl/internal/logger"
	"periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/conn/physic"
	"periph.io/x/periph/devices/bmxx80"
	"periph.io/x/periph/host"
)

const bme280Addr = 0x76

// bme280Station drives the weather sensor over I2C. The gas, light and
// particulate sensors on the board have no host driver here; their reads
// report the sensor as unavailable and the polling cycle degrades
// gracefully.
type bme280Station struct {
	bus        i2c.BusCloser
	dev        *bmxx80.Dev
	errFactory errors.Factory
}

// NewStation opens the first available I2C bus and probes the BME280.
func NewStation() (Station, error) {
	errFactory := errors.New()

	if _, err := host.Init(); err != nil {
		return nil, errFactory.Wrap(errors.ErrInitFailed, err)
	}

	bus, err := i2creg.Open("")
	if err != nil {
		return nil, errFactory.Wrap(errors.ErrInitFailed, err)
	}

	dev, err := bmxx80.NewI2C(bus, bme280Addr, &bmxx80.DefaultOpts)
	if err != nil {
		bus.Close()
		return nil, errFactory.Wrap(errors.ErrInitFailed, err)
	}

	logger.Info().Str("device", dev.String()).Msg("Detected weather sensor")

	return &bme280Station{
		bus:        bus,
		dev:        dev,
		errFactory: errFactory,
	}, nil
}

func (s *bme280Station) sense() (physic.Env, error) {
	var env physic.Env
	if err := s.dev.Sense(&env); err != nil {
		return env, s.errFactory.Wrap(errors.ErrSensorRead, err)
	}

	return env, nil
}

func (s *bme280Station) Temperature() (float64, error) {
	env, err := s.sense()
	if err != nil {
		return 0, err
	}

	return env.Temperature.Celsius(), nil
}

func (s *bme280Station) Humidity() (float64, error) {
	env, err := s.sense()
	if err != nil {
		return 0, err
	}

	return float64(env.Humidity) / float64(physic.PercentRH), nil
}

func (s *bme280Station) Pressure() (float64, error) {
	env, err := s.sense()
	if err != nil {
		return 0, err
	}

	// nPa to hPa
	return float64(env.Pressure) / float64(100*physic.Pascal), nil
}

func (s *bme280Station) Gas() (GasReadings, error) {
	return GasReadings{}, s.errFactory.New(errors.ErrSensorUnavailable)
}

func (s *bme280Station) Light() (lux, proximity float64, err error) {
	return 0, 0, s.errFactory.New(errors.ErrSensorUnavailable)
}

func (s *bme280Station) Particulates() (Particulates, error) {
	return Particulates{}, s.errFactory.New(errors.ErrSensorUnavailable)
}

func (s *bme280Station) Close() error {
	if err := s.dev.Halt(); err != nil {
		logger.Warn().Err(err).Msg("Failed to halt weather sensor")
	}

	return s.bus.Close()
}

// NoBattery is the explicit absent-monitor state, distinct from a monitor
// reporting zero volts.
type NoBattery struct{}

func (NoBattery) Present() bool {
	return false
}

func (NoBattery) Read() (BatteryStatus, error) {
	return BatteryStatus{}, errors.New().New(errors.ErrSensorUnavailable)
}
