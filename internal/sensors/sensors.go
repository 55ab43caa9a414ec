// Package sensors defines the acquisition contracts for the environmental
// board. Implementations return raw physical values; all derived-metric
// computation lives elsewhere.
package sensors

// GasReadings holds the three MICS6814 channel resistances in Ohms.
type GasReadings struct {
	Oxidising float64
	Reducing  float64
	NH3       float64
}

// Particulates holds PMS5003 mass concentrations in ug/m3.
type Particulates struct {
	PM1  float64
	PM25 float64
	PM10 float64
}

// BatteryStatus is a valid reading from a present battery monitor. A zero
// voltage here is a real measurement; absence of the monitor is expressed
// by Battery.Present, never by a zero value.
type BatteryStatus struct {
	Voltage    float64
	Percentage float64
}

// Station is the contract for the environmental sensor board. Reads may
// fail transiently (bus errors, checksum mismatches, timeouts); callers
// are expected to log and carry the previous value.
type Station interface {
	// Temperature returns the raw ambient temperature in Celsius,
	// uncompensated.
	Temperature() (float64, error)
	// Humidity returns relative humidity in percent.
	Humidity() (float64, error)
	// Pressure returns barometric pressure in hPa.
	Pressure() (float64, error)
	// Gas returns the gas sensor channel resistances.
	Gas() (GasReadings, error)
	// Light returns ambient light in lux and the raw proximity count.
	Light() (lux, proximity float64, err error)
	// Particulates returns the particulate matter concentrations.
	Particulates() (Particulates, error)

	Close() error
}

// Battery is the optional battery monitor.
type Battery interface {
	// Present reports whether the monitor hardware was detected.
	Present() bool
	Read() (BatteryStatus, error)
}

// CPUThermal reads the host CPU die temperature.
type CPUThermal interface {
	Temperature() (float64, error)
}
