package sensors

import (
	"os"
	"strconv"
	"strings"

	"github.com/envsense/enviroctl/internal/errors"
	"github.com/shirou/gopsutil/v3/host"
)

const thermalZonePath = "/sys/class/thermal/thermal_zone0/temp"

// cpuSensorKeys are matched against gopsutil sensor names, most specific
// first. cpu_thermal is the Raspberry Pi SoC sensor.
var cpuSensorKeys = []string{"cpu_thermal", "cpu-thermal", "coretemp", "k10temp", "soc_thermal"}

type hostCPUThermal struct {
	errFactory errors.Factory
}

// NewCPUThermal returns a CPU temperature reader backed by the host's
// thermal sensors, falling back to sysfs when no named sensor matches.
func NewCPUThermal() CPUThermal {
	return &hostCPUThermal{errFactory: errors.New()}
}

func (c *hostCPUThermal) Temperature() (float64, error) {
	if temps, err := host.SensorsTemperatures(); err == nil {
		for _, key := range cpuSensorKeys {
			for _, t := range temps {
				if strings.Contains(t.SensorKey, key) && t.Temperature > 0 {
					return t.Temperature, nil
				}
			}
		}
	}

	return c.readThermalZone()
}

func (c *hostCPUThermal) readThermalZone() (float64, error) {
	raw, err := os.ReadFile(thermalZonePath)
	if err != nil {
		return 0, c.errFactory.Wrap(errors.ErrCPUTemperature, err)
	}

	millideg, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return 0, c.errFactory.Wrap(errors.ErrCPUTemperature, err)
	}

	return float64(millideg) / 1000.0, nil
}
