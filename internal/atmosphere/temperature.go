package atmosphere

// Unit identifies the scale a temperature value is expressed in.
type Unit int

const (
	Celsius Unit = iota
	Fahrenheit
)

// Temperature is an immutable unit-tagged scalar. Arithmetic returns new
// values in the unit of the receiver.
type Temperature struct {
	value float64
	unit  Unit
}

func NewCelsius(v float64) Temperature {
	return Temperature{value: v, unit: Celsius}
}

func NewFahrenheit(v float64) Temperature {
	return Temperature{value: v, unit: Fahrenheit}
}

func (t Temperature) Value() float64 {
	return t.value
}

func (t Temperature) Unit() Unit {
	return t.unit
}

// Celsius returns the value converted to degrees Celsius.
func (t Temperature) Celsius() float64 {
	if t.unit == Fahrenheit {
		return (t.value - 32) * 5 / 9
	}

	return t.value
}

// Fahrenheit returns the value converted to degrees Fahrenheit.
func (t Temperature) Fahrenheit() float64 {
	if t.unit == Celsius {
		return t.value*9/5 + 32
	}

	return t.value
}

// Add returns the sum of both temperatures in the receiver's unit.
func (t Temperature) Add(other Temperature) Temperature {
	if t.unit == Fahrenheit {
		return Temperature{value: t.value + other.Fahrenheit(), unit: Fahrenheit}
	}

	return Temperature{value: t.value + other.Celsius(), unit: Celsius}
}

// Div returns the temperature scaled down by n.
func (t Temperature) Div(n float64) Temperature {
	return Temperature{value: t.value / n, unit: t.unit}
}

const (
	// DefaultFactor is the damping constant for the CPU heat correction.
	// Larger values mean less correction.
	DefaultFactor = 2.25

	// DefaultSmoothingCount is the size of the CPU temperature window.
	DefaultSmoothingCount = 5
)

// Compensator corrects ambient temperature readings for self-heating bias
// from a nearby CPU. It owns a FIFO window of recent CPU temperatures and
// subtracts a fraction of the CPU-ambient differential from each raw
// reading.
type Compensator struct {
	factor float64
	window []float64
}

// NewCompensator seeds the smoothing window by repeating the first CPU
// reading, so the first correction is well-defined immediately.
func NewCompensator(factor float64, smoothingCount int, initialCPUTemp float64) *Compensator {
	if factor <= 0 {
		factor = DefaultFactor
	}
	if smoothingCount <= 0 {
		smoothingCount = DefaultSmoothingCount
	}

	window := make([]float64, smoothingCount)
	for i := range window {
		window[i] = initialCPUTemp
	}

	return &Compensator{
		factor: factor,
		window: window,
	}
}

// Compensate slides the CPU temperature window and returns the raw ambient
// reading corrected for heat leakage from the board.
func (c *Compensator) Compensate(raw, cpuTemp float64) float64 {
	copy(c.window, c.window[1:])
	c.window[len(c.window)-1] = cpuTemp

	avg := c.AverageCPUTemp()

	return raw - ((avg - raw) / c.factor)
}

// AverageCPUTemp returns the mean of the smoothing window.
func (c *Compensator) AverageCPUTemp() float64 {
	var sum float64
	for _, v := range c.window {
		sum += v
	}

	return sum / float64(len(c.window))
}
