package atmosphere_test

import (
	"testing"

	"github.com/envsense/enviroctl/internal/atmosphere"
	"github.com/stretchr/testify/assert"
)

func TestTemperatureRoundTrip(t *testing.T) {
	for _, celsius := range []float64{-40, -17.77777, 0, 0.1, 21.5, 36.6, 100, 451.0} {
		f := atmosphere.NewCelsius(celsius).Fahrenheit()
		back := atmosphere.NewFahrenheit(f).Celsius()
		assert.InDelta(t, celsius, back, 1e-9, "round-trip for %v", celsius)
	}
}

func TestTemperatureConversion(t *testing.T) {
	assert.InDelta(t, 32.0, atmosphere.NewCelsius(0).Fahrenheit(), 1e-9)
	assert.InDelta(t, 212.0, atmosphere.NewCelsius(100).Fahrenheit(), 1e-9)
	assert.InDelta(t, -40.0, atmosphere.NewCelsius(-40).Fahrenheit(), 1e-9)
	assert.InDelta(t, 0.0, atmosphere.NewFahrenheit(32).Celsius(), 1e-9)
}

func TestTemperatureArithmeticIsImmutable(t *testing.T) {
	a := atmosphere.NewCelsius(10)
	b := atmosphere.NewCelsius(20)

	sum := a.Add(b)
	assert.InDelta(t, 30.0, sum.Celsius(), 1e-9)
	assert.InDelta(t, 10.0, a.Celsius(), 1e-9, "operand must not change")

	half := sum.Div(2)
	assert.InDelta(t, 15.0, half.Celsius(), 1e-9)
	assert.InDelta(t, 30.0, sum.Celsius(), 1e-9)
}

func TestTemperatureAddMixedUnits(t *testing.T) {
	sum := atmosphere.NewCelsius(0).Add(atmosphere.NewFahrenheit(32))
	assert.Equal(t, atmosphere.Celsius, sum.Unit())
	assert.InDelta(t, 0.0, sum.Celsius(), 1e-9)
}

func TestCompensatorSeedsWindow(t *testing.T) {
	c := atmosphere.NewCompensator(2.25, 5, 50.0)

	// Window seeded with the first reading, so the average is defined
	// before any updates.
	assert.InDelta(t, 50.0, c.AverageCPUTemp(), 1e-9)
}

func TestCompensatorCorrectionSign(t *testing.T) {
	c := atmosphere.NewCompensator(2.25, 5, 50.0)

	// avg CPU above ambient: corrected reading must be below raw.
	compensated := c.Compensate(22.0, 50.0)
	assert.Less(t, compensated, 22.0)
	assert.InDelta(t, 22.0-((50.0-22.0)/2.25), compensated, 1e-9)
}

func TestCompensatorWindowSlides(t *testing.T) {
	c := atmosphere.NewCompensator(2.25, 3, 60.0)

	c.Compensate(20, 30)
	c.Compensate(20, 30)
	c.Compensate(20, 30)

	// All seed values evicted after three updates.
	assert.InDelta(t, 30.0, c.AverageCPUTemp(), 1e-9)
}

func TestCompensatorNoBiasWhenEqual(t *testing.T) {
	c := atmosphere.NewCompensator(2.25, 5, 21.0)

	// CPU at ambient temperature: no correction.
	assert.InDelta(t, 21.0, c.Compensate(21.0, 21.0), 1e-9)
}

func TestCompensatorDefaults(t *testing.T) {
	c := atmosphere.NewCompensator(0, 0, 40.0)
	assert.InDelta(t, 40.0, c.AverageCPUTemp(), 1e-9)

	got := c.Compensate(20.0, 40.0)
	want := 20.0 - ((40.0 - 20.0) / atmosphere.DefaultFactor)
	assert.InDelta(t, want, got, 1e-9)
}
