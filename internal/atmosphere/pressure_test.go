package atmosphere_test

import (
	"testing"

	"github.com/envsense/enviroctl/internal/atmosphere"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrendBelowCapacity(t *testing.T) {
	a := atmosphere.NewTrendAnalyzer(10)

	for i := 0; i < 10; i++ {
		mean, change, trend := a.Analyse(1000+float64(i), float64(i))
		assert.Equal(t, atmosphere.TrendSteady, trend, "call %d", i)
		assert.Zero(t, change, "call %d", i)
		assert.Greater(t, mean, 0.0)
	}
}

func TestTrendMeanBelowCapacity(t *testing.T) {
	a := atmosphere.NewTrendAnalyzer(100)

	a.Analyse(1000, 0)
	mean, _, _ := a.Analyse(1010, 1)
	assert.InDelta(t, 1005.0, mean, 1e-9)
}

func TestTrendRising(t *testing.T) {
	a := atmosphere.NewTrendAnalyzer(20)

	// +1 hPa per second, far beyond the fast threshold once regression
	// kicks in.
	var trend atmosphere.Trend
	for i := 0; i < 60; i++ {
		_, _, trend = a.Analyse(1000+float64(i), float64(i))
	}

	assert.Contains(t, []atmosphere.Trend{atmosphere.TrendRising, atmosphere.TrendRisingFast}, trend)
	assert.Equal(t, atmosphere.TrendRisingFast, trend, "1 hPa/s is a fast rise")
}

func TestTrendFallingFast(t *testing.T) {
	a := atmosphere.NewTrendAnalyzer(20)

	var trend atmosphere.Trend
	for i := 0; i < 60; i++ {
		_, _, trend = a.Analyse(1030-float64(i)*0.5, float64(i))
	}

	assert.Equal(t, atmosphere.TrendFallingFast, trend)
}

func TestTrendSlowRise(t *testing.T) {
	a := atmosphere.NewTrendAnalyzer(10)

	// 1 hPa/hour: above the 0.5 threshold, below the fast threshold.
	var trend atmosphere.Trend
	for i := 0; i < 40; i++ {
		ts := float64(i) * 60 // one sample per minute
		_, _, trend = a.Analyse(1000+float64(i)/60.0, ts)
	}

	assert.Equal(t, atmosphere.TrendRising, trend)
}

func TestTrendChangePerHour(t *testing.T) {
	a := atmosphere.NewTrendAnalyzer(5)

	var change float64
	for i := 0; i < 20; i++ {
		// 2 hPa per hour exactly.
		_, change, _ = a.Analyse(1000+float64(i)*2.0/3600.0, float64(i))
	}

	assert.InDelta(t, 2.0, change, 1e-6)
}

func TestTrendRetainedOnPoorFit(t *testing.T) {
	a := atmosphere.NewTrendAnalyzer(10)

	// Establish a rising trend first.
	for i := 0; i < 30; i++ {
		a.Analyse(1000+float64(i), float64(i))
	}
	require.Equal(t, atmosphere.TrendRisingFast, a.Trend())

	// Alternating noise has no linear trend; r² collapses and the prior
	// symbol must survive.
	for i := 30; i < 60; i++ {
		noise := float64(10 * (i%2*2 - 1))
		_, _, trend := a.Analyse(1030+noise, float64(i))
		assert.Equal(t, atmosphere.TrendRisingFast, trend, "call %d", i)
	}
}

func TestTrendConstantPressureNoCrash(t *testing.T) {
	a := atmosphere.NewTrendAnalyzer(5)

	// Zero variance makes r² undefined; the analyzer must treat the fit
	// as untrustworthy, not divide by zero.
	var mean, change float64
	var trend atmosphere.Trend
	for i := 0; i < 20; i++ {
		mean, change, trend = a.Analyse(1013.25, float64(i))
	}

	assert.InDelta(t, 1013.25, mean, 1e-9)
	assert.Zero(t, change)
	assert.Equal(t, atmosphere.TrendSteady, trend)
}

func TestTrendIdenticalTimestamps(t *testing.T) {
	a := atmosphere.NewTrendAnalyzer(3)

	for i := 0; i < 10; i++ {
		_, _, trend := a.Analyse(1000+float64(i), 42.0)
		assert.Equal(t, atmosphere.TrendSteady, trend)
	}
}

func TestDescribePressure(t *testing.T) {
	tests := []struct {
		pressure float64
		want     string
	}{
		{969, "storm"},
		{970, "rain"},
		{989.99, "rain"},
		{990, "change"},
		{1009.99, "change"},
		{1010, "good"},
		{1029, "good"},
		{1030, "dry"},
		{1050, "dry"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, atmosphere.DescribePressure(tt.pressure), "pressure %v", tt.pressure)
	}
}
