package atmosphere_test

import (
	"testing"

	"github.com/envsense/enviroctl/internal/atmosphere"
	"github.com/stretchr/testify/assert"
)

func TestDescribeHumidity(t *testing.T) {
	tests := []struct {
		humidity float64
		want     string
	}{
		{0, "bad"},
		{30, "bad"}, // exclusive lower bound
		{30.1, "good"},
		{50, "good"},
		{69.9, "good"},
		{70, "bad"}, // exclusive upper bound
		{100, "bad"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, atmosphere.DescribeHumidity(tt.humidity), "humidity %v", tt.humidity)
	}
}

func TestDescribeLight(t *testing.T) {
	tests := []struct {
		lux  float64
		want string
	}{
		{0, "dark"},
		{49.9, "dark"},
		{50, "dim"},
		{99.9, "dim"},
		{100, "light"},
		{499.9, "light"},
		{500, "bright"},
		{10000, "bright"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, atmosphere.DescribeLight(tt.lux), "lux %v", tt.lux)
	}
}

func TestCorrectHumidity(t *testing.T) {
	// No temperature correction: dewpoint math cancels back to the raw
	// reading.
	assert.InDelta(t, 60.0, atmosphere.CorrectHumidity(60, 22, 22), 1e-9)

	// A lower corrected temperature raises relative humidity.
	assert.Greater(t, atmosphere.CorrectHumidity(60, 22, 20), 60.0)

	// Clamped at 100%.
	assert.InDelta(t, 100.0, atmosphere.CorrectHumidity(99, 30, 10), 1e-9)
}
