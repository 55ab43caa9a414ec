package atmosphere

import "math"

// DescribeHumidity converts relative humidity into a good/bad description.
func DescribeHumidity(humidity float64) string {
	if 30 < humidity && humidity < 70 {
		return "good"
	}

	return "bad"
}

// DescribeLight converts a light level in lux to a descriptive value.
func DescribeLight(lux float64) string {
	switch {
	case lux < 50:
		return "dark"
	case lux < 100:
		return "dim"
	case lux < 500:
		return "light"
	default:
		return "bright"
	}
}

// CorrectHumidity adjusts a raw relative humidity reading for a corrected
// temperature, via the dewpoint, clamped to 100%.
func CorrectHumidity(humidity, temperature, correctedTemperature float64) float64 {
	dewpoint := temperature - ((100 - humidity) / 5)
	corrected := 100 - (5 * (correctedTemperature - dewpoint))

	return math.Min(100, corrected)
}
