package atmosphere

import "math"

// AQIUnknown is the sentinel for a missing or failed AQI reading.
const AQIUnknown = -1

// breakpoint maps one concentration range to one AQI sub-index range,
// following the EPA piecewise-linear formula.
type breakpoint struct {
	cLow, cHigh float64
	iLow, iHigh float64
}

// EPA breakpoints for PM2.5 (24-hour, ug/m3).
var pm25Breakpoints = []breakpoint{
	{0.0, 12.0, 0, 50},
	{12.1, 35.4, 51, 100},
	{35.5, 55.4, 101, 150},
	{55.5, 150.4, 151, 200},
	{150.5, 250.4, 201, 300},
	{250.5, 350.4, 301, 400},
	{350.5, 500.4, 401, 500},
}

// EPA breakpoints for PM10 (24-hour, ug/m3).
var pm10Breakpoints = []breakpoint{
	{0, 54, 0, 50},
	{55, 154, 51, 100},
	{155, 254, 101, 150},
	{255, 354, 151, 200},
	{355, 424, 201, 300},
	{425, 504, 301, 400},
	{505, 604, 401, 500},
}

// CalculateAQI converts PM2.5 and PM10 concentrations into the composite
// EPA Air Quality Index: one sub-index per pollutant, overall AQI is the
// worst of the two. Concentrations above the top breakpoint saturate at
// the highest defined tier.
func CalculateAQI(pm25, pm10 float64) float64 {
	return math.Max(subIndex(pm25, pm25Breakpoints), subIndex(pm10, pm10Breakpoints))
}

func subIndex(concentration float64, table []breakpoint) float64 {
	if concentration <= 0 {
		return 0
	}

	top := table[len(table)-1]
	if concentration > top.cHigh {
		return top.iHigh
	}

	for _, bp := range table {
		if concentration <= bp.cHigh {
			index := (bp.iHigh-bp.iLow)/(bp.cHigh-bp.cLow)*(concentration-bp.cLow) + bp.iLow

			return math.Round(index)
		}
	}

	return top.iHigh
}

// DescribeAQI maps an AQI value to a severity label. Negative values are
// the sentinel for missing external data. The boundaries at exactly 0 and
// 50 fall through to the catch-all, matching the behavior the categories
// were signed off with.
func DescribeAQI(aqi float64) string {
	if aqi < 0 {
		return "unknown"
	}
	if 0 < aqi && aqi < 50 {
		return "Good"
	}
	if 51 <= aqi && aqi <= 100 {
		return "OK"
	}
	if 101 <= aqi && aqi <= 150 {
		return "Poor"
	}
	if 151 <= aqi && aqi <= 200 {
		return "Bad"
	}
	if 201 <= aqi && aqi <= 300 {
		return "Very Bad"
	}
	if aqi > 300 {
		return "Very Poor"
	}

	return "unknown"
}

// AQIColor returns an RGB severity color for display consumers.
func AQIColor(aqi float64) (r, g, b uint8) {
	switch {
	case aqi < 0:
		return 0, 0, 0
	case aqi <= 50:
		return 0, 128, 0 // green
	case aqi <= 100:
		return 192, 192, 0 // yellow
	case aqi <= 150:
		return 192, 128, 0 // orange
	case aqi <= 200:
		return 192, 0, 0 // red
	case aqi <= 300:
		return 128, 0, 128 // purple
	case aqi <= 500:
		return 128, 0, 0 // maroon
	default:
		return 0, 0, 0
	}
}
