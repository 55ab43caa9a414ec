package atmosphere

// Trend is a compact classification of barometric pressure direction and
// speed of change.
type Trend string

const (
	TrendSteady      Trend = "-"
	TrendRising      Trend = ">"
	TrendFalling     Trend = "<"
	TrendRisingFast  Trend = ">>"
	TrendFallingFast Trend = "<<"
)

const (
	// DefaultPressureWindow is the number of samples kept for regression.
	DefaultPressureWindow = 1000

	secondsPerHour = 3600

	// Regression fits with r² at or below this are not trusted for
	// reclassification.
	rSquaredThreshold = 0.5

	// hPa/hour boundaries for trend classification.
	changeThreshold     = 0.5
	fastChangeThreshold = 3.0
)

// TrendAnalyzer maintains a bounded window of (timestamp, pressure) samples
// and classifies the barometric trend from a least-squares fit over the
// window. The instance is the sole owner of its time series; the trend
// symbol is retained across calls and only reclassified on a good fit.
type TrendAnalyzer struct {
	capacity  int
	times     []float64
	pressures []float64
	trend     Trend
}

func NewTrendAnalyzer(capacity int) *TrendAnalyzer {
	if capacity <= 0 {
		capacity = DefaultPressureWindow
	}

	return &TrendAnalyzer{
		capacity:  capacity,
		times:     make([]float64, 0, capacity+1),
		pressures: make([]float64, 0, capacity+1),
		trend:     TrendSteady,
	}
}

// Analyse records one pressure sample and returns the window mean, the
// fitted pressure change per hour and the current trend symbol.
//
// Below capacity no regression is attempted: the sample is appended, the
// change rate is zero and the trend stays steady. Once the series exceeds
// capacity the window slides and a linear fit decides the trend, gated on
// goodness of fit.
func (a *TrendAnalyzer) Analyse(pressure, timestamp float64) (meanPressure, changePerHour float64, trend Trend) {
	if len(a.pressures) > a.capacity {
		copy(a.pressures, a.pressures[1:])
		a.pressures[len(a.pressures)-1] = pressure
		copy(a.times, a.times[1:])
		a.times[len(a.times)-1] = timestamp

		slope, intercept, ok := fitLine(a.times, a.pressures)
		changePerHour = slope * secondsPerHour

		if ok {
			variance := populationVariance(a.pressures)
			if variance > 0 {
				residuals := make([]float64, len(a.pressures))
				for i := range a.pressures {
					residuals[i] = slope*a.times[i] + intercept - a.pressures[i]
				}
				rSquared := 1 - populationVariance(residuals)/variance

				if rSquared > rSquaredThreshold {
					a.trend = classifyChange(changePerHour)
				}
			}
			// Zero variance means a constant series; the fit is
			// undefined and the previous trend is retained.
		}

		return mean(a.pressures), changePerHour, a.trend
	}

	a.pressures = append(a.pressures, pressure)
	a.times = append(a.times, timestamp)
	a.trend = TrendSteady

	return mean(a.pressures), 0, a.trend
}

// Trend returns the current trend symbol without recording a sample.
func (a *TrendAnalyzer) Trend() Trend {
	return a.trend
}

func classifyChange(changePerHour float64) Trend {
	trend := TrendSteady
	switch {
	case changePerHour > changeThreshold:
		trend = TrendRising
	case changePerHour < -changeThreshold:
		trend = TrendFalling
	}

	if trend != TrendSteady && abs(changePerHour) > fastChangeThreshold {
		trend += trend
	}

	return trend
}

// fitLine computes the least-squares line p = slope*t + intercept.
// ok is false when the timestamps are degenerate (all equal).
func fitLine(times, values []float64) (slope, intercept float64, ok bool) {
	n := float64(len(times))
	var sumT, sumV, sumTT, sumTV float64
	for i := range times {
		sumT += times[i]
		sumV += values[i]
		sumTT += times[i] * times[i]
		sumTV += times[i] * values[i]
	}

	denom := n*sumTT - sumT*sumT
	if denom == 0 {
		return 0, 0, false
	}

	slope = (n*sumTV - sumT*sumV) / denom
	intercept = (sumV - slope*sumT) / n

	return slope, intercept, true
}

func populationVariance(values []float64) float64 {
	m := mean(values)
	var sum float64
	for _, v := range values {
		d := v - m
		sum += d * d
	}

	return sum / float64(len(values))
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}

	return x
}

// DescribePressure converts pressure in hPa into a barometer-type
// description.
func DescribePressure(pressure float64) string {
	switch {
	case pressure < 970:
		return "storm"
	case pressure < 990:
		return "rain"
	case pressure < 1010:
		return "change"
	case pressure < 1030:
		return "good"
	default:
		return "dry"
	}
}
