package forecasting

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// RollingMean forecasts every horizon day as the mean of values, or 0 without history.
func RollingMean(values []float64, horizon int) []float64 {
	mean := 0.0
	if len(values) > 0 {
		mean = math.Max(stat.Mean(values, nil), 0)
	}

	out := make([]float64, horizon)
	for i := range out {
		out[i] = mean
	}
	return out
}
