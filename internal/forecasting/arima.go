package forecasting

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

const (
	minARIMAObservations = 6
	degenerateVariance   = 1e-10
)

// arimaFit is an ARIMA(1,1,1) without constant estimated by conditional sum of squares:
//
//	y[t] = x[t] - x[t-1]
//	y[t] = phi*y[t-1] + e[t] + theta*e[t-1]
type arimaFit struct {
	phi, theta float64
	sigma2     float64

	lastLevel float64
	diffs     []float64
	residuals []float64
}

func fitARIMA(series []float64, maxIterations int) (*arimaFit, error) {
	if len(series) < minARIMAObservations {
		return nil, fmt.Errorf("arima needs %d observations, got %d: %w",
			minARIMAObservations, len(series), ErrInsufficientData)
	}

	diffs := make([]float64, len(series)-1)
	for i := range diffs {
		diffs[i] = series[i+1] - series[i]
	}
	if v := stat.Variance(diffs, nil); math.IsNaN(v) || v < degenerateVariance {
		return nil, fmt.Errorf("arima: differenced series has no variance: %w", ErrDegenerateSeries)
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			phi, theta := math.Tanh(x[0]), math.Tanh(x[1])
			sse, _ := arimaResiduals(diffs, phi, theta)
			if math.IsNaN(sse) || math.IsInf(sse, 0) {
				return math.MaxFloat64
			}
			return sse
		},
	}
	settings := &optimize.Settings{
		MajorIterations: maxIterations,
		FuncEvaluations: maxIterations * 10,
	}

	result, err := optimize.Minimize(problem, []float64{0.1, 0.1}, settings, &optimize.NelderMead{})
	if err != nil {
		return nil, fmt.Errorf("arima: %v: %w", err, ErrFitFailed)
	}
	if result == nil || !allFinite(result.X) {
		return nil, fmt.Errorf("arima: optimizer returned no finite estimate: %w", ErrFitFailed)
	}

	fit := &arimaFit{
		phi:       math.Tanh(result.X[0]),
		theta:     math.Tanh(result.X[1]),
		lastLevel: series[len(series)-1],
		diffs:     diffs,
	}

	var sse float64
	sse, fit.residuals = arimaResiduals(diffs, fit.phi, fit.theta)
	fit.sigma2 = sse / float64(len(fit.residuals))
	if math.IsNaN(fit.sigma2) || math.IsInf(fit.sigma2, 0) {
		return nil, fmt.Errorf("arima: residual variance is not finite: %w", ErrFitFailed)
	}

	return fit, nil
}

// arimaResiduals runs the ARMA(1,1) recursion over y with e[0] conditioned to zero.
func arimaResiduals(y []float64, phi, theta float64) (float64, []float64) {
	residuals := make([]float64, 0, len(y)-1)
	var sse, prev float64
	for t := 1; t < len(y); t++ {
		e := y[t] - phi*y[t-1] - theta*prev
		residuals = append(residuals, e)
		sse += e * e
		prev = e
	}
	return sse, residuals
}

// forecast integrates the ARMA forecast of the differences back onto the last level.
func (f *arimaFit) forecast(horizon int) []float64 {
	out := make([]float64, horizon)

	level := f.lastLevel
	prevDiff := f.diffs[len(f.diffs)-1]
	prevResid := 0.0
	if n := len(f.residuals); n > 0 {
		prevResid = f.residuals[n-1]
	}

	for h := 0; h < horizon; h++ {
		step := f.phi * prevDiff
		if h == 0 {
			step += f.theta * prevResid
		}
		level += step
		out[h] = level
		prevDiff = step
	}
	return out
}

func allFinite(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
