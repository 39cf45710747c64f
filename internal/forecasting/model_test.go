package forecasting

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRollingMean(t *testing.T) {
	assert.Equal(t, []float64{2, 2, 2}, RollingMean([]float64{1, 2, 3}, 3))
	assert.Equal(t, []float64{0, 0}, RollingMean(nil, 2))
}

func TestARIMAGARCH_Fit(t *testing.T) {
	pred, err := NewARIMAGARCH().Fit(noisyDemand(21, 30, 15), 7)
	require.NoError(t, err)
	require.Len(t, pred.Mean, 7)
	require.Len(t, pred.Variance, 7)
	for i := range pred.Mean {
		assert.False(t, math.IsNaN(pred.Mean[i]))
		assert.Greater(t, pred.Variance[i], 0.0)
	}
}

func TestARIMAGARCH_DegenerateSeries(t *testing.T) {
	_, err := NewARIMAGARCH().Fit(constant(4, 30), 7)
	assert.True(t, errors.Is(err, ErrDegenerateSeries), "got %v", err)

	_, err = NewARIMAGARCH().Fit([]float64{1, 2, 4}, 7)
	assert.True(t, errors.Is(err, ErrInsufficientData), "got %v", err)
}

func TestFitARIMA_RecoversAR(t *testing.T) {
	rng := rand.New(rand.NewPCG(8, 9))
	const phi = 0.6

	series := make([]float64, 400)
	level, diff := 100.0, 0.0
	for i := range series {
		diff = phi*diff + rng.NormFloat64()
		level += diff
		series[i] = level
	}

	fit, err := fitARIMA(series, 500)
	require.NoError(t, err)
	assert.InDelta(t, phi, fit.phi, 0.25)
	assert.Len(t, fit.residuals, len(series)-2)

	// the forecast continues from the last level
	next := fit.forecast(1)[0]
	assert.InDelta(t, series[len(series)-1], next, 10)
}

func TestGARCHForecast_MeanReverts(t *testing.T) {
	fit := &garchFit{omega: 0.5, alpha: 0.1, beta: 0.8, lastShock: 4, lastVar: 9}
	uncond := fit.omega / (1 - fit.alpha - fit.beta)

	out := fit.forecastVariance(30)
	require.Len(t, out, 30)
	assert.InDelta(t, 0.5+0.1*16+0.8*9, out[0], 1e-12)
	for h := 1; h < len(out); h++ {
		assert.LessOrEqual(t, math.Abs(out[h]-uncond), math.Abs(out[h-1]-uncond)+1e-12)
	}
}

func TestGARCHParams_Constrained(t *testing.T) {
	for _, x := range [][]float64{{0, 0, 0}, {50, 50, 50}, {-50, -50, 50}, {3, 40, -40}} {
		omega, alpha, beta := garchParams(x, 2)
		assert.Greater(t, omega, 0.0)
		assert.GreaterOrEqual(t, alpha, 0.0)
		assert.GreaterOrEqual(t, beta, 0.0)
		assert.Less(t, alpha+beta, 1.0)
	}
}
