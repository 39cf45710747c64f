package forecasting

import "errors"

var (
	// ErrInsufficientData is returned when a series is too short to fit.
	ErrInsufficientData = errors.New("forecasting: insufficient data")
	// ErrDegenerateSeries is returned for series without usable variation.
	ErrDegenerateSeries = errors.New("forecasting: degenerate series")
	// ErrFitFailed is returned when parameter estimation does not produce a usable model.
	ErrFitFailed = errors.New("forecasting: model fit failed")
)

// Prediction is a multi-step point forecast with a per-step variance estimate.
type Prediction struct {
	Mean     []float64
	Variance []float64
}

// Model fits a trend-aware point forecast with a variance estimate from a
// demand series. Implementations must be safe for concurrent use.
type Model interface {
	Name() string
	Fit(series []float64, horizon int) (Prediction, error)
}
