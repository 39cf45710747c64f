package forecasting

import (
	"fmt"

	"github.com/andresuchdata/autopo-sim/internal/domain"
)

const defaultMaxIterations = 200

// ARIMAGARCH fits an ARIMA(1,1,1) for the mean and a GARCH(1,1) on its
// residuals for the variance.
type ARIMAGARCH struct {
	MaxIterations int
}

// NewARIMAGARCH returns the model with default optimizer limits.
func NewARIMAGARCH() *ARIMAGARCH {
	return &ARIMAGARCH{MaxIterations: defaultMaxIterations}
}

func (m *ARIMAGARCH) Name() string {
	return domain.ModelARIMAGARCH
}

// Fit estimates both stages on series and forecasts horizon steps ahead.
func (m *ARIMAGARCH) Fit(series []float64, horizon int) (Prediction, error) {
	iterations := m.MaxIterations
	if iterations <= 0 {
		iterations = defaultMaxIterations
	}

	mean, err := fitARIMA(series, iterations)
	if err != nil {
		return Prediction{}, fmt.Errorf("fit mean model: %w", err)
	}

	vol, err := fitGARCH(mean.residuals, iterations)
	if err != nil {
		return Prediction{}, fmt.Errorf("fit volatility model: %w", err)
	}

	pred := Prediction{
		Mean:     mean.forecast(horizon),
		Variance: vol.forecastVariance(horizon),
	}
	if !allFinite(pred.Mean) || !allFinite(pred.Variance) {
		return Prediction{}, fmt.Errorf("forecast is not finite: %w", ErrFitFailed)
	}

	return pred, nil
}

var _ Model = (*ARIMAGARCH)(nil)
