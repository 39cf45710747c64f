package forecasting

import (
	"fmt"
	"math"

	"github.com/andresuchdata/autopo-sim/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultHorizon = 7
	DefaultWindow  = 30
	DefaultWarmup  = 20
	DefaultWorkers = 4
)

// Options configures the forecasting engine.
type Options struct {
	Horizon int // forecast days
	Window  int // most recent demand observations considered
	Warmup  int // observations required before the statistical model is used
	Workers int // concurrent model fits
}

// DefaultOptions returns the standard configuration.
func DefaultOptions() Options {
	return Options{
		Horizon: DefaultHorizon,
		Window:  DefaultWindow,
		Warmup:  DefaultWarmup,
		Workers: DefaultWorkers,
	}
}

func (o Options) normalized() Options {
	if o.Horizon <= 0 {
		o.Horizon = DefaultHorizon
	}
	if o.Window <= 0 {
		o.Window = DefaultWindow
	}
	if o.Warmup < 0 {
		o.Warmup = DefaultWarmup
	}
	if o.Workers <= 0 {
		o.Workers = 1
	}
	return o
}

// Engine produces demand forecasts from the uncensored demand history.
type Engine struct {
	model Model
	opts  Options
}

// NewEngine creates an engine using model once enough history exists. A nil
// model selects ARIMA + GARCH.
func NewEngine(model Model, opts Options) *Engine {
	if model == nil {
		model = NewARIMAGARCH()
	}
	return &Engine{model: model, opts: opts.normalized()}
}

// Options returns the effective configuration.
func (e *Engine) Options() Options {
	return e.opts
}

// UpdateForecasts overwrites the current forecast of every product and logs
// each product's next-day point forecast. Models are fitted concurrently; the
// state is only written after all fits are done.
func (e *Engine) UpdateForecasts(state *domain.SystemState) []domain.DemandForecast {
	ids := state.ProductIDs()
	day := state.Day

	forecasts := make([]domain.DemandForecast, len(ids))

	var g errgroup.Group
	g.SetLimit(e.opts.Workers)
	for i, id := range ids {
		recent := state.RecentDemand(id, e.opts.Window)
		g.Go(func() error {
			forecasts[i] = e.Forecast(id, recent, day)
			return nil
		})
	}
	_ = g.Wait()

	for _, f := range forecasts {
		state.AppendDailyForecast(domain.DailyForecastRecord{
			Day:            day + 1,
			ProductID:      f.ProductID,
			ForecastForDay: f.PredictedDemand[0],
		})
		state.SetForecast(f)
	}

	return forecasts
}

// Forecast builds the forecast for one product from its recent true demand.
func (e *Engine) Forecast(productID string, recent []float64, day int) domain.DemandForecast {
	horizon := e.opts.Horizon

	f := domain.DemandForecast{
		ProductID:      productID,
		Horizon:        horizon,
		GeneratedOnDay: day,
	}

	if len(recent) < e.opts.Warmup {
		f.PredictedDemand = RollingMean(recent, horizon)
		f.ModelUsed = domain.ModelRollingMean
		return f
	}

	pred, err := e.fit(recent, horizon)
	if err != nil {
		log.Warn().
			Err(err).
			Str("product_id", productID).
			Int("day", day).
			Int("observations", len(recent)).
			Msg("forecast: model fit failed, using rolling mean")

		f.PredictedDemand = RollingMean(recent, horizon)
		f.ModelUsed = domain.ModelRollingMean
		f.Degraded = true
		return f
	}

	bands := &domain.ConfidenceBands{
		Lower: make([]float64, horizon),
		Upper: make([]float64, horizon),
	}
	for i, mean := range pred.Mean {
		sigma := math.Sqrt(math.Max(pred.Variance[i], 0))
		bands.Lower[i] = math.Max(mean-sigma, 0)
		bands.Upper[i] = mean + sigma
	}

	f.PredictedDemand = pred.Mean
	f.ModelUsed = e.model.Name()
	f.ConfidenceBands = bands
	return f
}

// fit calls the model and enforces the output contract. A panicking model is
// treated like one that failed to converge.
func (e *Engine) fit(series []float64, horizon int) (pred Prediction, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("model panicked: %v: %w", r, ErrFitFailed)
		}
	}()

	pred, err = e.model.Fit(series, horizon)
	if err != nil {
		return Prediction{}, err
	}
	if len(pred.Mean) != horizon || len(pred.Variance) != horizon {
		return Prediction{}, fmt.Errorf("model returned %d means and %d variances for horizon %d: %w",
			len(pred.Mean), len(pred.Variance), horizon, ErrFitFailed)
	}
	if !allFinite(pred.Mean) || !allFinite(pred.Variance) {
		return Prediction{}, fmt.Errorf("model returned non-finite values: %w", ErrFitFailed)
	}
	return pred, nil
}
