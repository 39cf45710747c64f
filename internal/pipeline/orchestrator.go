package pipeline

import (
	"time"

	"github.com/andresuchdata/autopo-sim/internal/config"
	"github.com/andresuchdata/autopo-sim/internal/domain"
	"github.com/andresuchdata/autopo-sim/internal/forecasting"
	"github.com/andresuchdata/autopo-sim/internal/recommender"
	"github.com/andresuchdata/autopo-sim/internal/simulation"
	"github.com/rs/zerolog/log"
)

// Options bundles the configuration of every stage of the daily cycle.
type Options struct {
	Seed        uint64
	Demand      simulation.DemandOptions
	Forecasting forecasting.Options
	Recommender recommender.Options
}

// DefaultOptions returns the standard configuration with the given seed.
func DefaultOptions(seed uint64) Options {
	return Options{
		Seed:        seed,
		Demand:      simulation.DefaultDemandOptions(),
		Forecasting: forecasting.DefaultOptions(),
		Recommender: recommender.DefaultOptions(),
	}
}

// OptionsFromConfig maps the configuration surface onto the stage options.
// A zero seed is replaced by one derived from the clock.
func OptionsFromConfig(cfg config.SimulationConfig) Options {
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return Options{
		Seed: seed,
		Demand: simulation.DemandOptions{
			EventProbability: cfg.EventProbability,
			EventBoost:       cfg.EventBoost,
		},
		Forecasting: forecasting.Options{
			Horizon: cfg.Horizon,
			Window:  cfg.Window,
			Warmup:  cfg.Warmup,
			Workers: cfg.FitWorkers,
		},
		Recommender: recommender.Options{SafetyFactor: cfg.SafetyFactor},
	}
}

// CycleResult reports what one full daily cycle produced.
type CycleResult struct {
	Day       int
	Delivered []domain.PendingOrder
	Forecasts []domain.DemandForecast
	Insights  []domain.InventoryInsight
}

// Orchestrator runs engine, forecasting and recommender as one unit.
type Orchestrator struct {
	engine      *simulation.Engine
	forecaster  *forecasting.Engine
	recommender *recommender.Recommender
}

// NewOrchestrator wires the three stages together.
func NewOrchestrator(engine *simulation.Engine, forecaster *forecasting.Engine, rec *recommender.Recommender) *Orchestrator {
	return &Orchestrator{
		engine:      engine,
		forecaster:  forecaster,
		recommender: rec,
	}
}

// New builds an orchestrator with a seeded demand generator and the
// ARIMA + GARCH model.
func New(opts Options) *Orchestrator {
	return NewOrchestrator(
		simulation.NewEngine(simulation.NewDemandGenerator(opts.Seed, opts.Demand)),
		forecasting.NewEngine(forecasting.NewARIMAGARCH(), opts.Forecasting),
		recommender.New(opts.Recommender),
	)
}

// AdvanceOneDayFullCycle advances the simulation one day, refreshes every
// forecast from the new history and recomputes the recommendations. The
// caller must hold exclusive access to state for the whole call.
func (o *Orchestrator) AdvanceOneDayFullCycle(state *domain.SystemState) CycleResult {
	outcome := o.engine.AdvanceOneDay(state)
	forecasts := o.forecaster.UpdateForecasts(state)
	insights := o.recommender.RecommendReorders(state)

	log.Debug().
		Int("day", outcome.Day).
		Int("delivered", len(outcome.Delivered)).
		Int("pending", state.PendingOrderCount()).
		Str("holding_cost", state.Metrics.TotalHoldingCost.String()).
		Str("stockout_cost", state.Metrics.TotalStockoutCost.String()).
		Msg("daily cycle completed")

	return CycleResult{
		Day:       outcome.Day,
		Delivered: outcome.Delivered,
		Forecasts: forecasts,
		Insights:  insights,
	}
}
