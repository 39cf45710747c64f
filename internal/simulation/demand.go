package simulation

import (
	"math"
	"math/rand/v2"

	"github.com/andresuchdata/autopo-sim/internal/domain"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	DefaultEventProbability = 0.008
	DefaultEventBoost       = 8.0

	weeklyPeriod = 7.0
)

// DemandSource yields the realized demand of a product on a given day.
type DemandSource interface {
	Demand(p *domain.Product, day int) int
}

// DemandOptions configures the demand shock process.
type DemandOptions struct {
	EventProbability float64 // chance per product-day of a demand shock
	EventBoost       float64 // upper bound of the additive shock intensity
}

// DefaultDemandOptions returns the stock shock parameters.
func DefaultDemandOptions() DemandOptions {
	return DemandOptions{
		EventProbability: DefaultEventProbability,
		EventBoost:       DefaultEventBoost,
	}
}

func (o DemandOptions) normalized() DemandOptions {
	o.EventProbability = math.Min(math.Max(o.EventProbability, 0), 1)
	if o.EventBoost < 0 || math.IsNaN(o.EventBoost) {
		o.EventBoost = 0
	}
	return o
}

// DemandGenerator draws Poisson demand around a trend + weekly seasonality
// intensity, with rare additive shocks. It is deterministic for a given seed.
type DemandGenerator struct {
	opts DemandOptions
	src  rand.Source
	rng  *rand.Rand
}

// NewDemandGenerator creates a generator seeded with seed.
func NewDemandGenerator(seed uint64, opts DemandOptions) *DemandGenerator {
	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	return &DemandGenerator{
		opts: opts.normalized(),
		src:  src,
		rng:  rand.New(src),
	}
}

// ExpectedDemand is the shock-free intensity λ(t) for p on day, clamped at zero.
func ExpectedDemand(p *domain.Product, day int) float64 {
	return math.Max(intensity(p, day), 0)
}

func intensity(p *domain.Product, day int) float64 {
	t := float64(day)
	return p.BaseDemand +
		p.TrendSlope*t +
		p.SeasonalityAmplitude*math.Sin(2*math.Pi*t/weeklyPeriod)
}

// Demand draws one day of demand for p.
func (g *DemandGenerator) Demand(p *domain.Product, day int) int {
	lambda := intensity(p, day)
	if g.rng.Float64() < g.opts.EventProbability {
		lambda += g.rng.Float64() * g.opts.EventBoost
	}

	lambda = math.Max(lambda, 0)
	if lambda == 0 || math.IsNaN(lambda) {
		return 0
	}

	poisson := distuv.Poisson{Lambda: lambda, Src: g.src}
	return int(poisson.Rand())
}
