package forecasting

import (
	"math"
	"math/rand/v2"

	"github.com/andresuchdata/autopo-sim/internal/domain"
)

type stubModel struct {
	pred  Prediction
	err   error
	panic bool
}

func (m stubModel) Name() string { return "Stub" }

func (m stubModel) Fit(series []float64, horizon int) (Prediction, error) {
	if m.panic {
		panic("boom")
	}
	return m.pred, m.err
}

func constant(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// noisyDemand returns a weekly-seasonal series around base with Gaussian noise.
func noisyDemand(seed uint64, n int, base float64) []float64 {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	out := make([]float64, n)
	for i := range out {
		v := base + 2*math.Sin(2*math.Pi*float64(i+1)/7) + 3*rng.NormFloat64()
		out[i] = math.Max(math.Round(v), 0)
	}
	return out
}

func stateWithHistory(values []float64) *domain.SystemState {
	state := domain.NewSystemState(domain.DefaultProduct())
	for i, v := range values {
		state.AppendDemand(domain.DemandRecord{Day: i + 1, ProductID: "A101", Demand: int(v)})
	}
	state.Day = len(values)
	return state
}
