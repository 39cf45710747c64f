package recommender

import (
	"math"

	"github.com/andresuchdata/autopo-sim/internal/domain"
)

const DefaultSafetyFactor = 0.3

// Options configures the reorder policy.
type Options struct {
	SafetyFactor float64 // safety stock as a fraction of lead-time demand
}

// DefaultOptions returns the standard reorder policy.
func DefaultOptions() Options {
	return Options{SafetyFactor: DefaultSafetyFactor}
}

// Recommender turns forecasts into advisory reorder quantities. It never
// changes stock or places orders.
type Recommender struct {
	opts Options
}

// New creates a recommender. A negative safety factor selects the default.
func New(opts Options) *Recommender {
	if opts.SafetyFactor < 0 || math.IsNaN(opts.SafetyFactor) {
		opts.SafetyFactor = DefaultSafetyFactor
	}
	return &Recommender{opts: opts}
}

// Options returns the effective configuration.
func (r *Recommender) Options() Options {
	return r.opts
}

// RecommendReorders writes an insight for every product that has a forecast.
// Products without a forecast are skipped.
func (r *Recommender) RecommendReorders(state *domain.SystemState) []domain.InventoryInsight {
	var insights []domain.InventoryInsight
	for _, id := range state.ProductIDs() {
		forecast, ok := state.Forecast(id)
		if !ok {
			continue
		}
		product, _ := state.Product(id)

		insight := r.Recommend(*product, forecast, state.Day)
		state.SetInsight(insight)
		insights = append(insights, insight)
	}
	return insights
}

// Recommend computes the insight for product given its forecast on day.
func (r *Recommender) Recommend(product domain.Product, forecast domain.DemandForecast, day int) domain.InventoryInsight {
	// 1. Expected demand over the lead time
	leadTime := max(product.LeadTime, 0)
	forecasted := forecast.PredictedDemand
	if leadTime < len(forecasted) {
		forecasted = forecasted[:leadTime]
	}

	var expectedDemandLT float64
	for _, d := range forecasted {
		expectedDemandLT += d
	}

	// 2. Safety stock and reorder point
	safetyStock := r.opts.SafetyFactor * expectedDemandLT
	reorderPoint := expectedDemandLT + safetyStock
	currentStock := float64(product.CurrentStock)

	// 3. Reorder quantity, respecting the minimum order
	recommendedQty := 0
	if currentStock < reorderPoint {
		recommendedQty = max(int(math.Floor(reorderPoint-currentStock)), product.MinOrderQty)
	}

	// 4. Stockout risk
	stockoutProbability := 0.0
	if expectedDemandLT > 0 {
		stockoutProbability = clamp(1-currentStock/expectedDemandLT, 0, 1)
	}

	// 5. Expected stockout day
	var expectedStockoutDay *int
	if recommendedQty > 0 && len(forecasted) > 0 {
		dailyAvg := expectedDemandLT / float64(len(forecasted))
		if dailyAvg > 0 {
			d := day + int(math.Floor(currentStock/dailyAvg))
			expectedStockoutDay = &d
		}
	}

	return domain.InventoryInsight{
		ProductID:           product.ID,
		StockoutProbability: stockoutProbability,
		ExpectedStockoutDay: expectedStockoutDay,
		RecommendedOrderQty: recommendedQty,
		RecommendedOrderDay: day,
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
