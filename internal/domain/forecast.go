package domain

// Forecast model labels
const (
	ModelRollingMean = "Rolling Mean"
	ModelARIMAGARCH  = "ARIMA + GARCH"
)

// ConfidenceBands are per-day lower/upper bounds around a forecast mean.
type ConfidenceBands struct {
	Lower []float64 `json:"lower"`
	Upper []float64 `json:"upper"`
}

// DemandForecast is the current multi-day forecast for a product. PredictedDemand[0]
// is the forecast for GeneratedOnDay+1.
type DemandForecast struct {
	ProductID       string           `json:"product_id"`
	Horizon         int              `json:"horizon"`
	PredictedDemand []float64        `json:"predicted_demand"`
	GeneratedOnDay  int              `json:"generated_on_day"`
	ModelUsed       string           `json:"model_used"`
	ConfidenceBands *ConfidenceBands `json:"confidence_bands,omitempty"`

	// Degraded is set when the statistical model was due but failed to fit and
	// the rolling mean was used instead.
	Degraded bool `json:"degraded"`
}

// Days returns the simulation day each predicted value refers to.
func (f DemandForecast) Days() []int {
	days := make([]int, len(f.PredictedDemand))
	for i := range days {
		days[i] = f.GeneratedOnDay + 1 + i
	}
	return days
}

// InventoryInsight is the advisory output of the reorder recommender.
type InventoryInsight struct {
	ProductID           string  `json:"product_id" db:"product_id"`
	StockoutProbability float64 `json:"stockout_probability" db:"stockout_probability"`
	ExpectedStockoutDay *int    `json:"expected_stockout_day" db:"expected_stockout_day"`
	RecommendedOrderQty int     `json:"recommended_order_qty" db:"recommended_order_qty"`
	RecommendedOrderDay int     `json:"recommended_order_day" db:"recommended_order_day"`
}
