package domain

// AccuracyPoint pairs the demand realized on a day with the forecast frozen for it.
type AccuracyPoint struct {
	Day      int     `json:"day"`
	Actual   int     `json:"actual"`
	Forecast float64 `json:"forecast"`
}

// AccuracyStats summarizes next-day forecast error for a product.
type AccuracyStats struct {
	ProductID string  `json:"product_id"`
	Count     int     `json:"count"`
	MAE       float64 `json:"mae"`
	RMSE      float64 `json:"rmse"`
	MAPE      float64 `json:"mape"` // percent, over days with non-zero demand
	Bias      float64 `json:"bias"` // mean(forecast - actual)
}
