package domain

// DemandRecord is the true, uncensored demand realized for a product on a day.
// It is recorded even when demand exceeds the stock on hand.
type DemandRecord struct {
	Day       int    `json:"day" db:"day"`
	ProductID string `json:"product_id" db:"product_id"`
	Demand    int    `json:"demand" db:"demand"`
}

// SalesRecord holds the units actually sold, min(demand, stock).
type SalesRecord struct {
	Day       int    `json:"day" db:"day"`
	ProductID string `json:"product_id" db:"product_id"`
	UnitsSold int    `json:"units_sold" db:"units_sold"`
}

// DailyForecastRecord freezes the next-day point forecast at the moment it was
// made so it can later be compared with the DemandRecord for the same day.
type DailyForecastRecord struct {
	Day            int     `json:"day" db:"day"`
	ProductID      string  `json:"product_id" db:"product_id"`
	ForecastForDay float64 `json:"forecast_for_day" db:"forecast_for_day"`
}

// PendingOrder is a replenishment order that has been placed but not yet received.
type PendingOrder struct {
	OrderID    int    `json:"order_id" db:"order_id"`
	ProductID  string `json:"product_id" db:"product_id"`
	Quantity   int    `json:"quantity" db:"quantity"`
	OrderDay   int    `json:"order_day" db:"order_day"`
	ArrivalDay int    `json:"arrival_day" db:"arrival_day"`
}
