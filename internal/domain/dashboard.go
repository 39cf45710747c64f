package domain

import "github.com/shopspring/decimal"

// ProductDashboard is the per-product panel of the dashboard.
type ProductDashboard struct {
	ProductID    string            `json:"product_id"`
	Name         string            `json:"name"`
	CurrentStock int               `json:"current_stock"`
	Forecast     *DemandForecast   `json:"forecast,omitempty"`
	Insight      *InventoryInsight `json:"insight,omitempty"`
	Accuracy     AccuracyStats     `json:"accuracy"`
	LastDemand   *int              `json:"last_demand,omitempty"`
	LastSold     *int              `json:"last_sold,omitempty"`
}

// Dashboard aggregates everything the UI renders for a session on one day.
type Dashboard struct {
	SessionID     string             `json:"session_id"`
	Revision      uint64             `json:"revision"`
	Day           int                `json:"day"`
	Products      []ProductDashboard `json:"products"`
	PendingOrders []PendingOrder     `json:"pending_orders"`
	Metrics       Metrics            `json:"metrics"`
	TotalCost     decimal.Decimal    `json:"total_cost"`
}
