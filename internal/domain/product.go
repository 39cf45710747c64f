// backend-go/internal/domain/product.go
package domain

import "github.com/shopspring/decimal"

// Product represents a single simulated SKU together with its demand process
// parameters, supplier terms and cost structure.
type Product struct {
	ID    string          `json:"id" db:"product_id"`
	Name  string          `json:"name" db:"name"`
	Price decimal.Decimal `json:"price" db:"price"`

	// Inventory
	CurrentStock int `json:"current_stock" db:"current_stock"`

	// Demand generation parameters
	BaseDemand           float64 `json:"base_demand" db:"base_demand"`
	TrendSlope           float64 `json:"trend_slope" db:"trend_slope"`
	SeasonalityAmplitude float64 `json:"seasonality_amplitude" db:"seasonality_amplitude"`

	// Supplier terms
	LeadTime    int `json:"lead_time" db:"lead_time"`
	MinOrderQty int `json:"min_order_qty" db:"min_order_qty"`

	// Per-unit, per-day costs
	HoldingCost  decimal.Decimal `json:"holding_cost" db:"holding_cost"`
	StockoutCost decimal.Decimal `json:"stockout_cost" db:"stockout_cost"`
}

// DefaultProduct returns the product a fresh session starts with.
func DefaultProduct() Product {
	return Product{
		ID:                   "A101",
		Name:                 "Milk",
		Price:                decimal.NewFromInt(30),
		CurrentStock:         50,
		BaseDemand:           12,
		TrendSlope:           0.01,
		SeasonalityAmplitude: 2,
		LeadTime:             3,
		MinOrderQty:          50,
		HoldingCost:          decimal.NewFromInt(2),
		StockoutCost:         decimal.NewFromInt(10),
	}
}
