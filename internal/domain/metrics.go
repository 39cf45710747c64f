package domain

import "github.com/shopspring/decimal"

// Metrics are cumulative cost counters. All fields only ever grow.
type Metrics struct {
	TotalHoldingCost       decimal.Decimal `json:"total_holding_cost"`
	TotalStockoutCost      decimal.Decimal `json:"total_stockout_cost"`
	TotalUnderstockingCost decimal.Decimal `json:"total_understocking_cost"`
	StockoutDays           int             `json:"stockout_days"`
}

// RecordStockout charges unmet demand for p: stockout penalty plus lost revenue.
func (m *Metrics) RecordStockout(p *Product, unmet int) {
	if unmet <= 0 {
		return
	}
	units := decimal.NewFromInt(int64(unmet))
	m.StockoutDays++
	m.TotalStockoutCost = m.TotalStockoutCost.Add(units.Mul(p.StockoutCost))
	m.TotalUnderstockingCost = m.TotalUnderstockingCost.Add(units.Mul(p.Price))
}

// RecordHolding charges the end-of-day stock of p.
func (m *Metrics) RecordHolding(p *Product) {
	if p.CurrentStock <= 0 {
		return
	}
	m.TotalHoldingCost = m.TotalHoldingCost.Add(decimal.NewFromInt(int64(p.CurrentStock)).Mul(p.HoldingCost))
}

// TotalCost is holding plus stockout cost.
func (m Metrics) TotalCost() decimal.Decimal {
	return m.TotalHoldingCost.Add(m.TotalStockoutCost)
}
