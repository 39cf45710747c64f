package simulation

import (
	"github.com/andresuchdata/autopo-sim/internal/domain"
	"github.com/shopspring/decimal"
)

// scriptedDemand replays a fixed demand sequence per product, then zeros.
type scriptedDemand map[string][]int

func (s scriptedDemand) Demand(p *domain.Product, day int) int {
	seq := s[p.ID]
	if day-1 < len(seq) {
		return seq[day-1]
	}
	return 0
}

func testProduct(stock int) domain.Product {
	return domain.Product{
		ID:           "A101",
		Name:         "Milk",
		Price:        decimal.NewFromInt(30),
		CurrentStock: stock,
		BaseDemand:   12,
		LeadTime:     3,
		MinOrderQty:  50,
		HoldingCost:  decimal.NewFromInt(2),
		StockoutCost: decimal.NewFromInt(10),
	}
}
