package simulation

import (
	"fmt"

	"github.com/andresuchdata/autopo-sim/internal/domain"
)

// DayOutcome summarizes what happened during one engine transition.
type DayOutcome struct {
	Day       int
	Delivered []domain.PendingOrder
}

// Engine advances a SystemState by whole days.
type Engine struct {
	demand DemandSource
}

// NewEngine creates an engine drawing demand from demand.
func NewEngine(demand DemandSource) *Engine {
	return &Engine{demand: demand}
}

// AdvanceOneDay moves state forward exactly one day: it realizes demand and
// sales for every product, charges costs on end-of-day stock and then receives
// the orders arriving on the new day.
func (e *Engine) AdvanceOneDay(state *domain.SystemState) DayOutcome {
	// 1. Advance the clock
	state.Day++
	today := state.Day

	// 2. Realize demand and update inventory
	for _, id := range state.ProductIDs() {
		product, _ := state.Product(id)

		demand := e.demand.Demand(product, today)
		if demand < 0 {
			demand = 0
		}
		state.AppendDemand(domain.DemandRecord{
			Day:       today,
			ProductID: id,
			Demand:    demand,
		})

		sold := min(demand, product.CurrentStock)
		unmet := demand - sold
		product.CurrentStock -= sold

		state.AppendSale(domain.SalesRecord{
			Day:       today,
			ProductID: id,
			UnitsSold: sold,
		})

		state.Metrics.RecordStockout(product, unmet)
		state.Metrics.RecordHolding(product)
	}

	// 3. Receive arriving orders
	delivered := state.TakeDueOrders(today)
	for _, order := range delivered {
		product, ok := state.Product(order.ProductID)
		if !ok {
			panic(fmt.Sprintf("simulation: pending order %d references unknown product %q", order.OrderID, order.ProductID))
		}
		product.CurrentStock += order.Quantity
	}

	return DayOutcome{Day: today, Delivered: delivered}
}
