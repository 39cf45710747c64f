package simulation

import "github.com/andresuchdata/autopo-sim/internal/domain"

// PlaceOrder books a replenishment order arriving after the product's lead
// time. Non-positive quantities and unknown products are ignored.
func PlaceOrder(state *domain.SystemState, productID string, quantity int) (domain.PendingOrder, bool) {
	if quantity <= 0 {
		return domain.PendingOrder{}, false
	}

	product, ok := state.Product(productID)
	if !ok {
		return domain.PendingOrder{}, false
	}

	// Orders are received on day transitions, so an order can never arrive today.
	leadTime := max(product.LeadTime, 1)

	order := state.AddPendingOrder(productID, quantity, state.Day, state.Day+leadTime)
	return order, true
}

// PlaceRestockOrder is the manual restock entry point used by collaborators.
func PlaceRestockOrder(state *domain.SystemState, productID string, quantity int) (domain.PendingOrder, bool) {
	if quantity <= 0 {
		return domain.PendingOrder{}, false
	}
	return PlaceOrder(state, productID, quantity)
}
