package domain

// ProductStock is the read-only stock view of a product.
type ProductStock struct {
	ProductID    string `json:"product_id"`
	Name         string `json:"name"`
	CurrentStock int    `json:"current_stock"`
	LeadTime     int    `json:"lead_time"`
}

// StateSnapshot is the dashboard's top-level view of a session.
type StateSnapshot struct {
	SessionID     string             `json:"session_id"`
	Day           int                `json:"day"`
	Products      []ProductStock     `json:"products"`
	PendingOrders int                `json:"pending_orders"`
	Metrics       Metrics            `json:"metrics"`
	Insights      []InventoryInsight `json:"insights"`
}

// Snapshot copies the read-only views out of s.
func (s *SystemState) Snapshot() StateSnapshot {
	snap := StateSnapshot{
		Day:           s.Day,
		Products:      make([]ProductStock, 0, len(s.productOrder)),
		PendingOrders: len(s.pendingOrders),
		Metrics:       s.Metrics,
		Insights:      make([]InventoryInsight, 0, len(s.insights)),
	}
	for _, id := range s.productOrder {
		p := s.products[id]
		snap.Products = append(snap.Products, ProductStock{
			ProductID:    p.ID,
			Name:         p.Name,
			CurrentStock: p.CurrentStock,
			LeadTime:     p.LeadTime,
		})
		if in, ok := s.insights[id]; ok {
			snap.Insights = append(snap.Insights, in)
		}
	}
	return snap
}
