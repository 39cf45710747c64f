package domain

// SystemState aggregates everything a simulation session mutates. It is owned by
// exactly one writer at a time; callers that share it across goroutines must
// serialize access themselves.
type SystemState struct {
	Day     int
	Metrics Metrics

	products     map[string]*Product
	productOrder []string

	pendingOrders []PendingOrder
	nextOrderID   int

	demandHistory   []DemandRecord
	salesHistory    []SalesRecord
	forecastHistory []DailyForecastRecord

	forecasts map[string]DemandForecast
	insights  map[string]InventoryInsight
}

// NewSystemState creates an empty state on day 0 holding the given products.
func NewSystemState(products ...Product) *SystemState {
	s := &SystemState{
		products:  make(map[string]*Product),
		forecasts: make(map[string]DemandForecast),
		insights:  make(map[string]InventoryInsight),
	}
	for _, p := range products {
		s.AddProduct(p)
	}
	return s
}

// AddProduct registers p, replacing any product with the same id.
func (s *SystemState) AddProduct(p Product) {
	if _, ok := s.products[p.ID]; !ok {
		s.productOrder = append(s.productOrder, p.ID)
	}
	cp := p
	s.products[p.ID] = &cp
}

// ProductIDs returns product ids in registration order.
func (s *SystemState) ProductIDs() []string {
	return append([]string(nil), s.productOrder...)
}

// Product looks up a product by id. The returned pointer is live state.
func (s *SystemState) Product(id string) (*Product, bool) {
	p, ok := s.products[id]
	return p, ok
}

// Products returns copies of all products in registration order.
func (s *SystemState) Products() []Product {
	out := make([]Product, 0, len(s.productOrder))
	for _, id := range s.productOrder {
		out = append(out, *s.products[id])
	}
	return out
}

// AddPendingOrder appends a new order and assigns it the next order id.
func (s *SystemState) AddPendingOrder(productID string, quantity, orderDay, arrivalDay int) PendingOrder {
	s.nextOrderID++
	o := PendingOrder{
		OrderID:    s.nextOrderID,
		ProductID:  productID,
		Quantity:   quantity,
		OrderDay:   orderDay,
		ArrivalDay: arrivalDay,
	}
	s.pendingOrders = append(s.pendingOrders, o)
	return o
}

// TakeDueOrders removes and returns, in placement order, every pending order
// arriving on day.
func (s *SystemState) TakeDueOrders(day int) []PendingOrder {
	var due []PendingOrder
	kept := s.pendingOrders[:0]
	for _, o := range s.pendingOrders {
		if o.ArrivalDay == day {
			due = append(due, o)
			continue
		}
		kept = append(kept, o)
	}
	s.pendingOrders = kept
	return due
}

// PendingOrders returns a copy of the outstanding orders.
func (s *SystemState) PendingOrders() []PendingOrder {
	return append([]PendingOrder(nil), s.pendingOrders...)
}

// PendingOrderCount returns the number of outstanding orders.
func (s *SystemState) PendingOrderCount() int {
	return len(s.pendingOrders)
}

func (s *SystemState) AppendDemand(r DemandRecord) {
	s.demandHistory = append(s.demandHistory, r)
}

func (s *SystemState) AppendSale(r SalesRecord) {
	s.salesHistory = append(s.salesHistory, r)
}

func (s *SystemState) AppendDailyForecast(r DailyForecastRecord) {
	s.forecastHistory = append(s.forecastHistory, r)
}

// DemandHistory returns a copy of the demand log.
func (s *SystemState) DemandHistory() []DemandRecord {
	return append([]DemandRecord(nil), s.demandHistory...)
}

// SalesHistory returns a copy of the sales log.
func (s *SystemState) SalesHistory() []SalesRecord {
	return append([]SalesRecord(nil), s.salesHistory...)
}

// ForecastHistory returns a copy of the daily forecast log.
func (s *SystemState) ForecastHistory() []DailyForecastRecord {
	return append([]DailyForecastRecord(nil), s.forecastHistory...)
}

// RecentDemand returns up to the last window demand values for productID,
// oldest first.
func (s *SystemState) RecentDemand(productID string, window int) []float64 {
	var values []float64
	for _, r := range s.demandHistory {
		if r.ProductID == productID {
			values = append(values, float64(r.Demand))
		}
	}
	if window >= 0 && len(values) > window {
		values = values[len(values)-window:]
	}
	return values
}

// SetForecast overwrites the current forecast for the forecast's product.
func (s *SystemState) SetForecast(f DemandForecast) {
	s.forecasts[f.ProductID] = f
}

// Forecast returns the current forecast for productID, if one has been made.
func (s *SystemState) Forecast(productID string) (DemandForecast, bool) {
	f, ok := s.forecasts[productID]
	return f, ok
}

// SetInsight overwrites the current insight for the insight's product.
func (s *SystemState) SetInsight(in InventoryInsight) {
	s.insights[in.ProductID] = in
}

// Insight returns the latest recommendation for productID, if any.
func (s *SystemState) Insight(productID string) (InventoryInsight, bool) {
	in, ok := s.insights[productID]
	return in, ok
}
