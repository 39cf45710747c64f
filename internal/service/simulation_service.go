package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/andresuchdata/autopo-sim/internal/cache"
	"github.com/andresuchdata/autopo-sim/internal/domain"
	"github.com/andresuchdata/autopo-sim/internal/forecasting"
	"github.com/andresuchdata/autopo-sim/internal/pipeline"
	"github.com/andresuchdata/autopo-sim/internal/repository"
	"github.com/andresuchdata/autopo-sim/internal/simulation"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrUnknownProduct  = errors.New("unknown product")
	ErrInvalidQuantity = errors.New("order quantity must be positive")
	ErrNoForecast      = errors.New("no forecast available yet")
	ErrNoInsight       = errors.New("no insight available yet")
)

// ProductHistory is the per-product slice of the three daily logs.
type ProductHistory struct {
	ProductID string                       `json:"product_id"`
	Demand    []domain.DemandRecord        `json:"demand"`
	Sales     []domain.SalesRecord         `json:"sales"`
	Forecasts []domain.DailyForecastRecord `json:"forecasts"`
}

// ProductAccuracy pairs the accuracy statistics with the points they cover.
type ProductAccuracy struct {
	Stats  domain.AccuracyStats   `json:"stats"`
	Points []domain.AccuracyPoint `json:"points"`
}

// SimulationService owns one simulation session. Every mutation holds the
// write lock for its whole duration, so readers never observe a half-applied
// day. Exports to the history sink and cache run after the lock is released.
type SimulationService struct {
	mu           sync.RWMutex
	sessionID    string
	revision     uint64
	state        *domain.SystemState
	orchestrator *pipeline.Orchestrator
	history      repository.HistoryRepository
	cache        cache.DashboardCache
}

func NewSimulationService(state *domain.SystemState, orchestrator *pipeline.Orchestrator, history repository.HistoryRepository, cacheImpl cache.DashboardCache) *SimulationService {
	if history == nil {
		history = repository.NewNoopHistoryRepository()
	}
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopDashboardCache()
	}
	return &SimulationService{
		sessionID:    uuid.NewString(),
		state:        state,
		orchestrator: orchestrator,
		history:      history,
		cache:        cacheImpl,
	}
}

func (s *SimulationService) SessionID() string {
	return s.sessionID
}

// Revision counts committed mutations of the session.
func (s *SimulationService) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// AdvanceDay runs one full daily cycle and exports the new day.
func (s *SimulationService) AdvanceDay(ctx context.Context) pipeline.CycleResult {
	s.mu.Lock()
	result := s.orchestrator.AdvanceOneDayFullCycle(s.state)
	s.revision++
	records := s.dayRecordsLocked(result)
	s.mu.Unlock()

	if err := s.history.SaveDay(ctx, records); err != nil {
		log.Warn().Err(err).Str("session_id", s.sessionID).Int("day", result.Day).Msg("simulation: history export failed")
	}
	s.invalidate(ctx)

	return result
}

// PlaceRestockOrder books a manual order for productID.
func (s *SimulationService) PlaceRestockOrder(ctx context.Context, productID string, quantity int) (domain.PendingOrder, error) {
	if quantity <= 0 {
		return domain.PendingOrder{}, ErrInvalidQuantity
	}

	s.mu.Lock()
	order, ok := simulation.PlaceRestockOrder(s.state, productID, quantity)
	if ok {
		s.revision++
	}
	s.mu.Unlock()

	if !ok {
		return domain.PendingOrder{}, fmt.Errorf("%w: %s", ErrUnknownProduct, productID)
	}

	log.Info().
		Int("order_id", order.OrderID).
		Str("product_id", productID).
		Int("quantity", quantity).
		Int("arrival_day", order.ArrivalDay).
		Msg("simulation: restock order placed")

	s.invalidate(ctx)
	return order, nil
}

// PlaceRecommendedOrders follows the current insights: every product with a
// positive recommendation and nothing already in flight gets an order.
func (s *SimulationService) PlaceRecommendedOrders(ctx context.Context) []domain.PendingOrder {
	s.mu.Lock()
	inFlight := make(map[string]bool)
	for _, o := range s.state.PendingOrders() {
		inFlight[o.ProductID] = true
	}

	var placed []domain.PendingOrder
	for _, id := range s.state.ProductIDs() {
		insight, ok := s.state.Insight(id)
		if !ok || insight.RecommendedOrderQty <= 0 || inFlight[id] {
			continue
		}
		if order, ok := simulation.PlaceRestockOrder(s.state, id, insight.RecommendedOrderQty); ok {
			placed = append(placed, order)
		}
	}
	if len(placed) > 0 {
		s.revision++
	}
	s.mu.Unlock()

	if len(placed) > 0 {
		s.invalidate(ctx)
	}
	return placed
}

func (s *SimulationService) Snapshot() domain.StateSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.state.Snapshot()
	snap.SessionID = s.sessionID
	return snap
}

func (s *SimulationService) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Products()
}

func (s *SimulationService) PendingOrders() []domain.PendingOrder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.PendingOrders()
}

func (s *SimulationService) Forecast(productID string) (domain.DemandForecast, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.state.Product(productID); !ok {
		return domain.DemandForecast{}, fmt.Errorf("%w: %s", ErrUnknownProduct, productID)
	}
	f, ok := s.state.Forecast(productID)
	if !ok {
		return domain.DemandForecast{}, ErrNoForecast
	}
	return f, nil
}

func (s *SimulationService) Insight(productID string) (domain.InventoryInsight, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.state.Product(productID); !ok {
		return domain.InventoryInsight{}, fmt.Errorf("%w: %s", ErrUnknownProduct, productID)
	}
	in, ok := s.state.Insight(productID)
	if !ok {
		return domain.InventoryInsight{}, ErrNoInsight
	}
	return in, nil
}

func (s *SimulationService) History(productID string) (ProductHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.state.Product(productID); !ok {
		return ProductHistory{}, fmt.Errorf("%w: %s", ErrUnknownProduct, productID)
	}

	h := ProductHistory{
		ProductID: productID,
		Demand:    make([]domain.DemandRecord, 0),
		Sales:     make([]domain.SalesRecord, 0),
		Forecasts: make([]domain.DailyForecastRecord, 0),
	}
	for _, r := range s.state.DemandHistory() {
		if r.ProductID == productID {
			h.Demand = append(h.Demand, r)
		}
	}
	for _, r := range s.state.SalesHistory() {
		if r.ProductID == productID {
			h.Sales = append(h.Sales, r)
		}
	}
	for _, r := range s.state.ForecastHistory() {
		if r.ProductID == productID {
			h.Forecasts = append(h.Forecasts, r)
		}
	}
	return h, nil
}

func (s *SimulationService) Accuracy(productID string) (ProductAccuracy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.state.Product(productID); !ok {
		return ProductAccuracy{}, fmt.Errorf("%w: %s", ErrUnknownProduct, productID)
	}
	return s.accuracyLocked(productID), nil
}

// Dashboard returns the aggregated view, served from cache when the session
// has not changed since it was rendered.
func (s *SimulationService) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	revision := s.Revision()
	if dashboard, ok, err := s.cache.GetDashboard(ctx, s.sessionID, revision); err == nil && ok {
		return dashboard, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("simulation: cache get dashboard failed")
	}

	dashboard := s.buildDashboard()

	if err := s.cache.SetDashboard(ctx, dashboard); err != nil {
		log.Warn().Err(err).Msg("simulation: cache set dashboard failed")
	}

	return dashboard, nil
}

// WithState gives fn read access to the state under the read lock. fn must
// not retain state.
func (s *SimulationService) WithState(fn func(state *domain.SystemState)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.state)
}

func (s *SimulationService) buildDashboard() *domain.Dashboard {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lastDemand := make(map[string]int)
	for _, r := range s.state.DemandHistory() {
		if r.Day == s.state.Day {
			lastDemand[r.ProductID] = r.Demand
		}
	}
	lastSold := make(map[string]int)
	for _, r := range s.state.SalesHistory() {
		if r.Day == s.state.Day {
			lastSold[r.ProductID] = r.UnitsSold
		}
	}

	products := make([]domain.ProductDashboard, 0)
	for _, p := range s.state.Products() {
		panel := domain.ProductDashboard{
			ProductID:    p.ID,
			Name:         p.Name,
			CurrentStock: p.CurrentStock,
			Accuracy:     s.accuracyLocked(p.ID).Stats,
		}
		if f, ok := s.state.Forecast(p.ID); ok {
			panel.Forecast = &f
		}
		if in, ok := s.state.Insight(p.ID); ok {
			panel.Insight = &in
		}
		if d, ok := lastDemand[p.ID]; ok {
			panel.LastDemand = &d
		}
		if sold, ok := lastSold[p.ID]; ok {
			panel.LastSold = &sold
		}
		products = append(products, panel)
	}

	return &domain.Dashboard{
		SessionID:     s.sessionID,
		Revision:      s.revision,
		Day:           s.state.Day,
		Products:      products,
		PendingOrders: s.state.PendingOrders(),
		Metrics:       s.state.Metrics,
		TotalCost:     s.state.Metrics.TotalCost(),
	}
}

func (s *SimulationService) accuracyLocked(productID string) ProductAccuracy {
	points := forecasting.AccuracySeries(s.state.DemandHistory(), s.state.ForecastHistory(), productID)
	return ProductAccuracy{
		Stats:  forecasting.Accuracy(productID, points),
		Points: points,
	}
}

func (s *SimulationService) dayRecordsLocked(result pipeline.CycleResult) repository.DayRecords {
	records := repository.DayRecords{
		SessionID: s.sessionID,
		Day:       result.Day,
		Insights:  result.Insights,
		Metrics:   s.state.Metrics,
	}
	for _, r := range s.state.DemandHistory() {
		if r.Day == result.Day {
			records.Demand = append(records.Demand, r)
		}
	}
	for _, r := range s.state.SalesHistory() {
		if r.Day == result.Day {
			records.Sales = append(records.Sales, r)
		}
	}
	for _, r := range s.state.ForecastHistory() {
		if r.Day == result.Day {
			records.Forecasts = append(records.Forecasts, r)
		}
	}
	return records
}

func (s *SimulationService) invalidate(ctx context.Context) {
	if err := s.cache.InvalidateSession(ctx, s.sessionID); err != nil {
		log.Warn().Err(err).Str("session_id", s.sessionID).Msg("simulation: cache invalidate failed")
	}
}
