package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/andresuchdata/autopo-sim/internal/domain"
	"github.com/andresuchdata/autopo-sim/internal/forecasting"
	"github.com/andresuchdata/autopo-sim/internal/pipeline"
	"github.com/andresuchdata/autopo-sim/internal/recommender"
	"github.com/andresuchdata/autopo-sim/internal/repository"
	"github.com/andresuchdata/autopo-sim/internal/simulation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedDemand int

func (d fixedDemand) Demand(*domain.Product, int) int { return int(d) }

type recordingHistory struct {
	mu   sync.Mutex
	days []repository.DayRecords
	err  error
}

func (r *recordingHistory) EnsureSchema(context.Context) error { return nil }

func (r *recordingHistory) SaveDay(_ context.Context, records repository.DayRecords) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.days = append(r.days, records)
	return r.err
}

type memoryCache struct {
	mu          sync.Mutex
	entries     map[string]*domain.Dashboard
	gets        int
	hits        int
	invalidated int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]*domain.Dashboard)}
}

func cacheKey(sessionID string, revision uint64) string {
	return fmt.Sprintf("%s:%d", sessionID, revision)
}

func (c *memoryCache) GetDashboard(_ context.Context, sessionID string, revision uint64) (*domain.Dashboard, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	d, ok := c.entries[cacheKey(sessionID, revision)]
	if ok {
		c.hits++
	}
	return d, ok, nil
}

func (c *memoryCache) SetDashboard(_ context.Context, d *domain.Dashboard) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(d.SessionID, d.Revision)] = d
	return nil
}

func (c *memoryCache) InvalidateSession(context.Context, string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated++
	c.entries = make(map[string]*domain.Dashboard)
	return nil
}

func newTestService(demand int, history repository.HistoryRepository, c *memoryCache) *SimulationService {
	state := domain.NewSystemState(domain.DefaultProduct())
	orch := pipeline.NewOrchestrator(
		simulation.NewEngine(fixedDemand(demand)),
		forecasting.NewEngine(nil, forecasting.DefaultOptions()),
		recommender.New(recommender.DefaultOptions()),
	)
	if c == nil {
		return NewSimulationService(state, orch, history, nil)
	}
	return NewSimulationService(state, orch, history, c)
}

func TestAdvanceDay_ExportsDayRecords(t *testing.T) {
	history := &recordingHistory{}
	svc := newTestService(10, history, nil)

	result := svc.AdvanceDay(context.Background())
	assert.Equal(t, 1, result.Day)

	require.Len(t, history.days, 1)
	day := history.days[0]
	assert.Equal(t, svc.SessionID(), day.SessionID)
	assert.Equal(t, 1, day.Day)
	require.Len(t, day.Demand, 1)
	assert.Equal(t, 10, day.Demand[0].Demand)
	require.Len(t, day.Sales, 1)
	assert.Equal(t, 10, day.Sales[0].UnitsSold)
	// The first forecast targets day 2, so nothing is frozen for day 1 yet.
	assert.Empty(t, day.Forecasts)
	require.Len(t, day.Insights, 1)

	svc.AdvanceDay(context.Background())
	require.Len(t, history.days, 2)
	require.Len(t, history.days[1].Forecasts, 1)
	assert.Equal(t, 2, history.days[1].Forecasts[0].Day)
}

func TestAdvanceDay_HistoryFailureDoesNotBlock(t *testing.T) {
	history := &recordingHistory{err: errors.New("db down")}
	svc := newTestService(10, history, nil)

	svc.AdvanceDay(context.Background())
	svc.AdvanceDay(context.Background())

	assert.Equal(t, 2, svc.Snapshot().Day)
	assert.Equal(t, uint64(2), svc.Revision())
}

func TestPlaceRestockOrder(t *testing.T) {
	svc := newTestService(10, nil, nil)
	ctx := context.Background()

	order, err := svc.PlaceRestockOrder(ctx, "A101", 40)
	require.NoError(t, err)
	assert.Equal(t, 3, order.ArrivalDay)
	assert.Len(t, svc.PendingOrders(), 1)
	assert.Equal(t, uint64(1), svc.Revision())

	_, err = svc.PlaceRestockOrder(ctx, "A101", 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.PlaceRestockOrder(ctx, "ZZZ", 10)
	assert.ErrorIs(t, err, ErrUnknownProduct)

	assert.Len(t, svc.PendingOrders(), 1)
	assert.Equal(t, uint64(1), svc.Revision())
}

func TestReadViews(t *testing.T) {
	svc := newTestService(10, nil, nil)

	_, err := svc.Forecast("A101")
	assert.ErrorIs(t, err, ErrNoForecast)
	_, err = svc.Insight("A101")
	assert.ErrorIs(t, err, ErrNoInsight)
	_, err = svc.Forecast("nope")
	assert.ErrorIs(t, err, ErrUnknownProduct)

	for i := 0; i < 3; i++ {
		svc.AdvanceDay(context.Background())
	}

	f, err := svc.Forecast("A101")
	require.NoError(t, err)
	assert.Equal(t, 3, f.GeneratedOnDay)
	assert.Len(t, f.PredictedDemand, forecasting.DefaultHorizon)

	in, err := svc.Insight("A101")
	require.NoError(t, err)
	assert.Equal(t, "A101", in.ProductID)

	h, err := svc.History("A101")
	require.NoError(t, err)
	assert.Len(t, h.Demand, 3)
	assert.Len(t, h.Sales, 3)
	assert.Len(t, h.Forecasts, 3)

	acc, err := svc.Accuracy("A101")
	require.NoError(t, err)
	// Days 2 and 3 have both a realized demand and a frozen forecast.
	assert.Equal(t, 2, acc.Stats.Count)
	assert.InDelta(t, 0, acc.Stats.MAE, 1e-9)

	snap := svc.Snapshot()
	assert.Equal(t, svc.SessionID(), snap.SessionID)
	assert.Equal(t, 3, snap.Day)
	assert.Equal(t, 20, snap.Products[0].CurrentStock)

	_, err = svc.History("nope")
	assert.ErrorIs(t, err, ErrUnknownProduct)
}

func TestPlaceRecommendedOrders(t *testing.T) {
	svc := newTestService(10, nil, nil)
	ctx := context.Background()

	assert.Empty(t, svc.PlaceRecommendedOrders(ctx))

	// Stock falls 50 -> 40 -> 30; forecast 10/day over lead time 3 gives a
	// reorder point of 39.
	svc.AdvanceDay(ctx)
	svc.AdvanceDay(ctx)

	placed := svc.PlaceRecommendedOrders(ctx)
	require.Len(t, placed, 1)
	assert.Equal(t, 50, placed[0].Quantity)

	// Already in flight.
	svc.AdvanceDay(ctx)
	assert.Empty(t, svc.PlaceRecommendedOrders(ctx))
}

func TestDashboard_CachedPerRevision(t *testing.T) {
	c := newMemoryCache()
	svc := newTestService(10, nil, c)
	ctx := context.Background()

	d1, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, d1.Day)
	assert.Equal(t, 0, c.hits)

	d2, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Same(t, d1, d2)
	assert.Equal(t, 1, c.hits)

	svc.AdvanceDay(ctx)
	assert.Equal(t, 1, c.invalidated)

	d3, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, d3.Day)
	assert.Equal(t, uint64(1), d3.Revision)
	require.Len(t, d3.Products, 1)
	require.NotNil(t, d3.Products[0].LastDemand)
	assert.Equal(t, 10, *d3.Products[0].LastDemand)
	assert.NotNil(t, d3.Products[0].Forecast)
	assert.NotNil(t, d3.Products[0].Insight)
	assert.Equal(t, 1, c.hits)
}

func TestConcurrentAdvanceAndRead(t *testing.T) {
	svc := newTestService(5, nil, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				svc.AdvanceDay(ctx)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				snap := svc.Snapshot()
				// Stock only moves in whole days of demand 5.
				assert.Equal(t, max(0, 50-5*snap.Day), snap.Products[0].CurrentStock)
				_, _ = svc.Dashboard(ctx)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, svc.Snapshot().Day)
	assert.Equal(t, 0, svc.Snapshot().Products[0].CurrentStock)
}
