package main

import (
	"context"
	"strings"
	"testing"

	"github.com/andresuchdata/autopo-sim/internal/domain"
	"github.com/andresuchdata/autopo-sim/internal/pipeline"
	"github.com/andresuchdata/autopo-sim/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(seed uint64) *service.SimulationService {
	return service.NewSimulationService(
		domain.NewSystemState(domain.DefaultProduct()),
		pipeline.New(pipeline.DefaultOptions(seed)),
		nil,
		nil,
	)
}

func TestRunSimulation_NoPolicy(t *testing.T) {
	svc := newService(7)
	placed := runSimulation(context.Background(), svc, 10, policyNone)

	assert.Equal(t, 0, placed)
	assert.Equal(t, 10, svc.Snapshot().Day)
	assert.Empty(t, svc.PendingOrders())
}

func TestRunSimulation_AutoPolicyKeepsStockFlowing(t *testing.T) {
	svc := newService(7)
	placed := runSimulation(context.Background(), svc, 40, policyAuto)

	assert.Positive(t, placed)

	_, summary, err := renderReport(svc)
	require.NoError(t, err)
	assert.Equal(t, 40, summary.Days)
	// Without reorders 50 units cannot cover 40 days of ~12/day demand.
	assert.Greater(t, summary.TotalSold, 50)
}

func TestRenderReport(t *testing.T) {
	svc := newService(11)
	runSimulation(context.Background(), svc, 3, policyNone)

	payload, summary, err := renderReport(svc)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Days)

	lines := strings.Split(strings.TrimSpace(string(payload)), "\n")
	assert.Equal(t, "day,product_id,demand,units_sold,unmet,forecast_for_day", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "1,A101,"))
}

func TestReportKey(t *testing.T) {
	assert.Equal(t, "reports/abc.csv", reportKey("abc"))
}
