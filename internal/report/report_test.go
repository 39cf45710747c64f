package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/andresuchdata/autopo-sim/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleState() *domain.SystemState {
	p := domain.DefaultProduct()
	state := domain.NewSystemState(p)
	state.Day = 2

	state.AppendDemand(domain.DemandRecord{Day: 1, ProductID: p.ID, Demand: 10})
	state.AppendSale(domain.SalesRecord{Day: 1, ProductID: p.ID, UnitsSold: 10})
	state.AppendDemand(domain.DemandRecord{Day: 2, ProductID: p.ID, Demand: 15})
	state.AppendSale(domain.SalesRecord{Day: 2, ProductID: p.ID, UnitsSold: 5})
	state.AppendDailyForecast(domain.DailyForecastRecord{Day: 2, ProductID: p.ID, ForecastForDay: 10.456})

	pp, _ := state.Product(p.ID)
	state.Metrics.RecordStockout(pp, 10)
	return state
}

func TestBuild(t *testing.T) {
	rows, summary := Build(sampleState())
	require.Len(t, rows, 2)

	assert.Equal(t, 0, rows[0].Unmet)
	assert.Nil(t, rows[0].ForecastForDay)
	assert.Equal(t, 10, rows[1].Unmet)
	require.NotNil(t, rows[1].ForecastForDay)
	assert.InDelta(t, 10.456, *rows[1].ForecastForDay, 1e-9)

	assert.Equal(t, 2, summary.Days)
	assert.Equal(t, 25, summary.TotalDemand)
	assert.Equal(t, 15, summary.TotalSold)
	assert.Equal(t, 0.6, summary.FillRate)
	assert.Equal(t, 1, summary.StockoutDays)
	assert.Equal(t, "100.00", summary.StockoutCost.StringFixed(2))
}

func TestBuild_EmptyHistory(t *testing.T) {
	rows, summary := Build(domain.NewSystemState(domain.DefaultProduct()))
	assert.Empty(t, rows)
	assert.Equal(t, 1.0, summary.FillRate)
}

func TestWriteCSV(t *testing.T) {
	rows, summary := Build(sampleState())

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows, summary))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "day,product_id,demand,units_sold,unmet,forecast_for_day", lines[0])
	assert.Equal(t, "1,A101,10,10,0,", lines[1])
	assert.Equal(t, "2,A101,15,5,10,10.46", lines[2])
	assert.Contains(t, buf.String(), "total_cost,100.00")
	assert.Contains(t, buf.String(), "fill_rate,0.6")
}

func TestRoundFloat(t *testing.T) {
	assert.Equal(t, 3.0, roundFloat(2.5, 0))
	assert.Equal(t, 1.23, roundFloat(1.2345, 2))
}
