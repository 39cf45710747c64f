// Package report renders a session's history as CSV.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/andresuchdata/autopo-sim/internal/domain"
	"github.com/shopspring/decimal"
)

// Row is one product on one simulated day.
type Row struct {
	Day            int
	ProductID      string
	Demand         int
	UnitsSold      int
	Unmet          int
	ForecastForDay *float64
}

// Summary is the run-level totals written after the daily rows.
type Summary struct {
	Days              int
	TotalDemand       int
	TotalSold         int
	FillRate          float64
	StockoutDays      int
	HoldingCost       decimal.Decimal
	StockoutCost      decimal.Decimal
	UnderstockingCost decimal.Decimal
	TotalCost         decimal.Decimal
}

var header = []string{"day", "product_id", "demand", "units_sold", "unmet", "forecast_for_day"}

// Build joins demand, sales and the frozen daily forecasts by day and product.
func Build(state *domain.SystemState) ([]Row, Summary) {
	type key struct {
		day int
		id  string
	}

	sold := make(map[key]int)
	for _, s := range state.SalesHistory() {
		sold[key{s.Day, s.ProductID}] = s.UnitsSold
	}
	forecasts := make(map[key]float64)
	for _, f := range state.ForecastHistory() {
		forecasts[key{f.Day, f.ProductID}] = f.ForecastForDay
	}

	demand := state.DemandHistory()
	rows := make([]Row, 0, len(demand))
	summary := Summary{
		Days:              state.Day,
		StockoutDays:      state.Metrics.StockoutDays,
		HoldingCost:       state.Metrics.TotalHoldingCost,
		StockoutCost:      state.Metrics.TotalStockoutCost,
		UnderstockingCost: state.Metrics.TotalUnderstockingCost,
		TotalCost:         state.Metrics.TotalCost(),
	}

	for _, d := range demand {
		k := key{d.Day, d.ProductID}
		row := Row{
			Day:       d.Day,
			ProductID: d.ProductID,
			Demand:    d.Demand,
			UnitsSold: sold[k],
		}
		row.Unmet = row.Demand - row.UnitsSold
		if f, ok := forecasts[k]; ok {
			row.ForecastForDay = &f
		}
		rows = append(rows, row)

		summary.TotalDemand += row.Demand
		summary.TotalSold += row.UnitsSold
	}

	if summary.TotalDemand > 0 {
		summary.FillRate = roundFloat(float64(summary.TotalSold)/float64(summary.TotalDemand), 4)
	} else {
		summary.FillRate = 1
	}

	return rows, summary
}

// WriteCSV writes the header, the rows, then a blank line and the summary.
func WriteCSV(w io.Writer, rows []Row, summary Summary) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, r := range rows {
		forecast := ""
		if r.ForecastForDay != nil {
			forecast = strconv.FormatFloat(roundFloat(*r.ForecastForDay, 2), 'f', -1, 64)
		}
		record := []string{
			strconv.Itoa(r.Day),
			r.ProductID,
			strconv.Itoa(r.Demand),
			strconv.Itoa(r.UnitsSold),
			strconv.Itoa(r.Unmet),
			forecast,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	summaryRecords := [][]string{
		{},
		{"metric", "value"},
		{"days", strconv.Itoa(summary.Days)},
		{"total_demand", strconv.Itoa(summary.TotalDemand)},
		{"total_sold", strconv.Itoa(summary.TotalSold)},
		{"fill_rate", strconv.FormatFloat(summary.FillRate, 'f', -1, 64)},
		{"stockout_days", strconv.Itoa(summary.StockoutDays)},
		{"holding_cost", summary.HoldingCost.StringFixed(2)},
		{"stockout_cost", summary.StockoutCost.StringFixed(2)},
		{"understocking_cost", summary.UnderstockingCost.StringFixed(2)},
		{"total_cost", summary.TotalCost.StringFixed(2)},
	}
	if err := writer.WriteAll(summaryRecords); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	return nil
}

// roundFloat rounds v to the given number of decimal places.
func roundFloat(v float64, decimals int) float64 {
	if decimals <= 0 {
		return math.Round(v)
	}

	factor := math.Pow(10, float64(decimals))
	return math.Round(v*factor) / factor
}
