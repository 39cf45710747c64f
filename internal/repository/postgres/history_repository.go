package postgres

import (
	"context"
	"fmt"

	"github.com/andresuchdata/autopo-sim/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const historySchema = `
CREATE TABLE IF NOT EXISTS simulation_daily_product (
	session_id           TEXT             NOT NULL,
	day                  INTEGER          NOT NULL,
	product_id           TEXT             NOT NULL,
	demand               INTEGER          NOT NULL,
	units_sold           INTEGER          NOT NULL,
	forecast_for_day     DOUBLE PRECISION,
	stockout_probability DOUBLE PRECISION,
	recommended_qty      INTEGER,
	created_at           TIMESTAMPTZ      NOT NULL DEFAULT NOW(),
	PRIMARY KEY (session_id, day, product_id)
);

CREATE TABLE IF NOT EXISTS simulation_daily_metrics (
	session_id           TEXT           NOT NULL,
	day                  INTEGER        NOT NULL,
	holding_cost         NUMERIC(18, 4) NOT NULL,
	stockout_cost        NUMERIC(18, 4) NOT NULL,
	understocking_cost   NUMERIC(18, 4) NOT NULL,
	stockout_days        INTEGER        NOT NULL,
	created_at           TIMESTAMPTZ    NOT NULL DEFAULT NOW(),
	PRIMARY KEY (session_id, day)
);
`

type productRow struct {
	SessionID           string   `db:"session_id"`
	Day                 int      `db:"day"`
	ProductID           string   `db:"product_id"`
	Demand              int      `db:"demand"`
	UnitsSold           int      `db:"units_sold"`
	ForecastForDay      *float64 `db:"forecast_for_day"`
	StockoutProbability *float64 `db:"stockout_probability"`
	RecommendedQty      *int     `db:"recommended_qty"`
}

type metricsRow struct {
	SessionID         string          `db:"session_id"`
	Day               int             `db:"day"`
	HoldingCost       decimal.Decimal `db:"holding_cost"`
	StockoutCost      decimal.Decimal `db:"stockout_cost"`
	UnderstockingCost decimal.Decimal `db:"understocking_cost"`
	StockoutDays      int             `db:"stockout_days"`
}

type historyRepository struct {
	db *DB
}

func NewHistoryRepository(db *DB) repository.HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, historySchema); err != nil {
		return fmt.Errorf("failed to create history schema: %w", err)
	}
	return nil
}

// SaveDay upserts one day of a session. Re-saving the same day overwrites it.
func (r *historyRepository) SaveDay(ctx context.Context, records repository.DayRecords) error {
	rows := buildProductRows(records)
	metrics := metricsRow{
		SessionID:         records.SessionID,
		Day:               records.Day,
		HoldingCost:       records.Metrics.TotalHoldingCost,
		StockoutCost:      records.Metrics.TotalStockoutCost,
		UnderstockingCost: records.Metrics.TotalUnderstockingCost,
		StockoutDays:      records.Metrics.StockoutDays,
	}

	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if len(rows) > 0 {
			query := `
				INSERT INTO simulation_daily_product (
					session_id, day, product_id, demand, units_sold,
					forecast_for_day, stockout_probability, recommended_qty
				) VALUES (
					:session_id, :day, :product_id, :demand, :units_sold,
					:forecast_for_day, :stockout_probability, :recommended_qty
				)
				ON CONFLICT (session_id, day, product_id)
				DO UPDATE SET
					demand = EXCLUDED.demand,
					units_sold = EXCLUDED.units_sold,
					forecast_for_day = EXCLUDED.forecast_for_day,
					stockout_probability = EXCLUDED.stockout_probability,
					recommended_qty = EXCLUDED.recommended_qty
			`
			if _, err := tx.NamedExecContext(ctx, query, rows); err != nil {
				return fmt.Errorf("failed to insert daily product rows: %w", err)
			}
		}

		query := `
			INSERT INTO simulation_daily_metrics (
				session_id, day, holding_cost, stockout_cost,
				understocking_cost, stockout_days
			) VALUES (
				:session_id, :day, :holding_cost, :stockout_cost,
				:understocking_cost, :stockout_days
			)
			ON CONFLICT (session_id, day)
			DO UPDATE SET
				holding_cost = EXCLUDED.holding_cost,
				stockout_cost = EXCLUDED.stockout_cost,
				understocking_cost = EXCLUDED.understocking_cost,
				stockout_days = EXCLUDED.stockout_days
		`
		if _, err := tx.NamedExecContext(ctx, query, metrics); err != nil {
			return fmt.Errorf("failed to insert daily metrics: %w", err)
		}

		return nil
	})
}

// buildProductRows joins the per-product records of a day into one row per
// product, in demand-log order.
func buildProductRows(records repository.DayRecords) []productRow {
	sold := make(map[string]int, len(records.Sales))
	for _, s := range records.Sales {
		if s.Day == records.Day {
			sold[s.ProductID] = s.UnitsSold
		}
	}

	forecasts := make(map[string]float64, len(records.Forecasts))
	for _, f := range records.Forecasts {
		if f.Day == records.Day {
			forecasts[f.ProductID] = f.ForecastForDay
		}
	}

	insights := make(map[string]int, len(records.Insights))
	for i, in := range records.Insights {
		insights[in.ProductID] = i
	}

	rows := make([]productRow, 0, len(records.Demand))
	for _, d := range records.Demand {
		if d.Day != records.Day {
			continue
		}
		row := productRow{
			SessionID: records.SessionID,
			Day:       records.Day,
			ProductID: d.ProductID,
			Demand:    d.Demand,
			UnitsSold: sold[d.ProductID],
		}
		if f, ok := forecasts[d.ProductID]; ok {
			row.ForecastForDay = &f
		}
		if i, ok := insights[d.ProductID]; ok {
			prob := records.Insights[i].StockoutProbability
			qty := records.Insights[i].RecommendedOrderQty
			row.StockoutProbability = &prob
			row.RecommendedQty = &qty
		}
		rows = append(rows, row)
	}
	return rows
}
