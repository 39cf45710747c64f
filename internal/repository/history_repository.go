package repository

import (
	"context"

	"github.com/andresuchdata/autopo-sim/internal/domain"
)

// DayRecords is everything a single daily cycle appended to a session.
type DayRecords struct {
	SessionID string
	Day       int
	Demand    []domain.DemandRecord
	Sales     []domain.SalesRecord
	Forecasts []domain.DailyForecastRecord
	Insights  []domain.InventoryInsight
	Metrics   domain.Metrics
}

// HistoryRepository persists simulation history outside the process.
type HistoryRepository interface {
	EnsureSchema(ctx context.Context) error
	SaveDay(ctx context.Context, records DayRecords) error
}

type noopHistoryRepository struct{}

// NewNoopHistoryRepository discards everything; used when no database is configured.
func NewNoopHistoryRepository() HistoryRepository {
	return noopHistoryRepository{}
}

func (noopHistoryRepository) EnsureSchema(ctx context.Context) error { return nil }

func (noopHistoryRepository) SaveDay(ctx context.Context, records DayRecords) error { return nil }
