package forecasting

import (
	"math"
	"sort"

	"github.com/andresuchdata/autopo-sim/internal/domain"
	"gonum.org/v1/gonum/stat"
)

// AccuracySeries joins the demand log with the daily forecast log on day for
// productID. Days present in only one log are dropped.
func AccuracySeries(demand []domain.DemandRecord, forecasts []domain.DailyForecastRecord, productID string) []domain.AccuracyPoint {
	actual := make(map[int]int)
	for _, r := range demand {
		if r.ProductID == productID {
			actual[r.Day] = r.Demand
		}
	}

	points := make([]domain.AccuracyPoint, 0, len(actual))
	for _, f := range forecasts {
		if f.ProductID != productID {
			continue
		}
		a, ok := actual[f.Day]
		if !ok {
			continue
		}
		points = append(points, domain.AccuracyPoint{
			Day:      f.Day,
			Actual:   a,
			Forecast: f.ForecastForDay,
		})
	}

	sort.SliceStable(points, func(i, j int) bool { return points[i].Day < points[j].Day })
	return points
}

// Accuracy computes error statistics over points.
func Accuracy(productID string, points []domain.AccuracyPoint) domain.AccuracyStats {
	stats := domain.AccuracyStats{ProductID: productID, Count: len(points)}
	if len(points) == 0 {
		return stats
	}

	errs := make([]float64, len(points))
	absErrs := make([]float64, len(points))
	sqErrs := make([]float64, len(points))
	var pctErrs []float64
	for i, p := range points {
		e := p.Forecast - float64(p.Actual)
		errs[i] = e
		absErrs[i] = math.Abs(e)
		sqErrs[i] = e * e
		if p.Actual != 0 {
			pctErrs = append(pctErrs, 100*math.Abs(e)/float64(p.Actual))
		}
	}

	stats.Bias = stat.Mean(errs, nil)
	stats.MAE = stat.Mean(absErrs, nil)
	stats.RMSE = math.Sqrt(stat.Mean(sqErrs, nil))
	if len(pctErrs) > 0 {
		stats.MAPE = stat.Mean(pctErrs, nil)
	}
	return stats
}
