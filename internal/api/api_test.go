package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andresuchdata/autopo-sim/internal/domain"
	"github.com/andresuchdata/autopo-sim/internal/forecasting"
	"github.com/andresuchdata/autopo-sim/internal/pipeline"
	"github.com/andresuchdata/autopo-sim/internal/recommender"
	"github.com/andresuchdata/autopo-sim/internal/service"
	"github.com/andresuchdata/autopo-sim/internal/simulation"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedDemand int

func (d fixedDemand) Demand(*domain.Product, int) int { return int(d) }

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	orch := pipeline.NewOrchestrator(
		simulation.NewEngine(fixedDemand(10)),
		forecasting.NewEngine(nil, forecasting.DefaultOptions()),
		recommender.New(recommender.DefaultOptions()),
	)
	svc := service.NewSimulationService(domain.NewSystemState(domain.DefaultProduct()), orch, nil, nil)
	return NewRouter(&Services{SimulationService: svc}, []string{"*"})
}

func do(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := do(newTestRouter(t), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestAdvanceAndReadState(t *testing.T) {
	router := newTestRouter(t)

	w := do(router, http.MethodPost, "/api/v1/simulation/advance", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var advance struct {
		Day       int                       `json:"day"`
		Forecasts []domain.DemandForecast   `json:"forecasts"`
		Insights  []domain.InventoryInsight `json:"insights"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &advance))
	assert.Equal(t, 1, advance.Day)
	require.Len(t, advance.Forecasts, 1)
	assert.Equal(t, domain.ModelRollingMean, advance.Forecasts[0].ModelUsed)

	w = do(router, http.MethodGet, "/api/v1/simulation/state", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var snap domain.StateSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, 1, snap.Day)
	assert.NotEmpty(t, snap.SessionID)
	require.Len(t, snap.Products, 1)
	assert.Equal(t, 40, snap.Products[0].CurrentStock)
}

func TestPlaceOrder(t *testing.T) {
	router := newTestRouter(t)

	w := do(router, http.MethodPost, "/api/v1/simulation/orders", gin.H{"product_id": "A101", "quantity": 25})
	require.Equal(t, http.StatusCreated, w.Code)

	var order domain.PendingOrder
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	assert.Equal(t, 25, order.Quantity)
	assert.Equal(t, 3, order.ArrivalDay)

	w = do(router, http.MethodGet, "/api/v1/simulation/orders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"quantity":25`)

	w = do(router, http.MethodPost, "/api/v1/simulation/orders", gin.H{"product_id": "NOPE", "quantity": 5})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(router, http.MethodPost, "/api/v1/simulation/orders", gin.H{"product_id": "A101", "quantity": -5})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/simulation/orders", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProductViews(t *testing.T) {
	router := newTestRouter(t)

	w := do(router, http.MethodGet, "/api/v1/simulation/products/A101/forecast", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	do(router, http.MethodPost, "/api/v1/simulation/advance", nil)
	do(router, http.MethodPost, "/api/v1/simulation/advance", nil)

	w = do(router, http.MethodGet, "/api/v1/simulation/products/A101/forecast", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var forecast struct {
		Forecast domain.DemandForecast `json:"forecast"`
		Days     []int                 `json:"days"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &forecast))
	assert.Equal(t, []int{3, 4, 5, 6, 7, 8, 9}, forecast.Days)

	w = do(router, http.MethodGet, "/api/v1/simulation/products/A101/insight", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(router, http.MethodGet, "/api/v1/simulation/products/A101/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var history service.ProductHistory
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	assert.Len(t, history.Demand, 2)

	w = do(router, http.MethodGet, "/api/v1/simulation/products/A101/accuracy", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var accuracy service.ProductAccuracy
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &accuracy))
	assert.Equal(t, 1, accuracy.Stats.Count)

	w = do(router, http.MethodGet, "/api/v1/simulation/products/ZZZ/history", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(router, http.MethodGet, "/api/v1/simulation/products", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"A101"`)
}

func TestDashboard(t *testing.T) {
	router := newTestRouter(t)
	do(router, http.MethodPost, "/api/v1/simulation/advance", nil)

	w := do(router, http.MethodGet, "/api/v1/simulation/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var dashboard domain.Dashboard
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dashboard))
	assert.Equal(t, 1, dashboard.Day)
	require.Len(t, dashboard.Products, 1)
	assert.NotNil(t, dashboard.Products[0].Forecast)
}

func TestNormalizeAllowedOrigins(t *testing.T) {
	origins, all := normalizeAllowedOrigins([]string{"http://a.test, http://b.test", " "})
	assert.False(t, all)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, origins)

	_, all = normalizeAllowedOrigins([]string{"*"})
	assert.True(t, all)
}
