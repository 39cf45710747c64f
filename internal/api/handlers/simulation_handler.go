package handlers

import (
	"errors"
	"net/http"

	"github.com/andresuchdata/autopo-sim/internal/service"
	"github.com/gin-gonic/gin"
)

type SimulationHandler struct {
	service *service.SimulationService
}

func NewSimulationHandler(service *service.SimulationService) *SimulationHandler {
	return &SimulationHandler{service: service}
}

type placeOrderRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}

func (h *SimulationHandler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Snapshot())
}

func (h *SimulationHandler) GetDashboard(c *gin.Context) {
	dashboard, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build dashboard", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

func (h *SimulationHandler) AdvanceDay(c *gin.Context) {
	result := h.service.AdvanceDay(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"day":       result.Day,
		"delivered": result.Delivered,
		"forecasts": result.Forecasts,
		"insights":  result.Insights,
	})
}

func (h *SimulationHandler) GetPendingOrders(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.service.PendingOrders()})
}

func (h *SimulationHandler) PlaceOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	order, err := h.service.PlaceRestockOrder(c.Request.Context(), req.ProductID, req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *SimulationHandler) GetProducts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.service.Products()})
}

func (h *SimulationHandler) GetForecast(c *gin.Context) {
	forecast, err := h.service.Forecast(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"forecast": forecast,
		"days":     forecast.Days(),
	})
}

func (h *SimulationHandler) GetInsight(c *gin.Context) {
	insight, err := h.service.Insight(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, insight)
}

func (h *SimulationHandler) GetHistory(c *gin.Context) {
	history, err := h.service.History(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

func (h *SimulationHandler) GetAccuracy(c *gin.Context) {
	accuracy, err := h.service.Accuracy(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, accuracy)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownProduct):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNoForecast), errors.Is(err, service.ErrNoInsight):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "details": err.Error()})
	}
}
