// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/autopo-sim/internal/api/handlers"
	"github.com/andresuchdata/autopo-sim/internal/api/middleware"
	"github.com/andresuchdata/autopo-sim/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	SimulationService *service.SimulationService
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil && services.SimulationService != nil {
		simulationHandler := handlers.NewSimulationHandler(services.SimulationService)
		simulationGroup := apiGroup.Group("/simulation")
		{
			simulationGroup.GET("/state", simulationHandler.GetState)
			simulationGroup.GET("/dashboard", simulationHandler.GetDashboard)
			simulationGroup.POST("/advance", simulationHandler.AdvanceDay)
			simulationGroup.GET("/orders", simulationHandler.GetPendingOrders)
			simulationGroup.POST("/orders", simulationHandler.PlaceOrder)

			productGroup := simulationGroup.Group("/products")
			{
				productGroup.GET("", simulationHandler.GetProducts)
				productGroup.GET("/:id/forecast", simulationHandler.GetForecast)
				productGroup.GET("/:id/insight", simulationHandler.GetInsight)
				productGroup.GET("/:id/history", simulationHandler.GetHistory)
				productGroup.GET("/:id/accuracy", simulationHandler.GetAccuracy)
			}
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
