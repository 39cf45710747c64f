// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/autopo-sim/internal/api"
	"github.com/andresuchdata/autopo-sim/internal/cache"
	"github.com/andresuchdata/autopo-sim/internal/config"
	"github.com/andresuchdata/autopo-sim/internal/domain"
	"github.com/andresuchdata/autopo-sim/internal/pipeline"
	"github.com/andresuchdata/autopo-sim/internal/repository"
	"github.com/andresuchdata/autopo-sim/internal/repository/postgres"
	"github.com/andresuchdata/autopo-sim/internal/service"
	"github.com/andresuchdata/autopo-sim/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.LogLevel)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// History sink
	history := repository.NewNoopHistoryRepository()
	if cfg.Database.Enabled {
		db, err := postgres.NewDB(&cfg.Database)
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer db.Close()

		history = postgres.NewHistoryRepository(db)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = history.EnsureSchema(ctx)
		cancel()
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to prepare history schema")
		}
	}

	// Dashboard cache
	dashboardCache, err := cache.NewDashboardCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Redis unavailable, dashboard cache disabled")
		dashboardCache = cache.NewNoopDashboardCache()
	}

	// Initialize services
	opts := pipeline.OptionsFromConfig(cfg.Simulation)
	simulationService := service.NewSimulationService(
		domain.NewSystemState(domain.DefaultProduct()),
		pipeline.New(opts),
		history,
		dashboardCache,
	)
	logger.Log.Info().
		Str("session_id", simulationService.SessionID()).
		Uint64("seed", opts.Seed).
		Msg("Simulation session started")

	// Initialize HTTP server
	router := api.NewRouter(&api.Services{SimulationService: simulationService}, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
