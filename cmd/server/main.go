package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"weather-pipeline/internal/config"
	"weather-pipeline/internal/handlers"
	"weather-pipeline/internal/repository"
	"weather-pipeline/internal/services"
	"weather-pipeline/pkg/database"
	"weather-pipeline/pkg/logging"
	"weather-pipeline/pkg/metrics"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := logging.NewStructuredLogger("weather-api", "1.0.0", logging.ParseLevel(cfg.Logging.Level))

	ctx := context.Background()
	logger.Info(ctx, "[STARTUP] Starting weather pipeline API server", logging.Fields{
		"version":     "1.0.0",
		"server_host": cfg.Server.Host,
		"server_port": cfg.Server.Port,
		"db_driver":   cfg.Database.Driver,
		"data_dir":    cfg.Ingestion.DataDir,
	})

	// Initialize metrics collector
	metricsCollector := metrics.NewCollector("weather_pipeline")

	// Initialize database
	db, err := database.New(cfg.DatabaseConfigFor(), logger, metricsCollector)
	if err != nil {
		logger.Fatal(ctx, "[STARTUP_ERROR] Failed to connect to database", logging.Fields{}, err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		logger.Fatal(ctx, "[STARTUP_ERROR] Failed to apply migrations", logging.Fields{}, err)
	}

	// Initialize repository
	weatherRepo := repository.NewWeatherRepository(db, logger, metricsCollector)

	// Initialize services
	clock := clockwork.NewRealClock()
	ingestionService := services.NewIngestionService(weatherRepo, logger, metricsCollector, clock, cfg.Ingestion.FileExtension)
	statsService := services.NewStatisticsService(weatherRepo, logger, metricsCollector, clock)
	weatherService := services.NewWeatherService(weatherRepo, logger, metricsCollector)
	pipelineService := services.NewPipelineService(ingestionService, statsService, logger, clock, cfg.Ingestion.DataDir)

	// Initialize handlers
	weatherHandler := handlers.NewWeatherHandler(weatherService, pipelineService, logger, metricsCollector)

	// Setup router
	router := mux.NewRouter()

	// Register routes
	weatherHandler.RegisterRoutes(router)

	// API documentation
	router.HandleFunc("/api/docs", handlers.SwaggerUI).Methods("GET")
	router.HandleFunc("/api/docs/openapi.json", handlers.OpenAPISpec).Methods("GET")

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info(ctx, "[SERVER_START] HTTP server listening", logging.Fields{
			"address": server.Addr,
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "[SERVER_ERROR] Server failed", logging.Fields{}, err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "[SHUTDOWN] Shutting down server...", logging.Fields{})

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "[SHUTDOWN_ERROR] Server forced to shutdown", logging.Fields{}, err)
	}

	logger.Info(ctx, "[SHUTDOWN_COMPLETE] Server stopped", logging.Fields{})
}
