package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/jonboulle/clockwork"

	"weather-pipeline/internal/config"
	"weather-pipeline/internal/repository"
	"weather-pipeline/internal/services"
	"weather-pipeline/pkg/database"
	"weather-pipeline/pkg/logging"
	"weather-pipeline/pkg/metrics"
)

func main() {
	// Parse command-line flags
	dataDir := flag.String("data-dir", "", "Directory containing station files (default: configured data_dir)")
	skipStats := flag.Bool("skip-stats", false, "Skip the statistics recomputation step")
	flag.Parse()

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

	if *dataDir == "" {
		*dataDir = cfg.Ingestion.DataDir
	}

	// Initialize logger
	logger := logging.NewStructuredLogger("weather-ingester", "1.0.0", logging.ParseLevel(cfg.Logging.Level))

	ctx := context.Background()
	logger.Info(ctx, "[INGESTER_START] Starting weather data ingestion", logging.Fields{
		"version":    "1.0.0",
		"data_dir":   *dataDir,
		"skip_stats": *skipStats,
	})

	// Initialize metrics collector
	metricsCollector := metrics.NewCollector("weather_ingester")

	// Initialize database
	db, err := database.New(cfg.DatabaseConfigFor(), logger, metricsCollector)
	if err != nil {
		logger.Fatal(ctx, "[INGESTER_ERROR] Failed to connect to database", logging.Fields{}, err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		logger.Fatal(ctx, "[INGESTER_ERROR] Failed to apply migrations", logging.Fields{}, err)
	}

	// Initialize repository
	weatherRepo := repository.NewWeatherRepository(db, logger, metricsCollector)

	// Initialize services
	clock := clockwork.NewRealClock()
	ingestionService := services.NewIngestionService(weatherRepo, logger, metricsCollector, clock, cfg.Ingestion.FileExtension)
	statsService := services.NewStatisticsService(weatherRepo, logger, metricsCollector, clock)

	// Ingest data
	result, err := ingestionService.IngestDirectory(ctx, *dataDir)
	if err != nil {
		logger.Fatal(ctx, "[INGESTION_ERROR] Ingestion failed", logging.Fields{
			"error": err.Error(),
		}, err)
	}

	// Print results
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("INGESTION COMPLETE")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Total Files:      %d\n", result.TotalFiles)
	fmt.Printf("Total Lines:      %d\n", result.TotalLines)
	fmt.Printf("Inserted:         %d\n", result.Inserted)
	fmt.Printf("Duplicates:       %d\n", result.Duplicates)
	fmt.Printf("Failed Lines:     %d\n", result.FailedLines)
	fmt.Printf("Failed Files:     %d\n", result.FailedFiles)
	fmt.Printf("Duration:         %v\n", result.Duration)
	if result.Duration.Seconds() > 0 {
		fmt.Printf("Records/Second:   %.2f\n", float64(result.Inserted+result.Duplicates)/result.Duration.Seconds())
	}

	// Recompute statistics unless skipped
	if !*skipStats {
		fmt.Println("\n" + strings.Repeat("=", 80))
		fmt.Println("RECOMPUTING STATISTICS")
		fmt.Println(strings.Repeat("=", 80))

		groups, err := statsService.RecomputeStatistics(ctx)
		if err != nil {
			logger.Error(ctx, "[STATS_ERROR] Statistics recomputation failed", logging.Fields{}, err)
			fmt.Printf("Statistics recomputation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Statistics recomputed for %d station-year groups\n", groups)
	}

	logger.Info(ctx, "[INGESTER_COMPLETE] Ingestion completed successfully", logging.Fields{
		"total_lines":      result.TotalLines,
		"inserted":         result.Inserted,
		"duplicates":       result.Duplicates,
		"failed_lines":     result.FailedLines,
		"duration_seconds": result.Duration.Seconds(),
	})
}
