package main

import (
	"flag"
	"fmt"
	"os"

	"weather-pipeline/internal/config"
	"weather-pipeline/pkg/database"
	"weather-pipeline/pkg/logging"
	"weather-pipeline/pkg/metrics"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
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

	logger := logging.NewStructuredLogger("weather-migrate", "1.0.0", logging.ParseLevel(cfg.Logging.Level))
	metricsCollector := metrics.NewCollector("weather_migrate")

	db, err := database.New(cfg.DatabaseConfigFor(), logger, metricsCollector)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	fmt.Println("Connected to database successfully")
	fmt.Printf("Running migrations: %s (%s)\n", *direction, cfg.Database.Driver)

	switch *direction {
	case "up":
		err = db.Migrate()
	case "down":
		err = db.MigrateDown()
	default:
		fmt.Fprintf(os.Stderr, "Unknown direction %q, expected up or down\n", *direction)
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to execute migrations: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Migrations completed successfully")
}
