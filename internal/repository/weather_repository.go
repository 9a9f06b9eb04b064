package repository

import (
	"context"
	"fmt"
	"time"

	"weather-pipeline/internal/models"
	"weather-pipeline/pkg/database"
	"weather-pipeline/pkg/logging"
	"weather-pipeline/pkg/metrics"
)

// WriteOutcome reports what a single observation write did.
type WriteOutcome int

const (
	// Inserted means the observation was new and is now stored.
	Inserted WriteOutcome = iota
	// DuplicateSkipped means an observation with the same
	// (station_id, observation_date) already existed; the write was a no-op
	// and the stored row was not modified.
	DuplicateSkipped
)

func (o WriteOutcome) String() string {
	switch o {
	case Inserted:
		return "inserted"
	case DuplicateSkipped:
		return "duplicate_skipped"
	default:
		return "unknown"
	}
}

// ObservationFilter defines filters for querying observations. Nil fields
// are unconstrained; set fields combine with AND.
type ObservationFilter struct {
	StationID *string
	Date      *string // exact-match YYYY-MM-DD
}

// StatisticsFilter defines filters for querying yearly statistics.
type StatisticsFilter struct {
	StationID *string
	Year      *string
}

// WeatherRepository provides data access for observations and derived
// yearly statistics.
type WeatherRepository interface {
	// InsertObservation stores obs unless an observation with the same
	// (station_id, observation_date) already exists. Insert-if-absent:
	// existing rows are never updated.
	InsertObservation(ctx context.Context, obs *models.Observation) (WriteOutcome, error)

	// GetObservations retrieves observations matching filter.
	GetObservations(ctx context.Context, filter ObservationFilter) ([]*models.Observation, error)

	// AggregateYearlyStatistics computes one summary row per distinct
	// (station_id, year) group over the full observation set. Nothing is
	// written; callers persist the rows via UpsertStatistics.
	AggregateYearlyStatistics(ctx context.Context) ([]*models.StationYearStatistic, error)

	// UpsertStatistics writes a summary row, replacing any prior row for
	// the same (station_id, year).
	UpsertStatistics(ctx context.Context, stats *models.StationYearStatistic) error

	// GetStatistics retrieves summary rows matching filter.
	GetStatistics(ctx context.Context, filter StatisticsFilter) ([]*models.StationYearStatistic, error)

	// HealthCheck verifies the backing store is reachable.
	HealthCheck(ctx context.Context) error
}

type weatherRepository struct {
	db      *database.DB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewWeatherRepository creates a new weather repository.
func NewWeatherRepository(db *database.DB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) WeatherRepository {
	return &weatherRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

func (r *weatherRepository) InsertObservation(ctx context.Context, obs *models.Observation) (WriteOutcome, error) {
	query := `
		INSERT INTO weather_observations (
			station_id, observation_date, max_temp, min_temp, precipitation
		)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (station_id, observation_date) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, "insert_observation", query,
		obs.StationID,
		obs.ObservationDate,
		obs.MaxTemp,
		obs.MinTemp,
		obs.Precipitation,
	)
	if err != nil {
		return DuplicateSkipped, fmt.Errorf("failed to insert observation: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return DuplicateSkipped, fmt.Errorf("failed to read insert result: %w", err)
	}

	if affected == 0 {
		return DuplicateSkipped, nil
	}
	return Inserted, nil
}

func (r *weatherRepository) GetObservations(ctx context.Context, filter ObservationFilter) ([]*models.Observation, error) {
	query := `
		SELECT station_id, observation_date, max_temp, min_temp, precipitation
		FROM weather_observations
		WHERE 1=1
	`
	args := []interface{}{}

	if filter.StationID != nil {
		query += " AND station_id = ?"
		args = append(args, *filter.StationID)
	}

	if filter.Date != nil {
		query += " AND observation_date = ?"
		args = append(args, *filter.Date)
	}

	query += " ORDER BY station_id, observation_date"

	var observations []*models.Observation
	if err := r.db.SelectContext(ctx, "get_observations", &observations, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get observations: %w", err)
	}

	return observations, nil
}

func (r *weatherRepository) AggregateYearlyStatistics(ctx context.Context) ([]*models.StationYearStatistic, error) {
	timer := time.Now()
	defer func() {
		duration := time.Since(timer)
		r.metrics.StatsCalculationDuration.Observe(duration.Seconds())
		r.logger.Debug(ctx, "[REPO_AGGREGATE] Yearly statistics computed", logging.Fields{
			"duration_ms": duration.Milliseconds(),
		})
	}()

	// The year is the leading 4 characters of the normalized date, valid
	// for both SQLite and PostgreSQL.
	query := `
		SELECT station_id,
		       substr(observation_date, 1, 4) AS year,
		       AVG(max_temp) AS avg_max_temp,
		       AVG(min_temp) AS avg_min_temp,
		       SUM(precipitation) AS precip_sum
		FROM weather_observations
		GROUP BY station_id, substr(observation_date, 1, 4)
		ORDER BY station_id, year
	`

	var stats []*models.StationYearStatistic
	if err := r.db.SelectContext(ctx, "aggregate_statistics", &stats, query); err != nil {
		return nil, fmt.Errorf("failed to aggregate statistics: %w", err)
	}

	return stats, nil
}

func (r *weatherRepository) UpsertStatistics(ctx context.Context, stats *models.StationYearStatistic) error {
	query := `
		INSERT INTO weather_statistics (
			station_id, year, avg_max_temp, avg_min_temp, precip_sum, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (station_id, year) DO UPDATE SET
			avg_max_temp = excluded.avg_max_temp,
			avg_min_temp = excluded.avg_min_temp,
			precip_sum = excluded.precip_sum,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, "upsert_statistics", query,
		stats.StationID,
		stats.Year,
		stats.AvgMaxTemp,
		stats.AvgMinTemp,
		stats.PrecipSum,
		stats.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert statistics: %w", err)
	}

	return nil
}

func (r *weatherRepository) GetStatistics(ctx context.Context, filter StatisticsFilter) ([]*models.StationYearStatistic, error) {
	query := `
		SELECT station_id, year, avg_max_temp, avg_min_temp, precip_sum, updated_at
		FROM weather_statistics
		WHERE 1=1
	`
	args := []interface{}{}

	if filter.StationID != nil {
		query += " AND station_id = ?"
		args = append(args, *filter.StationID)
	}

	if filter.Year != nil {
		query += " AND year = ?"
		args = append(args, *filter.Year)
	}

	query += " ORDER BY station_id, year"

	var stats []*models.StationYearStatistic
	if err := r.db.SelectContext(ctx, "get_statistics", &stats, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get statistics: %w", err)
	}

	return stats, nil
}

func (r *weatherRepository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}
