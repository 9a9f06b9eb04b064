package services

import (
	"context"
	"errors"

	"weather-pipeline/internal/models"
	"weather-pipeline/internal/repository"
	"weather-pipeline/pkg/logging"
	"weather-pipeline/pkg/metrics"
)

// ErrInvalidSummaryRequest is returned when a summary lookup carries neither
// a station nor a year filter.
var ErrInvalidSummaryRequest = errors.New("at least one of weatherStation or year is required")

// Summary is the result of a summary lookup. All fields are nil when no
// group matched the filter; callers render absent fields as omitted rather
// than as a not-found error.
type Summary struct {
	AvgMaxTemp *float64 `json:"average_avgMxTemp,omitempty"`
	AvgMinTemp *float64 `json:"average_avgMnTemp,omitempty"`
	PrecipSum  *int64   `json:"total_precipSum,omitempty"`
}

// WeatherService answers filtered lookups over raw observations and over
// yearly summary rows.
type WeatherService struct {
	repo    repository.WeatherRepository
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewWeatherService creates a new weather service.
func NewWeatherService(repo repository.WeatherRepository, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *WeatherService {
	return &WeatherService{
		repo:    repo,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// GetObservations retrieves observations. Empty filter values are
// unconstrained; both set means intersection (AND), neither set returns
// everything.
func (s *WeatherService) GetObservations(ctx context.Context, stationID, date string) ([]*models.Observation, error) {
	filter := repository.ObservationFilter{}
	if stationID != "" {
		filter.StationID = &stationID
	}
	if date != "" {
		filter.Date = &date
	}
	return s.repo.GetObservations(ctx, filter)
}

// GetSummary answers a summary lookup.
//
// Both filters set: the exact (station, year) group's values. Only one set:
// an unweighted cross-group combination over the matching summary rows — the
// arithmetic mean of the per-group temperature averages (each group counts
// once, regardless of how many observations produced it) and the sum of the
// per-group precipitation totals. Neither set: ErrInvalidSummaryRequest.
//
// Zero matching groups yields an empty Summary, not an error.
func (s *WeatherService) GetSummary(ctx context.Context, stationID, year string) (*Summary, error) {
	if stationID == "" && year == "" {
		return nil, ErrInvalidSummaryRequest
	}

	filter := repository.StatisticsFilter{}
	if stationID != "" {
		filter.StationID = &stationID
	}
	if year != "" {
		filter.Year = &year
	}

	rows, err := s.repo.GetStatistics(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &Summary{}, nil
	}

	if stationID != "" && year != "" {
		// Exact group: (station_id, year) is unique, so at most one row.
		row := rows[len(rows)-1]
		return &Summary{
			AvgMaxTemp: &row.AvgMaxTemp,
			AvgMinTemp: &row.AvgMinTemp,
			PrecipSum:  &row.PrecipSum,
		}, nil
	}

	var maxSum, minSum float64
	var precipSum int64
	for _, row := range rows {
		maxSum += row.AvgMaxTemp
		minSum += row.AvgMinTemp
		precipSum += row.PrecipSum
	}

	n := float64(len(rows))
	avgMax := maxSum / n
	avgMin := minSum / n
	return &Summary{
		AvgMaxTemp: &avgMax,
		AvgMinTemp: &avgMin,
		PrecipSum:  &precipSum,
	}, nil
}
