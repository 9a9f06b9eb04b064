package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"weather-pipeline/internal/repository"
	"weather-pipeline/pkg/logging"
	"weather-pipeline/pkg/metrics"
)

// StatisticsService recomputes per-station yearly summary rows from the full
// observation set. The summary table is a materialized view: each group is
// written with replace-on-recompute semantics, so repeated runs never
// accumulate duplicate rows.
type StatisticsService struct {
	repo    repository.WeatherRepository
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
	clock   clockwork.Clock
}

// NewStatisticsService creates a new statistics service.
func NewStatisticsService(
	repo repository.WeatherRepository,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
	clock clockwork.Clock,
) *StatisticsService {
	return &StatisticsService{
		repo:    repo,
		logger:  logger,
		metrics: metricsCollector,
		clock:   clock,
	}
}

// RecomputeStatistics recomputes one summary row per distinct
// (station_id, year) group and returns the number of groups written.
//
// The pass is not transactional across groups: a fault mid-run surfaces as an
// error but leaves already-written groups committed.
func (s *StatisticsService) RecomputeStatistics(ctx context.Context) (int, error) {
	startTime := s.clock.Now()

	s.logger.Info(ctx, "[STATS_RECOMPUTE_START] Starting statistics recomputation", logging.Fields{})

	groups, err := s.repo.AggregateYearlyStatistics(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate statistics: %w", err)
	}

	updatedAt := s.clock.Now().UTC().Format(time.RFC3339)
	written := 0
	for _, group := range groups {
		group.UpdatedAt = updatedAt
		if err := s.repo.UpsertStatistics(ctx, group); err != nil {
			return written, fmt.Errorf("failed to write statistics for %s/%s: %w",
				group.StationID, group.Year, err)
		}
		written++
	}

	s.logger.Info(ctx, "[STATS_RECOMPUTE_COMPLETE] Statistics recomputation completed", logging.Fields{
		"groups_written":   written,
		"duration_seconds": s.clock.Since(startTime).Seconds(),
	})

	return written, nil
}
