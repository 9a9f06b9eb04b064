package services

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"weather-pipeline/pkg/logging"
)

// PipelineService runs the full ingest-then-aggregate pass as one explicit,
// separately invocable operation. Both the HTTP trigger and the ingester CLI
// call it, so the pass can be tested and scheduled independently of any
// request-handling entry point.
type PipelineService struct {
	ingestion  *IngestionService
	statistics *StatisticsService
	logger     *logging.StructuredLogger
	clock      clockwork.Clock
	dataDir    string
}

// PipelineResult combines the outcomes of both pipeline stages.
type PipelineResult struct {
	Ingestion        *IngestionResult
	StatisticsGroups int
	Duration         time.Duration
}

// NewPipelineService creates a new pipeline service bound to dataDir.
func NewPipelineService(
	ingestion *IngestionService,
	statistics *StatisticsService,
	logger *logging.StructuredLogger,
	clock clockwork.Clock,
	dataDir string,
) *PipelineService {
	return &PipelineService{
		ingestion:  ingestion,
		statistics: statistics,
		logger:     logger,
		clock:      clock,
		dataDir:    dataDir,
	}
}

// Run ingests the configured directory and then recomputes all yearly
// statistics. The stages run sequentially; aggregation only starts once
// ingestion has completed.
func (p *PipelineService) Run(ctx context.Context) (*PipelineResult, error) {
	startTime := p.clock.Now()

	ingestResult, err := p.ingestion.IngestDirectory(ctx, p.dataDir)
	if err != nil {
		return nil, err
	}

	groups, err := p.statistics.RecomputeStatistics(ctx)
	if err != nil {
		return nil, err
	}

	result := &PipelineResult{
		Ingestion:        ingestResult,
		StatisticsGroups: groups,
		Duration:         p.clock.Since(startTime),
	}

	p.logger.Info(ctx, "[PIPELINE_COMPLETE] Ingest-then-aggregate pass completed", logging.Fields{
		"inserted":          ingestResult.Inserted,
		"duplicates":        ingestResult.Duplicates,
		"failed_lines":      ingestResult.FailedLines,
		"statistics_groups": groups,
		"duration_seconds":  result.Duration.Seconds(),
	})

	return result, nil
}
