package services

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"weather-pipeline/internal/models"
	"weather-pipeline/internal/repository"
	"weather-pipeline/pkg/logging"
	"weather-pipeline/pkg/metrics"
)

// IngestionService walks a directory of per-station observation files and
// loads them through the parser and the deduplicating writer. Individual
// bad lines are skipped and counted; only whole-pass faults (unreadable
// directory) abort a run.
type IngestionService struct {
	repo          repository.WeatherRepository
	logger        *logging.StructuredLogger
	metrics       *metrics.Collector
	clock         clockwork.Clock
	fileExtension string
}

// IngestionResult contains counts and timing for one ingestion run.
type IngestionResult struct {
	TotalFiles   int
	TotalLines   int
	Inserted     int
	Duplicates   int
	FailedLines  int
	FailedFiles  int
	StartedAt    time.Time
	FinishedAt   time.Time
	Duration     time.Duration
}

// NewIngestionService creates a new ingestion service. fileExtension selects
// which files in the data directory are ingested (e.g. ".txt").
func NewIngestionService(
	repo repository.WeatherRepository,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
	clock clockwork.Clock,
	fileExtension string,
) *IngestionService {
	return &IngestionService{
		repo:          repo,
		logger:        logger,
		metrics:       metricsCollector,
		clock:         clock,
		fileExtension: fileExtension,
	}
}

// IngestDirectory processes every matching file in dataDir. The file's base
// name before the first '.' is the station identifier. Re-running over
// unchanged files inserts nothing: every record becomes a duplicate skip.
func (s *IngestionService) IngestDirectory(ctx context.Context, dataDir string) (*IngestionResult, error) {
	result := &IngestionResult{StartedAt: s.clock.Now()}

	s.logger.Info(ctx, "[INGEST_START] Starting data ingestion", logging.Fields{
		"data_dir":  dataDir,
		"extension": s.fileExtension,
	})

	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), s.fileExtension) {
			continue
		}
		result.TotalFiles++

		filePath := filepath.Join(dataDir, entry.Name())
		if err := s.ingestFile(ctx, filePath, result); err != nil {
			result.FailedFiles++
			s.metrics.RecordIngestionError("file_error")
			s.logger.Error(ctx, "[INGEST_FILE_ERROR] File ingestion failed", logging.Fields{
				"file_path": filePath,
			}, err)
			continue
		}
	}

	result.FinishedAt = s.clock.Now()
	result.Duration = result.FinishedAt.Sub(result.StartedAt)
	s.metrics.IngestionDuration.Observe(result.Duration.Seconds())

	s.logger.Info(ctx, "[INGEST_COMPLETE] Data ingestion completed", logging.Fields{
		"total_files":      result.TotalFiles,
		"total_lines":      result.TotalLines,
		"inserted":         result.Inserted,
		"duplicates":       result.Duplicates,
		"failed_lines":     result.FailedLines,
		"failed_files":     result.FailedFiles,
		"started_at":       result.StartedAt.UTC().Format(time.RFC3339),
		"finished_at":      result.FinishedAt.UTC().Format(time.RFC3339),
		"duration_seconds": result.Duration.Seconds(),
	})

	return result, nil
}

// ingestFile loads one station file. Parse and write failures on individual
// lines are counted and skipped; they never abort the file.
func (s *IngestionService) ingestFile(ctx context.Context, filePath string, result *IngestionResult) error {
	stationID := stationIDFromFilename(filepath.Base(filePath))

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		result.TotalLines++

		obs, err := models.ParseLine(line, stationID)
		if err != nil {
			result.FailedLines++
			s.metrics.RecordIngestionError("parse_error")
			continue
		}

		// One commit per record: a storage fault affects exactly this
		// record and the next line proceeds on a clean connection.
		outcome, err := s.repo.InsertObservation(ctx, obs)
		if err != nil {
			result.FailedLines++
			s.metrics.RecordIngestionError("store_error")
			s.logger.Error(ctx, "[INGEST_WRITE_ERROR] Observation write failed", logging.Fields{
				"station_id":       stationID,
				"observation_date": obs.ObservationDate,
			}, err)
			continue
		}

		switch outcome {
		case repository.Inserted:
			result.Inserted++
			s.metrics.IngestionRecordsTotal.Inc()
		case repository.DuplicateSkipped:
			result.Duplicates++
			s.metrics.IngestionDuplicatesTotal.Inc()
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading file: %w", err)
	}

	return nil
}

// stationIDFromFilename returns the file's base name before the first '.'.
func stationIDFromFilename(name string) string {
	if i := strings.Index(name, "."); i >= 0 {
		return name[:i]
	}
	return name
}
