package logs_querying

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	logs_classification "logpulse/internal/features/logs/classification"
	logs_core "logpulse/internal/features/logs/core"

	"golang.org/x/sync/singleflight"
)

const generationTimeout = 5 * time.Second

type LogQueryService struct {
	logRecordStore    logs_core.LogRecordStore
	distributionCache DistributionCache
	generations       GenerationCounter
	logger            *slog.Logger

	singleflight singleflight.Group
}

func NewLogQueryService(
	logRecordStore logs_core.LogRecordStore,
	distributionCache DistributionCache,
	generations GenerationCounter,
	logger *slog.Logger,
) *LogQueryService {
	return &LogQueryService{
		logRecordStore:    logRecordStore,
		distributionCache: distributionCache,
		generations:       generations,
		logger:            logger,
	}
}

func (s *LogQueryService) GetErrorLogs(ctx context.Context) ([]*logs_core.LogRecord, error) {
	records, err := s.logRecordStore.FindByError(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to get error logs: %w", err)
	}

	return records, nil
}

func (s *LogQueryService) GetSuccessfulLogs(ctx context.Context) ([]*logs_core.LogRecord, error) {
	records, err := s.logRecordStore.FindByError(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to get successful logs: %w", err)
	}

	return records, nil
}

// GetErrorDistribution returns the two-level distribution of the stored error
// records. Reports are cached per record-set generation, so a report computed
// from an older record set can only ever land under an older key.
func (s *LogQueryService) GetErrorDistribution(ctx context.Context) (*logs_classification.DistributionReport, error) {
	if s.distributionCache == nil || s.generations == nil {
		return s.computeDistribution(ctx)
	}

	generation, err := s.generations.Current(ctx)
	if err != nil {
		s.logger.Warn("Failed to read report generation, skipping cache", slog.Any("error", err))
		return s.computeDistribution(ctx)
	}

	key := distributionCacheKey(generation)
	if report := s.distributionCache.Get(key); report != nil {
		return report, nil
	}

	result, err, _ := s.singleflight.Do(key, func() (any, error) {
		report, err := s.computeDistribution(ctx)
		if err != nil {
			return nil, err
		}

		s.distributionCache.Set(key, report)
		return report, nil
	})
	if err != nil {
		return nil, err
	}

	report, ok := result.(*logs_classification.DistributionReport)
	if !ok {
		return nil, fmt.Errorf("failed to cast result to DistributionReport")
	}

	return report, nil
}

// OnLogsRefreshed moves every instance on to a new report generation after
// the ingestion pipeline changed the records.
func (s *LogQueryService) OnLogsRefreshed() {
	if s.generations == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), generationTimeout)
	defer cancel()

	generation, err := s.generations.Advance(ctx)
	if err != nil {
		s.logger.Error("Failed to advance report generation", slog.Any("error", err))
		return
	}

	if s.distributionCache != nil && generation > 0 {
		s.distributionCache.Invalidate(distributionCacheKey(generation - 1))
	}
}

func (s *LogQueryService) computeDistribution(ctx context.Context) (*logs_classification.DistributionReport, error) {
	records, err := s.logRecordStore.FindByError(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to get error logs for distribution: %w", err)
	}

	report := logs_classification.Aggregate(records)

	s.logger.Debug("Error distribution computed",
		slog.Int("errorRecords", len(records)),
		slog.Int("categories", report.Len()))

	return report, nil
}

func distributionCacheKey(generation uint64) string {
	return fmt.Sprintf("report:%d", generation)
}
