package logs_scheduling

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"logpulse/internal/config"
	logs_ingestion "logpulse/internal/features/logs/ingestion"
)

type LogIngester interface {
	IngestLogs(ctx context.Context, count int) (*logs_ingestion.IngestionResultDTO, error)
}

// IngestionSchedulerBackgroundService refreshes the stored logs on a fixed
// interval by running the same cycle as the HTTP trigger.
type IngestionSchedulerBackgroundService struct {
	logIngester LogIngester
	interval    time.Duration
	probeCount  int
	logger      *slog.Logger

	mu      sync.Mutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewIngestionSchedulerBackgroundService(
	logIngester LogIngester,
	interval time.Duration,
	probeCount int,
	logger *slog.Logger,
) *IngestionSchedulerBackgroundService {
	return &IngestionSchedulerBackgroundService{
		logIngester: logIngester,
		interval:    interval,
		probeCount:  probeCount,
		logger:      logger,
	}
}

// StartWorkers does nothing when the interval is not positive.
func (s *IngestionSchedulerBackgroundService) StartWorkers() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}

	if s.interval <= 0 {
		s.logger.Info("Scheduled ingestion is disabled")
		return
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.running = true

	s.wg.Add(1)
	go s.schedulerWorker(s.ctx)

	s.logger.Info("Scheduled ingestion started",
		slog.Duration("interval", s.interval),
		slog.Int("probeCount", s.probeCount))
}

func (s *IngestionSchedulerBackgroundService) StopWorkers() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}

	s.running = false
	s.cancel()
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *IngestionSchedulerBackgroundService) ExecuteCycleForTest() error {
	return s.runScheduledCycle(context.Background())
}

func (s *IngestionSchedulerBackgroundService) schedulerWorker(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if config.IsShouldShutdown() {
			s.logger.Info("Ingestion scheduler shutting down due to shutdown signal")
			return
		}

		select {
		case <-ctx.Done():
			s.logger.Info("Ingestion scheduler shutting down")
			return

		case <-ticker.C:
			if err := s.runScheduledCycle(ctx); err != nil {
				s.logger.Error("Error during scheduled ingestion", slog.String("error", err.Error()))
			}
		}
	}
}

func (s *IngestionSchedulerBackgroundService) runScheduledCycle(ctx context.Context) error {
	result, err := s.logIngester.IngestLogs(ctx, s.probeCount)
	if err != nil {
		return err
	}

	s.logger.Info("Scheduled ingestion finished",
		slog.String("cycleId", result.CycleID.String()),
		slog.String("status", string(result.Status)),
		slog.Int("savedRecords", result.SavedRecords))

	return nil
}
