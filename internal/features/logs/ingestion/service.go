package logs_ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	logs_core "logpulse/internal/features/logs/core"
	logs_parsing "logpulse/internal/features/logs/parsing"
	lock_utils "logpulse/internal/util/lock"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

var ErrCycleInProgress = errors.New("another ingestion cycle is in progress")

type LogIngestionService struct {
	logRecordStore logs_core.LogRecordStore
	prober         BalanceProber
	logSource      LogSource
	parser         *logs_parsing.LineParser
	maxProbeCount  int
	logger         *slog.Logger

	refreshListeners []logs_core.LogsRefreshListener

	cycleLock        CycleLock
	cycleLockTimeout time.Duration

	// cycleMutex keeps delete and insert of different cycles from interleaving
	cycleMutex   sync.Mutex
	singleflight singleflight.Group
}

func NewLogIngestionService(
	logRecordStore logs_core.LogRecordStore,
	prober BalanceProber,
	logSource LogSource,
	parser *logs_parsing.LineParser,
	maxProbeCount int,
	logger *slog.Logger,
) *LogIngestionService {
	return &LogIngestionService{
		logRecordStore: logRecordStore,
		prober:         prober,
		logSource:      logSource,
		parser:         parser,
		maxProbeCount:  maxProbeCount,
		logger:         logger,
	}
}

// SetCycleLock makes every cycle hold lock while it runs. Waiting longer than
// timeout on a lock held elsewhere fails the cycle with ErrCycleInProgress; a
// lock backend that stays unreachable for timeout is logged and skipped.
func (s *LogIngestionService) SetCycleLock(lock CycleLock, timeout time.Duration) {
	s.cycleLock = lock
	s.cycleLockTimeout = timeout
}

func (s *LogIngestionService) AddRefreshListener(listener logs_core.LogsRefreshListener) {
	s.refreshListeners = append(s.refreshListeners, listener)
}

// IngestLogs runs one ingestion cycle: it clears the stored records, sends
// count balance-check probes, fetches the log blob and stores every parsed line.
//
// A log source that is down or empty is not an error; the result status tells
// the caller that no data was stored. Errors are returned only for invalid
// input and store failures. A started cycle is not interrupted when ctx is cancelled.
func (s *LogIngestionService) IngestLogs(ctx context.Context, count int) (*IngestionResultDTO, error) {
	if err := s.validateProbeCount(count); err != nil {
		return nil, err
	}

	ctx = context.WithoutCancel(ctx)

	// shared is true for the leader as well once anyone joined, so the
	// leader marks itself instead
	started := false
	result, err, _ := s.singleflight.Do(strconv.Itoa(count), func() (any, error) {
		started = true

		s.cycleMutex.Lock()
		defer s.cycleMutex.Unlock()

		release, err := s.acquireCycleLock(ctx)
		if err != nil {
			return nil, err
		}
		defer release()

		return s.runCycle(ctx, count)
	})
	if err != nil {
		return nil, err
	}

	ingestionResult, ok := result.(*IngestionResultDTO)
	if !ok {
		return nil, fmt.Errorf("failed to cast result to IngestionResultDTO")
	}

	if !started {
		s.logger.Info("Ingestion request joined an in-flight cycle", slog.Int("count", count))

		joined := *ingestionResult
		joined.Joined = true
		return &joined, nil
	}

	return ingestionResult, nil
}

func (s *LogIngestionService) runCycle(ctx context.Context, count int) (*IngestionResultDTO, error) {
	result := &IngestionResultDTO{
		CycleID:         uuid.New(),
		RequestedProbes: count,
		StartedAt:       time.Now().UTC(),
	}
	log := s.logger.With(slog.String("cycleId", result.CycleID.String()))

	if err := s.logRecordStore.DeleteAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to clear previous logs: %w", err)
	}
	s.notifyRefreshListeners()

	result.FailedProbes = s.sendProbes(ctx, count, log)

	content, err := s.logSource.FetchLogs(ctx)
	if err != nil {
		result.Status = IngestionStatusSourceUnavailable
		if errors.Is(err, ErrLogSourceEmpty) {
			result.Status = IngestionStatusSourceEmpty
		}
		result.FinishedAt = time.Now().UTC()

		log.Warn("Log server is down or returned nothing, the cycle stored no records",
			slog.Time("at", result.FinishedAt),
			slog.String("status", string(result.Status)),
			slog.String("error", err.Error()))

		return result, nil
	}

	parseResult := s.parser.ParseBlob(content)
	for _, skipped := range parseResult.Skipped {
		log.Warn("Log line could not be parsed, skipping",
			slog.Int("lineNumber", skipped.LineNumber),
			slog.String("reason", string(skipped.Reason)),
			slog.String("line", skipped.Line))
	}

	if err := s.logRecordStore.CreateBatch(ctx, parseResult.Records); err != nil {
		return nil, fmt.Errorf("failed to store parsed logs: %w", err)
	}
	s.notifyRefreshListeners()

	result.Status = IngestionStatusCompleted
	result.TotalLines = parseResult.TotalLines
	result.BlankLines = parseResult.BlankLines
	result.SkippedLines = len(parseResult.Skipped)
	result.SavedRecords = len(parseResult.Records)
	for _, record := range parseResult.Records {
		if record.IsError {
			result.ErrorRecords++
		}
	}
	result.FinishedAt = time.Now().UTC()

	log.Info("Ingestion cycle completed",
		slog.Int("requestedProbes", result.RequestedProbes),
		slog.Int("failedProbes", result.FailedProbes),
		slog.Int("savedRecords", result.SavedRecords),
		slog.Int("errorRecords", result.ErrorRecords),
		slog.Int("skippedLines", result.SkippedLines),
		slog.Duration("duration", result.FinishedAt.Sub(result.StartedAt)))

	return result, nil
}

// sendProbes returns the number of failed probes. Probe problems never fail the cycle.
func (s *LogIngestionService) sendProbes(ctx context.Context, count int, log *slog.Logger) int {
	if count == 0 {
		return 0
	}

	summary, err := s.prober.SendProbes(ctx, count)
	if err != nil {
		log.Info("Balance check probes were not sent", slog.String("error", err.Error()))
		return count
	}

	return summary.Failed
}

func (s *LogIngestionService) acquireCycleLock(ctx context.Context) (func(), error) {
	if s.cycleLock == nil {
		return func() {}, nil
	}

	lockCtx := ctx
	if s.cycleLockTimeout > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, s.cycleLockTimeout)
		defer cancel()
	}

	release, err := s.cycleLock.Acquire(lockCtx)
	if err == nil {
		return release, nil
	}

	if errors.Is(err, lock_utils.ErrLockNotAcquired) {
		s.logger.Warn("Ingestion cycle lock is held elsewhere", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", ErrCycleInProgress, err)
	}

	s.logger.Error("Ingestion cycle lock is unavailable, running under the in-process guard only",
		slog.String("error", err.Error()))
	return func() {}, nil
}

func (s *LogIngestionService) validateProbeCount(count int) error {
	if count < 0 {
		return &logs_core.ValidationError{
			Code:    logs_core.ErrorInvalidProbeCount,
			Message: "count must be a non-negative integer",
			Field:   "count",
		}
	}

	if s.maxProbeCount > 0 && count > s.maxProbeCount {
		return &logs_core.ValidationError{
			Code:    logs_core.ErrorProbeCountTooLarge,
			Message: fmt.Sprintf("count cannot exceed %d", s.maxProbeCount),
			Field:   "count",
		}
	}

	return nil
}

func (s *LogIngestionService) notifyRefreshListeners() {
	for _, listener := range s.refreshListeners {
		listener.OnLogsRefreshed()
	}
}
