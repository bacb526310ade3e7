package logs_ingestion

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	logs_core "logpulse/internal/features/logs/core"
	logs_parsing "logpulse/internal/features/logs/parsing"
	logs_testing "logpulse/internal/features/logs/testing"
	lock_utils "logpulse/internal/util/lock"
	"logpulse/internal/util/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valkey-io/valkey-go"
)

func Test_IngestLogs_WithSampleBlob_StoresAllRecords(t *testing.T) {
	source := createLogSourceServer(t, http.StatusOK, logs_testing.SampleLogBlob)
	balance := createBalanceServer(t, http.StatusOK, 0)
	store := logs_testing.NewInMemoryLogRecordStore()
	service := createTestService(t, store, source.URL, balance.URL, 15)

	result, err := service.IngestLogs(context.Background(), 0)

	require.NoError(t, err)
	assert.Equal(t, IngestionStatusCompleted, result.Status)
	assert.Equal(t, 3, result.SavedRecords)
	assert.Equal(t, 2, result.ErrorRecords)
	assert.Equal(t, 3, result.TotalLines)
	assert.Equal(t, 0, result.SkippedLines)

	records := store.Records()
	require.Len(t, records, 3)
	assert.Equal(t, "ERROR database connection pool empty", records[0].Message)
	assert.True(t, records[0].IsError)
	assert.False(t, records[1].IsError)
	assert.True(t, records[2].IsError)

	errorsOnly, err := store.FindByError(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, errorsOnly, 2)
}

func Test_IngestLogs_WithProbeCount_SendsEveryProbeBeforeFetching(t *testing.T) {
	balance := createBalanceServer(t, http.StatusOK, 0)

	var probesSeenAtFetch atomic.Int64
	source := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		probesSeenAtFetch.Store(balance.hits.Load())
		_, _ = w.Write([]byte(logs_testing.SampleLogBlob))
	}))
	t.Cleanup(source.Close)

	store := logs_testing.NewInMemoryLogRecordStore()
	service := createTestService(t, store, source.URL, balance.URL, 4)

	result, err := service.IngestLogs(context.Background(), 25)

	require.NoError(t, err)
	assert.Equal(t, int64(25), balance.hits.Load())
	assert.Equal(t, int64(25), probesSeenAtFetch.Load())
	assert.Equal(t, 25, result.RequestedProbes)
	assert.Equal(t, 0, result.FailedProbes)
}

func Test_IngestLogs_WithSlowProbes_NeverExceedsWorkerLimit(t *testing.T) {
	source := createLogSourceServer(t, http.StatusOK, logs_testing.SampleLogBlob)
	balance := createBalanceServer(t, http.StatusOK, 20*time.Millisecond)
	store := logs_testing.NewInMemoryLogRecordStore()
	service := createTestService(t, store, source.URL, balance.URL, 3)

	_, err := service.IngestLogs(context.Background(), 12)

	require.NoError(t, err)
	assert.Equal(t, int64(12), balance.hits.Load())
	assert.LessOrEqual(t, balance.maxInFlight.Load(), int64(3))
}

func Test_IngestLogs_WithFailingProbes_StillCompletes(t *testing.T) {
	source := createLogSourceServer(t, http.StatusOK, logs_testing.SampleLogBlob)
	balance := createBalanceServer(t, http.StatusInternalServerError, 0)
	store := logs_testing.NewInMemoryLogRecordStore()
	service := createTestService(t, store, source.URL, balance.URL, 5)

	result, err := service.IngestLogs(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, IngestionStatusCompleted, result.Status)
	assert.Equal(t, 7, result.FailedProbes)
	assert.Len(t, store.Records(), 3)
}

func Test_IngestLogs_WithUnreachableBalanceEndpoint_StillCompletes(t *testing.T) {
	source := createLogSourceServer(t, http.StatusOK, logs_testing.SampleLogBlob)
	balance := createBalanceServer(t, http.StatusOK, 0)
	balance.Close()
	store := logs_testing.NewInMemoryLogRecordStore()
	service := createTestService(t, store, source.URL, balance.URL, 5)

	result, err := service.IngestLogs(context.Background(), 3)

	require.NoError(t, err)
	assert.Equal(t, 3, result.FailedProbes)
	assert.Len(t, store.Records(), 3)
}

func Test_IngestLogs_WithStoppedProbePool_CountsProbesAsFailed(t *testing.T) {
	source := createLogSourceServer(t, http.StatusOK, logs_testing.SampleLogBlob)
	balance := createBalanceServer(t, http.StatusOK, 0)
	store := logs_testing.NewInMemoryLogRecordStore()
	pool := NewProbeWorkerPool(http.DefaultClient, balance.URL, 2, 0, logger.GetLogger())
	service := NewLogIngestionService(
		store,
		pool,
		NewLogSourceClient(http.DefaultClient, source.URL, 0, logger.GetLogger()),
		logs_parsing.NewLineParser(false),
		100,
		logger.GetLogger(),
	)

	result, err := service.IngestLogs(context.Background(), 4)

	require.NoError(t, err)
	assert.Equal(t, IngestionStatusCompleted, result.Status)
	assert.Equal(t, 4, result.FailedProbes)
	assert.Equal(t, int64(0), balance.hits.Load())
}

func Test_IngestLogs_WithNegativeCount_FailsBeforeAnySideEffect(t *testing.T) {
	source := createLogSourceServer(t, http.StatusOK, logs_testing.SampleLogBlob)
	balance := createBalanceServer(t, http.StatusOK, 0)
	store := logs_testing.NewInMemoryLogRecordStore()
	store.Seed(&logs_core.LogRecord{Message: "INFO kept"})
	service := createTestService(t, store, source.URL, balance.URL, 5)

	result, err := service.IngestLogs(context.Background(), -1)

	assert.Nil(t, result)
	var validationErr *logs_core.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, logs_core.ErrorInvalidProbeCount, validationErr.Code)
	assert.Equal(t, 0, store.DeleteCalls)
	assert.Len(t, store.Records(), 1)
	assert.Equal(t, int64(0), balance.hits.Load())
	assert.Equal(t, int64(0), source.hits.Load())
}

func Test_IngestLogs_WithCountAboveMaximum_ReturnsValidationError(t *testing.T) {
	source := createLogSourceServer(t, http.StatusOK, logs_testing.SampleLogBlob)
	balance := createBalanceServer(t, http.StatusOK, 0)
	store := logs_testing.NewInMemoryLogRecordStore()
	service := createTestService(t, store, source.URL, balance.URL, 5)

	_, err := service.IngestLogs(context.Background(), 101)

	var validationErr *logs_core.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, logs_core.ErrorProbeCountTooLarge, validationErr.Code)
	assert.Equal(t, 0, store.DeleteCalls)
}

func Test_IngestLogs_WithEmptyBody_LeavesStoreEmpty(t *testing.T) {
	source := createLogSourceServer(t, http.StatusOK, "")
	balance := createBalanceServer(t, http.StatusOK, 0)
	store := logs_testing.NewInMemoryLogRecordStore()
	store.Seed(&logs_core.LogRecord{Message: "ERROR from previous cycle", IsError: true})
	service := createTestService(t, store, source.URL, balance.URL, 5)

	result, err := service.IngestLogs(context.Background(), 0)

	require.NoError(t, err)
	assert.Equal(t, IngestionStatusSourceEmpty, result.Status)
	assert.Empty(t, store.Records())
	assert.Equal(t, 0, store.CreateCalls)
}

func Test_IngestLogs_WithFailingLogSource_ReturnsSoftFailure(t *testing.T) {
	tests := []struct {
		name   string
		source func(t *testing.T) string
	}{
		{"Server error status", func(t *testing.T) string {
			return createLogSourceServer(t, http.StatusServiceUnavailable, "down").URL
		}},
		{"Unreachable server", func(t *testing.T) string {
			server := createLogSourceServer(t, http.StatusOK, logs_testing.SampleLogBlob)
			server.Close()
			return server.URL
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			balance := createBalanceServer(t, http.StatusOK, 0)
			store := logs_testing.NewInMemoryLogRecordStore()
			store.Seed(&logs_core.LogRecord{Message: "INFO from previous cycle"})
			service := createTestService(t, store, tt.source(t), balance.URL, 5)

			result, err := service.IngestLogs(context.Background(), 2)

			require.NoError(t, err)
			assert.Equal(t, IngestionStatusSourceUnavailable, result.Status)
			assert.Equal(t, 0, result.SavedRecords)
			assert.Empty(t, store.Records())
			assert.Equal(t, int64(2), balance.hits.Load())
		})
	}
}

func Test_IngestLogs_CalledTwiceWithSameBlob_StoresSameRecords(t *testing.T) {
	source := createLogSourceServer(t, http.StatusOK, logs_testing.SampleLogBlob)
	balance := createBalanceServer(t, http.StatusOK, 0)
	store := logs_testing.NewInMemoryLogRecordStore()
	service := createTestService(t, store, source.URL, balance.URL, 5)

	_, err := service.IngestLogs(context.Background(), 0)
	require.NoError(t, err)
	first := extractSnapshots(store.Records())

	_, err = service.IngestLogs(context.Background(), 0)
	require.NoError(t, err)
	second := extractSnapshots(store.Records())

	assert.Equal(t, first, second)
	assert.Len(t, second, 3)
}

func Test_IngestLogs_WithStoreFailure_ReturnsError(t *testing.T) {
	source := createLogSourceServer(t, http.StatusOK, logs_testing.SampleLogBlob)
	balance := createBalanceServer(t, http.StatusOK, 0)
	service := createTestService(t, logs_testing.FailingLogRecordStore{}, source.URL, balance.URL, 5)

	result, err := service.IngestLogs(context.Background(), 0)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, logs_testing.ErrStoreUnavailable)
	assert.Equal(t, int64(0), source.hits.Load())
}

func Test_IngestLogs_WithCreateFailure_ReturnsError(t *testing.T) {
	source := createLogSourceServer(t, http.StatusOK, logs_testing.SampleLogBlob)
	balance := createBalanceServer(t, http.StatusOK, 0)
	store := logs_testing.NewInMemoryLogRecordStore()
	store.CreateErr = errors.New("disk full")
	service := createTestService(t, store, source.URL, balance.URL, 5)

	_, err := service.IngestLogs(context.Background(), 0)

	assert.ErrorContains(t, err, "disk full")
}

func Test_IngestLogs_WithCancelledContext_RunsToCompletion(t *testing.T) {
	source := createLogSourceServer(t, http.StatusOK, logs_testing.SampleLogBlob)
	balance := createBalanceServer(t, http.StatusOK, 0)
	store := logs_testing.NewInMemoryLogRecordStore()
	service := createTestService(t, store, source.URL, balance.URL, 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := service.IngestLogs(ctx, 3)

	require.NoError(t, err)
	assert.Equal(t, IngestionStatusCompleted, result.Status)
	assert.Equal(t, 0, result.FailedProbes)
	assert.Len(t, store.Records(), 3)
}

func Test_IngestLogs_WithGzipBlob_DecompressesBeforeParsing(t *testing.T) {
	var compressed bytes.Buffer
	writer := gzip.NewWriter(&compressed)
	_, err := writer.Write([]byte(logs_testing.SampleLogBlob))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	source := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/gzip")
		_, _ = w.Write(compressed.Bytes())
	}))
	t.Cleanup(source.Close)

	balance := createBalanceServer(t, http.StatusOK, 0)
	store := logs_testing.NewInMemoryLogRecordStore()
	service := createTestService(t, store, source.URL, balance.URL, 5)

	result, err := service.IngestLogs(context.Background(), 0)

	require.NoError(t, err)
	assert.Equal(t, 3, result.SavedRecords)
}

func Test_IngestLogs_WithMalformedLines_SkipsThemAndKeepsTheRest(t *testing.T) {
	blob := "2024/01/10 10:00:00 ERROR internal server error\n" +
		"2024/13/10 10:00:00 ERROR impossible month\n" +
		"\n" +
		"short\n"
	source := createLogSourceServer(t, http.StatusOK, blob)
	balance := createBalanceServer(t, http.StatusOK, 0)
	store := logs_testing.NewInMemoryLogRecordStore()
	service := createTestService(t, store, source.URL, balance.URL, 5)

	result, err := service.IngestLogs(context.Background(), 0)

	require.NoError(t, err)
	assert.Equal(t, 1, result.SkippedLines)
	assert.Equal(t, 1, result.BlankLines)
	assert.Equal(t, 2, result.SavedRecords)
	assert.Equal(t, 1, result.ErrorRecords)
}

func Test_IngestLogs_NotifiesRefreshListeners(t *testing.T) {
	balance := createBalanceServer(t, http.StatusOK, 0)

	completed := createLogSourceServer(t, http.StatusOK, logs_testing.SampleLogBlob)
	completedService := createTestService(t, logs_testing.NewInMemoryLogRecordStore(), completed.URL, balance.URL, 2)
	completedCounter := &logs_testing.RefreshCounter{}
	completedService.AddRefreshListener(completedCounter)

	failed := createLogSourceServer(t, http.StatusBadGateway, "")
	failedService := createTestService(t, logs_testing.NewInMemoryLogRecordStore(), failed.URL, balance.URL, 2)
	failedCounter := &logs_testing.RefreshCounter{}
	failedService.AddRefreshListener(failedCounter)

	_, err := completedService.IngestLogs(context.Background(), 0)
	require.NoError(t, err)
	_, err = failedService.IngestLogs(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, 2, completedCounter.Calls())
	assert.Equal(t, 1, failedCounter.Calls())
}

func Test_IngestLogs_ConcurrentCalls_DoNotInterleaveCycles(t *testing.T) {
	source := createLogSourceServer(t, http.StatusOK, logs_testing.SampleLogBlob)
	balance := createBalanceServer(t, http.StatusOK, 5*time.Millisecond)
	store := logs_testing.NewInMemoryLogRecordStore()
	service := createTestService(t, store, source.URL, balance.URL, 4)

	var wg sync.WaitGroup
	for i := range 6 {
		wg.Add(1)
		go func(count int) {
			defer wg.Done()
			_, err := service.IngestLogs(context.Background(), count)
			assert.NoError(t, err)
		}(i % 3)
	}
	wg.Wait()

	assert.Len(t, store.Records(), 3)
}

type countingServer struct {
	*httptest.Server
	hits        atomic.Int64
	inFlight    atomic.Int64
	maxInFlight atomic.Int64
}

func createLogSourceServer(t *testing.T, status int, body string) *countingServer {
	return createCountingServer(t, status, body, 0)
}

func createBalanceServer(t *testing.T, status int, delay time.Duration) *countingServer {
	return createCountingServer(t, status, `{"balance": 100}`, delay)
}

func createCountingServer(t *testing.T, status int, body string, delay time.Duration) *countingServer {
	t.Helper()

	server := &countingServer{}
	server.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		server.hits.Add(1)

		current := server.inFlight.Add(1)
		defer server.inFlight.Add(-1)
		for {
			observed := server.maxInFlight.Load()
			if current <= observed || server.maxInFlight.CompareAndSwap(observed, current) {
				break
			}
		}

		if delay > 0 {
			time.Sleep(delay)
		}

		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	return server
}

func createTestService(
	t *testing.T,
	store logs_core.LogRecordStore,
	sourceURL, balanceURL string,
	workers int,
) *LogIngestionService {
	t.Helper()

	log := logger.GetLogger()

	pool := NewProbeWorkerPool(&http.Client{Timeout: 5 * time.Second}, balanceURL, workers, 0, log)
	pool.StartWorkers()
	t.Cleanup(pool.StopWorkers)

	return NewLogIngestionService(
		store,
		pool,
		NewLogSourceClient(&http.Client{Timeout: 5 * time.Second}, sourceURL, 1024*1024, log),
		logs_parsing.NewLineParser(false),
		100,
		log,
	)
}

type recordSnapshot struct {
	Timestamp time.Time
	Message   string
	IsError   bool
}

func extractSnapshots(records []*logs_core.LogRecord) []recordSnapshot {
	snapshots := make([]recordSnapshot, 0, len(records))
	for _, record := range records {
		snapshot := recordSnapshot{Message: record.Message, IsError: record.IsError}
		if record.Timestamp != nil {
			snapshot.Timestamp = *record.Timestamp
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots
}

func Test_IngestLogs_WithHeldCycleLock_FailsWithoutTouchingStore(t *testing.T) {
	source := createLogSourceServer(t, http.StatusOK, logs_testing.SampleLogBlob)
	balance := createBalanceServer(t, http.StatusOK, 0)
	store := logs_testing.NewInMemoryLogRecordStore()
	service := createTestService(t, store, source.URL, balance.URL, 2)
	service.SetCycleLock(&stubCycleLock{err: lock_utils.ErrLockNotAcquired}, time.Second)

	result, err := service.IngestLogs(context.Background(), 2)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrCycleInProgress)
	assert.Equal(t, 0, store.DeleteCalls)
	assert.Equal(t, int64(0), balance.hits.Load())
}

func Test_IngestLogs_WithFreeCycleLock_ReleasesItAfterCycle(t *testing.T) {
	source := createLogSourceServer(t, http.StatusOK, logs_testing.SampleLogBlob)
	balance := createBalanceServer(t, http.StatusOK, 0)
	store := logs_testing.NewInMemoryLogRecordStore()
	service := createTestService(t, store, source.URL, balance.URL, 2)
	lock := &stubCycleLock{}
	service.SetCycleLock(lock, time.Second)

	_, err := service.IngestLogs(context.Background(), 0)
	require.NoError(t, err)
	_, err = service.IngestLogs(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, 2, lock.acquired)
	assert.Equal(t, 2, lock.released)
}

func Test_IngestLogs_WithSharedValkeyLock_SerializesServices(t *testing.T) {
	server := miniredis.RunT(t)
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:   []string{server.Addr()},
		DisableCache:  true,
		ClientSetInfo: valkey.DisableClientSetInfo,
	})
	require.NoError(t, err)
	t.Cleanup(client.Close)

	source := createLogSourceServer(t, http.StatusOK, logs_testing.SampleLogBlob)
	balance := createBalanceServer(t, http.StatusOK, 10*time.Millisecond)
	store := logs_testing.NewInMemoryLogRecordStore()

	var wg sync.WaitGroup
	for range 3 {
		service := createTestService(t, store, source.URL, balance.URL, 2)
		service.SetCycleLock(
			lock_utils.NewValkeyLock(client, "test:cycle_lock", time.Minute).WithRetryInterval(5*time.Millisecond),
			10*time.Second,
		)

		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.IngestLogs(context.Background(), 4)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, store.Records(), 3)
	assert.Equal(t, 3, store.DeleteCalls)
	assert.Equal(t, 3, store.CreateCalls)
	assert.False(t, server.Exists("test:cycle_lock"))
}

func Test_IngestLogs_WithUnreachableValkeyLock_RunsCycleAfterRetrying(t *testing.T) {
	server := miniredis.RunT(t)
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:   []string{server.Addr()},
		DisableCache:  true,
		ClientSetInfo: valkey.DisableClientSetInfo,
	})
	require.NoError(t, err)
	t.Cleanup(client.Close)
	server.Close()

	source := createLogSourceServer(t, http.StatusOK, logs_testing.SampleLogBlob)
	balance := createBalanceServer(t, http.StatusOK, 0)
	store := logs_testing.NewInMemoryLogRecordStore()
	service := createTestService(t, store, source.URL, balance.URL, 2)
	service.SetCycleLock(
		lock_utils.NewValkeyLock(client, "test:cycle_lock", time.Minute).WithRetryInterval(5*time.Millisecond),
		100*time.Millisecond,
	)

	result, err := service.IngestLogs(context.Background(), 3)

	require.NoError(t, err)
	assert.NotErrorIs(t, err, ErrCycleInProgress)
	assert.Equal(t, IngestionStatusCompleted, result.Status)
	assert.Len(t, store.Records(), 3)
	assert.Equal(t, int64(3), balance.hits.Load())
}

func Test_IngestLogs_WithUnknownCycleLockError_RunsCycle(t *testing.T) {
	source := createLogSourceServer(t, http.StatusOK, logs_testing.SampleLogBlob)
	balance := createBalanceServer(t, http.StatusOK, 0)
	store := logs_testing.NewInMemoryLogRecordStore()
	service := createTestService(t, store, source.URL, balance.URL, 2)
	service.SetCycleLock(&stubCycleLock{err: errors.New("connection reset")}, time.Second)

	_, err := service.IngestLogs(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, 1, store.DeleteCalls)
}

func Test_IngestLogs_WithSameCountInFlight_MarksOnlySecondCallerJoined(t *testing.T) {
	source := createLogSourceServer(t, http.StatusOK, logs_testing.SampleLogBlob)
	balance := createBalanceServer(t, http.StatusOK, 300*time.Millisecond)
	store := logs_testing.NewInMemoryLogRecordStore()
	service := createTestService(t, store, source.URL, balance.URL, 2)

	results := make(chan *IngestionResultDTO, 2)
	go func() {
		result, err := service.IngestLogs(context.Background(), 2)
		assert.NoError(t, err)
		results <- result
	}()

	require.Eventually(t, func() bool {
		return balance.hits.Load() >= 1
	}, 5*time.Second, 5*time.Millisecond)

	second, err := service.IngestLogs(context.Background(), 2)
	require.NoError(t, err)
	first := <-results

	require.NotNil(t, first)
	assert.False(t, first.Joined)
	assert.True(t, second.Joined)
	assert.Equal(t, first.CycleID, second.CycleID)
	assert.Equal(t, int64(2), balance.hits.Load())
	assert.Equal(t, int64(1), source.hits.Load())
}

type stubCycleLock struct {
	mu       sync.Mutex
	err      error
	acquired int
	released int
}

func (l *stubCycleLock) Acquire(ctx context.Context) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.err != nil {
		return nil, l.err
	}

	l.acquired++
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.released++
	}, nil
}
