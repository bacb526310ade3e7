package logs_testing

import (
	"context"
	"errors"
	"sync"

	logs_core "logpulse/internal/features/logs/core"

	"github.com/google/uuid"
)

// InMemoryLogRecordStore is a LogRecordStore backed by a slice.
type InMemoryLogRecordStore struct {
	mu      sync.Mutex
	records []*logs_core.LogRecord

	DeleteCalls int
	CreateCalls int

	DeleteErr error
	CreateErr error
}

func NewInMemoryLogRecordStore() *InMemoryLogRecordStore {
	return &InMemoryLogRecordStore{}
}

func (s *InMemoryLogRecordStore) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.DeleteCalls++
	if s.DeleteErr != nil {
		return s.DeleteErr
	}

	s.records = nil
	return nil
}

func (s *InMemoryLogRecordStore) CreateBatch(ctx context.Context, records []*logs_core.LogRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.CreateCalls++
	if s.CreateErr != nil {
		return s.CreateErr
	}

	for _, record := range records {
		if record.ID == uuid.Nil {
			record.ID = uuid.New()
		}
		s.records = append(s.records, record)
	}

	return nil
}

func (s *InMemoryLogRecordStore) FindByError(ctx context.Context, isError bool) ([]*logs_core.LogRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*logs_core.LogRecord, 0)
	for _, record := range s.records {
		if record.IsError == isError {
			result = append(result, record)
		}
	}

	return result, nil
}

// Records returns a copy of everything stored.
func (s *InMemoryLogRecordStore) Records() []*logs_core.LogRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]*logs_core.LogRecord(nil), s.records...)
}

// Seed stores records without counting as a CreateBatch call.
func (s *InMemoryLogRecordStore) Seed(records ...*logs_core.LogRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, records...)
}

// FailingLogRecordStore fails every call.
type FailingLogRecordStore struct{}

var ErrStoreUnavailable = errors.New("store unavailable")

func (FailingLogRecordStore) DeleteAll(ctx context.Context) error {
	return ErrStoreUnavailable
}

func (FailingLogRecordStore) CreateBatch(ctx context.Context, records []*logs_core.LogRecord) error {
	return ErrStoreUnavailable
}

func (FailingLogRecordStore) FindByError(ctx context.Context, isError bool) ([]*logs_core.LogRecord, error) {
	return nil, ErrStoreUnavailable
}

// RefreshCounter counts OnLogsRefreshed notifications.
type RefreshCounter struct {
	mu    sync.Mutex
	calls int
}

func (c *RefreshCounter) OnLogsRefreshed() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls++
}

func (c *RefreshCounter) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.calls
}

const SampleLogBlob = "2024/01/10 10:00:00 ERROR database connection pool empty\n" +
	"2024/01/10 10:00:01 INFO server started\n" +
	"2024/01/10 10:00:02 WARNING latency spike detected\n"
