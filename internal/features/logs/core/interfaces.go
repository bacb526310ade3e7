package logs_core

import "context"

// LogRecordStore persists log records. The whole set is replaced on every
// ingestion cycle, so there are no per-record updates.
type LogRecordStore interface {
	DeleteAll(ctx context.Context) error
	CreateBatch(ctx context.Context, records []*LogRecord) error
	FindByError(ctx context.Context, isError bool) ([]*LogRecord, error)
}

// LogsRefreshListener is notified after the stored record set changed.
type LogsRefreshListener interface {
	OnLogsRefreshed()
}
