package logs_ingestion

import "context"

type BalanceProber interface {
	SendProbes(ctx context.Context, count int) (*ProbeSummary, error)
}

type LogSource interface {
	FetchLogs(ctx context.Context) (string, error)
}

// CycleLock serializes ingestion cycles across processes sharing one record store.
// Acquire reports contention with an error wrapping lock_utils.ErrLockNotAcquired;
// any other error means the lock itself could not be reached.
type CycleLock interface {
	Acquire(ctx context.Context) (func(), error)
}
