package logs_querying

import (
	"context"

	logs_classification "logpulse/internal/features/logs/classification"
)

// DistributionCache is satisfied by cache_utils.CacheUtil[DistributionReport].
type DistributionCache interface {
	Get(key string) *logs_classification.DistributionReport
	Set(key string, item *logs_classification.DistributionReport)
	Invalidate(key string)
}

// GenerationCounter numbers record sets. It must be shared by every instance
// that shares the DistributionCache. Satisfied by cache_utils.ValkeyCounter.
type GenerationCounter interface {
	Current(ctx context.Context) (uint64, error)
	Advance(ctx context.Context) (uint64, error)
}
