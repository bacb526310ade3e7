package logs_querying

import (
	"sync"

	"logpulse/internal/cache"
	"logpulse/internal/config"
	logs_classification "logpulse/internal/features/logs/classification"
	logs_core "logpulse/internal/features/logs/core"
	logs_ingestion "logpulse/internal/features/logs/ingestion"
	cache_utils "logpulse/internal/util/cache"
	"logpulse/internal/util/logger"
)

const (
	distributionCachePrefix = "lp_distribution:"
	generationCounterKey    = "lp_distribution:generation"
)

var (
	once               sync.Once
	logQueryService    *LogQueryService
	logQueryController *LogQueryController
)

func setUp() {
	distributionCache := cache_utils.NewCacheUtil[logs_classification.DistributionReport](
		cache.GetCache(),
		distributionCachePrefix,
	).WithExpiry(config.GetEnv().ReportCacheTTL)

	logQueryService = NewLogQueryService(
		logs_core.GetLogRecordRepository(),
		distributionCache,
		cache_utils.NewValkeyCounter(cache.GetCache(), generationCounterKey),
		logger.GetLogger(),
	)

	logQueryController = &LogQueryController{
		logQueryService,
	}
}

func GetLogQueryService() *LogQueryService {
	once.Do(setUp)
	return logQueryService
}

func GetLogQueryController() *LogQueryController {
	once.Do(setUp)
	return logQueryController
}

func SetupDependencies() {
	logs_ingestion.GetLogIngestionService().AddRefreshListener(GetLogQueryService())
}
