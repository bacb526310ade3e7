package logs_scheduling

import (
	"sync"

	"logpulse/internal/config"
	logs_ingestion "logpulse/internal/features/logs/ingestion"
	"logpulse/internal/util/logger"
)

var (
	once                                sync.Once
	ingestionSchedulerBackgroundService *IngestionSchedulerBackgroundService
)

func GetIngestionSchedulerBackgroundService() *IngestionSchedulerBackgroundService {
	once.Do(func() {
		env := config.GetEnv()

		ingestionSchedulerBackgroundService = NewIngestionSchedulerBackgroundService(
			logs_ingestion.GetLogIngestionService(),
			env.IngestInterval,
			env.ScheduledProbeCount,
			logger.GetLogger(),
		)
	})

	return ingestionSchedulerBackgroundService
}
