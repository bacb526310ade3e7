package logs_ingestion

import (
	"net/http"
	"sync"
	"time"

	"logpulse/internal/cache"
	"logpulse/internal/config"
	logs_core "logpulse/internal/features/logs/core"
	logs_parsing "logpulse/internal/features/logs/parsing"
	lock_utils "logpulse/internal/util/lock"
	"logpulse/internal/util/logger"

	"golang.org/x/time/rate"
)

const cycleLockKey = "lp_ingestion:cycle_lock"

var (
	once                sync.Once
	probeWorkerPool     *ProbeWorkerPool
	logIngestionService *LogIngestionService
	ingestionController *IngestionController
)

func setUp() {
	env := config.GetEnv()
	log := logger.GetLogger()

	probeWorkerPool = NewProbeWorkerPool(
		&http.Client{
			Timeout: env.ProbeTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: max(env.ProbeWorkers, 2),
				IdleConnTimeout:     90 * time.Second,
			},
		},
		env.BalanceCheckURL,
		env.ProbeWorkers,
		env.ProbesPerSecond,
		log,
	)

	logSourceClient := NewLogSourceClient(
		&http.Client{Timeout: env.LogFetchTimeout},
		env.LogSourceURL,
		env.MaxLogBlobBytes,
		log,
	)

	logIngestionService = NewLogIngestionService(
		logs_core.GetLogRecordRepository(),
		probeWorkerPool,
		logSourceClient,
		logs_parsing.NewLineParser(env.SkipShortLines),
		env.MaxProbeCount,
		log,
	)

	logIngestionService.SetCycleLock(
		lock_utils.NewValkeyLock(cache.GetCache(), cycleLockKey, env.CycleLockTTL),
		env.CycleLockWait,
	)

	ingestionController = &IngestionController{
		logIngestionService: logIngestionService,
		triggerLimiter:      rate.NewLimiter(rate.Limit(2), 5), // 2 RPS with burst of 5
	}
}

func GetProbeWorkerPool() *ProbeWorkerPool {
	once.Do(setUp)
	return probeWorkerPool
}

func GetLogIngestionService() *LogIngestionService {
	once.Do(setUp)
	return logIngestionService
}

func GetIngestionController() *IngestionController {
	once.Do(setUp)
	return ingestionController
}
