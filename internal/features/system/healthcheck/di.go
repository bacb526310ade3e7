package system_healthcheck

import (
	"context"
	"sync"

	"logpulse/internal/cache"
	"logpulse/internal/config"
	"logpulse/internal/storage"
	"logpulse/internal/util/logger"
)

var (
	once                  sync.Once
	healthcheckService    *HealthcheckService
	healthcheckController *HealthcheckController
)

func setUp() {
	checks := []DependencyCheck{
		{
			Name: "database",
			Check: func(ctx context.Context) error {
				return storage.GetDb().WithContext(ctx).Exec("SELECT 1").Error
			},
		},
		{
			Name:  "cache",
			Check: cache.Ping,
		},
	}

	diskPath := config.GetEnv().BackendRootPath
	if diskPath == "" {
		diskPath = "."
	}

	healthcheckService = NewHealthcheckService(checks, ReadDiskUsedPercent, diskPath, logger.GetLogger())
	healthcheckController = &HealthcheckController{
		healthcheckService,
	}
}

func GetHealthcheckController() *HealthcheckController {
	once.Do(setUp)
	return healthcheckController
}
