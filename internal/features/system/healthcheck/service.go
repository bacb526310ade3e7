package system_healthcheck

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shirou/gopsutil/v4/disk"
	"golang.org/x/sync/errgroup"
)

const (
	defaultCheckTimeout       = 5 * time.Second
	defaultMaxDiskUsedPercent = 95.0
)

// DependencyCheck verifies one backing service, e.g. the database or the cache.
type DependencyCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// DiskUsageReader returns the used percentage of the filesystem holding path.
type DiskUsageReader func(ctx context.Context, path string) (float64, error)

func ReadDiskUsedPercent(ctx context.Context, path string) (float64, error) {
	usage, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return 0, err
	}

	return usage.UsedPercent, nil
}

type HealthcheckService struct {
	checks             []DependencyCheck
	diskUsageReader    DiskUsageReader
	diskPath           string
	maxDiskUsedPercent float64
	checkTimeout       time.Duration
	logger             *slog.Logger
}

func NewHealthcheckService(
	checks []DependencyCheck,
	diskUsageReader DiskUsageReader,
	diskPath string,
	logger *slog.Logger,
) *HealthcheckService {
	return &HealthcheckService{
		checks:             checks,
		diskUsageReader:    diskUsageReader,
		diskPath:           diskPath,
		maxDiskUsedPercent: defaultMaxDiskUsedPercent,
		checkTimeout:       defaultCheckTimeout,
		logger:             logger,
	}
}

// IsHealthy runs every dependency check and the disk check concurrently and
// returns the first failure.
func (s *HealthcheckService) IsHealthy(ctx context.Context) (*HealthStatusDTO, error) {
	ctx, cancel := context.WithTimeout(ctx, s.checkTimeout)
	defer cancel()

	status := &HealthStatusDTO{Status: "ok"}

	group, groupCtx := errgroup.WithContext(ctx)

	for _, check := range s.checks {
		group.Go(func() error {
			if err := check.Check(groupCtx); err != nil {
				return fmt.Errorf("%s check failed: %w", check.Name, err)
			}
			return nil
		})
	}

	if s.diskUsageReader != nil {
		group.Go(func() error {
			usedPercent, err := s.diskUsageReader(groupCtx, s.diskPath)
			if err != nil {
				return fmt.Errorf("disk check failed: %w", err)
			}

			status.DiskUsedPercent = usedPercent
			if usedPercent > s.maxDiskUsedPercent {
				return fmt.Errorf("disk check failed: %.2f%% used, limit is %.0f%%", usedPercent, s.maxDiskUsedPercent)
			}

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		s.logger.Warn("Healthcheck failed", slog.String("error", err.Error()))
		return nil, err
	}

	return status, nil
}
