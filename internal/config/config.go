package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	env_utils "logpulse/internal/util/env"
	"logpulse/internal/util/logger"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

var log = logger.GetLogger()

type EnvVariables struct {
	IsTesting       bool
	DatabaseDsn     string            `env:"DATABASE_DSN"       env-required:"true"`
	EnvMode         env_utils.EnvMode `env:"ENV_MODE"           env-required:"true"`
	BackendRootPath string            `env:"BACKEND_ROOT_PATH"`
	ServerPort      string            `env:"SERVER_PORT"        env-default:"8080"`
	// cache
	ValkeyHost     string        `env:"VALKEY_HOST"      env-required:"true"`
	ValkeyPort     string        `env:"VALKEY_PORT"      env-required:"true"`
	ValkeyUsername string        `env:"VALKEY_USERNAME"`
	ValkeyPassword string        `env:"VALKEY_PASSWORD"`
	ValkeyIsSsl    bool          `env:"VALKEY_IS_SSL"    env-default:"false"`
	ReportCacheTTL time.Duration `env:"REPORT_CACHE_TTL" env-default:"10m"`
	// upstreams
	LogSourceURL    string        `env:"LOG_SOURCE_URL"     env-default:"https://latest-960957615762.me-central1.run.app/getlogs"`
	BalanceCheckURL string        `env:"BALANCE_CHECK_URL"  env-default:"https://latest-960957615762.me-central1.run.app/getbalance"`
	LogFetchTimeout time.Duration `env:"LOG_FETCH_TIMEOUT"  env-default:"30s"`
	MaxLogBlobBytes int64         `env:"MAX_LOG_BLOB_BYTES" env-default:"52428800"`
	// probes
	ProbeWorkers    int           `env:"PROBE_WORKERS"     env-default:"15"`
	ProbesPerSecond float64       `env:"PROBES_PER_SECOND" env-default:"0"`
	MaxProbeCount   int           `env:"MAX_PROBE_COUNT"   env-default:"10000"`
	ProbeTimeout    time.Duration `env:"PROBE_TIMEOUT"     env-default:"10s"`
	// cross-instance cycle lock
	CycleLockTTL  time.Duration `env:"CYCLE_LOCK_TTL"  env-default:"5m"`
	CycleLockWait time.Duration `env:"CYCLE_LOCK_WAIT" env-default:"30s"`
	// scheduled refresh, disabled when the interval is zero
	IngestInterval      time.Duration `env:"INGEST_INTERVAL"       env-default:"0s"`
	ScheduledProbeCount int           `env:"SCHEDULED_PROBE_COUNT" env-default:"0"`
	// parsing
	SkipShortLines bool `env:"SKIP_SHORT_LINES" env-default:"false"`
}

var (
	env  EnvVariables
	once sync.Once
)

func GetEnv() EnvVariables {
	once.Do(loadEnvVariables)
	return env
}

func loadEnvVariables() {
	cwd, err := os.Getwd()
	if err != nil {
		log.Warn("could not get current working directory", "error", err)
		cwd = "."
	}

	backendRoot := cwd
	for {
		if _, err := os.Stat(filepath.Join(backendRoot, "go.mod")); err == nil {
			break
		}

		parent := filepath.Dir(backendRoot)
		if parent == backendRoot {
			break
		}

		backendRoot = parent
	}

	envPaths := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(backendRoot, ".env"),
	}

	var loaded bool
	for _, path := range envPaths {
		log.Info("Trying to load .env", "path", path)
		if err := godotenv.Load(path); err == nil {
			log.Info("Successfully loaded .env", "path", path)
			loaded = true
			break
		}
	}

	// containers usually pass variables directly, so a missing file is not fatal
	if !loaded {
		log.Warn("No .env file found, reading configuration from process environment")
	}

	err = cleanenv.ReadEnv(&env)
	if err != nil {
		log.Error("Configuration could not be loaded", "error", err)
		os.Exit(1)
	}

	if env.BackendRootPath == "" {
		env.BackendRootPath = backendRoot
	}

	for _, arg := range os.Args {
		if strings.Contains(arg, "test") {
			env.IsTesting = true
			break
		}
	}

	if !env.EnvMode.IsValid() {
		log.Error("ENV_MODE is invalid", "mode", env.EnvMode)
		os.Exit(1)
	}
	log.Info("ENV_MODE loaded", "mode", env.EnvMode)

	if env.ProbeWorkers <= 0 {
		log.Error("PROBE_WORKERS must be positive", "value", env.ProbeWorkers)
		os.Exit(1)
	}
	if env.MaxProbeCount < 0 {
		log.Error("MAX_PROBE_COUNT must not be negative", "value", env.MaxProbeCount)
		os.Exit(1)
	}
	if env.ScheduledProbeCount < 0 {
		log.Error("SCHEDULED_PROBE_COUNT must not be negative", "value", env.ScheduledProbeCount)
		os.Exit(1)
	}
	if env.CycleLockTTL <= 0 {
		log.Error("CYCLE_LOCK_TTL must be positive", "value", env.CycleLockTTL)
		os.Exit(1)
	}
	if env.ProbesPerSecond < 0 {
		log.Error("PROBES_PER_SECOND must not be negative", "value", env.ProbesPerSecond)
		os.Exit(1)
	}

	log.Info("Environment variables loaded successfully!",
		"logSourceUrl", env.LogSourceURL,
		"balanceCheckUrl", env.BalanceCheckURL,
		"probeWorkers", env.ProbeWorkers,
		"skipShortLines", env.SkipShortLines)
}
