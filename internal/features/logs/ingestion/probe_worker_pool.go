package logs_ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

var ErrProbePoolStopped = errors.New("probe worker pool is not running")

type ProbeSummary struct {
	Requested int
	Failed    int
}

type probeJob struct {
	ctx     context.Context
	results chan<- error
}

// ProbeWorkerPool sends fire-and-forget GET requests to the balance-check
// endpoint with a fixed number of workers. It is created once, started with
// StartWorkers and stopped with StopWorkers. Probes cut off by StopWorkers
// count as failed.
type ProbeWorkerPool struct {
	client       *http.Client
	url          string
	workersCount int
	limiter      *rate.Limiter
	logger       *slog.Logger

	jobs    chan probeJob
	mu      sync.RWMutex
	running bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewProbeWorkerPool creates a stopped pool. probesPerSecond <= 0 disables pacing.
func NewProbeWorkerPool(
	client *http.Client,
	url string,
	workersCount int,
	probesPerSecond float64,
	logger *slog.Logger,
) *ProbeWorkerPool {
	var limiter *rate.Limiter
	if probesPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(probesPerSecond), max(int(probesPerSecond), 1))
	}

	return &ProbeWorkerPool{
		client:       client,
		url:          url,
		workersCount: max(workersCount, 1),
		limiter:      limiter,
		logger:       logger,
		jobs:         make(chan probeJob),
	}
}

func (p *ProbeWorkerPool) StartWorkers() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return
	}

	p.ctx, p.cancel = context.WithCancel(context.Background())

	for i := range p.workersCount {
		p.wg.Add(1)
		go p.runWorker(p.ctx, i)
	}

	p.running = true

	p.logger.Info("Probe workers started",
		slog.Int("workersCount", p.workersCount),
		slog.String("url", p.url))
}

// StopWorkers stops accepting probes and waits for in-flight ones to finish.
func (p *ProbeWorkerPool) StopWorkers() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}

	p.running = false
	p.cancel()
	p.mu.Unlock()

	p.wg.Wait()

	p.logger.Info("Probe workers stopped")
}

// SendProbes issues count probes and blocks until every one of them has
// finished. Individual probe failures are logged and counted, never returned.
func (p *ProbeWorkerPool) SendProbes(ctx context.Context, count int) (*ProbeSummary, error) {
	summary := &ProbeSummary{Requested: count}
	if count <= 0 {
		return summary, nil
	}

	p.mu.RLock()
	running, poolCtx := p.running, p.ctx
	p.mu.RUnlock()

	if !running {
		return nil, ErrProbePoolStopped
	}

	// probes stop pacing and abort as soon as the pool stops, whatever ctx says
	jobCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stopOnPoolStop := context.AfterFunc(poolCtx, cancel)
	defer stopOnPoolStop()

	results := make(chan error, count)

	go func() {
		for submitted := 0; submitted < count; submitted++ {
			select {
			case p.jobs <- probeJob{ctx: jobCtx, results: results}:
			case <-poolCtx.Done():
				for ; submitted < count; submitted++ {
					results <- ErrProbePoolStopped
				}
				return
			}
		}
	}()

	for range count {
		if err := <-results; err != nil {
			summary.Failed++
			p.logger.Info("Balance check probe failed, ignoring", slog.String("error", err.Error()))
		}
	}

	return summary, nil
}

func (p *ProbeWorkerPool) runWorker(ctx context.Context, workerID int) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			p.logger.Debug("Probe worker shutting down", slog.Int("workerID", workerID))
			return

		case job := <-p.jobs:
			job.results <- p.probe(job.ctx)
		}
	}
}

func (p *ProbeWorkerPool) probe(ctx context.Context) error {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("failed to wait for probe slot: %w", err)
		}
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return fmt.Errorf("failed to create probe request: %w", err)
	}

	response, err := p.client.Do(request)
	if err != nil {
		return fmt.Errorf("failed to send probe: %w", err)
	}

	defer func() {
		if closeErr := response.Body.Close(); closeErr != nil {
			p.logger.Error("failed to close probe response body", "error", closeErr)
		}
	}()

	if _, err := io.Copy(io.Discard, response.Body); err != nil {
		return fmt.Errorf("failed to read probe response: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fmt.Errorf("balance check returned status %d", response.StatusCode)
	}

	return nil
}
