package workers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"voice-bridge/internal/observability"
)

var (
	ErrNotStarted   = errors.New("worker pool not started")
	ErrShuttingDown = errors.New("worker pool is shutting down")
)

// ProcessingResult represents the result of processing a job.
type ProcessingResult[T Job] struct {
	Job   T
	Error error
}

// WorkerPoolConfig holds configuration for the worker pool.
type WorkerPoolConfig[T Job] struct {
	// NumWorkers is the number of concurrent workers to run.
	NumWorkers int

	// QueueSize is the size of the job queue buffer.
	// If the queue is full, Submit() will block.
	QueueSize int

	// DrainTimeout is the maximum time to wait for in-flight jobs
	// to complete during graceful shutdown.
	DrainTimeout time.Duration

	// OnResult is called after each job is processed (optional).
	OnResult func(result ProcessingResult[T])
}

// DefaultWorkerPoolConfig returns sensible defaults for a worker pool.
func DefaultWorkerPoolConfig[T Job]() WorkerPoolConfig[T] {
	return WorkerPoolConfig[T]{
		NumWorkers:   2,
		QueueSize:    100,
		DrainTimeout: 30 * time.Second,
	}
}

// pool implements the WorkerPool interface.
type pool[T Job] struct {
	config    WorkerPoolConfig[T]
	processor Processor[T]
	logger    *observability.Logger

	// Job distribution
	jobs chan T
	wg   sync.WaitGroup

	// Lifecycle management. Submit holds the read lock while queueing so the
	// channel is never closed under a sender.
	mu       sync.RWMutex
	started  bool
	draining bool
	stopped  bool
	cancelFn context.CancelFunc
}

// NewWorkerPool creates a new worker pool for processing jobs.
func NewWorkerPool[T Job](
	config WorkerPoolConfig[T],
	processor Processor[T],
	logger *observability.Logger,
) WorkerPool[T] {
	defaults := DefaultWorkerPoolConfig[T]()
	if config.NumWorkers <= 0 {
		config.NumWorkers = defaults.NumWorkers
	}
	if config.QueueSize <= 0 {
		config.QueueSize = defaults.QueueSize
	}
	if config.DrainTimeout <= 0 {
		config.DrainTimeout = defaults.DrainTimeout
	}

	return &pool[T]{
		config:    config,
		processor: processor,
		logger:    logger,
		jobs:      make(chan T, config.QueueSize),
	}
}

// Start initializes the worker pool with N workers.
func (p *pool[T]) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return fmt.Errorf("worker pool already started")
	}
	if p.stopped {
		return fmt.Errorf("worker pool already stopped")
	}

	// Workers outlive the request that started them, only Stop cancels them
	workerCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	p.cancelFn = cancel
	p.started = true

	for i := 0; i < p.config.NumWorkers; i++ {
		p.wg.Add(1)
		go p.worker(workerCtx, i)
	}

	p.logger.Info(ctx, fmt.Sprintf("Started %d workers for %s processor",
		p.config.NumWorkers, p.processor.Name()))

	return nil
}

// Submit adds a job to the worker pool for processing.
func (p *pool[T]) Submit(ctx context.Context, job T) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.started {
		return ErrNotStarted
	}
	if p.draining || p.stopped {
		return ErrShuttingDown
	}

	// Block until the job can be queued or context cancelled
	select {
	case p.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Drain stops accepting new jobs and waits for in-flight jobs to complete.
func (p *pool[T]) Drain(ctx context.Context) error {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return ErrNotStarted
	}
	if p.draining || p.stopped {
		p.mu.Unlock()
		return ErrShuttingDown
	}
	p.draining = true
	close(p.jobs)
	p.mu.Unlock()

	p.logger.Info(ctx, fmt.Sprintf("Draining worker pool for %s processor, waiting for %d queued jobs",
		p.processor.Name(), len(p.jobs)))

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	drainCtx, cancel := context.WithTimeout(ctx, p.config.DrainTimeout)
	defer cancel()

	select {
	case <-done:
		p.logger.Info(ctx, fmt.Sprintf("Successfully drained worker pool for %s processor",
			p.processor.Name()))
		return nil
	case <-drainCtx.Done():
		p.logger.Warn(ctx, fmt.Sprintf("Drain timeout exceeded for %s processor, forcing shutdown",
			p.processor.Name()))
		p.Stop()
		return fmt.Errorf("drain timeout exceeded")
	}
}

// Stop immediately stops all workers.
func (p *pool[T]) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return
	}
	p.stopped = true

	if p.cancelFn != nil {
		p.cancelFn()
	}

	if !p.draining {
		close(p.jobs)
	}
}

// worker is the main worker loop that processes jobs from the queue.
func (p *pool[T]) worker(ctx context.Context, workerID int) {
	defer p.wg.Done()

	workerCtx := observability.WithFields(ctx,
		observability.Field{Key: "worker_id", Value: workerID},
		observability.Field{Key: "processor", Value: p.processor.Name()},
	)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info(workerCtx, fmt.Sprintf("Worker %d stopping: context cancelled", workerID))
			return

		case job, ok := <-p.jobs:
			if !ok {
				return
			}

			jobCtx := observability.WithFields(workerCtx,
				observability.Field{Key: "job_id", Value: job.JobID()},
			)

			err := p.processor.Process(jobCtx, job)
			if err != nil {
				p.logger.Error(jobCtx, fmt.Sprintf("Worker %d failed to process job", workerID), err)
			} else {
				p.logger.Info(jobCtx, fmt.Sprintf("Worker %d successfully processed job", workerID))
			}

			if p.config.OnResult != nil {
				p.config.OnResult(ProcessingResult[T]{
					Job:   job,
					Error: err,
				})
			}
		}
	}
}
