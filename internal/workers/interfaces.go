package workers

import (
	"context"
)

// Job is a unit of work the pool can log about.
type Job interface {
	JobID() string
}

// Processor defines the interface for processing jobs taken off the queue.
// Implementations must be safe for concurrent use by every worker.
type Processor[T Job] interface {
	// Process handles a single job. An error is logged and reported to
	// OnResult; the job is not retried by the pool.
	Process(ctx context.Context, job T) error

	// Name returns the processor name for logging and metrics.
	Name() string
}

// WorkerPool defines the interface for managing a pool of job workers.
type WorkerPool[T Job] interface {
	// Start launches the configured number of workers.
	Start(ctx context.Context) error

	// Submit queues a job. Blocks while the queue is full until ctx is done.
	Submit(ctx context.Context, job T) error

	// Drain stops accepting new jobs and waits for queued and in-flight jobs.
	Drain(ctx context.Context) error

	// Stop immediately stops all workers.
	Stop()
}
