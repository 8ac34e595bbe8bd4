package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sefa-b/bank-registry/internal/domain"
	"github.com/sefa-b/bank-registry/internal/utils"
)

// ErrQueueFull is returned by Submit when the queue buffer is exhausted.
var ErrQueueFull = errors.New("audit queue is full")

// ErrPoolStopped is returned by Submit after Stop has been called.
var ErrPoolStopped = errors.New("audit pool is stopped")

// jobTimeout bounds a single audit write.
const jobTimeout = 5 * time.Second

// AuditWriter defines the persistence operation needed by the worker pool.
type AuditWriter interface {
	Log(ctx context.Context, bankID int64, action domain.AuditAction, details any) error
}

// QueueDepthRecorder receives the queue depth after every submit and job.
type QueueDepthRecorder interface {
	SetQueueDepth(depth int)
}

// Pool manages a pool of workers that write audit entries asynchronously.
type Pool struct {
	jobQueue      *JobQueue
	writer        AuditWriter
	recorder      QueueDepthRecorder
	workers       []*Worker
	wg            sync.WaitGroup
	stopOnce      sync.Once
	jobsProcessed int64
	jobsFailed    int64
	mu            sync.RWMutex
}

// Worker represents a single worker in the pool.
type Worker struct {
	id   int
	pool *Pool
}

// Stats represents worker pool statistics.
type Stats struct {
	ActiveWorkers int   `json:"active_workers"`
	JobsProcessed int64 `json:"jobs_processed"`
	JobsFailed    int64 `json:"jobs_failed"`
	QueueSize     int   `json:"queue_size"`
}

// NewPool creates a new worker pool. recorder may be nil.
func NewPool(jobQueue *JobQueue, writer AuditWriter, recorder QueueDepthRecorder) *Pool {
	return &Pool{
		jobQueue: jobQueue,
		writer:   writer,
		recorder: recorder,
	}
}

// Start starts the specified number of workers.
func (wp *Pool) Start(numWorkers int) {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if numWorkers < 1 {
		numWorkers = 1
	}

	for i := 0; i < numWorkers; i++ {
		worker := &Worker{id: len(wp.workers) + 1, pool: wp}
		wp.workers = append(wp.workers, worker)

		wp.wg.Add(1)
		go worker.start()
	}

	utils.Info("audit worker pool started",
		slog.Int("num_workers", len(wp.workers)),
	)
}

// Stop signals the workers to finish the queued jobs and waits for them or
// for ctx to expire.
func (wp *Pool) Stop(ctx context.Context) error {
	wp.stopOnce.Do(func() {
		wp.mu.Lock()
		close(wp.jobQueue.QuitChan)
		wp.mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		wp.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		utils.Info("audit worker pool stopped gracefully")
		return nil
	case <-ctx.Done():
		utils.Warn("audit worker pool shutdown timed out")
		return ctx.Err()
	}
}

// Submit enqueues a job without blocking. A job accepted before Stop is
// always processed.
func (wp *Pool) Submit(job *AuditJob) error {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	select {
	case <-wp.jobQueue.QuitChan:
		return ErrPoolStopped
	default:
	}

	select {
	case wp.jobQueue.SubmitChan <- job:
		wp.recordDepth()
		return nil
	default:
		utils.Warn("audit job dropped",
			slog.String("job_id", job.ID.String()),
			slog.Int64("bank_id", job.BankID),
		)
		return ErrQueueFull
	}
}

// GetStats returns current worker pool statistics.
func (wp *Pool) GetStats() Stats {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	return Stats{
		ActiveWorkers: len(wp.workers),
		JobsProcessed: atomic.LoadInt64(&wp.jobsProcessed),
		JobsFailed:    atomic.LoadInt64(&wp.jobsFailed),
		QueueSize:     len(wp.jobQueue.SubmitChan),
	}
}

func (wp *Pool) recordDepth() {
	if wp.recorder != nil {
		wp.recorder.SetQueueDepth(len(wp.jobQueue.SubmitChan))
	}
}

// start processes jobs until the quit channel closes, then drains what is left.
func (w *Worker) start() {
	defer w.pool.wg.Done()

	for {
		select {
		case job := <-w.pool.jobQueue.SubmitChan:
			w.processJob(job)

		case <-w.pool.jobQueue.QuitChan:
			for {
				select {
				case job := <-w.pool.jobQueue.SubmitChan:
					w.processJob(job)
				default:
					return
				}
			}
		}
	}
}

// processJob writes a single audit entry.
func (w *Worker) processJob(job *AuditJob) {
	defer w.pool.recordDepth()

	ctx := job.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	if err := w.pool.writer.Log(ctx, job.BankID, job.Action, job.Details); err != nil {
		atomic.AddInt64(&w.pool.jobsFailed, 1)
		utils.Error("audit write failed",
			slog.String("job_id", job.ID.String()),
			slog.Int64("bank_id", job.BankID),
			slog.String("action", string(job.Action)),
			slog.Int("worker_id", w.id),
			slog.String("error", err.Error()),
		)
		return
	}

	atomic.AddInt64(&w.pool.jobsProcessed, 1)
	utils.Debug("audit entry written",
		slog.String("job_id", job.ID.String()),
		slog.Int64("bank_id", job.BankID),
		slog.Int("worker_id", w.id),
	)
}
