package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrQueueFull is returned when the buffer has no room for another job.
	ErrQueueFull = errors.New("queue full")
	// ErrQueueClosed is returned for jobs offered to a queue that is not running.
	ErrQueueClosed = errors.New("queue closed")
)

// Job is a unit of background work.
type Job struct {
	ID         string
	Kind       string
	Payload    interface{}
	Attempts   int
	EnqueuedAt time.Time
}

// Handler processes one attempt of a job.
type Handler func(context.Context, Job) error

// GiveUpFunc is told about jobs that will not be attempted again.
type GiveUpFunc func(job Job, err error)

// QueueConfig tunes the worker pool.
type QueueConfig struct {
	Workers  int
	Capacity int
	// Retries is the number of redeliveries after the first failed attempt.
	Retries int
	// Backoff doubles per attempt up to MaxBackoff.
	Backoff    time.Duration
	MaxBackoff time.Duration
	// AttemptTimeout bounds a single handler call. Zero means no bound.
	AttemptTimeout time.Duration
	// DrainTimeout bounds how long Stop spends on jobs still buffered.
	DrainTimeout time.Duration
	OnGiveUp     GiveUpFunc
	Logger       *zap.Logger
}

// Queue runs jobs on a fixed set of goroutines fed by a bounded channel.
// Enqueue never blocks; Stop drains what is buffered before returning.
type Queue struct {
	name    string
	handler Handler
	cfg     QueueConfig
	logger  *zap.Logger
	jobs    chan Job

	mu      sync.RWMutex
	running bool
	base    context.Context
	quit    chan struct{}
	workers sync.WaitGroup
	retries sync.WaitGroup
}

// NewQueue builds a stopped queue. Call Start before enqueuing.
func NewQueue(name string, handler Handler, cfg QueueConfig) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = cfg.Workers * 16
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = time.Second
	}
	if cfg.MaxBackoff < cfg.Backoff {
		cfg.MaxBackoff = 30 * cfg.Backoff
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = 10 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Queue{
		name:    name,
		handler: handler,
		cfg:     cfg,
		logger:  cfg.Logger.With(zap.String("queue", name)),
		jobs:    make(chan Job, cfg.Capacity),
	}
}

// Start launches the workers. Handlers receive contexts derived from ctx.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running {
		return
	}
	q.base = ctx
	q.quit = make(chan struct{})
	q.running = true
	for i := 0; i < q.cfg.Workers; i++ {
		q.workers.Add(1)
		go q.work(q.quit)
	}
	q.logger.Info("queue started", zap.Int("workers", q.cfg.Workers), zap.Int("capacity", q.cfg.Capacity))
}

// Stop refuses new jobs, abandons scheduled retries and processes the buffered
// jobs within DrainTimeout. It returns once every worker has exited.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return
	}
	q.running = false
	close(q.quit)
	q.mu.Unlock()

	q.workers.Wait()
	q.retries.Wait()
	q.logger.Info("queue stopped")
}

// Len reports the number of buffered jobs.
func (q *Queue) Len() int {
	return len(q.jobs)
}

// Enqueue offers a job to the buffer.
func (q *Queue) Enqueue(job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if !q.running {
		return fmt.Errorf("%s: %w", q.name, ErrQueueClosed)
	}
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = time.Now().UTC()
	}
	select {
	case q.jobs <- job:
		return nil
	default:
		return fmt.Errorf("%s: %w", q.name, ErrQueueFull)
	}
}

func (q *Queue) work(quit <-chan struct{}) {
	defer q.workers.Done()
	for {
		// quit wins over a ready job so nothing buffered runs on a stale context.
		select {
		case <-quit:
			q.drain()
			return
		default:
		}
		select {
		case <-quit:
			q.drain()
			return
		case job := <-q.jobs:
			q.run(q.base, job, quit)
		}
	}
}

// drain finishes buffered jobs on a context that survives the parent's cancellation.
func (q *Queue) drain() {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(q.base), q.cfg.DrainTimeout)
	defer cancel()
	for {
		select {
		case job := <-q.jobs:
			if ctx.Err() != nil {
				q.giveUp(job, ctx.Err())
				continue
			}
			q.run(ctx, job, nil)
		default:
			return
		}
	}
}

// run makes one attempt. A nil quit channel means no retry may be scheduled.
func (q *Queue) run(ctx context.Context, job Job, quit <-chan struct{}) {
	job.Attempts++
	attemptCtx := ctx
	if q.cfg.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, q.cfg.AttemptTimeout)
		defer cancel()
	}

	err := q.handler(attemptCtx, job)
	if err == nil {
		return
	}
	if quit == nil || job.Attempts > q.cfg.Retries {
		q.giveUp(job, err)
		return
	}

	delay := q.backoff(job.Attempts)
	q.logger.Warn("job attempt failed",
		zap.String("job_id", job.ID),
		zap.String("kind", job.Kind),
		zap.Int("attempt", job.Attempts),
		zap.Duration("retry_in", delay),
		zap.Error(err),
	)
	q.retries.Add(1)
	go q.retryAfter(job, delay, quit)
}

func (q *Queue) retryAfter(job Job, delay time.Duration, quit <-chan struct{}) {
	defer q.retries.Done()
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-quit:
		q.giveUp(job, ErrQueueClosed)
	case <-q.base.Done():
		q.giveUp(job, q.base.Err())
	case <-timer.C:
		if err := q.Enqueue(job); err != nil {
			q.giveUp(job, err)
		}
	}
}

func (q *Queue) backoff(attempt int) time.Duration {
	delay := q.cfg.Backoff
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= q.cfg.MaxBackoff {
			return q.cfg.MaxBackoff
		}
	}
	return delay
}

func (q *Queue) giveUp(job Job, err error) {
	q.logger.Error("job abandoned",
		zap.String("job_id", job.ID),
		zap.String("kind", job.Kind),
		zap.Int("attempts", job.Attempts),
		zap.Duration("age", time.Since(job.EnqueuedAt)),
		zap.Error(err),
	)
	if q.cfg.OnGiveUp != nil {
		q.cfg.OnGiveUp(job, err)
	}
}
