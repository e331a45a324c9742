// Package queue implements the bounded, retrying dispatch queue that
// drives notification delivery.
package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/posbridge/notifier/internal/core"
	"github.com/posbridge/notifier/internal/domain/model"
	"github.com/posbridge/notifier/internal/observability/metrics"
)

// Backoff strategies for retry delays.
const (
	BackoffFixed       = "fixed"
	BackoffExponential = "exponential"
)

var (
	ErrQueueClosed       = errors.New("queue is draining")
	ErrQueueFull         = errors.New("queue is full")
	ErrDispatcherMissing = errors.New("dispatcher is required")
)

// Defaults applied when Options fields are zero.
const (
	DefaultConcurrency     = 5
	DefaultMaxRetries      = 3
	DefaultRetryDelay      = 2 * time.Second
	DefaultDepth           = 256
	DefaultDispatchTimeout = 30 * time.Second
)

// Options configures a Queue.
type Options struct {
	Dispatcher      core.Dispatcher
	Concurrency     int
	MaxRetries      int
	RetryDelay      time.Duration
	Backoff         string
	Depth           int
	DispatchTimeout time.Duration
	Logger          *slog.Logger
	// OnFinish runs after a job dispatches successfully.
	OnFinish func(job *model.NotificationJob, result *core.DispatchResult)
	// OnFailed runs after a job exhausts its retries.
	OnFailed func(job *model.NotificationJob, err error)
}

// Queue runs a fixed pool of dispatch workers over a bounded buffer.
// Failed jobs are re-submitted after a delay until MaxRetries is
// reached.
type Queue struct {
	dispatcher      core.Dispatcher
	concurrency     int
	maxRetries      int
	retryDelay      time.Duration
	backoff         string
	dispatchTimeout time.Duration
	logger          *slog.Logger
	onFinish        func(job *model.NotificationJob, result *core.DispatchResult)
	onFailed        func(job *model.NotificationJob, err error)

	jobs chan *model.NotificationJob
	stop chan struct{}

	mu     sync.Mutex
	closed bool

	workers sync.WaitGroup
	timers  sync.WaitGroup
}

// NewQueue builds a Queue from opts, applying defaults for zero values.
func NewQueue(opts Options) (*Queue, error) {
	if opts.Dispatcher == nil {
		return nil, ErrDispatcherMissing
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if opts.Backoff != BackoffExponential {
		opts.Backoff = BackoffFixed
	}
	if opts.Depth <= 0 {
		opts.Depth = DefaultDepth
	}
	if opts.DispatchTimeout <= 0 {
		opts.DispatchTimeout = DefaultDispatchTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Queue{
		dispatcher:      opts.Dispatcher,
		concurrency:     opts.Concurrency,
		maxRetries:      opts.MaxRetries,
		retryDelay:      opts.RetryDelay,
		backoff:         opts.Backoff,
		dispatchTimeout: opts.DispatchTimeout,
		logger:          opts.Logger,
		onFinish:        opts.OnFinish,
		onFailed:        opts.OnFailed,
		jobs:            make(chan *model.NotificationJob, opts.Depth),
		stop:            make(chan struct{}),
	}, nil
}

// MustNewQueue is NewQueue that panics on error.
func MustNewQueue(opts Options) *Queue {
	q, err := NewQueue(opts)
	if err != nil {
		panic(err)
	}
	return q
}

// Submit enqueues a job without blocking. It returns ErrQueueClosed
// after Drain has begun and ErrQueueFull when the buffer is at
// capacity.
func (q *Queue) Submit(job *model.NotificationJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		metrics.JobsDropped.Inc()
		return ErrQueueClosed
	}
	select {
	case q.jobs <- job:
		metrics.JobsSubmitted.WithLabelValues(string(job.Channel)).Inc()
		return nil
	default:
		metrics.JobsDropped.Inc()
		return fmt.Errorf("%w: depth %d", ErrQueueFull, cap(q.jobs))
	}
}

// Run starts the worker pool and blocks until ctx is cancelled and the
// workers have stopped. At most Concurrency dispatch attempts execute
// at any time.
func (q *Queue) Run(ctx context.Context) error {
	q.workers.Add(q.concurrency)
	for i := 0; i < q.concurrency; i++ {
		go q.worker(ctx)
	}
	<-ctx.Done()
	q.Drain()
	return ctx.Err()
}

// Drain stops intake, waits for in-flight attempts to complete, then waits
// out pending retry timers (which abort on the stop signal). Workers are
// waited first: a failing in-flight attempt may still schedule a retry
// timer, so the timer wait must come after no worker can add one. Buffered
// jobs that no worker has picked up are abandoned. Drain is idempotent.
func (q *Queue) Drain() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.stop)
	q.mu.Unlock()

	q.workers.Wait()
	q.timers.Wait()
	q.logger.Info("queue drained")
}

func (q *Queue) worker(ctx context.Context) {
	defer q.workers.Done()
	for {
		select {
		case <-q.stop:
			return
		case <-ctx.Done():
			return
		case job := <-q.jobs:
			q.process(ctx, job)
		}
	}
}

func (q *Queue) process(ctx context.Context, job *model.NotificationJob) {
	metrics.JobsInFlight.Inc()
	started := time.Now()

	attemptCtx, cancel := context.WithTimeout(ctx, q.dispatchTimeout)
	result, err := q.dispatcher.Dispatch(attemptCtx, job)
	cancel()

	metrics.JobsInFlight.Dec()
	metrics.DispatchDuration.Observe(float64(time.Since(started).Milliseconds()))

	if err == nil {
		metrics.JobsCompleted.WithLabelValues(string(job.Channel)).Inc()
		q.logger.InfoContext(ctx, "job dispatched",
			"job_id", job.ID,
			"channel", job.Channel,
			"retried", job.Metadata.RetryCount,
			"duration_ms", time.Since(started).Milliseconds())
		if q.onFinish != nil {
			q.onFinish(job, result)
		}
		return
	}

	q.logger.ErrorContext(ctx, "job dispatch failed",
		"job_id", job.ID,
		"channel", job.Channel,
		"attempt", job.Metadata.RetryCount+1,
		"error", err)

	if job.Metadata.RetryCount >= q.maxRetries {
		metrics.JobsFailed.WithLabelValues(string(job.Channel)).Inc()
		if q.onFailed != nil {
			q.onFailed(job, err)
		}
		return
	}

	job.Metadata.RetryCount++
	q.scheduleRetry(job)
}

// scheduleRetry re-submits job after the backoff delay. The timer
// goroutine aborts when Drain begins, abandoning the retry.
func (q *Queue) scheduleRetry(job *model.NotificationJob) {
	delay := q.backoffDelay(job.Metadata.RetryCount)
	q.timers.Add(1)
	go func() {
		defer q.timers.Done()
		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-q.stop:
			return
		case <-t.C:
		}
		select {
		case <-q.stop:
		case q.jobs <- job:
			metrics.JobRetries.WithLabelValues(string(job.Channel)).Inc()
		default:
			metrics.JobsDropped.Inc()
			q.logger.Error("retry dropped, queue full", "job_id", job.ID, "channel", job.Channel)
		}
	}()
}

func (q *Queue) backoffDelay(attempt int) time.Duration {
	if q.backoff != BackoffExponential || attempt <= 1 {
		return q.retryDelay
	}
	return time.Duration(float64(q.retryDelay) * math.Pow(2, float64(attempt-1)))
}
