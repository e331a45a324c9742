package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/posbridge/notifier/internal/core"
	"github.com/posbridge/notifier/internal/domain/model"
)

type mockDispatcher struct {
	dispatchFunc func(ctx context.Context, job *model.NotificationJob) (*core.DispatchResult, error)
}

func (m *mockDispatcher) Dispatch(
	ctx context.Context,
	job *model.NotificationJob,
) (*core.DispatchResult, error) {
	if m.dispatchFunc != nil {
		return m.dispatchFunc(ctx, job)
	}
	return &core.DispatchResult{JobID: job.ID, Channel: job.Channel}, nil
}

func testJob(id string) *model.NotificationJob {
	return &model.NotificationJob{
		ID:        id,
		RecordID:  id,
		EventType: model.EventTypeOrderCreate,
		Channel:   model.ChannelEmail,
		Data:      model.EventData{"orderId": id},
	}
}

func TestNewQueue_RequiresDispatcher(t *testing.T) {
	_, err := NewQueue(Options{})
	require.ErrorIs(t, err, ErrDispatcherMissing)
}

func TestNewQueue_AppliesDefaults(t *testing.T) {
	q, err := NewQueue(Options{Dispatcher: &mockDispatcher{}})
	require.NoError(t, err)

	assert.Equal(t, DefaultConcurrency, q.concurrency)
	assert.Equal(t, DefaultMaxRetries, q.maxRetries)
	assert.Equal(t, DefaultRetryDelay, q.retryDelay)
	assert.Equal(t, BackoffFixed, q.backoff)
	assert.Equal(t, DefaultDepth, cap(q.jobs))
	assert.Equal(t, DefaultDispatchTimeout, q.dispatchTimeout)
}

func TestQueue_SuccessfulJobRunsOnFinishHook(t *testing.T) {
	done := make(chan *core.DispatchResult, 1)
	q := MustNewQueue(Options{
		Dispatcher: &mockDispatcher{},
		OnFinish: func(_ *model.NotificationJob, result *core.DispatchResult) {
			done <- result
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = q.Run(ctx) }()
	defer cancel()

	require.NoError(t, q.Submit(testJob("evt-1:email")))

	select {
	case result := <-done:
		assert.Equal(t, "evt-1:email", result.JobID)
	case <-time.After(2 * time.Second):
		t.Fatal("job never completed")
	}
}

func TestQueue_FailedJobIsAttemptedMaxRetriesPlusOneTimes(t *testing.T) {
	var attempts atomic.Int32
	failed := make(chan error, 1)

	q := MustNewQueue(Options{
		Dispatcher: &mockDispatcher{
			dispatchFunc: func(_ context.Context, _ *model.NotificationJob) (*core.DispatchResult, error) {
				attempts.Add(1)
				return nil, errors.New("provider down")
			},
		},
		MaxRetries: 2,
		RetryDelay: 5 * time.Millisecond,
		OnFailed: func(_ *model.NotificationJob, err error) {
			failed <- err
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = q.Run(ctx) }()
	defer cancel()

	require.NoError(t, q.Submit(testJob("evt-1:email")))

	select {
	case err := <-failed:
		require.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("job never exhausted retries")
	}
	assert.Equal(t, int32(3), attempts.Load())
}

func TestQueue_EventualSuccessStopsRetrying(t *testing.T) {
	var attempts atomic.Int32
	done := make(chan struct{}, 1)

	q := MustNewQueue(Options{
		Dispatcher: &mockDispatcher{
			dispatchFunc: func(_ context.Context, job *model.NotificationJob) (*core.DispatchResult, error) {
				if attempts.Add(1) < 3 {
					return nil, errors.New("transient")
				}
				return &core.DispatchResult{JobID: job.ID}, nil
			},
		},
		MaxRetries: 5,
		RetryDelay: 5 * time.Millisecond,
		OnFinish: func(_ *model.NotificationJob, _ *core.DispatchResult) {
			done <- struct{}{}
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = q.Run(ctx) }()
	defer cancel()

	require.NoError(t, q.Submit(testJob("evt-1:email")))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job never succeeded")
	}
	assert.Equal(t, int32(3), attempts.Load())
}

func TestQueue_ConcurrencyIsBounded(t *testing.T) {
	const concurrency = 3
	const jobs = 12

	var current, peak atomic.Int32
	var wg sync.WaitGroup
	wg.Add(jobs)

	q := MustNewQueue(Options{
		Dispatcher: &mockDispatcher{
			dispatchFunc: func(_ context.Context, job *model.NotificationJob) (*core.DispatchResult, error) {
				defer wg.Done()
				n := current.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(20 * time.Millisecond)
				current.Add(-1)
				return &core.DispatchResult{JobID: job.ID}, nil
			},
		},
		Concurrency: concurrency,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = q.Run(ctx) }()
	defer cancel()

	for i := 0; i < jobs; i++ {
		require.NoError(t, q.Submit(testJob("evt:email")))
	}
	wg.Wait()

	assert.LessOrEqual(t, peak.Load(), int32(concurrency))
}

func TestQueue_SubmitAfterDrainIsRejected(t *testing.T) {
	q := MustNewQueue(Options{Dispatcher: &mockDispatcher{}})
	q.Drain()

	err := q.Submit(testJob("evt-1:email"))
	require.ErrorIs(t, err, ErrQueueClosed)
}

func TestQueue_SubmitBeyondDepthIsRejected(t *testing.T) {
	// No workers running, so submissions accumulate in the buffer.
	q := MustNewQueue(Options{Dispatcher: &mockDispatcher{}, Depth: 2})

	require.NoError(t, q.Submit(testJob("a")))
	require.NoError(t, q.Submit(testJob("b")))
	require.ErrorIs(t, q.Submit(testJob("c")), ErrQueueFull)
}

func TestQueue_DrainIsIdempotent(t *testing.T) {
	q := MustNewQueue(Options{Dispatcher: &mockDispatcher{}})
	q.Drain()
	q.Drain()
}

func TestQueue_DrainAbandonsPendingRetries(t *testing.T) {
	var attempts atomic.Int32
	first := make(chan struct{}, 1)

	q := MustNewQueue(Options{
		Dispatcher: &mockDispatcher{
			dispatchFunc: func(_ context.Context, _ *model.NotificationJob) (*core.DispatchResult, error) {
				if attempts.Add(1) == 1 {
					first <- struct{}{}
				}
				return nil, errors.New("provider down")
			},
		},
		MaxRetries: 3,
		RetryDelay: time.Hour,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = q.Run(ctx) }()
	defer cancel()

	require.NoError(t, q.Submit(testJob("evt-1:email")))

	select {
	case <-first:
	case <-time.After(2 * time.Second):
		t.Fatal("first attempt never ran")
	}

	// Drain must return promptly despite the hour-long retry timer.
	drained := make(chan struct{})
	go func() {
		q.Drain()
		close(drained)
	}()
	select {
	case <-drained:
	case <-time.After(2 * time.Second):
		t.Fatal("drain blocked on pending retry")
	}
	assert.Equal(t, int32(1), attempts.Load())
}

func TestQueue_DrainWaitsOutFailureDuringShutdown(t *testing.T) {
	var attempts atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})

	q := MustNewQueue(Options{
		Dispatcher: &mockDispatcher{
			dispatchFunc: func(_ context.Context, _ *model.NotificationJob) (*core.DispatchResult, error) {
				attempts.Add(1)
				close(started)
				<-release
				return nil, errors.New("provider down")
			},
		},
		MaxRetries: 3,
		RetryDelay: 50 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = q.Run(ctx) }()
	defer cancel()

	require.NoError(t, q.Submit(testJob("evt-1:email")))
	<-started

	// Begin draining while the attempt is still in flight, then let it fail.
	drained := make(chan struct{})
	go func() {
		q.Drain()
		close(drained)
	}()
	require.Eventually(t, func() bool {
		return errors.Is(q.Submit(testJob("evt-2:email")), ErrQueueClosed)
	}, time.Second, 5*time.Millisecond)
	close(release)

	select {
	case <-drained:
	case <-time.After(2 * time.Second):
		t.Fatal("drain never completed")
	}
	// The failure during drain schedules no further attempt.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestQueue_BackoffDelay(t *testing.T) {
	fixed := MustNewQueue(Options{
		Dispatcher: &mockDispatcher{},
		RetryDelay: time.Second,
		Backoff:    BackoffFixed,
	})
	assert.Equal(t, time.Second, fixed.backoffDelay(1))
	assert.Equal(t, time.Second, fixed.backoffDelay(3))

	exp := MustNewQueue(Options{
		Dispatcher: &mockDispatcher{},
		RetryDelay: time.Second,
		Backoff:    BackoffExponential,
	})
	assert.Equal(t, time.Second, exp.backoffDelay(1))
	assert.Equal(t, 2*time.Second, exp.backoffDelay(2))
	assert.Equal(t, 4*time.Second, exp.backoffDelay(3))
}
