package config

import "time"

// QueueConfig contains job queue configuration.
type QueueConfig struct {
	// Concurrency is the maximum number of simultaneously in-flight jobs.
	Concurrency int `env:"QUEUE_CONCURRENCY" envDefault:"5"`

	// MaxRetries is the number of retries after a failed attempt; a job is
	// attempted at most MaxRetries+1 times.
	MaxRetries int `env:"QUEUE_MAX_RETRIES" envDefault:"3"`

	// RetryDelayMS is the base delay before re-submitting a failed job,
	// in milliseconds.
	RetryDelayMS int `env:"QUEUE_RETRY_DELAY_MS" envDefault:"2000"`

	// Backoff selects the retry delay policy: "fixed" or "exponential".
	Backoff string `env:"QUEUE_RETRY_BACKOFF" envDefault:"fixed"`

	// Depth is the capacity of the waiting-job buffer; submissions beyond it
	// are rejected rather than blocking the caller.
	Depth int `env:"QUEUE_DEPTH" envDefault:"256"`

	// DispatchTimeout bounds one dispatch attempt so a hung provider call
	// cannot hold a worker slot indefinitely. Zero falls back to the
	// default bound.
	DispatchTimeout time.Duration `env:"QUEUE_DISPATCH_TIMEOUT" envDefault:"30s"`
}

// RetryDelay returns the configured base retry delay as a duration.
func (q *QueueConfig) RetryDelay() time.Duration {
	return time.Duration(q.RetryDelayMS) * time.Millisecond
}

// Sanitize applies guardrails to queue configuration values.
func (q *QueueConfig) Sanitize() {
	if q.Concurrency < 1 {
		q.Concurrency = 1
	}
	if q.MaxRetries < 0 {
		q.MaxRetries = 0
	}
	if q.RetryDelayMS < 0 {
		q.RetryDelayMS = 0
	}
	if q.Depth < 1 {
		q.Depth = 1
	}
	if q.Backoff != "fixed" && q.Backoff != "exponential" {
		q.Backoff = "fixed"
	}
	if q.DispatchTimeout < 0 {
		q.DispatchTimeout = 0
	}
}
