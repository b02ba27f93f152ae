// Copyright (c) 2025 BVK Chaitanya

// Package throttle implements a weighted sliding-window rate limiter for
// venue API calls. The sum of weights of operations admitted within any
// trailing window never exceeds the configured limit. This is not a token
// bucket: no quota is pre-allocated or borrowed from the future, bursts up to
// the full limit are admitted instantly and anything beyond that waits for
// old operations to age out of the window.
package throttle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bvk/inflight/ctxutil"
)

type taskLog struct {
	at     time.Time
	weight int64
}

type Throttler struct {
	opts Options

	limit  int64
	period time.Duration

	// mu protects the task log. Capacity check and usage recording must be
	// atomic together; splitting them is a check-then-act race.
	mu sync.Mutex

	tasks []taskLog
}

// New creates a throttler admitting at most `limit` total weight within any
// trailing window of length `period`.
func New(limit int64, period time.Duration, opts *Options) (*Throttler, error) {
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()
	if err := opts.Check(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("rate limit must be positive")
	}
	if period <= 0 {
		return nil, fmt.Errorf("period must be positive")
	}
	return &Throttler{opts: *opts, limit: limit, period: period}, nil
}

// Acquire blocks the calling goroutine until the requested weight fits in the
// window, records the admission and returns. Waiting is cooperative: the
// caller sleeps in retry-interval increments between re-checks, so a full
// window never busy-spins. There is no admission ordering across concurrent
// waiters and no built-in timeout; a caller wanting a deadline should use a
// context with one and treat expiry as cancellation. A cancelled caller
// leaves no trace in the window.
//
// A weight larger than the configured limit can never be admitted and waits
// until the context is cancelled.
func (t *Throttler) Acquire(ctx context.Context, weight int64) error {
	if weight < 0 {
		return fmt.Errorf("weight cannot be negative")
	}
	for {
		if t.tryAcquire(weight) {
			return nil
		}
		ctxutil.Sleep(ctx, t.opts.RetryInterval)
		if err := context.Cause(ctx); err != nil {
			return err
		}
	}
}

func (t *Throttler) tryAcquire(weight int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	t.pruneLocked(now)

	var used int64
	for _, task := range t.tasks {
		used += task.weight
	}
	if t.limit-used < weight {
		return false
	}
	t.tasks = append(t.tasks, taskLog{at: now, weight: weight})
	return true
}

// pruneLocked drops operations older than period plus the safety margin. The
// margin keeps entries alive slightly longer than the window, so a venue
// whose clock disagrees with ours still never sees the limit exceeded.
func (t *Throttler) pruneLocked(now time.Time) {
	cutoff := t.period + t.opts.SafetyMargin
	i := 0
	for ; i < len(t.tasks); i++ {
		if now.Sub(t.tasks[i].at) <= cutoff {
			break
		}
	}
	if i > 0 {
		t.tasks = append(t.tasks[:0], t.tasks[i:]...)
	}
}

// Used returns the total weight currently counted against the window.
func (t *Throttler) Used() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.pruneLocked(time.Now())
	var used int64
	for _, task := range t.tasks {
		used += task.weight
	}
	return used
}

// Limit returns the configured window capacity.
func (t *Throttler) Limit() int64 {
	return t.limit
}

// Period returns the configured window length.
func (t *Throttler) Period() time.Duration {
	return t.period
}
