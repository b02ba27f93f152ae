// Copyright (c) 2025 BVK Chaitanya

package throttle

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"
)

func TestAcquireWithinCapacity(t *testing.T) {
	th, err := New(20, 1100*time.Millisecond, &Options{RetryInterval: 25 * time.Millisecond, SafetyMargin: 10 * time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}

	start := time.Now()
	var wg sync.WaitGroup
	for _, weight := range []int64{5, 5, 5, 4} {
		wg.Add(1)
		go func(w int64) {
			defer wg.Done()
			if err := th.Acquire(context.Background(), w); err != nil {
				t.Errorf("Acquire(%d): %v", w, err)
			}
		}(weight)
	}
	wg.Wait()

	// Total weight 19 fits in the window, so nobody is forced to wait.
	if d := time.Since(start); d > time.Second {
		t.Fatalf("acquires took %s, want well under 1s", d)
	}
	if used := th.Used(); used != 19 {
		t.Fatalf("Used: want 19, got %d", used)
	}
}

func TestAcquireBeyondCapacity(t *testing.T) {
	th, err := New(20, 1100*time.Millisecond, &Options{RetryInterval: 25 * time.Millisecond, SafetyMargin: 10 * time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}

	start := time.Now()
	var wg sync.WaitGroup
	for _, weight := range []int64{5, 5, 5, 6} {
		wg.Add(1)
		go func(w int64) {
			defer wg.Done()
			if err := th.Acquire(context.Background(), w); err != nil {
				t.Errorf("Acquire(%d): %v", w, err)
			}
		}(weight)
	}
	wg.Wait()

	// Total weight 21 exceeds the window, so one caller must wait for the
	// window to roll over.
	if d := time.Since(start); d <= time.Second {
		t.Fatalf("acquires took %s, want more than 1s", d)
	}
}

func TestAcquireCancellation(t *testing.T) {
	th, err := New(5, time.Second, &Options{RetryInterval: 10 * time.Millisecond, SafetyMargin: 10 * time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}

	// A weight above the limit can never be admitted; the caller must come
	// back on context cancellation without recording anything.
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if err := th.Acquire(ctx, 10); err == nil {
		t.Fatalf("Acquire beyond the limit must fail on cancellation")
	}
	if used := th.Used(); used != 0 {
		t.Fatalf("cancelled caller left %d weight in the window", used)
	}
}

func TestWindowCapacityInvariant(t *testing.T) {
	const limit = 10
	const period = 300 * time.Millisecond

	// The generous safety margin leaves room for goroutine scheduling delay
	// between admission and the timestamp recording below.
	th, err := New(limit, period, &Options{RetryInterval: 10 * time.Millisecond, SafetyMargin: 50 * time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	var admitted []time.Time

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := th.Acquire(context.Background(), 1); err != nil {
				t.Errorf("Acquire: %v", err)
				return
			}
			mu.Lock()
			admitted = append(admitted, time.Now())
			mu.Unlock()
		}()
	}
	wg.Wait()

	sort.Slice(admitted, func(i, j int) bool { return admitted[i].Before(admitted[j]) })

	// No trailing window of length `period` may contain more admissions than
	// the limit. Admission timestamps are recorded after the fact, so allow
	// no slack: the throttler itself must have enforced this.
	for i := range admitted {
		count := 0
		for j := i; j < len(admitted); j++ {
			if admitted[j].Sub(admitted[i]) < period {
				count++
			}
		}
		if count > limit {
			t.Fatalf("window starting at admission %d contains %d admissions, limit is %d", i, count, limit)
		}
	}
}

func TestSingleCallerLiveness(t *testing.T) {
	th, err := New(3, 100*time.Millisecond, &Options{RetryInterval: 10 * time.Millisecond, SafetyMargin: 10 * time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}

	// A lone caller repeatedly requesting an admissible weight is always
	// eventually admitted.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := 0; i < 10; i++ {
		if err := th.Acquire(ctx, 3); err != nil {
			t.Fatalf("Acquire %d: %v", i, err)
		}
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New(0, time.Second, nil); err == nil {
		t.Fatalf("zero limit must be rejected")
	}
	if _, err := New(10, 0, nil); err == nil {
		t.Fatalf("zero period must be rejected")
	}
	if _, err := New(10, time.Second, &Options{RetryInterval: -1}); err == nil {
		t.Fatalf("negative retry interval must be rejected")
	}
}
