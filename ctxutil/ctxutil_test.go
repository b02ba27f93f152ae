// Copyright (c) 2025 BVK Chaitanya

package ctxutil

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestSleepCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	Sleep(ctx, time.Minute)
	if d := time.Since(start); d > time.Second {
		t.Fatalf("Sleep on a canceled context took %v", d)
	}
}

func TestRetry(t *testing.T) {
	ctx := context.Background()

	attempts := 0
	f := func() error {
		attempts++
		if attempts < 3 {
			return fmt.Errorf("attempt %d failed", attempts)
		}
		return nil
	}
	if err := Retry(ctx, time.Millisecond, f); err != nil {
		t.Fatal(err)
	}
	if attempts != 3 {
		t.Fatalf("attempts: want 3, got %d", attempts)
	}
}

func TestRetryCancellation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	failure := fmt.Errorf("always fails")
	err := Retry(ctx, 10*time.Millisecond, func() error { return failure })
	if err == nil {
		t.Fatalf("Retry must return the last error after cancellation")
	}
}
