// Copyright (c) 2025 BVK Chaitanya

package throttle

import (
	"fmt"
	"time"
)

type Options struct {
	// RetryInterval is the sleep duration between admission re-checks when
	// the window is full.
	RetryInterval time.Duration

	// SafetyMargin extends the lifetime of recorded operations beyond the
	// window period. It compensates for clock and network skew between this
	// process and the venue; it is a conservative fudge, not a correctness
	// requirement.
	SafetyMargin time.Duration
}

func (v *Options) setDefaults() {
	if v.RetryInterval == 0 {
		v.RetryInterval = 100 * time.Millisecond
	}
	if v.SafetyMargin == 0 {
		v.SafetyMargin = 100 * time.Millisecond
	}
}

func (v *Options) Check() error {
	if v.RetryInterval < 0 {
		return fmt.Errorf("retry interval cannot be negative")
	}
	if v.SafetyMargin < 0 {
		return fmt.Errorf("safety margin cannot be negative")
	}
	return nil
}
