// Copyright (c) 2025 BVK Chaitanya

package transport

import (
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

type Options struct {
	// HttpClientTimeout bounds one REST round-trip.
	HttpClientTimeout time.Duration

	// RetryInterval is the default wait before retrying a throttled or
	// bad-gateway response when the venue sends no Retry-After header.
	RetryInterval time.Duration

	// ReconnectsPerMinute bounds how fast a dropped websocket is redialed.
	ReconnectsPerMinute int
}

func (v *Options) setDefaults() {
	if v.HttpClientTimeout == 0 {
		v.HttpClientTimeout = 30 * time.Second
	}
	if v.RetryInterval == 0 {
		v.RetryInterval = time.Second
	}
	if v.ReconnectsPerMinute == 0 {
		v.ReconnectsPerMinute = 12
	}
}

// Check validates the options.
func (v *Options) Check() error {
	if v.HttpClientTimeout < 0 || v.RetryInterval < 0 {
		return fmt.Errorf("timeouts cannot be negative")
	}
	if v.ReconnectsPerMinute < 0 {
		return fmt.Errorf("reconnect rate cannot be negative")
	}
	return nil
}

func (v *Options) reconnectLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Limit(float64(v.ReconnectsPerMinute)/60), 1)
}
