// Copyright (c) 2025 BVK Chaitanya

package auth

import (
	"sync/atomic"
	"time"
)

// nonceCounter issues millisecond timestamps that are strictly increasing
// within the process, even when the clock stalls or steps backwards. Venues
// reject stale or repeated nonces, so concurrent callers must never observe
// the same value twice.
type nonceCounter struct {
	last atomic.Int64
}

func (n *nonceCounter) Next() int64 {
	for {
		now := time.Now().UnixMilli()
		last := n.last.Load()
		if now <= last {
			now = last + 1
		}
		if n.last.CompareAndSwap(last, now) {
			return now
		}
	}
}
