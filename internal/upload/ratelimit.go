package upload

import (
	"sync"
	"time"
)

// FixedWindowLimiter grants at most max permits per key within a fixed
// window that resets on expiry rather than sliding.
type FixedWindowLimiter struct {
	mu      sync.Mutex
	window  time.Duration
	max     int
	now     func() time.Time
	buckets map[string]*windowBucket
}

type windowBucket struct {
	start time.Time
	count int
}

func NewFixedWindowLimiter(window time.Duration, max int) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		window:  window,
		max:     max,
		now:     time.Now,
		buckets: make(map[string]*windowBucket),
	}
}

// Allow consumes one permit for key, reporting whether the quota held.
func (l *FixedWindowLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	bucket, ok := l.buckets[key]
	if !ok || now.Sub(bucket.start) >= l.window {
		l.buckets[key] = &windowBucket{start: now, count: 1}
		return true
	}
	if bucket.count < l.max {
		bucket.count++
		return true
	}
	return false
}
