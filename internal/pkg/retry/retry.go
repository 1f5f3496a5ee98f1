// Package retry provides retry interval strategies for upstream API calls.
package retry

import (
	"math"
	"sync/atomic"
	"time"
)

// Strategy yields the wait before the next retry attempt. The second return
// value is false once the retry budget is exhausted.
type Strategy interface {
	Next() (time.Duration, bool)
}

var (
	_ Strategy = (*FixedIntervalStrategy)(nil)
	_ Strategy = (*ExponentialBackoffStrategy)(nil)
)

// FixedIntervalStrategy retries with a constant interval. A maxRetries of 0
// or less means unlimited retries.
type FixedIntervalStrategy struct {
	interval   time.Duration
	maxRetries int32
	retries    int32
}

func NewFixedIntervalStrategy(interval time.Duration, maxRetries int32) *FixedIntervalStrategy {
	return &FixedIntervalStrategy{
		interval:   interval,
		maxRetries: maxRetries,
	}
}

func (s *FixedIntervalStrategy) Next() (time.Duration, bool) {
	retries := atomic.AddInt32(&s.retries, 1)
	if s.maxRetries <= 0 || retries <= s.maxRetries {
		return s.interval, true
	}
	return 0, false
}

// ExponentialBackoffStrategy doubles the interval on every attempt until it
// hits maxInterval. A maxRetries of 0 or less means unlimited retries.
type ExponentialBackoffStrategy struct {
	initialInterval time.Duration
	maxInterval     time.Duration
	maxRetries      int32
	retries         int32
}

func NewExponentialBackoffStrategy(initialInterval, maxInterval time.Duration, maxRetries int32) *ExponentialBackoffStrategy {
	return &ExponentialBackoffStrategy{
		initialInterval: initialInterval,
		maxInterval:     maxInterval,
		maxRetries:      maxRetries,
	}
}

func (s *ExponentialBackoffStrategy) Next() (time.Duration, bool) {
	retries := atomic.AddInt32(&s.retries, 1)
	if s.maxRetries > 0 && retries > s.maxRetries {
		return 0, false
	}
	interval := s.initialInterval * time.Duration(math.Pow(2, float64(retries-1)))
	// Overflow, or past the ceiling.
	if interval <= 0 || interval > s.maxInterval {
		return s.maxInterval, true
	}
	return interval, true
}
