package retry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedIntervalStrategy_Next(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		s        *FixedIntervalStrategy
		interval time.Duration

		isContinue bool
	}{
		{
			name:       "first attempt",
			s:          &FixedIntervalStrategy{interval: time.Second, maxRetries: 3},
			interval:   time.Second,
			isContinue: true,
		},
		{
			name:       "last attempt within budget",
			s:          &FixedIntervalStrategy{interval: time.Second, maxRetries: 3, retries: 2},
			interval:   time.Second,
			isContinue: true,
		},
		{
			name:       "budget exhausted",
			s:          &FixedIntervalStrategy{interval: time.Second, maxRetries: 3, retries: 3},
			interval:   0,
			isContinue: false,
		},
		{
			name:       "zero maxRetries means unlimited",
			s:          &FixedIntervalStrategy{interval: time.Second},
			interval:   time.Second,
			isContinue: true,
		},
	}
	for _, tt := range testCases {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			interval, isContinue := tt.s.Next()
			assert.Equal(t, tt.interval, interval)
			assert.Equal(t, tt.isContinue, isContinue)
		})
	}
}

func TestExponentialBackoffStrategy_Next(t *testing.T) {
	t.Parallel()

	s := NewExponentialBackoffStrategy(time.Second, 4*time.Second, 5)

	wantIntervals := []time.Duration{
		1 * time.Second, 2 * time.Second, 4 * time.Second, 4 * time.Second, 4 * time.Second,
	}
	intervals := make([]time.Duration, 0, len(wantIntervals))
	for {
		interval, ok := s.Next()
		if !ok {
			break
		}
		intervals = append(intervals, interval)
	}
	assert.Equal(t, wantIntervals, intervals)
}

func TestExponentialBackoffStrategy_Unlimited(t *testing.T) {
	t.Parallel()

	s := NewExponentialBackoffStrategy(time.Second, 4*time.Second, 0)
	for i := 0; i < 100; i++ {
		interval, ok := s.Next()
		assert.True(t, ok)
		assert.LessOrEqual(t, interval, 4*time.Second)
	}
}
