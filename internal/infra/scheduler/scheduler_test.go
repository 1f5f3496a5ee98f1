package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDue(t *testing.T) {
	t.Parallel()

	at := func(minute int) time.Time {
		return time.Date(2026, 8, 28, 12, minute, 0, 0, time.UTC)
	}

	tests := []struct {
		name     string
		minute   int
		interval int
		want     bool
	}{
		{name: "on the boundary", minute: 20, interval: 10, want: true},
		{name: "top of the hour", minute: 0, interval: 10, want: true},
		{name: "between boundaries", minute: 25, interval: 10, want: false},
		{name: "every minute", minute: 37, interval: 1, want: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, due(at(tt.minute), tt.interval))
		})
	}
}

func TestInMaintenance(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 8, 28, 3, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 28, 8, 0, 0, 0, time.UTC)

	s := &Scheduler{maintenanceStart: start, maintenanceEnd: end}
	assert.False(t, s.inMaintenance(start.Add(-time.Minute)))
	assert.True(t, s.inMaintenance(start))
	assert.True(t, s.inMaintenance(start.Add(2*time.Hour)))
	assert.False(t, s.inMaintenance(end))

	unset := &Scheduler{}
	assert.False(t, unset.inMaintenance(start.Add(time.Hour)))
}
