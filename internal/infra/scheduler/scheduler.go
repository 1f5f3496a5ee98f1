// Package scheduler drives the periodic sweeps off a single cron engine.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Job is one runnable sweep. Execute must tolerate overlapping triggers;
// the dispatchers guard themselves with a single-flight lock.
type Job interface {
	Execute(ctx context.Context)
}

// Scheduler fires the daily-claim and notes dispatchers on a shared minute
// tick and runs the inactive-user purge once a day. Each dispatcher has its
// own interval; a dispatcher acts only on ticks where the current minute is
// divisible by that interval, so both can share the one cron entry.
type Scheduler struct {
	cronEngine *cron.Cron
	log        *logrus.Logger

	dailyClaim    Job
	notes         Job
	purge         Job
	claimInterval int
	notesInterval int

	// Sweeps are suppressed inside the maintenance window; zero values
	// disable it.
	maintenanceStart time.Time
	maintenanceEnd   time.Time
}

func New(
	dailyClaim Job,
	notes Job,
	purge Job,
	claimIntervalMinutes int,
	notesIntervalMinutes int,
	maintenanceStart time.Time,
	maintenanceEnd time.Time,
	log *logrus.Logger,
) *Scheduler {
	return &Scheduler{
		cronEngine:       cron.New(cron.WithLocation(time.Local)),
		log:              log,
		dailyClaim:       dailyClaim,
		notes:            notes,
		purge:            purge,
		claimInterval:    claimIntervalMinutes,
		notesInterval:    notesIntervalMinutes,
		maintenanceStart: maintenanceStart,
		maintenanceEnd:   maintenanceEnd,
	}
}

// Start registers the cron jobs and starts the engine.
func (s *Scheduler) Start() error {
	_, err := s.cronEngine.AddFunc("* * * * *", s.tick)
	if err != nil {
		return err
	}

	_, err = s.cronEngine.AddFunc("0 1 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		s.purge.Execute(ctx)
	})
	if err != nil {
		return err
	}

	s.cronEngine.Start()
	s.log.Infof("Scheduler started (claim sweep every %dm, notes sweep every %dm)",
		s.claimInterval, s.notesInterval)
	return nil
}

// tick runs once a minute and dispatches whichever sweeps are due. Sweeps
// run in their own goroutines so a slow one never delays the other.
func (s *Scheduler) tick() {
	now := time.Now()
	if s.inMaintenance(now) {
		s.log.Debug("Skipping sweeps, games are under maintenance")
		return
	}

	if due(now, s.claimInterval) {
		go s.dailyClaim.Execute(context.Background())
	}
	if due(now, s.notesInterval) {
		go s.notes.Execute(context.Background())
	}
}

func (s *Scheduler) inMaintenance(now time.Time) bool {
	if s.maintenanceStart.IsZero() || s.maintenanceEnd.IsZero() {
		return false
	}
	return !now.Before(s.maintenanceStart) && now.Before(s.maintenanceEnd)
}

// due reports whether a sweep with the given minute interval fires on this
// tick. Anchoring on the wall-clock minute keeps sweep times predictable
// across restarts.
func due(now time.Time, intervalMinutes int) bool {
	return now.Minute()%intervalMinutes == 0
}

// Stop halts the cron engine and waits for running jobs to return.
func (s *Scheduler) Stop() {
	s.log.Info("Stopping scheduler...")
	<-s.cronEngine.Stop().Done()
	s.log.Info("Scheduler stopped")
}
