// internal/app/notes_service.go
package app

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"hoyo_assistant_bot/internal/domain/notify"
	"hoyo_assistant_bot/internal/pkg/sweeplock"
)

// NotesService is the notes/resource dispatcher: one sweep walks every
// registered user of every game and delivers threshold alerts. Game titles
// sweep concurrently; users within one title are visited strictly serially
// so the upstream API never sees a burst from a single sweep.
type NotesService struct {
	lock      *sweeplock.Lock
	checkers  []NotesChecker
	notifier  notify.Notifier
	userDelay time.Duration
	log       *logrus.Logger
}

func NewNotesService(checkers []NotesChecker, notifier notify.Notifier, userDelay time.Duration, log *logrus.Logger) *NotesService {
	return &NotesService{
		lock:      sweeplock.New(),
		checkers:  checkers,
		notifier:  notifier,
		userDelay: userDelay,
		log:       log,
	}
}

// Execute runs one sweep. A sweep already in flight turns this call into a
// no-op; the minute tick will fire again.
func (s *NotesService) Execute(ctx context.Context) {
	if !s.lock.TryAcquire() {
		return
	}
	defer s.lock.Release()

	s.log.Info("Notes check sweep starting")

	// Plain errgroup on purpose: one game's sweep failing must not cancel
	// the others mid-flight.
	var g errgroup.Group
	for _, checker := range s.checkers {
		checker := checker
		g.Go(func() error {
			s.sweepGame(ctx, checker)
			return nil
		})
	}
	g.Wait()

	s.log.Info("Notes check sweep finished")
}

func (s *NotesService) sweepGame(ctx context.Context, checker NotesChecker) {
	userIDs, err := checker.ListUserIDs(ctx)
	if err != nil {
		s.log.WithError(err).Errorf("Failed to list %s notes registrations", checker.GameName())
		return
	}

	limiter := rate.NewLimiter(rate.Every(s.userDelay), 1)
	checked := 0
	for _, userID := range userIDs {
		if err := limiter.Wait(ctx); err != nil {
			return
		}

		alert, err := checker.CheckUser(ctx, userID)
		if err != nil {
			s.log.WithError(err).Errorf("%s notes check failed for user %d", checker.GameName(), userID)
			continue
		}
		if alert == nil {
			continue
		}
		checked++
		s.deliver(ctx, checker, alert)
	}

	s.log.Infof("%s notes check finished, %d/%d users alerted", checker.GameName(), checked, len(userIDs))
}

// deliver sends one alert. A target that no longer exists prunes the
// registration; any other delivery failure is logged and retried naturally
// on the next sweep.
func (s *NotesService) deliver(ctx context.Context, checker NotesChecker, alert *Alert) {
	text := alert.Message
	if alert.Detail != "" {
		text += "\n\n" + alert.Detail
	}

	err := s.notifier.Send(ctx, alert.ChannelID, alert.UserID, true, text)
	if err == nil {
		return
	}
	if errors.Is(err, notify.ErrTargetGone) {
		s.log.WithError(err).Warnf("Notes alert target gone, removing %s registration for user %d",
			checker.GameName(), alert.UserID)
		if derr := checker.Remove(ctx, alert.UserID); derr != nil {
			s.log.WithError(derr).Errorf("Failed to remove %s registration for user %d", checker.GameName(), alert.UserID)
		}
		return
	}
	s.log.WithError(err).Errorf("Failed to deliver %s notes alert for user %d", checker.GameName(), alert.UserID)
}
