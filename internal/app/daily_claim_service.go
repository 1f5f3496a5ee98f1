// internal/app/daily_claim_service.go
package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"hoyo_assistant_bot/internal/domain/gameapi"
	"hoyo_assistant_bot/internal/domain/notify"
	"hoyo_assistant_bot/internal/domain/schedule"
	"hoyo_assistant_bot/internal/pkg/sweeplock"
)

// LocalHost identifies the in-process claim executor in logs and tallies.
const LocalHost = "LOCAL"

// maxConsecutiveErrors is the circuit-breaker ceiling for a remote host's
// consecutive claim failures within one sweep. The local executor has no
// breaker; it is the executor of last resort.
const maxConsecutiveErrors = 20

// ClaimExecutor performs one user's daily reward run on some host.
type ClaimExecutor interface {
	// Host is the executor's identity for logs and tallies.
	Host() string
	// Probe checks the host before it takes any work.
	Probe(ctx context.Context) error
	// Claim returns the user-facing result message. An error means the
	// attempt failed unexpectedly and the registration should be retried by
	// another consumer. An empty message with a nil error skips the user.
	Claim(ctx context.Context, req gameapi.ClaimRequest) (string, error)
}

// LocalExecutor claims in-process through the game API client.
type LocalExecutor struct {
	api gameapi.Client
}

func NewLocalExecutor(api gameapi.Client) *LocalExecutor {
	return &LocalExecutor{api: api}
}

func (e *LocalExecutor) Host() string { return LocalHost }

func (e *LocalExecutor) Probe(context.Context) error { return nil }

func (e *LocalExecutor) Claim(ctx context.Context, req gameapi.ClaimRequest) (string, error) {
	return e.api.ClaimDailyRewards(ctx, req)
}

// hostTally counts one host's successes within one sweep. Each tally is
// written only by its owning consumer goroutine.
type hostTally struct {
	total     int
	genshin   int
	honkai3rd int
	starrail  int
	zzz       int
}

// DailyClaimService is the daily-claim dispatcher. One sweep loads every due
// registration into a work queue and fans it out over the local executor
// and every configured remote claim host.
type DailyClaimService struct {
	lock      *sweeplock.Lock
	claims    schedule.DailyClaimRepository
	executors []ClaimExecutor
	notifier  notify.Notifier
	userDelay time.Duration
	log       *logrus.Logger
}

func NewDailyClaimService(
	claims schedule.DailyClaimRepository,
	executors []ClaimExecutor,
	notifier notify.Notifier,
	userDelay time.Duration,
	log *logrus.Logger,
) *DailyClaimService {
	return &DailyClaimService{
		lock:      sweeplock.New(),
		claims:    claims,
		executors: executors,
		notifier:  notifier,
		userDelay: userDelay,
		log:       log,
	}
}

// Execute runs one sweep. A sweep already in flight turns this call into a
// no-op; the minute tick will fire again.
func (s *DailyClaimService) Execute(ctx context.Context) {
	if !s.lock.TryAcquire() {
		return
	}
	defer s.lock.Release()

	s.log.Info("Daily claim sweep starting")

	registrations, err := s.claims.ListAll(ctx)
	if err != nil {
		s.log.WithError(err).Error("Failed to list daily claim registrations")
		return
	}

	now := time.Now()
	var due []*schedule.DailyClaim
	for _, reg := range registrations {
		if reg.NextClaimTime.Before(now) {
			due = append(due, reg)
		}
	}
	if len(due) == 0 {
		s.log.Info("Daily claim sweep finished, no registrations due")
		return
	}

	// The queue is sized so a failed item can always be requeued without
	// blocking: at most len(due) items are outstanding at any instant.
	queue := make(chan *schedule.DailyClaim, len(due))
	var pending sync.WaitGroup
	for _, reg := range due {
		pending.Add(1)
		queue <- reg
	}

	consumerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	tallies := make(map[string]*hostTally, len(s.executors))
	var consumers sync.WaitGroup
	for _, executor := range s.executors {
		tally := &hostTally{}
		tallies[executor.Host()] = tally
		consumers.Add(1)
		go func(executor ClaimExecutor) {
			defer consumers.Done()
			s.runConsumer(consumerCtx, executor, queue, &pending, tally)
		}(executor)
	}

	// Block until every enqueued item is accounted for, then stop the
	// consumers. A cancelled parent context unblocks the sweep even if
	// items remain (consumers see the same cancellation).
	drained := make(chan struct{})
	go func() {
		pending.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-ctx.Done():
	}
	cancel()
	consumers.Wait()

	s.logTallies(len(due), tallies)
}

// runConsumer processes queue items on one executor until the sweep is
// cancelled or, for remote hosts, the circuit breaker trips.
func (s *DailyClaimService) runConsumer(
	ctx context.Context,
	executor ClaimExecutor,
	queue chan *schedule.DailyClaim,
	pending *sync.WaitGroup,
	tally *hostTally,
) {
	host := executor.Host()
	s.log.Infof("Daily claim consumer starting: %s", host)

	if host != LocalHost {
		if err := executor.Probe(ctx); err != nil {
			s.log.WithError(err).Errorf("Claim host %s failed its health probe, consumer exiting", host)
			return
		}
	}

	errCount := 0
	for {
		select {
		case <-ctx.Done():
			return
		case reg := <-queue:
			message, err := executor.Claim(ctx, claimRequest(reg))
			if err != nil {
				// Return the item for another consumer before releasing our
				// hold on it, so the drain accounting never hits zero while
				// the item is in flight.
				pending.Add(1)
				queue <- reg
				pending.Done()

				errCount++
				s.log.WithError(err).Errorf("Claim on %s failed for user %d (%d/%d)",
					host, reg.UserID, errCount, maxConsecutiveErrors)
				if host != LocalHost && errCount >= maxConsecutiveErrors {
					s.log.Errorf("Claim host %s tripped the circuit breaker, consumer exiting", host)
					return
				}
				continue
			}

			errCount = 0
			s.finishClaim(ctx, reg, message, tally)
			pending.Done()

			if message != "" {
				select {
				case <-ctx.Done():
					return
				case <-time.After(s.userDelay):
				}
			}
		}
	}
}

// finishClaim advances the registration by one day, persists it and
// delivers the result message. The advance happens on every completed
// attempt so a user is never processed twice within one sweep.
func (s *DailyClaimService) finishClaim(ctx context.Context, reg *schedule.DailyClaim, message string, tally *hostTally) {
	reg.AdvanceNextClaimTime(time.Now())
	if err := s.claims.Upsert(ctx, reg); err != nil {
		s.log.WithError(err).Errorf("Failed to persist daily claim registration for user %d", reg.UserID)
	}

	if message == "" {
		return
	}

	// An expired cookie needs the user's attention even when they opted out
	// of mentions.
	mention := reg.IsMention || strings.Contains(message, gameapi.MsgCookieExpired)
	err := s.notifier.Send(ctx, reg.ChannelID, reg.UserID, mention, "[Daily claim] "+message)
	if err != nil {
		if errors.Is(err, notify.ErrTargetGone) {
			s.log.WithError(err).Warnf("Claim result target gone, removing registration for user %d", reg.UserID)
			if derr := s.claims.Delete(ctx, reg.UserID); derr != nil {
				s.log.WithError(derr).Errorf("Failed to remove daily claim registration for user %d", reg.UserID)
			}
		} else {
			s.log.WithError(err).Errorf("Failed to deliver claim result for user %d", reg.UserID)
		}
		return
	}

	tally.total++
	if reg.HasGenshin {
		tally.genshin++
	}
	if reg.HasHonkai3rd {
		tally.honkai3rd++
	}
	if reg.HasStarrail {
		tally.starrail++
	}
	if reg.HasZZZ {
		tally.zzz++
	}
}

func (s *DailyClaimService) logTallies(enqueued int, tallies map[string]*hostTally) {
	total, genshin, honkai3rd, starrail, zzz := 0, 0, 0, 0, 0
	for _, t := range tallies {
		total += t.total
		genshin += t.genshin
		honkai3rd += t.honkai3rd
		starrail += t.starrail
		zzz += t.zzz
	}
	s.log.Infof("Daily claim sweep finished: %d/%d users claimed (genshin %d, honkai3rd %d, starrail %d, zzz %d)",
		total, enqueued, genshin, honkai3rd, starrail, zzz)
	for host, t := range tallies {
		s.log.Infof("- %s: %d claimed (genshin %d, honkai3rd %d, starrail %d, zzz %d)",
			host, t.total, t.genshin, t.honkai3rd, t.starrail, t.zzz)
	}
}

func claimRequest(reg *schedule.DailyClaim) gameapi.ClaimRequest {
	return gameapi.ClaimRequest{
		UserID:    reg.UserID,
		Genshin:   reg.HasGenshin,
		Honkai3rd: reg.HasHonkai3rd,
		Starrail:  reg.HasStarrail,
		ZZZ:       reg.HasZZZ,
	}
}
