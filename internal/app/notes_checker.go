// internal/app/notes_checker.go
package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"hoyo_assistant_bot/internal/domain/gameapi"
	"hoyo_assistant_bot/internal/domain/schedule"
)

// Reschedule deferrals applied when fetching a notes snapshot fails.
const (
	transientRetryDelay = 1 * time.Hour
	challengeRetryDelay = 24 * time.Hour
	failureRetryDelay   = 5 * time.Hour

	// fullResourceRecheck is the coarse re-check once a resource is
	// saturated, so a full resource doesn't re-evaluate on a tight loop.
	fullResourceRecheck = 6 * time.Hour

	// messageFloor keeps a just-fired notification from re-firing on the
	// next sweep.
	messageFloor = 60 * time.Minute
)

// Alert is one user-facing notes notification ready for delivery.
type Alert struct {
	UserID    int64
	ChannelID int64
	Message   string
	Detail    string
}

// NotesChecker is one game title's sweep unit. Implementations own the
// registration reload, the snapshot fetch, threshold evaluation and the
// next-check-time persistence for their game.
type NotesChecker interface {
	GameName() string
	ListUserIDs(ctx context.Context) ([]int64, error)
	// CheckUser reloads the user's registration and evaluates it. A nil
	// Alert means the user was skipped or nothing needs to be delivered.
	CheckUser(ctx context.Context, userID int64) (*Alert, error)
	// Remove deletes the registration after delivery proved impossible.
	Remove(ctx context.Context, userID int64) error
}

// fetchReschedule picks the deferral for a failed snapshot fetch and whether
// the failure should be surfaced to the user. Transient upstream errors are
// retried quietly; a verification challenge needs the user, so it defers a
// full day.
func fetchReschedule(err error) (time.Duration, bool) {
	switch gameapi.KindOf(err) {
	case gameapi.KindTransient:
		return transientRetryDelay, false
	case gameapi.KindChallengeRequired:
		return challengeRetryDelay, true
	default:
		return failureRetryDelay, true
	}
}

func fetchFailureMessage(gameName string, deferral time.Duration) string {
	return fmt.Sprintf("An error occurred while checking %s real-time notes, the next check is planned in %d hours.",
		gameName, int(deferral.Hours()))
}

// resourceStatus evaluates one replenishing resource against its threshold.
// The fragment is empty while the resource is still outside the threshold
// window. A saturated resource gets the coarse re-check instead of the
// decaying-interval calculation.
func resourceStatus(now time.Time, remaining time.Duration, thresholdHours int64, grace time.Duration, full bool, fullMsg, nearMsg string) (string, time.Time) {
	var frag string
	if remaining <= time.Duration(thresholdHours)*time.Hour+grace {
		if remaining <= 0 {
			frag = fullMsg
		} else {
			frag = nearMsg
		}
	}
	if full {
		return frag, now.Add(fullResourceRecheck)
	}
	return frag, schedule.NextCheckTime(now, remaining, int(thresholdHours))
}

// fixedTimeStatus evaluates one daily/weekly fixed check point. Once the
// check time has been passed it is advanced by period regardless of outcome,
// so a completed task is not re-reported within the same period.
func fixedTimeStatus(now time.Time, checkTime *sql.NullTime, period time.Duration, incomplete bool, incompleteMsg string) (string, time.Time) {
	var frag string
	if !now.Before(checkTime.Time) {
		if incomplete {
			frag = incompleteMsg
		}
		checkTime.Time = checkTime.Time.Add(period)
	}
	return frag, checkTime.Time
}

// aggregateNextCheck reduces the per-field candidates to the earliest one,
// applying the message floor only when something will actually be sent.
func aggregateNextCheck(now time.Time, candidates []time.Time, hasMessage bool) time.Time {
	next := candidates[0]
	for _, c := range candidates[1:] {
		if c.Before(next) {
			next = c
		}
	}
	if hasMessage {
		if floor := now.Add(messageFloor); next.Before(floor) {
			next = floor
		}
	}
	return next
}

func appendFragment(fragments []string, frag string) []string {
	if frag != "" {
		return append(fragments, frag)
	}
	return fragments
}

// formatRemaining renders a duration the way users read it in notes cards.
func formatRemaining(d time.Duration) string {
	if d <= 0 {
		return "done"
	}
	d = d.Round(time.Minute)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh%02dm", h, m)
}
