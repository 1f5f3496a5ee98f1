// internal/app/zzz_checker.go
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"hoyo_assistant_bot/internal/domain/gameapi"
	"hoyo_assistant_bot/internal/domain/schedule"
	idb "hoyo_assistant_bot/internal/infra/database"
)

// ZZZChecker evaluates Zenless Zone Zero notes registrations: battery
// charge and the daily engagement score.
type ZZZChecker struct {
	repo schedule.ZZZNotesRepository
	api  gameapi.Client
	log  *logrus.Logger
}

func NewZZZChecker(repo schedule.ZZZNotesRepository, api gameapi.Client, log *logrus.Logger) *ZZZChecker {
	return &ZZZChecker{repo: repo, api: api, log: log}
}

func (c *ZZZChecker) GameName() string {
	return "Zenless Zone Zero"
}

func (c *ZZZChecker) ListUserIDs(ctx context.Context) ([]int64, error) {
	return c.repo.ListUserIDs(ctx)
}

func (c *ZZZChecker) Remove(ctx context.Context, userID int64) error {
	return c.repo.Delete(ctx, userID)
}

func (c *ZZZChecker) CheckUser(ctx context.Context, userID int64) (*Alert, error) {
	reg, err := c.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, idb.ErrNotesScheduleNotFound) {
			return nil, nil
		}
		return nil, err
	}
	now := time.Now()
	if reg.NextCheckTime.Valid && now.Before(reg.NextCheckTime.Time) {
		return nil, nil
	}

	notes, err := c.api.ZZZNotes(ctx, userID)
	if err != nil {
		deferral, surface := fetchReschedule(err)
		reg.NextCheckTime = sql.NullTime{Time: now.Add(deferral), Valid: true}
		if perr := c.repo.Upsert(ctx, reg); perr != nil {
			c.log.WithError(perr).Errorf("Failed to persist zzz notes schedule for user %d", userID)
		}
		if !surface {
			c.log.WithError(err).Infof("Transient zzz notes failure for user %d, retrying in %s", userID, deferral)
			return nil, nil
		}
		return &Alert{
			UserID:    userID,
			ChannelID: reg.ChannelID,
			Message:   fetchFailureMessage(c.GameName(), deferral),
			Detail:    err.Error(),
		}, nil
	}

	var fragments []string
	candidates := []time.Time{now.Add(24 * time.Hour)}

	if reg.ThresholdBattery.Valid {
		frag, candidate := resourceStatus(now, notes.BatteryRecovery, reg.ThresholdBattery.Int64, 0,
			notes.CurrentBattery >= notes.MaxBattery,
			"Battery charge is full!", "Battery charge is almost full!")
		fragments = appendFragment(fragments, frag)
		candidates = append(candidates, candidate)
	}
	if reg.CheckDailyEngagementTime.Valid {
		frag, candidate := fixedTimeStatus(now, &reg.CheckDailyEngagementTime, 24*time.Hour,
			notes.CurrentEngagement < notes.MaxEngagement,
			"Today's engagement is not completed yet!")
		fragments = appendFragment(fragments, frag)
		candidates = append(candidates, candidate)
	}

	reg.NextCheckTime = sql.NullTime{
		Time:  aggregateNextCheck(now, candidates, len(fragments) > 0),
		Valid: true,
	}
	if err := c.repo.Upsert(ctx, reg); err != nil {
		return nil, fmt.Errorf("failed to persist zzz notes schedule for user %d: %w", userID, err)
	}

	if len(fragments) == 0 {
		return nil, nil
	}
	return &Alert{
		UserID:    userID,
		ChannelID: reg.ChannelID,
		Message:   strings.Join(fragments, "\n"),
		Detail:    renderZZZDetail(notes),
	}, nil
}

func renderZZZDetail(notes *gameapi.ZZZNotes) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Battery: %d/%d (full in %s)\n",
		notes.CurrentBattery, notes.MaxBattery, formatRemaining(notes.BatteryRecovery))
	fmt.Fprintf(&b, "Engagement: %d/%d", notes.CurrentEngagement, notes.MaxEngagement)
	return b.String()
}
