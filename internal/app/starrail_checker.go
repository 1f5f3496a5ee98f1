// internal/app/starrail_checker.go
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

const week = 7 * 24 * time.Hour

// StarrailChecker evaluates Star Rail notes registrations: Trailblaze
// Power, assignments, daily training and the weekly Simulated Universe and
// Echo of War runs.
type StarrailChecker struct {
	repo schedule.StarrailNotesRepository
	api  gameapi.Client
	log  *logrus.Logger
}

func NewStarrailChecker(repo schedule.StarrailNotesRepository, api gameapi.Client, log *logrus.Logger) *StarrailChecker {
	return &StarrailChecker{repo: repo, api: api, log: log}
}

func (c *StarrailChecker) GameName() string {
	return "Honkai: Star Rail"
}

func (c *StarrailChecker) ListUserIDs(ctx context.Context) ([]int64, error) {
	return c.repo.ListUserIDs(ctx)
}

func (c *StarrailChecker) Remove(ctx context.Context, userID int64) error {
	return c.repo.Delete(ctx, userID)
}

func (c *StarrailChecker) CheckUser(ctx context.Context, userID int64) (*Alert, error) {
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

	notes, err := c.api.StarrailNotes(ctx, userID)
	if err != nil {
		deferral, surface := fetchReschedule(err)
		reg.NextCheckTime = sql.NullTime{Time: now.Add(deferral), Valid: true}
		if perr := c.repo.Upsert(ctx, reg); perr != nil {
			c.log.WithError(perr).Errorf("Failed to persist starrail notes schedule for user %d", userID)
		}
		if !surface {
			c.log.WithError(err).Infof("Transient starrail notes failure for user %d, retrying in %s", userID, deferral)
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

	if reg.ThresholdPower.Valid {
		frag, candidate := resourceStatus(now, notes.StaminaRecovery, reg.ThresholdPower.Int64, 0,
			notes.CurrentStamina >= notes.MaxStamina,
			"Trailblaze Power is full!", "Trailblaze Power is almost full!")
		fragments = appendFragment(fragments, frag)
		candidates = append(candidates, candidate)
	}
	if reg.ThresholdExpedition.Valid && len(notes.Expeditions) > 0 {
		longest := longestExpedition(notes.Expeditions)
		frag, candidate := resourceStatus(now, longest.RemainingTime, reg.ThresholdExpedition.Int64, 0,
			longest.Finished,
			"Assignments are complete!", "Assignments are almost complete!")
		fragments = appendFragment(fragments, frag)
		candidates = append(candidates, candidate)
	}
	if reg.CheckDailyTrainingTime.Valid {
		frag, candidate := fixedTimeStatus(now, &reg.CheckDailyTrainingTime, 24*time.Hour,
			notes.CurrentTrainScore < notes.MaxTrainScore,
			"Today's daily training is not finished yet!")
		fragments = appendFragment(fragments, frag)
		candidates = append(candidates, candidate)
	}
	if reg.CheckUniverseTime.Valid {
		frag, candidate := fixedTimeStatus(now, &reg.CheckUniverseTime, week,
			notes.CurrentRogueScore < notes.MaxRogueScore,
			"This week's Simulated Universe is not finished yet!")
		fragments = appendFragment(fragments, frag)
		candidates = append(candidates, candidate)
	}
	if reg.CheckEchoOfWarTime.Valid {
		frag, candidate := fixedTimeStatus(now, &reg.CheckEchoOfWarTime, week,
			notes.RemainingWeeklyDiscounts > 0,
			"This week's Echo of War is not finished yet!")
		fragments = appendFragment(fragments, frag)
		candidates = append(candidates, candidate)
	}

	reg.NextCheckTime = sql.NullTime{
		Time:  aggregateNextCheck(now, candidates, len(fragments) > 0),
		Valid: true,
	}
	if err := c.repo.Upsert(ctx, reg); err != nil {
		return nil, fmt.Errorf("failed to persist starrail notes schedule for user %d: %w", userID, err)
	}

	if len(fragments) == 0 {
		return nil, nil
	}
	return &Alert{
		UserID:    userID,
		ChannelID: reg.ChannelID,
		Message:   strings.Join(fragments, "\n"),
		Detail:    renderStarrailDetail(notes),
	}, nil
}

func renderStarrailDetail(notes *gameapi.StarrailNotes) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Trailblaze Power: %d/%d (full in %s)\n",
		notes.CurrentStamina, notes.MaxStamina, formatRemaining(notes.StaminaRecovery))
	if len(notes.Expeditions) > 0 {
		finished := 0
		for _, e := range notes.Expeditions {
			if e.Finished {
				finished++
			}
		}
		fmt.Fprintf(&b, "Assignments: %d/%d finished (last done in %s)\n",
			finished, len(notes.Expeditions), formatRemaining(longestExpedition(notes.Expeditions).RemainingTime))
	}
	fmt.Fprintf(&b, "Daily training: %d/%d\n", notes.CurrentTrainScore, notes.MaxTrainScore)
	fmt.Fprintf(&b, "Simulated Universe: %d/%d\n", notes.CurrentRogueScore, notes.MaxRogueScore)
	fmt.Fprintf(&b, "Echo of War discounts left: %d", notes.RemainingWeeklyDiscounts)
	return b.String()
}
