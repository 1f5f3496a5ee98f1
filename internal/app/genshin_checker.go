// internal/app/genshin_checker.go
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

// genshinGrace widens every Genshin threshold comparison slightly, so a
// check that lands a few seconds before the exact crossing still fires.
const genshinGrace = 10 * time.Second

// GenshinChecker evaluates Genshin Impact notes registrations: resin, realm
// currency, the Parametric Transformer, expeditions and the daily
// commission reward.
type GenshinChecker struct {
	repo schedule.GenshinNotesRepository
	api  gameapi.Client
	log  *logrus.Logger
}

func NewGenshinChecker(repo schedule.GenshinNotesRepository, api gameapi.Client, log *logrus.Logger) *GenshinChecker {
	return &GenshinChecker{repo: repo, api: api, log: log}
}

func (c *GenshinChecker) GameName() string {
	return "Genshin Impact"
}

func (c *GenshinChecker) ListUserIDs(ctx context.Context) ([]int64, error) {
	return c.repo.ListUserIDs(ctx)
}

func (c *GenshinChecker) Remove(ctx context.Context, userID int64) error {
	return c.repo.Delete(ctx, userID)
}

func (c *GenshinChecker) CheckUser(ctx context.Context, userID int64) (*Alert, error) {
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

	notes, err := c.api.GenshinNotes(ctx, userID)
	if err != nil {
		deferral, surface := fetchReschedule(err)
		reg.NextCheckTime = sql.NullTime{Time: now.Add(deferral), Valid: true}
		if perr := c.repo.Upsert(ctx, reg); perr != nil {
			c.log.WithError(perr).Errorf("Failed to persist genshin notes schedule for user %d", userID)
		}
		if !surface {
			c.log.WithError(err).Infof("Transient genshin notes failure for user %d, retrying in %s", userID, deferral)
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

	if reg.ThresholdResin.Valid {
		frag, candidate := resourceStatus(now, notes.ResinRecovery, reg.ThresholdResin.Int64, genshinGrace,
			notes.CurrentResin >= notes.MaxResin,
			"Resin is full!", "Resin is almost full!")
		fragments = appendFragment(fragments, frag)
		candidates = append(candidates, candidate)
	}
	if reg.ThresholdCurrency.Valid {
		frag, candidate := resourceStatus(now, notes.RealmCurrencyRecovery, reg.ThresholdCurrency.Int64, genshinGrace,
			notes.CurrentRealmCurrency >= notes.MaxRealmCurrency,
			"Realm currency is full!", "Realm currency is almost full!")
		fragments = appendFragment(fragments, frag)
		candidates = append(candidates, candidate)
	}
	if reg.ThresholdTransformer.Valid && notes.TransformerRecovery != nil {
		remaining := *notes.TransformerRecovery
		frag, candidate := resourceStatus(now, remaining, reg.ThresholdTransformer.Int64, genshinGrace,
			remaining <= 5*time.Second,
			"The Parametric Transformer is ready!", "The Parametric Transformer is almost ready!")
		fragments = appendFragment(fragments, frag)
		candidates = append(candidates, candidate)
	}
	if reg.ThresholdExpedition.Valid && len(notes.Expeditions) > 0 {
		longest := longestExpedition(notes.Expeditions)
		frag, candidate := resourceStatus(now, longest.RemainingTime, reg.ThresholdExpedition.Int64, genshinGrace,
			longest.Finished,
			"Expeditions are complete!", "Expeditions are almost complete!")
		fragments = appendFragment(fragments, frag)
		candidates = append(candidates, candidate)
	}
	if reg.CheckCommissionTime.Valid {
		frag, candidate := fixedTimeStatus(now, &reg.CheckCommissionTime, 24*time.Hour,
			!notes.CommissionRewardClaimed,
			"Today's commission rewards are not claimed yet!")
		fragments = appendFragment(fragments, frag)
		candidates = append(candidates, candidate)
	}

	reg.NextCheckTime = sql.NullTime{
		Time:  aggregateNextCheck(now, candidates, len(fragments) > 0),
		Valid: true,
	}
	if err := c.repo.Upsert(ctx, reg); err != nil {
		return nil, fmt.Errorf("failed to persist genshin notes schedule for user %d: %w", userID, err)
	}

	if len(fragments) == 0 {
		return nil, nil
	}
	return &Alert{
		UserID:    userID,
		ChannelID: reg.ChannelID,
		Message:   strings.Join(fragments, "\n"),
		Detail:    renderGenshinDetail(notes),
	}, nil
}

// longestExpedition picks the expedition that finishes last, so the check
// re-fires before the final one crosses the threshold.
func longestExpedition(expeditions []gameapi.Expedition) gameapi.Expedition {
	longest := expeditions[0]
	for _, e := range expeditions[1:] {
		if e.RemainingTime > longest.RemainingTime {
			longest = e
		}
	}
	return longest
}

func renderGenshinDetail(notes *gameapi.GenshinNotes) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Resin: %d/%d (full in %s)\n",
		notes.CurrentResin, notes.MaxResin, formatRemaining(notes.ResinRecovery))
	fmt.Fprintf(&b, "Realm currency: %d/%d (full in %s)\n",
		notes.CurrentRealmCurrency, notes.MaxRealmCurrency, formatRemaining(notes.RealmCurrencyRecovery))
	if notes.TransformerRecovery != nil {
		fmt.Fprintf(&b, "Parametric Transformer: ready in %s\n", formatRemaining(*notes.TransformerRecovery))
	}
	if len(notes.Expeditions) > 0 {
		finished := 0
		for _, e := range notes.Expeditions {
			if e.Finished {
				finished++
			}
		}
		fmt.Fprintf(&b, "Expeditions: %d/%d finished (last done in %s)\n",
			finished, len(notes.Expeditions), formatRemaining(longestExpedition(notes.Expeditions).RemainingTime))
	}
	if notes.CommissionRewardClaimed {
		b.WriteString("Commission rewards: claimed")
	} else {
		b.WriteString("Commission rewards: not claimed")
	}
	return b.String()
}
