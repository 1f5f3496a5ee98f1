// internal/app/purge_service.go
package app

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"hoyo_assistant_bot/internal/domain/schedule"
	"hoyo_assistant_bot/internal/domain/user"
)

// PurgeService removes users who have not touched the bot for a long time,
// together with every schedule registration pointing at them. Runs daily.
type PurgeService struct {
	users         user.Repository
	claims        schedule.DailyClaimRepository
	genshinNotes  schedule.GenshinNotesRepository
	starrailNotes schedule.StarrailNotesRepository
	zzzNotes      schedule.ZZZNotesRepository
	expireAfter   time.Duration
	log           *logrus.Logger
}

func NewPurgeService(
	users user.Repository,
	claims schedule.DailyClaimRepository,
	genshinNotes schedule.GenshinNotesRepository,
	starrailNotes schedule.StarrailNotesRepository,
	zzzNotes schedule.ZZZNotesRepository,
	expireAfterDays int,
	log *logrus.Logger,
) *PurgeService {
	return &PurgeService{
		users:         users,
		claims:        claims,
		genshinNotes:  genshinNotes,
		starrailNotes: starrailNotes,
		zzzNotes:      zzzNotes,
		expireAfter:   time.Duration(expireAfterDays) * 24 * time.Hour,
		log:           log,
	}
}

// Execute deletes every user idle longer than the configured window.
func (s *PurgeService) Execute(ctx context.Context) {
	cutoff := time.Now().Add(-s.expireAfter)
	expired, err := s.users.ListInactiveSince(ctx, cutoff)
	if err != nil {
		s.log.WithError(err).Error("Failed to list inactive users")
		return
	}
	if len(expired) == 0 {
		return
	}

	purged := 0
	for _, u := range expired {
		if err := s.purgeUser(ctx, u.ID); err != nil {
			s.log.WithError(err).Errorf("Failed to purge inactive user %d", u.ID)
			continue
		}
		purged++
	}
	s.log.Infof("Purged %d/%d inactive users (idle since %s)", purged, len(expired), cutoff.Format(time.RFC3339))
}

func (s *PurgeService) purgeUser(ctx context.Context, userID int64) error {
	if err := s.claims.Delete(ctx, userID); err != nil {
		return err
	}
	if err := s.genshinNotes.Delete(ctx, userID); err != nil {
		return err
	}
	if err := s.starrailNotes.Delete(ctx, userID); err != nil {
		return err
	}
	if err := s.zzzNotes.Delete(ctx, userID); err != nil {
		return err
	}
	return s.users.Delete(ctx, userID)
}
