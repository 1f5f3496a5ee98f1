// internal/infra/hoyoapi/service.go
package hoyoapi

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"hoyo_assistant_bot/internal/domain/gameapi"
	"hoyo_assistant_bot/internal/domain/user"
	"hoyo_assistant_bot/internal/infra/database"
)

const (
	notesCacheTTL     = 3 * time.Minute
	notesCacheCleanup = 10 * time.Minute
)

// Service implements gameapi.Client on top of the raw HTTP client, resolving
// per-user credentials from the user repository. Notes snapshots are cached
// briefly so overlapping sweeps don't refetch the same account.
type Service struct {
	client           *Client
	users            user.Repository
	notesCache       *cache.Cache
	geetestSolverURL string
	log              *logrus.Logger
}

func NewService(client *Client, users user.Repository, geetestSolverURL string, log *logrus.Logger) *Service {
	return &Service{
		client:           client,
		users:            users,
		notesCache:       cache.New(notesCacheTTL, notesCacheCleanup),
		geetestSolverURL: geetestSolverURL,
		log:              log,
	}
}

var _ gameapi.Client = (*Service)(nil)

func (s *Service) GenshinNotes(ctx context.Context, userID int64) (*gameapi.GenshinNotes, error) {
	key := fmt.Sprintf("genshin:%d", userID)
	if cached, ok := s.notesCache.Get(key); ok {
		return cached.(*gameapi.GenshinNotes), nil
	}

	cookie, uid, err := s.credentials(ctx, userID, gameapi.GameGenshin)
	if err != nil {
		return nil, err
	}
	notes, err := s.client.GenshinNotes(ctx, cookie, uid)
	if err != nil {
		return nil, err
	}
	s.notesCache.SetDefault(key, notes)
	s.touchLastUsed(ctx, userID)
	return notes, nil
}

func (s *Service) StarrailNotes(ctx context.Context, userID int64) (*gameapi.StarrailNotes, error) {
	key := fmt.Sprintf("starrail:%d", userID)
	if cached, ok := s.notesCache.Get(key); ok {
		return cached.(*gameapi.StarrailNotes), nil
	}

	cookie, uid, err := s.credentials(ctx, userID, gameapi.GameStarrail)
	if err != nil {
		return nil, err
	}
	notes, err := s.client.StarrailNotes(ctx, cookie, uid)
	if err != nil {
		return nil, err
	}
	s.notesCache.SetDefault(key, notes)
	s.touchLastUsed(ctx, userID)
	return notes, nil
}

func (s *Service) ZZZNotes(ctx context.Context, userID int64) (*gameapi.ZZZNotes, error) {
	key := fmt.Sprintf("zzz:%d", userID)
	if cached, ok := s.notesCache.Get(key); ok {
		return cached.(*gameapi.ZZZNotes), nil
	}

	cookie, uid, err := s.credentials(ctx, userID, gameapi.GameZZZ)
	if err != nil {
		return nil, err
	}
	notes, err := s.client.ZZZNotes(ctx, cookie, uid)
	if err != nil {
		return nil, err
	}
	s.notesCache.SetDefault(key, notes)
	s.touchLastUsed(ctx, userID)
	return notes, nil
}

// ClaimDailyRewards signs the user in for every selected game. An empty
// message with a nil error means the user record is gone and the caller
// should skip them silently.
func (s *Service) ClaimDailyRewards(ctx context.Context, req gameapi.ClaimRequest) (string, error) {
	u, err := s.users.GetByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to load user %d: %w", req.UserID, err)
	}

	var gt *user.GeetestChallenge
	if gc, err := s.users.GetGeetestChallenge(ctx, req.UserID); err == nil {
		gt = gc
	}

	message, err := s.client.ClaimAll(ctx, req.UserID, SelectedGames(req), userCredentials(u, gt), s.geetestSolverURL)
	if err != nil {
		return "", err
	}

	s.touchLastUsed(ctx, req.UserID)
	return message, nil
}

// touchLastUsed keeps the inactivity purge from collecting users whose
// schedules are still doing work. Failures only get logged.
func (s *Service) touchLastUsed(ctx context.Context, userID int64) {
	if err := s.users.TouchLastUsed(ctx, userID, time.Now()); err != nil {
		s.log.WithError(err).Warnf("Failed to update last used time for user %d", userID)
	}
}

// credentials resolves the cookie and UID for one game's notes fetch,
// falling back to the account-wide default cookie.
func (s *Service) credentials(ctx context.Context, userID int64, game gameapi.Game) (string, int64, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", 0, fmt.Errorf("failed to load user %d: %w", userID, err)
	}

	cookie := userCredentials(u, nil).cookie(game)
	if cookie == "" {
		return "", 0, &gameapi.Error{Kind: gameapi.KindExpiredCookie, Message: gameapi.MsgCookieExpired}
	}

	var uid sql.NullInt64
	switch game {
	case gameapi.GameGenshin:
		uid = u.UIDGenshin
	case gameapi.GameStarrail:
		uid = u.UIDStarrail
	case gameapi.GameZZZ:
		uid = u.UIDZZZ
	}
	if !uid.Valid || uid.Int64 == 0 {
		return "", 0, &gameapi.Error{Kind: gameapi.KindOther, Message: "no UID is saved, please set one first"}
	}
	return cookie, uid.Int64, nil
}

// userCredentials builds the sign-in credential set from a user row and
// their stored geetest challenges.
func userCredentials(u *user.User, gt *user.GeetestChallenge) Credentials {
	creds := Credentials{
		PerGame: map[gameapi.Game]string{},
		Geetest: map[gameapi.Game]*GeetestResult{},
	}
	if u.CookieDefault.Valid {
		creds.Default = u.CookieDefault.String
	}
	for game, cookie := range map[gameapi.Game]sql.NullString{
		gameapi.GameGenshin:   u.CookieGenshin,
		gameapi.GameHonkai3rd: u.CookieHonkai3rd,
		gameapi.GameStarrail:  u.CookieStarrail,
		gameapi.GameZZZ:       u.CookieZZZ,
	} {
		if cookie.Valid {
			creds.PerGame[game] = cookie.String
		}
	}
	if gt != nil {
		for game, raw := range map[gameapi.Game]sql.NullString{
			gameapi.GameGenshin:   gt.Genshin,
			gameapi.GameHonkai3rd: gt.Honkai3rd,
			gameapi.GameStarrail:  gt.Starrail,
		} {
			if !raw.Valid {
				continue
			}
			if result := DecodeGeetestResult(raw.String); result != nil {
				creds.Geetest[game] = result
			}
		}
	}
	return creds
}
