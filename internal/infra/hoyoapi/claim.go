// internal/infra/hoyoapi/claim.go
package hoyoapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	"hoyo_assistant_bot/internal/domain/gameapi"
)

var gameDisplayNames = map[gameapi.Game]string{
	gameapi.GameGenshin:   "Genshin Impact",
	gameapi.GameHonkai3rd: "Honkai Impact 3rd",
	gameapi.GameStarrail:  "Honkai: Star Rail",
	gameapi.GameZZZ:       "Zenless Zone Zero",
}

var officialSignInPages = map[gameapi.Game]string{
	gameapi.GameGenshin:   "https://act.hoyolab.com/ys/event/signin-sea-v3/index.html?act_id=e202102251931481",
	gameapi.GameHonkai3rd: "https://act.hoyolab.com/bbs/event/signin-bh3/index.html?act_id=e202110291205111",
	gameapi.GameStarrail:  "https://act.hoyolab.com/bbs/event/signin/hkrpg/index.html?act_id=e202303301540311",
	gameapi.GameZZZ:       "https://act.hoyolab.com/bbs/event/signin/zzz/index.html?act_id=e202406031448091",
}

// Credentials carries the cookies and solved geetest challenges for one
// user's sign-in run. Both the bot (from the database) and the claim host
// (from the request payload) build this.
type Credentials struct {
	Default string
	PerGame map[gameapi.Game]string
	Geetest map[gameapi.Game]*GeetestResult
}

func (c Credentials) cookie(game gameapi.Game) string {
	if cookie := c.PerGame[game]; cookie != "" {
		return cookie
	}
	return c.Default
}

// ClaimAll signs the user in for every requested game and renders one result
// line per game. Failures the user can act on become message lines;
// unexpected failures are aggregated into the returned error so the caller
// retries the whole run.
func (c *Client) ClaimAll(ctx context.Context, userID int64, games []gameapi.Game, creds Credentials, solverURL string) (string, error) {
	if len(games) == 0 {
		return gameapi.MsgNoGameSelected, nil
	}

	var lines []string
	var unexpected error
	for _, game := range games {
		line, err := c.claimOne(ctx, userID, game, creds, solverURL)
		if err != nil {
			unexpected = multierror.Append(unexpected, err)
			continue
		}
		if line != "" {
			lines = append(lines, line)
		}
	}
	if unexpected != nil {
		return "", unexpected
	}
	return strings.Join(lines, "\n"), nil
}

func (c *Client) claimOne(ctx context.Context, userID int64, game gameapi.Game, creds Credentials, solverURL string) (string, error) {
	name := gameDisplayNames[game]

	cookie := creds.cookie(game)
	if cookie == "" {
		return name + ": no cookie is saved, please set one first", nil
	}

	err := c.ClaimDailyReward(ctx, game, cookie, creds.Geetest[game])
	if err == nil {
		return name + ": signed in, today's reward claimed!", nil
	}

	var apiErr *gameapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Kind {
		case gameapi.KindAlreadyClaimed:
			return name + ": today's reward was already claimed!", nil
		case gameapi.KindExpiredCookie:
			return gameapi.MsgCookieExpired, nil
		case gameapi.KindChallengeRequired:
			return challengeLine(name, game, userID, solverURL), nil
		case gameapi.KindOther:
			switch apiErr.Retcode {
			case retcodeNoCharacter:
				return name + ": sign-in failed, no character found on this account", nil
			case retcodeSystemBusy:
				return name + ": the request failed, please try again later", nil
			}
		}
	}
	return "", fmt.Errorf("%s sign-in failed for user %d: %w", game, userID, err)
}

func challengeLine(name string, game gameapi.Game, userID int64, solverURL string) string {
	if solverURL != "" {
		url := fmt.Sprintf("%s/geetest/%s/%d", solverURL, game, userID)
		return fmt.Sprintf("%s: sign-in blocked by a verification challenge, solve it here: %s", name, url)
	}
	return fmt.Sprintf("%s: sign-in blocked by a verification challenge, please sign in manually: %s",
		name, officialSignInPages[game])
}

// DecodeGeetestResult parses a stored solved-challenge JSON string.
// Malformed entries are treated as absent.
func DecodeGeetestResult(raw string) *GeetestResult {
	if raw == "" {
		return nil
	}
	var result GeetestResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil
	}
	return &result
}

// SelectedGames expands a claim request into the game list, in the fixed
// claim order.
func SelectedGames(req gameapi.ClaimRequest) []gameapi.Game {
	var games []gameapi.Game
	if req.Genshin {
		games = append(games, gameapi.GameGenshin)
	}
	if req.Honkai3rd {
		games = append(games, gameapi.GameHonkai3rd)
	}
	if req.Starrail {
		games = append(games, gameapi.GameStarrail)
	}
	if req.ZZZ {
		games = append(games, gameapi.GameZZZ)
	}
	return games
}
