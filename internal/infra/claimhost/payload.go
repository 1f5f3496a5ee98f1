// Package claimhost implements both sides of the remote daily-reward
// protocol: the dispatcher-side client that fans claim work out to helper
// hosts, and the HTTP server those hosts run. The payload carries the user's
// credentials so a claim host needs no database of its own.
package claimhost

import (
	"hoyo_assistant_bot/internal/domain/gameapi"
	"hoyo_assistant_bot/internal/infra/hoyoapi"
)

// ClaimPayload is the body of POST /daily-reward.
type ClaimPayload struct {
	UserID int64 `json:"user_id"`

	Cookie          string `json:"cookie"`
	CookieGenshin   string `json:"cookie_genshin,omitempty"`
	CookieHonkai3rd string `json:"cookie_honkai3rd,omitempty"`
	CookieStarrail  string `json:"cookie_starrail,omitempty"`
	CookieZZZ       string `json:"cookie_zzz,omitempty"`

	HasGenshin   bool `json:"has_genshin"`
	HasHonkai3rd bool `json:"has_honkai3rd"`
	HasStarrail  bool `json:"has_starrail"`
	HasZZZ       bool `json:"has_zzz"`

	GeetestGenshin   string `json:"geetest_genshin,omitempty"`
	GeetestHonkai3rd string `json:"geetest_honkai3rd,omitempty"`
	GeetestStarrail  string `json:"geetest_starrail,omitempty"`
}

// ClaimResponse is the body of a successful POST /daily-reward.
type ClaimResponse struct {
	Message string `json:"message"`
}

func (p *ClaimPayload) claimRequest() gameapi.ClaimRequest {
	return gameapi.ClaimRequest{
		UserID:    p.UserID,
		Genshin:   p.HasGenshin,
		Honkai3rd: p.HasHonkai3rd,
		Starrail:  p.HasStarrail,
		ZZZ:       p.HasZZZ,
	}
}

func (p *ClaimPayload) credentials() hoyoapi.Credentials {
	creds := hoyoapi.Credentials{
		Default: p.Cookie,
		PerGame: map[gameapi.Game]string{},
		Geetest: map[gameapi.Game]*hoyoapi.GeetestResult{},
	}
	for game, cookie := range map[gameapi.Game]string{
		gameapi.GameGenshin:   p.CookieGenshin,
		gameapi.GameHonkai3rd: p.CookieHonkai3rd,
		gameapi.GameStarrail:  p.CookieStarrail,
		gameapi.GameZZZ:       p.CookieZZZ,
	} {
		if cookie != "" {
			creds.PerGame[game] = cookie
		}
	}
	for game, raw := range map[gameapi.Game]string{
		gameapi.GameGenshin:   p.GeetestGenshin,
		gameapi.GameHonkai3rd: p.GeetestHonkai3rd,
		gameapi.GameStarrail:  p.GeetestStarrail,
	} {
		if result := hoyoapi.DecodeGeetestResult(raw); result != nil {
			creds.Geetest[game] = result
		}
	}
	return creds
}
