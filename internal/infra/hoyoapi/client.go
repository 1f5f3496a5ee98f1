// Package hoyoapi talks to the HoYoLAB community API: real-time notes and
// daily reward sign-in for every supported game. All endpoints share one
// {retcode, message, data} envelope; non-zero retcodes are mapped onto the
// gameapi error taxonomy so callers can pick a reschedule policy without
// knowing retcode values.
package hoyoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"hoyo_assistant_bot/internal/domain/gameapi"
	"hoyo_assistant_bot/internal/pkg/retry"
)

const (
	genshinNotesURL  = "https://bbs-api-os.hoyolab.com/game_record/genshin/api/dailyNote"
	starrailNotesURL = "https://bbs-api-os.hoyolab.com/game_record/hkrpg/api/note"
	zzzNotesURL      = "https://bbs-api-os.hoyolab.com/game_record/zzz/api/note"

	genshinSignURL   = "https://sg-hk4e-api.hoyolab.com/event/sol/sign?act_id=e202102251931481"
	honkai3rdSignURL = "https://sg-public-api.hoyolab.com/event/mani/sign?act_id=e202110291205111"
	starrailSignURL  = "https://sg-public-api.hoyolab.com/event/luna/os/sign?act_id=e202303301540311"
	zzzSignURL       = "https://sg-act-nap-api.hoyolab.com/event/luna/zzz/os/sign?act_id=e202406031448091"
)

// Upstream retcodes with dedicated handling.
const (
	retcodeInternalError  = -1
	retcodeNotLoggedIn    = -100
	retcodeInvalidCookie  = 10001
	retcodeGeetestBlocked = 1034
	retcodeAlreadyClaimed = -5003
	retcodeNoCharacter    = -10002
	retcodeSystemBusy     = 50000
)

const (
	retryInitialInterval = 1 * time.Second
	retryMaxInterval     = 8 * time.Second
	retryMaxAttempts     = 3
)

// GeetestResult carries a solved verification challenge to attach to a
// sign-in request.
type GeetestResult struct {
	Challenge string `json:"challenge"`
	Validate  string `json:"validate"`
	Seccode   string `json:"seccode"`
}

// Client is the low-level HoYoLAB HTTP client. It is credential-explicit:
// every call takes the cookie (and UID where needed) so both the bot and the
// standalone claim host can share it.
type Client struct {
	http *http.Client
	log  *logrus.Logger
}

func NewClient(log *logrus.Logger) *Client {
	return &Client{
		http: &http.Client{Timeout: 30 * time.Second},
		log:  log,
	}
}

type envelope struct {
	Retcode int             `json:"retcode"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// GenshinNotes fetches the real-time notes of a Genshin Impact account.
func (c *Client) GenshinNotes(ctx context.Context, cookie string, uid int64) (*gameapi.GenshinNotes, error) {
	url := fmt.Sprintf("%s?role_id=%d&server=%s", genshinNotesURL, uid, genshinServer(uid))
	var dto genshinNotesDTO
	if err := c.call(ctx, http.MethodGet, url, cookie, nil, nil, &dto); err != nil {
		return nil, err
	}
	return dto.toModel()
}

// StarrailNotes fetches the real-time notes of a Star Rail account.
func (c *Client) StarrailNotes(ctx context.Context, cookie string, uid int64) (*gameapi.StarrailNotes, error) {
	url := fmt.Sprintf("%s?role_id=%d&server=%s", starrailNotesURL, uid, starrailServer(uid))
	var dto starrailNotesDTO
	if err := c.call(ctx, http.MethodGet, url, cookie, nil, nil, &dto); err != nil {
		return nil, err
	}
	return dto.toModel(), nil
}

// ZZZNotes fetches the real-time notes of a Zenless Zone Zero account.
func (c *Client) ZZZNotes(ctx context.Context, cookie string, uid int64) (*gameapi.ZZZNotes, error) {
	url := fmt.Sprintf("%s?role_id=%d&server=%s", zzzNotesURL, uid, zzzServer(uid))
	var dto zzzNotesDTO
	if err := c.call(ctx, http.MethodGet, url, cookie, nil, nil, &dto); err != nil {
		return nil, err
	}
	return dto.toModel(), nil
}

// ClaimDailyReward signs the account in for game. A solved geetest result,
// when present, is attached as x-rpc headers the way the sign-in endpoints
// expect.
func (c *Client) ClaimDailyReward(ctx context.Context, game gameapi.Game, cookie string, gt *GeetestResult) error {
	var url string
	switch game {
	case gameapi.GameGenshin:
		url = genshinSignURL
	case gameapi.GameHonkai3rd:
		url = honkai3rdSignURL
	case gameapi.GameStarrail:
		url = starrailSignURL
	case gameapi.GameZZZ:
		url = zzzSignURL
	default:
		return fmt.Errorf("unknown game %q", game)
	}

	headers := map[string]string{}
	if gt != nil {
		headers["x-rpc-challenge"] = gt.Challenge
		headers["x-rpc-validate"] = gt.Validate
		headers["x-rpc-seccode"] = gt.Seccode
	}

	var data struct {
		GtResult struct {
			RiskCode  int    `json:"risk_code"`
			Gt        string `json:"gt"`
			Challenge string `json:"challenge"`
			IsRisk    bool   `json:"is_risk"`
		} `json:"gt_result"`
	}
	if err := c.call(ctx, http.MethodPost, url, cookie, headers, map[string]string{"lang": "en-us"}, &data); err != nil {
		return err
	}
	// A zero retcode can still hide a geetest wall for Genshin sign-ins.
	if data.GtResult.IsRisk {
		return &gameapi.Error{
			Kind:    gameapi.KindChallengeRequired,
			Retcode: retcodeGeetestBlocked,
			Message: "sign-in blocked by verification challenge",
		}
	}
	return nil
}

// call performs one API request, retrying transient failures with
// exponential backoff. On success the decoded data object is stored in out,
// when out is non-nil.
func (c *Client) call(ctx context.Context, method, url, cookie string, headers map[string]string, body any, out any) error {
	strategy := retry.NewExponentialBackoffStrategy(retryInitialInterval, retryMaxInterval, retryMaxAttempts)
	for {
		err := c.callOnce(ctx, method, url, cookie, headers, body, out)
		if err == nil || gameapi.KindOf(err) != gameapi.KindTransient {
			return err
		}
		wait, ok := strategy.Next()
		if !ok {
			return err
		}
		c.log.WithError(err).Debugf("Transient HoYoLAB error, retrying in %s", wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (c *Client) callOnce(ctx context.Context, method, url, cookie string, headers map[string]string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Cookie", cookie)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-rpc-app_version", "1.5.0")
	req.Header.Set("x-rpc-client_type", "5")
	req.Header.Set("x-rpc-language", "en-us")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &gameapi.Error{
			Kind:    gameapi.KindTransient,
			Message: "HoYoLAB request failed",
			Err:     err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		kind := gameapi.KindOther
		if resp.StatusCode >= http.StatusInternalServerError {
			kind = gameapi.KindTransient
		}
		return &gameapi.Error{
			Kind:    kind,
			Message: "unexpected HTTP status " + strconv.Itoa(resp.StatusCode),
		}
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return &gameapi.Error{
			Kind:    gameapi.KindTransient,
			Message: "failed to decode HoYoLAB response",
			Err:     err,
		}
	}
	if env.Retcode != 0 {
		return classify(env.Retcode, env.Message)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode HoYoLAB data: %w", err)
		}
	}
	return nil
}

// classify maps an upstream retcode onto the error taxonomy.
func classify(retcode int, message string) error {
	kind := gameapi.KindOther
	switch retcode {
	case retcodeInternalError:
		kind = gameapi.KindTransient
	case retcodeNotLoggedIn, retcodeInvalidCookie:
		kind = gameapi.KindExpiredCookie
	case retcodeGeetestBlocked:
		kind = gameapi.KindChallengeRequired
	case retcodeAlreadyClaimed:
		kind = gameapi.KindAlreadyClaimed
	}
	return &gameapi.Error{Kind: kind, Retcode: retcode, Message: message}
}

// genshinServer maps a UID onto its server region code.
func genshinServer(uid int64) string {
	s := strconv.FormatInt(uid, 10)
	if len(s) == 10 {
		s = s[1:] // 10-digit UIDs repeat the 9-digit ranges with a leading digit
	}
	switch s[0] {
	case '6':
		return "os_usa"
	case '7':
		return "os_euro"
	case '8':
		return "os_asia"
	case '9':
		return "os_cht"
	default:
		return "os_asia"
	}
}

func starrailServer(uid int64) string {
	switch strconv.FormatInt(uid, 10)[0] {
	case '6':
		return "prod_official_usa"
	case '7':
		return "prod_official_eur"
	case '8':
		return "prod_official_asia"
	case '9':
		return "prod_official_cht"
	default:
		return "prod_official_asia"
	}
}

func zzzServer(uid int64) string {
	switch strconv.FormatInt(uid, 10)[0] {
	case '1':
		return "prod_gf_us"
	case '5':
		return "prod_gf_eu"
	case '7':
		return "prod_gf_jp"
	default:
		return "prod_gf_sg"
	}
}
