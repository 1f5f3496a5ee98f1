// internal/infra/claimhost/client.go
package claimhost

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"hoyo_assistant_bot/internal/domain/gameapi"
	"hoyo_assistant_bot/internal/domain/user"
	"hoyo_assistant_bot/internal/infra/database"
)

// Client talks to one remote claim host. It loads the user's credentials
// from the repository and ships them in the request, so the remote side
// stays stateless.
type Client struct {
	host  string
	http  *http.Client
	users user.Repository
	log   *logrus.Logger
}

func NewClient(host string, users user.Repository, log *logrus.Logger) *Client {
	return &Client{
		host:  host,
		http:  &http.Client{Timeout: 60 * time.Second},
		users: users,
		log:   log,
	}
}

// Host returns the base URL this client points at.
func (c *Client) Host() string {
	return c.host
}

// Probe checks that the claim host is reachable and healthy.
func (c *Client) Probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host, nil)
	if err != nil {
		return fmt.Errorf("failed to build probe request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("claim host %s is unreachable: %w", c.host, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("claim host %s returned HTTP status %d", c.host, resp.StatusCode)
	}
	return nil
}

// Claim performs one user's daily reward run on the remote host. An empty
// message with a nil error means the user record is gone and the caller
// should skip them silently.
func (c *Client) Claim(ctx context.Context, req gameapi.ClaimRequest) (string, error) {
	u, err := c.users.GetByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to load user %d: %w", req.UserID, err)
	}
	if !u.CookieDefault.Valid || u.CookieDefault.String == "" {
		return "no cookie is saved, please set one first", nil
	}

	payload := ClaimPayload{
		UserID:          req.UserID,
		Cookie:          u.CookieDefault.String,
		CookieGenshin:   u.CookieGenshin.String,
		CookieHonkai3rd: u.CookieHonkai3rd.String,
		CookieStarrail:  u.CookieStarrail.String,
		CookieZZZ:       u.CookieZZZ.String,
		HasGenshin:      req.Genshin,
		HasHonkai3rd:    req.Honkai3rd,
		HasStarrail:     req.Starrail,
		HasZZZ:          req.ZZZ,
	}
	if gt, err := c.users.GetGeetestChallenge(ctx, req.UserID); err == nil {
		payload.GeetestGenshin = gt.Genshin.String
		payload.GeetestHonkai3rd = gt.Honkai3rd.String
		payload.GeetestStarrail = gt.Starrail.String
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode claim payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/daily-reward", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build claim request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("claim host %s request failed: %w", c.host, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("claim host %s returned HTTP status %d", c.host, resp.StatusCode)
	}

	var result ClaimResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode claim host %s response: %w", c.host, err)
	}
	return result.Message, nil
}
