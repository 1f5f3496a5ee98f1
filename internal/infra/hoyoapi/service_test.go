package hoyoapi

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hoyo_assistant_bot/internal/domain/gameapi"
	"hoyo_assistant_bot/internal/domain/user"
	idb "hoyo_assistant_bot/internal/infra/database"
)

// scriptedTransport answers every request with the same envelope, counting
// how many requests actually left the service.
type scriptedTransport struct {
	calls atomic.Int32
	body  string
}

func (t *scriptedTransport) RoundTrip(*http.Request) (*http.Response, error) {
	t.calls.Add(1)
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(bytes.NewBufferString(t.body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}, nil
}

type stubUserRepo struct {
	users   map[int64]*user.User
	touched atomic.Int32
}

func (r *stubUserRepo) GetByID(_ context.Context, id int64) (*user.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, idb.ErrUserNotFound
}

func (r *stubUserRepo) Upsert(context.Context, *user.User) error { return nil }
func (r *stubUserRepo) Delete(context.Context, int64) error      { return nil }

func (r *stubUserRepo) TouchLastUsed(context.Context, int64, time.Time) error {
	r.touched.Add(1)
	return nil
}

func (r *stubUserRepo) ListInactiveSince(context.Context, time.Time) ([]*user.User, error) {
	return nil, nil
}

func (r *stubUserRepo) GetGeetestChallenge(context.Context, int64) (*user.GeetestChallenge, error) {
	return nil, idb.ErrGeetestChallengeNotFound
}

func (r *stubUserRepo) UpsertGeetestChallenge(context.Context, *user.GeetestChallenge) error {
	return nil
}

func newTestService(users *stubUserRepo, transport *scriptedTransport) *Service {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	c := NewClient(log)
	c.http = &http.Client{Transport: transport}
	return NewService(c, users, "", log)
}

func linkedUser(id int64) *user.User {
	return &user.User{
		ID:            id,
		CookieDefault: sql.NullString{String: "ltoken=abc; ltuid=1", Valid: true},
		UIDGenshin:    sql.NullInt64{Int64: 700000001, Valid: true},
	}
}

// A second notes fetch within the cache TTL must not hit the API again.
func TestService_NotesCacheHit(t *testing.T) {
	t.Parallel()

	transport := &scriptedTransport{
		body: `{"retcode": 0, "message": "OK", "data": {"current_resin": 80, "max_resin": 200, "resin_recovery_time": "3600"}}`,
	}
	users := &stubUserRepo{users: map[int64]*user.User{1: linkedUser(1)}}
	service := newTestService(users, transport)

	first, err := service.GenshinNotes(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 80, first.CurrentResin)

	second, err := service.GenshinNotes(context.Background(), 1)
	require.NoError(t, err)
	assert.Same(t, first, second, "the cached snapshot must be returned as-is")
	assert.Equal(t, int32(1), transport.calls.Load())
	assert.Equal(t, int32(1), users.touched.Load(), "a cache hit is not an interaction")
}

// A user without any saved cookie fails with the expired-cookie kind, so
// the checkers surface the right guidance.
func TestService_MissingCookie(t *testing.T) {
	t.Parallel()

	users := &stubUserRepo{users: map[int64]*user.User{
		1: {ID: 1, UIDGenshin: sql.NullInt64{Int64: 700000001, Valid: true}},
	}}
	service := newTestService(users, &scriptedTransport{})

	_, err := service.GenshinNotes(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, gameapi.KindExpiredCookie, gameapi.KindOf(err))
}

// A linked account without a saved character UID cannot be checked.
func TestService_MissingUID(t *testing.T) {
	t.Parallel()

	users := &stubUserRepo{users: map[int64]*user.User{
		1: {ID: 1, CookieDefault: sql.NullString{String: "ltoken=abc", Valid: true}},
	}}
	service := newTestService(users, &scriptedTransport{})

	_, err := service.GenshinNotes(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, gameapi.KindOther, gameapi.KindOf(err))
}

// A deleted user skips the claim silently instead of erroring the queue.
func TestService_ClaimSkipsUnknownUser(t *testing.T) {
	t.Parallel()

	service := newTestService(&stubUserRepo{users: map[int64]*user.User{}}, &scriptedTransport{})

	message, err := service.ClaimDailyRewards(context.Background(), gameapi.ClaimRequest{UserID: 9, Genshin: true})
	require.NoError(t, err)
	assert.Empty(t, message)
}
