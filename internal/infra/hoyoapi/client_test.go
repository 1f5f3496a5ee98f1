package hoyoapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hoyo_assistant_bot/internal/domain/gameapi"
)

func newTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	c := NewClient(log)
	c.http = server.Client()
	return c
}

func TestCall_DecodesEnvelope(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "cookie=value", r.Header.Get("Cookie"))
		w.Write([]byte(`{"retcode": 0, "message": "OK", "data": {"current_resin": 80, "max_resin": 200}}`))
	}))
	defer server.Close()

	c := newTestClient(t, server)
	var dto genshinNotesDTO
	err := c.call(context.Background(), http.MethodGet, server.URL, "cookie=value", nil, nil, &dto)
	require.NoError(t, err)
	assert.Equal(t, 80, dto.CurrentResin)
	assert.Equal(t, 200, dto.MaxResin)
}

func TestCall_MapsRetcodes(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		retcode  int
		wantKind gameapi.Kind
	}{
		{name: "not logged in", retcode: -100, wantKind: gameapi.KindExpiredCookie},
		{name: "invalid cookie", retcode: 10001, wantKind: gameapi.KindExpiredCookie},
		{name: "geetest blocked", retcode: 1034, wantKind: gameapi.KindChallengeRequired},
		{name: "already claimed", retcode: -5003, wantKind: gameapi.KindAlreadyClaimed},
		{name: "no character", retcode: -10002, wantKind: gameapi.KindOther},
		{name: "system busy", retcode: 50000, wantKind: gameapi.KindOther},
	}
	for _, tt := range testCases {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := classify(tt.retcode, "upstream message")
			assert.Equal(t, tt.wantKind, gameapi.KindOf(err))

			var apiErr *gameapi.Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.retcode, apiErr.Retcode)
		})
	}
}

func TestCall_RetriesTransientRetcode(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.Write([]byte(`{"retcode": -1, "message": "internal error"}`))
			return
		}
		w.Write([]byte(`{"retcode": 0, "message": "OK"}`))
	}))
	defer server.Close()

	c := newTestClient(t, server)
	err := c.call(context.Background(), http.MethodGet, server.URL, "", nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestCall_GivesUpAfterRetryBudget(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"retcode": -1, "message": "internal error"}`))
	}))
	defer server.Close()

	c := newTestClient(t, server)
	err := c.call(context.Background(), http.MethodGet, server.URL, "", nil, nil, nil)
	require.Error(t, err)
	assert.Equal(t, gameapi.KindTransient, gameapi.KindOf(err))
	assert.Equal(t, int32(1+retryMaxAttempts), calls.Load())
}

func TestCall_DoesNotRetryUserFixableFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"retcode": 10001, "message": "invalid cookie"}`))
	}))
	defer server.Close()

	c := newTestClient(t, server)
	err := c.call(context.Background(), http.MethodGet, server.URL, "", nil, nil, nil)
	require.Error(t, err)
	assert.Equal(t, gameapi.KindExpiredCookie, gameapi.KindOf(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestCallOnce_ForwardsGeetestHeaders(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "chl", r.Header.Get("x-rpc-challenge"))
		assert.Equal(t, "val", r.Header.Get("x-rpc-validate"))
		w.Write([]byte(`{"retcode": 0, "message": "OK", "data": {"gt_result": {"is_risk": true, "risk_code": 5001}}}`))
	}))
	defer server.Close()

	c := newTestClient(t, server)
	err := c.callOnce(context.Background(), http.MethodPost, server.URL, "cookie",
		map[string]string{"x-rpc-challenge": "chl", "x-rpc-validate": "val"},
		map[string]string{"lang": "en-us"}, nil)
	require.NoError(t, err)
}

func TestGenshinNotesDTO_ToModel(t *testing.T) {
	t.Parallel()

	dto := genshinNotesDTO{
		CurrentResin:         155,
		MaxResin:             200,
		ResinRecoveryTime:    seconds(6 * time.Hour),
		CurrentHomeCoin:      1200,
		MaxHomeCoin:          2400,
		HomeCoinRecoveryTime: seconds(30 * time.Hour),
	}
	dto.Transformer.Obtained = true
	dto.Transformer.RecoveryTime.Day = 2
	dto.Transformer.RecoveryTime.Hour = 5
	dto.Expeditions = []expeditionDTO{
		{Status: "Ongoing", RemainedTime: seconds(3 * time.Hour)},
		{Status: "Finished"},
	}

	notes, err := dto.toModel()
	require.NoError(t, err)
	assert.Equal(t, 155, notes.CurrentResin)
	assert.Equal(t, 6*time.Hour, notes.ResinRecovery)
	require.NotNil(t, notes.TransformerRecovery)
	assert.Equal(t, 53*time.Hour, *notes.TransformerRecovery)
	require.Len(t, notes.Expeditions, 2)
	assert.False(t, notes.Expeditions[0].Finished)
	assert.Equal(t, 3*time.Hour, notes.Expeditions[0].RemainingTime)
	assert.True(t, notes.Expeditions[1].Finished)
}

func TestSecondsUnmarshal(t *testing.T) {
	t.Parallel()

	var s seconds
	require.NoError(t, s.UnmarshalJSON([]byte(`"7200"`)))
	assert.Equal(t, 2*time.Hour, s.duration())

	require.NoError(t, s.UnmarshalJSON([]byte(`3600`)))
	assert.Equal(t, time.Hour, s.duration())

	require.Error(t, s.UnmarshalJSON([]byte(`"oops"`)))
}

func TestServerMapping(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "os_usa", genshinServer(612345678))
	assert.Equal(t, "os_euro", genshinServer(712345678))
	assert.Equal(t, "os_asia", genshinServer(812345678))
	assert.Equal(t, "os_cht", genshinServer(912345678))
	// 10-digit UIDs reuse the 9-digit ranges behind a leading digit.
	assert.Equal(t, "os_asia", genshinServer(1812345678))

	assert.Equal(t, "prod_official_eur", starrailServer(712345678))
	assert.Equal(t, "prod_gf_jp", zzzServer(712345678))
}
