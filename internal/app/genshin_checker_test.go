package app

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hoyo_assistant_bot/internal/domain/gameapi"
	"hoyo_assistant_bot/internal/domain/schedule"
	idb "hoyo_assistant_bot/internal/infra/database"
)

// fakeGenshinNotesRepo is an in-memory schedule.GenshinNotesRepository.
type fakeGenshinNotesRepo struct {
	mu       sync.Mutex
	regs     map[int64]*schedule.GenshinNotesSchedule
	upserted int
	deleted  map[int64]bool
}

func newFakeGenshinNotesRepo(regs ...*schedule.GenshinNotesSchedule) *fakeGenshinNotesRepo {
	repo := &fakeGenshinNotesRepo{
		regs:    map[int64]*schedule.GenshinNotesSchedule{},
		deleted: map[int64]bool{},
	}
	for _, r := range regs {
		repo.regs[r.UserID] = r
	}
	return repo
}

func (r *fakeGenshinNotesRepo) ListUserIDs(context.Context) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int64, 0, len(r.regs))
	for id := range r.regs {
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *fakeGenshinNotesRepo) GetByUserID(_ context.Context, userID int64) (*schedule.GenshinNotesSchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if reg, ok := r.regs[userID]; ok {
		return reg, nil
	}
	return nil, idb.ErrNotesScheduleNotFound
}

func (r *fakeGenshinNotesRepo) Upsert(_ context.Context, reg *schedule.GenshinNotesSchedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.regs[reg.UserID] = reg
	r.upserted++
	return nil
}

func (r *fakeGenshinNotesRepo) Delete(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.regs, userID)
	r.deleted[userID] = true
	return nil
}

// fakeGameAPI serves scripted snapshots per user.
type fakeGameAPI struct {
	genshin    map[int64]*gameapi.GenshinNotes
	genshinErr error
	starrail   map[int64]*gameapi.StarrailNotes
	zzz        map[int64]*gameapi.ZZZNotes
	calls      int
}

func (a *fakeGameAPI) GenshinNotes(_ context.Context, userID int64) (*gameapi.GenshinNotes, error) {
	a.calls++
	if a.genshinErr != nil {
		return nil, a.genshinErr
	}
	return a.genshin[userID], nil
}

func (a *fakeGameAPI) StarrailNotes(_ context.Context, userID int64) (*gameapi.StarrailNotes, error) {
	return a.starrail[userID], nil
}

func (a *fakeGameAPI) ZZZNotes(_ context.Context, userID int64) (*gameapi.ZZZNotes, error) {
	return a.zzz[userID], nil
}

func (a *fakeGameAPI) ClaimDailyRewards(context.Context, gameapi.ClaimRequest) (string, error) {
	return "", nil
}

func genshinRegistration(userID int64, thresholdResin int64) *schedule.GenshinNotesSchedule {
	return &schedule.GenshinNotesSchedule{
		UserID:         userID,
		ChannelID:      userID * 100,
		ThresholdResin: sql.NullInt64{Int64: thresholdResin, Valid: true},
	}
}

// Resin inside the threshold window fires an alert, and the just-fired
// message keeps the next check at least an hour out.
func TestGenshinChecker_ResinAlmostFull(t *testing.T) {
	t.Parallel()

	repo := newFakeGenshinNotesRepo(genshinRegistration(1, 2))
	api := &fakeGameAPI{genshin: map[int64]*gameapi.GenshinNotes{
		1: {CurrentResin: 188, MaxResin: 200, ResinRecovery: 90 * time.Minute},
	}}
	checker := NewGenshinChecker(repo, api, testLogger())

	alert, err := checker.CheckUser(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, alert)
	assert.Contains(t, alert.Message, "Resin is almost full!")
	assert.Equal(t, int64(100), alert.ChannelID)

	reg := repo.regs[1]
	require.True(t, reg.NextCheckTime.Valid)
	assert.WithinDuration(t, time.Now().Add(messageFloor), reg.NextCheckTime.Time, 2*time.Second,
		"a fired alert must push the next check out to the floor")
}

// Saturated resin reports "full" and falls back to the coarse re-check.
func TestGenshinChecker_ResinFull(t *testing.T) {
	t.Parallel()

	repo := newFakeGenshinNotesRepo(genshinRegistration(1, 2))
	api := &fakeGameAPI{genshin: map[int64]*gameapi.GenshinNotes{
		1: {CurrentResin: 200, MaxResin: 200, ResinRecovery: 0},
	}}
	checker := NewGenshinChecker(repo, api, testLogger())

	alert, err := checker.CheckUser(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, alert)
	assert.Contains(t, alert.Message, "Resin is full!")

	reg := repo.regs[1]
	require.True(t, reg.NextCheckTime.Valid)
	assert.WithinDuration(t, time.Now().Add(fullResourceRecheck), reg.NextCheckTime.Time, 2*time.Second)
}

// Resin far from the threshold produces no alert and no floor: the next
// check follows the decaying-interval calculation (capped by the daily
// baseline).
func TestGenshinChecker_QuietCheckHasNoFloor(t *testing.T) {
	t.Parallel()

	repo := newFakeGenshinNotesRepo(genshinRegistration(1, 2))
	api := &fakeGameAPI{genshin: map[int64]*gameapi.GenshinNotes{
		1: {CurrentResin: 10, MaxResin: 200, ResinRecovery: 23 * time.Hour},
	}}
	checker := NewGenshinChecker(repo, api, testLogger())

	alert, err := checker.CheckUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, alert)

	reg := repo.regs[1]
	require.True(t, reg.NextCheckTime.Valid)
	expected := schedule.NextCheckTime(time.Now(), 23*time.Hour, 2)
	assert.WithinDuration(t, expected, reg.NextCheckTime.Time, 2*time.Second)
	assert.True(t, reg.NextCheckTime.Time.After(time.Now().Add(messageFloor)),
		"quiet checks are not subject to the re-fire floor")
}

// A registration whose next check time is still in the future is skipped
// without touching the API.
func TestGenshinChecker_SkipsBeforeNextCheckTime(t *testing.T) {
	t.Parallel()

	reg := genshinRegistration(1, 2)
	reg.NextCheckTime = sql.NullTime{Time: time.Now().Add(time.Hour), Valid: true}
	repo := newFakeGenshinNotesRepo(reg)
	api := &fakeGameAPI{}
	checker := NewGenshinChecker(repo, api, testLogger())

	alert, err := checker.CheckUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, alert)
	assert.Equal(t, 0, api.calls)
}

// Fetch failures defer the next check by tier: transient retries quietly in
// an hour, a verification challenge surfaces and waits a day, anything else
// surfaces and waits five hours.
func TestGenshinChecker_FetchFailureTiers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		deferral time.Duration
		surfaced bool
	}{
		{
			name:     "transient retries quietly",
			err:      &gameapi.Error{Kind: gameapi.KindTransient, Retcode: -1, Message: "internal error"},
			deferral: transientRetryDelay,
			surfaced: false,
		},
		{
			name:     "challenge waits a day",
			err:      &gameapi.Error{Kind: gameapi.KindChallengeRequired, Retcode: 1034, Message: "verification required"},
			deferral: challengeRetryDelay,
			surfaced: true,
		},
		{
			name:     "anything else waits five hours",
			err:      errors.New("connection reset"),
			deferral: failureRetryDelay,
			surfaced: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := newFakeGenshinNotesRepo(genshinRegistration(1, 2))
			api := &fakeGameAPI{genshinErr: tt.err}
			checker := NewGenshinChecker(repo, api, testLogger())

			alert, err := checker.CheckUser(context.Background(), 1)
			require.NoError(t, err)
			if tt.surfaced {
				require.NotNil(t, alert)
				assert.Contains(t, alert.Message, "An error occurred")
			} else {
				assert.Nil(t, alert)
			}

			reg := repo.regs[1]
			require.True(t, reg.NextCheckTime.Valid, "the deferral must be persisted")
			assert.WithinDuration(t, time.Now().Add(tt.deferral), reg.NextCheckTime.Time, 2*time.Second)
		})
	}
}

// A passed commission check point reports an unclaimed reward and advances
// by one day even when the reward turns out to be claimed.
func TestGenshinChecker_CommissionCheckAdvancesDaily(t *testing.T) {
	t.Parallel()

	passed := time.Now().Add(-10 * time.Minute)

	tests := []struct {
		name     string
		claimed  bool
		expected bool
	}{
		{name: "unclaimed reward fires", claimed: false, expected: true},
		{name: "claimed reward stays quiet", claimed: true, expected: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			reg := &schedule.GenshinNotesSchedule{
				UserID:              1,
				ChannelID:           100,
				CheckCommissionTime: sql.NullTime{Time: passed, Valid: true},
			}
			repo := newFakeGenshinNotesRepo(reg)
			api := &fakeGameAPI{genshin: map[int64]*gameapi.GenshinNotes{
				1: {CurrentResin: 10, MaxResin: 200, ResinRecovery: 23 * time.Hour, CommissionRewardClaimed: tt.claimed},
			}}
			checker := NewGenshinChecker(repo, api, testLogger())

			alert, err := checker.CheckUser(context.Background(), 1)
			require.NoError(t, err)
			if tt.expected {
				require.NotNil(t, alert)
				assert.Contains(t, alert.Message, "commission rewards are not claimed")
			} else {
				assert.Nil(t, alert)
			}
			assert.Equal(t, passed.Add(24*time.Hour), reg.CheckCommissionTime.Time,
				"the check point advances by a day regardless of outcome")
		})
	}
}

// The expedition threshold tracks the expedition that finishes last.
func TestGenshinChecker_ExpeditionTracksLongest(t *testing.T) {
	t.Parallel()

	reg := &schedule.GenshinNotesSchedule{
		UserID:              1,
		ChannelID:           100,
		ThresholdExpedition: sql.NullInt64{Int64: 1, Valid: true},
	}
	repo := newFakeGenshinNotesRepo(reg)
	api := &fakeGameAPI{genshin: map[int64]*gameapi.GenshinNotes{
		1: {
			CurrentResin: 10, MaxResin: 200, ResinRecovery: 20 * time.Hour,
			Expeditions: []gameapi.Expedition{
				{RemainingTime: 0, Finished: true},
				{RemainingTime: 10 * time.Hour},
				{RemainingTime: 30 * time.Minute},
			},
		},
	}}
	checker := NewGenshinChecker(repo, api, testLogger())

	alert, err := checker.CheckUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, alert, "the longest expedition is still 10h out, nothing to report")

	expected := schedule.NextCheckTime(time.Now(), 10*time.Hour, 1)
	assert.WithinDuration(t, expected, reg.NextCheckTime.Time, 2*time.Second)
}

// An unknown user is skipped, not treated as an error.
func TestGenshinChecker_UnknownUserIsSkipped(t *testing.T) {
	t.Parallel()

	checker := NewGenshinChecker(newFakeGenshinNotesRepo(), &fakeGameAPI{}, testLogger())
	alert, err := checker.CheckUser(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, alert)
}
