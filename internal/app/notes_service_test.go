package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedChecker replays canned alerts and records removals.
type scriptedChecker struct {
	name    string
	userIDs []int64
	alerts  map[int64]*Alert
	errs    map[int64]error

	mu      sync.Mutex
	checked []int64
	removed []int64

	listCalls atomic.Int32
	block     chan struct{}
}

func (c *scriptedChecker) GameName() string { return c.name }

func (c *scriptedChecker) ListUserIDs(context.Context) ([]int64, error) {
	c.listCalls.Add(1)
	return c.userIDs, nil
}

func (c *scriptedChecker) CheckUser(_ context.Context, userID int64) (*Alert, error) {
	if c.block != nil {
		<-c.block
	}
	c.mu.Lock()
	c.checked = append(c.checked, userID)
	c.mu.Unlock()
	if err := c.errs[userID]; err != nil {
		return nil, err
	}
	return c.alerts[userID], nil
}

func (c *scriptedChecker) Remove(_ context.Context, userID int64) error {
	c.mu.Lock()
	c.removed = append(c.removed, userID)
	c.mu.Unlock()
	return nil
}

func (c *scriptedChecker) checkedUsers() []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int64(nil), c.checked...)
}

// Every game sweeps its own users; alerts reach the notifier with the
// message and detail joined.
func TestNotesService_DeliversAlerts(t *testing.T) {
	t.Parallel()

	genshin := &scriptedChecker{
		name:    "Genshin Impact",
		userIDs: []int64{1, 2},
		alerts: map[int64]*Alert{
			2: {UserID: 2, ChannelID: 200, Message: "Resin is almost full!", Detail: "Resin: 188/200"},
		},
	}
	zzz := &scriptedChecker{
		name:    "Zenless Zone Zero",
		userIDs: []int64{3},
		alerts: map[int64]*Alert{
			3: {UserID: 3, ChannelID: 300, Message: "Battery charge is full!"},
		},
	}
	notifier := newFakeNotifier()

	service := NewNotesService([]NotesChecker{genshin, zzz}, notifier, time.Millisecond, testLogger())
	service.Execute(context.Background())

	assert.ElementsMatch(t, []int64{1, 2}, genshin.checkedUsers())
	assert.ElementsMatch(t, []int64{3}, zzz.checkedUsers())

	msgs := notifier.messages()
	require.Len(t, msgs, 2)
	byUser := map[int64]sentMessage{}
	for _, m := range msgs {
		byUser[m.userID] = m
	}
	assert.Equal(t, "Resin is almost full!\n\nResin: 188/200", byUser[2].text)
	assert.True(t, byUser[2].mention, "notes alerts always mention the user")
	assert.Equal(t, "Battery charge is full!", byUser[3].text)
}

// One user's check failing must not stop the rest of that game's sweep.
func TestNotesService_CheckFailureContinuesSweep(t *testing.T) {
	t.Parallel()

	checker := &scriptedChecker{
		name:    "Genshin Impact",
		userIDs: []int64{1, 2, 3},
		errs:    map[int64]error{2: errors.New("store offline")},
		alerts: map[int64]*Alert{
			3: {UserID: 3, ChannelID: 300, Message: "Resin is full!"},
		},
	}
	notifier := newFakeNotifier()

	service := NewNotesService([]NotesChecker{checker}, notifier, time.Millisecond, testLogger())
	service.Execute(context.Background())

	assert.ElementsMatch(t, []int64{1, 2, 3}, checker.checkedUsers())
	require.Len(t, notifier.messages(), 1)
	assert.Equal(t, int64(3), notifier.messages()[0].userID)
}

// A vanished alert target prunes that game's registration.
func TestNotesService_TargetGoneRemovesRegistration(t *testing.T) {
	t.Parallel()

	checker := &scriptedChecker{
		name:    "Genshin Impact",
		userIDs: []int64{1},
		alerts: map[int64]*Alert{
			1: {UserID: 1, ChannelID: 100, Message: "Resin is full!"},
		},
	}
	notifier := newFakeNotifier()
	notifier.gone[100] = true

	service := NewNotesService([]NotesChecker{checker}, notifier, time.Millisecond, testLogger())
	service.Execute(context.Background())

	assert.Equal(t, []int64{1}, checker.removed)
}

// Overlapping sweeps collapse into one: the second Execute returns without
// listing anything.
func TestNotesService_SingleFlight(t *testing.T) {
	t.Parallel()

	block := make(chan struct{})
	checker := &scriptedChecker{
		name:    "Genshin Impact",
		userIDs: []int64{1},
		block:   block,
	}
	notifier := newFakeNotifier()
	service := NewNotesService([]NotesChecker{checker}, notifier, time.Millisecond, testLogger())

	done := make(chan struct{})
	go func() {
		service.Execute(context.Background())
		close(done)
	}()
	require.Eventually(t, func() bool { return checker.listCalls.Load() == 1 }, time.Second, time.Millisecond)

	service.Execute(context.Background())
	assert.Equal(t, int32(1), checker.listCalls.Load(), "overlapping sweep must be a no-op")

	close(block)
	<-done
	assert.Equal(t, int32(1), checker.listCalls.Load())
}
