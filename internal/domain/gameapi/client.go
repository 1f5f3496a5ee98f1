package gameapi

import "context"

// ClaimRequest selects which games to claim the daily reward for.
type ClaimRequest struct {
	UserID    int64
	Genshin   bool
	Honkai3rd bool
	Starrail  bool
	ZZZ       bool
}

// Client is the per-user boundary to the external game-data API. Failures
// carry a Kind via *Error so callers can apply the reschedule policy.
type Client interface {
	// GenshinNotes fetches a fresh real-time notes snapshot.
	GenshinNotes(ctx context.Context, userID int64) (*GenshinNotes, error)
	StarrailNotes(ctx context.Context, userID int64) (*StarrailNotes, error)
	ZZZNotes(ctx context.Context, userID int64) (*ZZZNotes, error)

	// ClaimDailyRewards claims the daily reward for every selected game and
	// returns a user-facing result message. Per-game failures the user can
	// act on (already claimed, expired cookie, challenge) become message
	// lines; an error is returned only when an attempt failed unexpectedly
	// and should be retried by the dispatcher. An empty message with a nil
	// error means the user should be skipped silently.
	ClaimDailyRewards(ctx context.Context, req ClaimRequest) (string, error)
}
