package schedule

import "time"

// DailyClaim is a user's opt-in to scheduled daily reward claims. One row
// per user; the games to claim are selected by the Has* flags.
type DailyClaim struct {
	UserID    int64
	ChannelID int64
	// IsMention controls whether result messages mention the user.
	IsMention bool
	// NextClaimTime is the next time the dispatcher should attempt a claim.
	// It must be advanced by exactly one day after every attempt, successful
	// or not, so a user is never processed twice within one sweep.
	NextClaimTime time.Time

	HasGenshin   bool
	HasHonkai3rd bool
	HasStarrail  bool
	HasZZZ       bool
}

// AdvanceNextClaimTime moves the next claim to tomorrow, keeping the
// user-chosen time of day.
func (c *DailyClaim) AdvanceNextClaimTime(now time.Time) {
	t := c.NextClaimTime
	c.NextClaimTime = time.Date(
		now.Year(), now.Month(), now.Day(),
		t.Hour(), t.Minute(), t.Second(), 0, now.Location(),
	).AddDate(0, 0, 1)
}
