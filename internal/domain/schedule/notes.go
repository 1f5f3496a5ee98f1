package schedule

import "database/sql"

// GenshinNotesSchedule is a user's opt-in to automatic real-time-notes
// checks for Genshin Impact. Thresholds are lead times in hours before a
// resource completes; Check* times are fixed daily check points. At least
// one of them must be set for the registration to be meaningful, which is
// enforced at creation by the configuration UI, not here.
type GenshinNotesSchedule struct {
	UserID    int64
	ChannelID int64
	// NextCheckTime is recomputed after every evaluation to the earliest of
	// all per-field candidates.
	NextCheckTime sql.NullTime

	ThresholdResin       sql.NullInt64
	ThresholdCurrency    sql.NullInt64
	ThresholdTransformer sql.NullInt64
	ThresholdExpedition  sql.NullInt64
	// CheckCommissionTime is the daily time to verify the commission reward
	// was claimed; advanced by one day on every pass.
	CheckCommissionTime sql.NullTime
}

// StarrailNotesSchedule is the Star Rail variant of the notes registration.
type StarrailNotesSchedule struct {
	UserID        int64
	ChannelID     int64
	NextCheckTime sql.NullTime

	ThresholdPower      sql.NullInt64
	ThresholdExpedition sql.NullInt64
	// Daily training is checked daily, Simulated Universe and Echo of War
	// weekly.
	CheckDailyTrainingTime sql.NullTime
	CheckUniverseTime      sql.NullTime
	CheckEchoOfWarTime     sql.NullTime
}

// ZZZNotesSchedule is the Zenless Zone Zero variant of the notes
// registration.
type ZZZNotesSchedule struct {
	UserID        int64
	ChannelID     int64
	NextCheckTime sql.NullTime

	ThresholdBattery         sql.NullInt64
	CheckDailyEngagementTime sql.NullTime
}
