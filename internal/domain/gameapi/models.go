package gameapi

import "time"

// Game identifies one HoYoverse title.
type Game string

const (
	GameGenshin   Game = "genshin"
	GameHonkai3rd Game = "honkai3rd"
	GameStarrail  Game = "starrail"
	GameZZZ       Game = "zzz"
)

// Expedition is one in-progress timed sub-task (expedition, assignment).
type Expedition struct {
	RemainingTime time.Duration
	Finished      bool
}

// GenshinNotes is a point-in-time snapshot of a Genshin Impact account's
// real-time notes. Fetched fresh per evaluation, never persisted.
type GenshinNotes struct {
	CurrentResin  int
	MaxResin      int
	ResinRecovery time.Duration

	CurrentRealmCurrency  int
	MaxRealmCurrency      int
	RealmCurrencyRecovery time.Duration

	// TransformerRecovery is nil when the account has no Parametric
	// Transformer.
	TransformerRecovery *time.Duration

	Expeditions []Expedition

	CommissionRewardClaimed bool
}

// StarrailNotes is a snapshot of a Star Rail account's real-time notes.
type StarrailNotes struct {
	CurrentStamina  int
	MaxStamina      int
	StaminaRecovery time.Duration

	Expeditions []Expedition

	CurrentTrainScore int
	MaxTrainScore     int
	CurrentRogueScore int
	MaxRogueScore     int

	RemainingWeeklyDiscounts int
}

// ZZZNotes is a snapshot of a Zenless Zone Zero account's real-time notes.
type ZZZNotes struct {
	CurrentBattery  int
	MaxBattery      int
	BatteryRecovery time.Duration

	CurrentEngagement int
	MaxEngagement     int
}
