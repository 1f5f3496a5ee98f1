package hoyoapi

import (
	"fmt"
	"strconv"
	"time"

	"hoyo_assistant_bot/internal/domain/gameapi"
)

// The dailyNote endpoint reports durations as decimal-second strings while
// the newer note endpoints use plain integers. seconds covers both.
type seconds time.Duration

func (s *seconds) UnmarshalJSON(b []byte) error {
	raw := string(b)
	if len(raw) >= 2 && raw[0] == '"' {
		raw = raw[1 : len(raw)-1]
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*s = seconds(time.Duration(n) * time.Second)
	return nil
}

func (s seconds) duration() time.Duration {
	return time.Duration(s)
}

type expeditionDTO struct {
	Status        string  `json:"status"` // "Ongoing" or "Finished"
	RemainedTime  seconds `json:"remained_time"`
	RemainingTime seconds `json:"remaining_time"` // Star Rail spelling
}

func (e *expeditionDTO) toModel() gameapi.Expedition {
	remaining := e.RemainedTime.duration()
	if remaining == 0 {
		remaining = e.RemainingTime.duration()
	}
	return gameapi.Expedition{
		RemainingTime: remaining,
		Finished:      e.Status == "Finished" || remaining == 0,
	}
}

type genshinNotesDTO struct {
	CurrentResin         int     `json:"current_resin"`
	MaxResin             int     `json:"max_resin"`
	ResinRecoveryTime    seconds `json:"resin_recovery_time"`
	CurrentHomeCoin      int     `json:"current_home_coin"`
	MaxHomeCoin          int     `json:"max_home_coin"`
	HomeCoinRecoveryTime seconds `json:"home_coin_recovery_time"`

	Transformer struct {
		Obtained     bool `json:"obtained"`
		RecoveryTime struct {
			Day     int  `json:"Day"`
			Hour    int  `json:"Hour"`
			Minute  int  `json:"Minute"`
			Second  int  `json:"Second"`
			Reached bool `json:"reached"`
		} `json:"recovery_time"`
	} `json:"transformer"`

	Expeditions []expeditionDTO `json:"expeditions"`

	IsExtraTaskRewardReceived bool `json:"is_extra_task_reward_received"`
}

func (d *genshinNotesDTO) toModel() (*gameapi.GenshinNotes, error) {
	notes := &gameapi.GenshinNotes{
		CurrentResin:            d.CurrentResin,
		MaxResin:                d.MaxResin,
		ResinRecovery:           d.ResinRecoveryTime.duration(),
		CurrentRealmCurrency:    d.CurrentHomeCoin,
		MaxRealmCurrency:        d.MaxHomeCoin,
		RealmCurrencyRecovery:   d.HomeCoinRecoveryTime.duration(),
		CommissionRewardClaimed: d.IsExtraTaskRewardReceived,
	}
	if d.Transformer.Obtained {
		rt := d.Transformer.RecoveryTime
		recovery := time.Duration(rt.Day)*24*time.Hour +
			time.Duration(rt.Hour)*time.Hour +
			time.Duration(rt.Minute)*time.Minute +
			time.Duration(rt.Second)*time.Second
		if rt.Reached {
			recovery = 0
		}
		notes.TransformerRecovery = &recovery
	}
	for i := range d.Expeditions {
		notes.Expeditions = append(notes.Expeditions, d.Expeditions[i].toModel())
	}
	return notes, nil
}

type starrailNotesDTO struct {
	CurrentStamina     int     `json:"current_stamina"`
	MaxStamina         int     `json:"max_stamina"`
	StaminaRecoverTime seconds `json:"stamina_recover_time"`

	Expeditions []expeditionDTO `json:"expeditions"`

	CurrentTrainScore int `json:"current_train_score"`
	MaxTrainScore     int `json:"max_train_score"`
	CurrentRogueScore int `json:"current_rogue_score"`
	MaxRogueScore     int `json:"max_rogue_score"`

	WeeklyCocoonCnt int `json:"weekly_cocoon_cnt"`
}

func (d *starrailNotesDTO) toModel() *gameapi.StarrailNotes {
	notes := &gameapi.StarrailNotes{
		CurrentStamina:           d.CurrentStamina,
		MaxStamina:               d.MaxStamina,
		StaminaRecovery:          d.StaminaRecoverTime.duration(),
		CurrentTrainScore:        d.CurrentTrainScore,
		MaxTrainScore:            d.MaxTrainScore,
		CurrentRogueScore:        d.CurrentRogueScore,
		MaxRogueScore:            d.MaxRogueScore,
		RemainingWeeklyDiscounts: d.WeeklyCocoonCnt,
	}
	for i := range d.Expeditions {
		notes.Expeditions = append(notes.Expeditions, d.Expeditions[i].toModel())
	}
	return notes
}

type zzzNotesDTO struct {
	Energy struct {
		Progress struct {
			Current int `json:"current"`
			Max     int `json:"max"`
		} `json:"progress"`
		Restore seconds `json:"restore"`
	} `json:"energy"`
	Vitality struct {
		Current int `json:"current"`
		Max     int `json:"max"`
	} `json:"vitality"`
}

func (d *zzzNotesDTO) toModel() *gameapi.ZZZNotes {
	return &gameapi.ZZZNotes{
		CurrentBattery:    d.Energy.Progress.Current,
		MaxBattery:        d.Energy.Progress.Max,
		BatteryRecovery:   d.Energy.Restore.duration(),
		CurrentEngagement: d.Vitality.Current,
		MaxEngagement:     d.Vitality.Max,
	}
}
