package schedule

import "context"

// DailyClaimRepository persists daily-claim registrations, keyed by user.
type DailyClaimRepository interface {
	ListAll(ctx context.Context) ([]*DailyClaim, error)
	GetByUserID(ctx context.Context, userID int64) (*DailyClaim, error)
	Upsert(ctx context.Context, c *DailyClaim) error
	Delete(ctx context.Context, userID int64) error
}

// GenshinNotesRepository persists Genshin notes registrations. ListUserIDs
// returns only the keys so a sweep can reload each registration right
// before evaluating it, keeping the staleness window small.
type GenshinNotesRepository interface {
	ListUserIDs(ctx context.Context) ([]int64, error)
	GetByUserID(ctx context.Context, userID int64) (*GenshinNotesSchedule, error)
	Upsert(ctx context.Context, s *GenshinNotesSchedule) error
	Delete(ctx context.Context, userID int64) error
}

// StarrailNotesRepository persists Star Rail notes registrations.
type StarrailNotesRepository interface {
	ListUserIDs(ctx context.Context) ([]int64, error)
	GetByUserID(ctx context.Context, userID int64) (*StarrailNotesSchedule, error)
	Upsert(ctx context.Context, s *StarrailNotesSchedule) error
	Delete(ctx context.Context, userID int64) error
}

// ZZZNotesRepository persists Zenless Zone Zero notes registrations.
type ZZZNotesRepository interface {
	ListUserIDs(ctx context.Context) ([]int64, error)
	GetByUserID(ctx context.Context, userID int64) (*ZZZNotesSchedule, error)
	Upsert(ctx context.Context, s *ZZZNotesSchedule) error
	Delete(ctx context.Context, userID int64) error
}
