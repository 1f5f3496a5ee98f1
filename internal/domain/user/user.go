package user

import (
	"database/sql"
	"time"
)

// User holds a linked HoYoLAB account: per-game cookies, character UIDs and
// the last time the user successfully interacted with the bot.
type User struct {
	ID           int64 // Telegram user ID
	LastUsedTime sql.NullTime

	// CookieDefault is used whenever a per-game cookie is not set.
	CookieDefault   sql.NullString
	CookieGenshin   sql.NullString
	CookieHonkai3rd sql.NullString
	CookieStarrail  sql.NullString
	CookieZZZ       sql.NullString

	UIDGenshin  sql.NullInt64
	UIDStarrail sql.NullInt64
	UIDZZZ      sql.NullInt64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// GeetestChallenge stores the verification-challenge tokens a user solved
// out-of-band, serialized as JSON header values per game.
type GeetestChallenge struct {
	UserID    int64
	Genshin   sql.NullString
	Honkai3rd sql.NullString
	Starrail  sql.NullString
}
