package user

import (
	"context"
	"time"
)

// Repository defines the operations for persisting and retrieving linked
// accounts and their verification-challenge tokens.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	Upsert(ctx context.Context, u *User) error
	Delete(ctx context.Context, id int64) error

	// TouchLastUsed records a successful interaction, used by the
	// inactive-user purge.
	TouchLastUsed(ctx context.Context, id int64, t time.Time) error
	// ListInactiveSince returns users whose last successful interaction is
	// older than cutoff. Users that never interacted are not returned.
	ListInactiveSince(ctx context.Context, cutoff time.Time) ([]*User, error)

	GetGeetestChallenge(ctx context.Context, userID int64) (*GeetestChallenge, error)
	UpsertGeetestChallenge(ctx context.Context, gc *GeetestChallenge) error
}
