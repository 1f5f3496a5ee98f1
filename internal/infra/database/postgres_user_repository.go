// internal/infra/database/postgres_user_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"hoyo_assistant_bot/internal/domain/user"
)

// Custom errors specific to the user repository
var ErrUserNotFound = fmt.Errorf("user not found")
var ErrGeetestChallengeNotFound = fmt.Errorf("geetest challenge not found")

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

const userColumns = `user_id, last_used_time, cookie_default, cookie_genshin, cookie_honkai3rd,
               cookie_starrail, cookie_zzz, uid_genshin, uid_starrail, uid_zzz, created_at, updated_at`

func scanUser(row *sql.Row) (*user.User, error) {
	u := user.User{}
	err := row.Scan(
		&u.ID, &u.LastUsedTime, &u.CookieDefault, &u.CookieGenshin, &u.CookieHonkai3rd,
		&u.CookieStarrail, &u.CookieZZZ, &u.UIDGenshin, &u.UIDStarrail, &u.UIDZZZ,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("error scanning user row: %w", err)
	}
	return &u, nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresUserRepository) Upsert(ctx context.Context, u *user.User) error {
	query := `INSERT INTO users (user_id, last_used_time, cookie_default, cookie_genshin, cookie_honkai3rd,
                                 cookie_starrail, cookie_zzz, uid_genshin, uid_starrail, uid_zzz)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
               ON CONFLICT (user_id) DO UPDATE SET
                 last_used_time = EXCLUDED.last_used_time,
                 cookie_default = EXCLUDED.cookie_default,
                 cookie_genshin = EXCLUDED.cookie_genshin,
                 cookie_honkai3rd = EXCLUDED.cookie_honkai3rd,
                 cookie_starrail = EXCLUDED.cookie_starrail,
                 cookie_zzz = EXCLUDED.cookie_zzz,
                 uid_genshin = EXCLUDED.uid_genshin,
                 uid_starrail = EXCLUDED.uid_starrail,
                 uid_zzz = EXCLUDED.uid_zzz,
                 updated_at = NOW()`
	_, err := r.db.ExecContext(ctx, query,
		u.ID, u.LastUsedTime, u.CookieDefault, u.CookieGenshin, u.CookieHonkai3rd,
		u.CookieStarrail, u.CookieZZZ, u.UIDGenshin, u.UIDStarrail, u.UIDZZZ,
	)
	if err != nil {
		return fmt.Errorf("error upserting user %d: %w", u.ID, err)
	}
	return nil
}

func (r *PostgresUserRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE user_id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting user %d: %w", id, err)
	}
	return nil
}

func (r *PostgresUserRepository) TouchLastUsed(ctx context.Context, id int64, t time.Time) error {
	query := `UPDATE users SET last_used_time = $1, updated_at = NOW() WHERE user_id = $2`
	_, err := r.db.ExecContext(ctx, query, t, id)
	if err != nil {
		return fmt.Errorf("error touching last_used_time for user %d: %w", id, err)
	}
	return nil
}

func (r *PostgresUserRepository) ListInactiveSince(ctx context.Context, cutoff time.Time) ([]*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
               WHERE last_used_time IS NOT NULL AND last_used_time < $1
               ORDER BY user_id`
	rows, err := r.db.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("error querying inactive users: %w", err)
	}
	defer rows.Close()

	users := make([]*user.User, 0)
	for rows.Next() {
		u := user.User{}
		if err := rows.Scan(
			&u.ID, &u.LastUsedTime, &u.CookieDefault, &u.CookieGenshin, &u.CookieHonkai3rd,
			&u.CookieStarrail, &u.CookieZZZ, &u.UIDGenshin, &u.UIDStarrail, &u.UIDZZZ,
			&u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning user row: %w", err)
		}
		users = append(users, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}

func (r *PostgresUserRepository) GetGeetestChallenge(ctx context.Context, userID int64) (*user.GeetestChallenge, error) {
	query := `SELECT user_id, genshin, honkai3rd, starrail FROM geetest_challenges WHERE user_id = $1`
	gc := user.GeetestChallenge{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&gc.UserID, &gc.Genshin, &gc.Honkai3rd, &gc.Starrail)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrGeetestChallengeNotFound
		}
		return nil, fmt.Errorf("error getting geetest challenge: %w", err)
	}
	return &gc, nil
}

func (r *PostgresUserRepository) UpsertGeetestChallenge(ctx context.Context, gc *user.GeetestChallenge) error {
	query := `INSERT INTO geetest_challenges (user_id, genshin, honkai3rd, starrail)
               VALUES ($1, $2, $3, $4)
               ON CONFLICT (user_id) DO UPDATE SET
                 genshin = EXCLUDED.genshin,
                 honkai3rd = EXCLUDED.honkai3rd,
                 starrail = EXCLUDED.starrail`
	_, err := r.db.ExecContext(ctx, query, gc.UserID, gc.Genshin, gc.Honkai3rd, gc.Starrail)
	if err != nil {
		return fmt.Errorf("error upserting geetest challenge for user %d: %w", gc.UserID, err)
	}
	return nil
}
