// internal/infra/database/postgres_daily_claim_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"

	"hoyo_assistant_bot/internal/domain/schedule"
)

var ErrDailyClaimNotFound = fmt.Errorf("daily claim registration not found")

type PostgresDailyClaimRepository struct {
	db *sql.DB
}

func NewPostgresDailyClaimRepository(db *sql.DB) *PostgresDailyClaimRepository {
	return &PostgresDailyClaimRepository{db: db}
}

const dailyClaimColumns = `user_id, channel_id, is_mention, next_claim_time,
               has_genshin, has_honkai3rd, has_starrail, has_zzz`

func (r *PostgresDailyClaimRepository) ListAll(ctx context.Context) ([]*schedule.DailyClaim, error) {
	query := `SELECT ` + dailyClaimColumns + ` FROM schedule_daily_claims ORDER BY user_id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying daily claim registrations: %w", err)
	}
	defer rows.Close()

	claims := make([]*schedule.DailyClaim, 0)
	for rows.Next() {
		c := schedule.DailyClaim{}
		if err := rows.Scan(
			&c.UserID, &c.ChannelID, &c.IsMention, &c.NextClaimTime,
			&c.HasGenshin, &c.HasHonkai3rd, &c.HasStarrail, &c.HasZZZ,
		); err != nil {
			return nil, fmt.Errorf("error scanning daily claim row: %w", err)
		}
		claims = append(claims, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily claim rows: %w", err)
	}
	return claims, nil
}

func (r *PostgresDailyClaimRepository) GetByUserID(ctx context.Context, userID int64) (*schedule.DailyClaim, error) {
	query := `SELECT ` + dailyClaimColumns + ` FROM schedule_daily_claims WHERE user_id = $1`
	c := schedule.DailyClaim{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&c.UserID, &c.ChannelID, &c.IsMention, &c.NextClaimTime,
		&c.HasGenshin, &c.HasHonkai3rd, &c.HasStarrail, &c.HasZZZ,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrDailyClaimNotFound
		}
		return nil, fmt.Errorf("error getting daily claim for user %d: %w", userID, err)
	}
	return &c, nil
}

func (r *PostgresDailyClaimRepository) Upsert(ctx context.Context, c *schedule.DailyClaim) error {
	query := `INSERT INTO schedule_daily_claims (user_id, channel_id, is_mention, next_claim_time,
                                                has_genshin, has_honkai3rd, has_starrail, has_zzz)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
               ON CONFLICT (user_id) DO UPDATE SET
                 channel_id = EXCLUDED.channel_id,
                 is_mention = EXCLUDED.is_mention,
                 next_claim_time = EXCLUDED.next_claim_time,
                 has_genshin = EXCLUDED.has_genshin,
                 has_honkai3rd = EXCLUDED.has_honkai3rd,
                 has_starrail = EXCLUDED.has_starrail,
                 has_zzz = EXCLUDED.has_zzz`
	_, err := r.db.ExecContext(ctx, query,
		c.UserID, c.ChannelID, c.IsMention, c.NextClaimTime,
		c.HasGenshin, c.HasHonkai3rd, c.HasStarrail, c.HasZZZ,
	)
	if err != nil {
		return fmt.Errorf("error upserting daily claim for user %d: %w", c.UserID, err)
	}
	return nil
}

func (r *PostgresDailyClaimRepository) Delete(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM schedule_daily_claims WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("error deleting daily claim for user %d: %w", userID, err)
	}
	return nil
}
