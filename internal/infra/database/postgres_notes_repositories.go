// internal/infra/database/postgres_notes_repositories.go
package database

import (
	"context"
	"database/sql"
	"fmt"

	"hoyo_assistant_bot/internal/domain/schedule"
)

var ErrNotesScheduleNotFound = fmt.Errorf("notes schedule registration not found")

func listScheduleUserIDs(ctx context.Context, db *sql.DB, table string) ([]int64, error) {
	rows, err := db.QueryContext(ctx, `SELECT user_id FROM `+table+` ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("error querying %s user ids: %w", table, err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning %s user id: %w", table, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s user ids: %w", table, err)
	}
	return ids, nil
}

type PostgresGenshinNotesRepository struct {
	db *sql.DB
}

func NewPostgresGenshinNotesRepository(db *sql.DB) *PostgresGenshinNotesRepository {
	return &PostgresGenshinNotesRepository{db: db}
}

func (r *PostgresGenshinNotesRepository) ListUserIDs(ctx context.Context) ([]int64, error) {
	return listScheduleUserIDs(ctx, r.db, "genshin_schedule_notes")
}

func (r *PostgresGenshinNotesRepository) GetByUserID(ctx context.Context, userID int64) (*schedule.GenshinNotesSchedule, error) {
	query := `SELECT user_id, channel_id, next_check_time,
                     threshold_resin, threshold_currency, threshold_transformer,
                     threshold_expedition, check_commission_time
               FROM genshin_schedule_notes WHERE user_id = $1`
	s := schedule.GenshinNotesSchedule{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&s.UserID, &s.ChannelID, &s.NextCheckTime,
		&s.ThresholdResin, &s.ThresholdCurrency, &s.ThresholdTransformer,
		&s.ThresholdExpedition, &s.CheckCommissionTime,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotesScheduleNotFound
		}
		return nil, fmt.Errorf("error getting genshin notes schedule for user %d: %w", userID, err)
	}
	return &s, nil
}

func (r *PostgresGenshinNotesRepository) Upsert(ctx context.Context, s *schedule.GenshinNotesSchedule) error {
	query := `INSERT INTO genshin_schedule_notes (user_id, channel_id, next_check_time,
                                                 threshold_resin, threshold_currency, threshold_transformer,
                                                 threshold_expedition, check_commission_time)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
               ON CONFLICT (user_id) DO UPDATE SET
                 channel_id = EXCLUDED.channel_id,
                 next_check_time = EXCLUDED.next_check_time,
                 threshold_resin = EXCLUDED.threshold_resin,
                 threshold_currency = EXCLUDED.threshold_currency,
                 threshold_transformer = EXCLUDED.threshold_transformer,
                 threshold_expedition = EXCLUDED.threshold_expedition,
                 check_commission_time = EXCLUDED.check_commission_time`
	_, err := r.db.ExecContext(ctx, query,
		s.UserID, s.ChannelID, s.NextCheckTime,
		s.ThresholdResin, s.ThresholdCurrency, s.ThresholdTransformer,
		s.ThresholdExpedition, s.CheckCommissionTime,
	)
	if err != nil {
		return fmt.Errorf("error upserting genshin notes schedule for user %d: %w", s.UserID, err)
	}
	return nil
}

func (r *PostgresGenshinNotesRepository) Delete(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM genshin_schedule_notes WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("error deleting genshin notes schedule for user %d: %w", userID, err)
	}
	return nil
}

type PostgresStarrailNotesRepository struct {
	db *sql.DB
}

func NewPostgresStarrailNotesRepository(db *sql.DB) *PostgresStarrailNotesRepository {
	return &PostgresStarrailNotesRepository{db: db}
}

func (r *PostgresStarrailNotesRepository) ListUserIDs(ctx context.Context) ([]int64, error) {
	return listScheduleUserIDs(ctx, r.db, "starrail_schedule_notes")
}

func (r *PostgresStarrailNotesRepository) GetByUserID(ctx context.Context, userID int64) (*schedule.StarrailNotesSchedule, error) {
	query := `SELECT user_id, channel_id, next_check_time,
                     threshold_power, threshold_expedition,
                     check_daily_training_time, check_universe_time, check_echoofwar_time
               FROM starrail_schedule_notes WHERE user_id = $1`
	s := schedule.StarrailNotesSchedule{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&s.UserID, &s.ChannelID, &s.NextCheckTime,
		&s.ThresholdPower, &s.ThresholdExpedition,
		&s.CheckDailyTrainingTime, &s.CheckUniverseTime, &s.CheckEchoOfWarTime,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotesScheduleNotFound
		}
		return nil, fmt.Errorf("error getting starrail notes schedule for user %d: %w", userID, err)
	}
	return &s, nil
}

func (r *PostgresStarrailNotesRepository) Upsert(ctx context.Context, s *schedule.StarrailNotesSchedule) error {
	query := `INSERT INTO starrail_schedule_notes (user_id, channel_id, next_check_time,
                                                  threshold_power, threshold_expedition,
                                                  check_daily_training_time, check_universe_time, check_echoofwar_time)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
               ON CONFLICT (user_id) DO UPDATE SET
                 channel_id = EXCLUDED.channel_id,
                 next_check_time = EXCLUDED.next_check_time,
                 threshold_power = EXCLUDED.threshold_power,
                 threshold_expedition = EXCLUDED.threshold_expedition,
                 check_daily_training_time = EXCLUDED.check_daily_training_time,
                 check_universe_time = EXCLUDED.check_universe_time,
                 check_echoofwar_time = EXCLUDED.check_echoofwar_time`
	_, err := r.db.ExecContext(ctx, query,
		s.UserID, s.ChannelID, s.NextCheckTime,
		s.ThresholdPower, s.ThresholdExpedition,
		s.CheckDailyTrainingTime, s.CheckUniverseTime, s.CheckEchoOfWarTime,
	)
	if err != nil {
		return fmt.Errorf("error upserting starrail notes schedule for user %d: %w", s.UserID, err)
	}
	return nil
}

func (r *PostgresStarrailNotesRepository) Delete(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM starrail_schedule_notes WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("error deleting starrail notes schedule for user %d: %w", userID, err)
	}
	return nil
}

type PostgresZZZNotesRepository struct {
	db *sql.DB
}

func NewPostgresZZZNotesRepository(db *sql.DB) *PostgresZZZNotesRepository {
	return &PostgresZZZNotesRepository{db: db}
}

func (r *PostgresZZZNotesRepository) ListUserIDs(ctx context.Context) ([]int64, error) {
	return listScheduleUserIDs(ctx, r.db, "zzz_schedule_notes")
}

func (r *PostgresZZZNotesRepository) GetByUserID(ctx context.Context, userID int64) (*schedule.ZZZNotesSchedule, error) {
	query := `SELECT user_id, channel_id, next_check_time,
                     threshold_battery, check_daily_engagement_time
               FROM zzz_schedule_notes WHERE user_id = $1`
	s := schedule.ZZZNotesSchedule{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&s.UserID, &s.ChannelID, &s.NextCheckTime,
		&s.ThresholdBattery, &s.CheckDailyEngagementTime,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotesScheduleNotFound
		}
		return nil, fmt.Errorf("error getting zzz notes schedule for user %d: %w", userID, err)
	}
	return &s, nil
}

func (r *PostgresZZZNotesRepository) Upsert(ctx context.Context, s *schedule.ZZZNotesSchedule) error {
	query := `INSERT INTO zzz_schedule_notes (user_id, channel_id, next_check_time,
                                             threshold_battery, check_daily_engagement_time)
               VALUES ($1, $2, $3, $4, $5)
               ON CONFLICT (user_id) DO UPDATE SET
                 channel_id = EXCLUDED.channel_id,
                 next_check_time = EXCLUDED.next_check_time,
                 threshold_battery = EXCLUDED.threshold_battery,
                 check_daily_engagement_time = EXCLUDED.check_daily_engagement_time`
	_, err := r.db.ExecContext(ctx, query,
		s.UserID, s.ChannelID, s.NextCheckTime,
		s.ThresholdBattery, s.CheckDailyEngagementTime,
	)
	if err != nil {
		return fmt.Errorf("error upserting zzz notes schedule for user %d: %w", s.UserID, err)
	}
	return nil
}

func (r *PostgresZZZNotesRepository) Delete(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM zzz_schedule_notes WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("error deleting zzz notes schedule for user %d: %w", userID, err)
	}
	return nil
}
