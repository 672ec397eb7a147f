package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"hypeos/internal/hypeos"
)

type UserRepo struct {
	db DBTX
}

func NewUserRepo(db DBTX) *UserRepo {
	return &UserRepo{db: db}
}

// Load returns nil, nil for an unknown user.
func (r *UserRepo) Load(ctx context.Context, userID string) (*hypeos.UserState, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, hype_points, current_streak, longest_streak, last_active_date,
			streak_start_date, total_days_active, quest_state
		FROM users
		WHERE id = ?
	`, userID)

	var (
		st          hypeos.UserState
		lastActive  sql.NullTime
		streakStart sql.NullTime
		questRaw    sql.NullString
	)
	if err := row.Scan(
		&st.UserID, &st.HypePoints, &st.Streak.CurrentStreak, &st.Streak.LongestStreak, &lastActive,
		&streakStart, &st.Streak.TotalDaysActive, &questRaw,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("user load: %w", err)
	}
	if lastActive.Valid {
		st.Streak.LastActiveDate = lastActive.Time
	}
	if streakStart.Valid {
		st.Streak.StreakStartDate = streakStart.Time
	}
	if questRaw.Valid && questRaw.String != "" {
		if err := json.Unmarshal([]byte(questRaw.String), &st.Quests); err != nil {
			return nil, fmt.Errorf("unmarshal quest state: %w", err)
		}
	}
	return &st, nil
}

// Save upserts the full user record.
func (r *UserRepo) Save(ctx context.Context, st hypeos.UserState) error {
	questJSON, err := json.Marshal(st.Quests)
	if err != nil {
		return fmt.Errorf("marshal quest state: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO users (
			id, hype_points, current_streak, longest_streak, last_active_date,
			streak_start_date, total_days_active, quest_state, last_reset_date, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			hype_points = excluded.hype_points,
			current_streak = excluded.current_streak,
			longest_streak = excluded.longest_streak,
			last_active_date = excluded.last_active_date,
			streak_start_date = excluded.streak_start_date,
			total_days_active = excluded.total_days_active,
			quest_state = excluded.quest_state,
			last_reset_date = excluded.last_reset_date,
			updated_at = excluded.updated_at
	`, st.UserID, st.HypePoints, st.Streak.CurrentStreak, st.Streak.LongestStreak, nullTime(st.Streak.LastActiveDate),
		nullTime(st.Streak.StreakStartDate), st.Streak.TotalDaysActive, string(questJSON), st.Quests.Progress.LastResetDate, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("user save: %w", err)
	}
	return nil
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
