package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			hype_points INTEGER NOT NULL DEFAULT 0,
			current_streak INTEGER NOT NULL DEFAULT 0,
			longest_streak INTEGER NOT NULL DEFAULT 0,
			last_active_date DATETIME,
			streak_start_date DATETIME,
			total_days_active INTEGER NOT NULL DEFAULT 0,
			quest_state TEXT,
			last_reset_date TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS goals (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT,
			category TEXT,
			target_date DATETIME,
			completed INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			goal_id TEXT NULL,
			title TEXT NOT NULL,
			impact_tier TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			mini_win INTEGER NOT NULL DEFAULT 0,
			completed INTEGER NOT NULL DEFAULT 0,
			completed_at DATETIME,
			completed_day TEXT,
			points_awarded INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			FOREIGN KEY(goal_id) REFERENCES goals(id) ON DELETE SET NULL
		);`,
		// Append-only; quest counts for a day are derived from it.
		`CREATE TABLE IF NOT EXISTS completions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			task_id TEXT NOT NULL,
			completed_at DATETIME NOT NULL,
			day TEXT NOT NULL,
			impact_tier TEXT NOT NULL DEFAULT '',
			points INTEGER NOT NULL,
			bonus_points INTEGER NOT NULL DEFAULT 0,
			quest_points INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_user_id ON tasks(user_id, created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_user_completed_day ON tasks(user_id, completed_day);`,
		`CREATE INDEX IF NOT EXISTS idx_goals_user_id ON goals(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_completions_user_day ON completions(user_id, day);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	// Columns added after the first schema (ignore if already present).
	alterStmts := []string{
		`ALTER TABLE completions ADD COLUMN quest_points INTEGER NOT NULL DEFAULT 0;`,
		`ALTER TABLE completions ADD COLUMN impact_tier TEXT NOT NULL DEFAULT '';`,
	}
	for _, stmt := range alterStmts {
		_, err := db.ExecContext(ctx, stmt)
		if err != nil && !strings.Contains(err.Error(), "duplicate column") {
			return fmt.Errorf("migrate alter: %w", err)
		}
	}

	return nil
}
