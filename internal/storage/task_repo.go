package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"hypeos/internal/hypeos"
)

type TaskRepo struct {
	db DBTX
}

func NewTaskRepo(db DBTX) *TaskRepo {
	return &TaskRepo{db: db}
}

const taskColumns = `id, user_id, goal_id, title, impact_tier, category, mini_win,
	completed, completed_at, points_awarded, created_at`

func (r *TaskRepo) Insert(ctx context.Context, t hypeos.Task) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks (
			id, user_id, goal_id, title, impact_tier, category, mini_win,
			completed, completed_at, completed_day, points_awarded, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.UserID, t.GoalID, t.Title, string(t.ImpactTier), t.Category, boolToInt(t.MiniWin),
		boolToInt(t.Completed), t.CompletedAt, completedDay(t), t.PointsAwarded, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("task insert: %w", err)
	}
	return nil
}

// Get returns nil, nil when the task does not exist for userID.
func (r *TaskRepo) Get(ctx context.Context, userID, id string) (*hypeos.Task, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE user_id = ? AND id = ?
	`, userID, id)

	return scanTaskRow(row)
}

func (r *TaskRepo) List(ctx context.Context, userID string, f TaskFilter) ([]hypeos.Task, error) {
	where := []string{"user_id = ?"}
	args := []any{userID}
	if f.Completed != nil {
		where = append(where, "completed = ?")
		args = append(args, boolToInt(*f.Completed))
	}
	if f.GoalID != "" {
		where = append(where, "goal_id = ?")
		args = append(args, f.GoalID)
	}
	if f.Category != "" {
		where = append(where, "lower(category) = lower(?)")
		args = append(args, f.Category)
	}
	if f.Day != "" {
		where = append(where, "completed_day = ?")
		args = append(args, f.Day)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY completed ASC, created_at ASC, id ASC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("task list: %w", err)
	}
	defer rows.Close()

	var out []hypeos.Task
	for rows.Next() {
		t, err := scanTaskRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("task list rows: %w", err)
	}
	return out, nil
}

// Update rewrites every mutable column of t.
func (r *TaskRepo) Update(ctx context.Context, t hypeos.Task) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET goal_id = ?, title = ?, impact_tier = ?, category = ?, mini_win = ?,
			completed = ?, completed_at = ?, completed_day = ?, points_awarded = ?
		WHERE user_id = ? AND id = ?
	`, t.GoalID, t.Title, string(t.ImpactTier), t.Category, boolToInt(t.MiniWin),
		boolToInt(t.Completed), t.CompletedAt, completedDay(t), t.PointsAwarded, t.UserID, t.ID)
	if err != nil {
		return fmt.Errorf("task update: %w", err)
	}
	return nil
}

// MarkDone records completion. day is the completion date in the user's calendar.
func (r *TaskRepo) MarkDone(ctx context.Context, userID, id string, completedAt time.Time, day string, points int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET completed = 1, completed_at = ?, completed_day = ?, points_awarded = ?
		WHERE user_id = ? AND id = ?
	`, completedAt, day, points, userID, id)
	if err != nil {
		return fmt.Errorf("task mark done: %w", err)
	}
	return nil
}

func (r *TaskRepo) Delete(ctx context.Context, userID, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return false, fmt.Errorf("task delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("task delete rows: %w", err)
	}
	return n > 0, nil
}

// ClearGoal detaches every task of userID from goalID.
func (r *TaskRepo) ClearGoal(ctx context.Context, userID, goalID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE tasks SET goal_id = NULL WHERE user_id = ? AND goal_id = ?`, userID, goalID)
	if err != nil {
		return fmt.Errorf("task clear goal: %w", err)
	}
	return nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func completedDay(t hypeos.Task) any {
	if !t.Completed || t.CompletedAt == nil {
		return nil
	}
	return hypeos.DateKey(*t.CompletedAt)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTaskRow(row scanner) (*hypeos.Task, error) {
	var (
		t           hypeos.Task
		goalID      sql.NullString
		impact      string
		miniWin     int
		completed   int
		completedAt sql.NullTime
	)

	if err := row.Scan(
		&t.ID, &t.UserID, &goalID, &t.Title, &impact, &t.Category, &miniWin,
		&completed, &completedAt, &t.PointsAwarded, &t.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("task scan: %w", err)
	}

	if goalID.Valid {
		v := goalID.String
		t.GoalID = &v
	}
	if completedAt.Valid {
		v := completedAt.Time
		t.CompletedAt = &v
	}
	t.ImpactTier = hypeos.ImpactTier(impact)
	t.MiniWin = miniWin != 0
	t.Completed = completed != 0
	return &t, nil
}
