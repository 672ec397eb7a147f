package storage

import (
	"context"
	"database/sql"
	"fmt"

	"hypeos/internal/hypeos"
)

type CompletionRepo struct {
	db DBTX
}

func NewCompletionRepo(db DBTX) *CompletionRepo {
	return &CompletionRepo{db: db}
}

func (r *CompletionRepo) Insert(ctx context.Context, c Completion) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO completions (id, user_id, task_id, completed_at, day, impact_tier, points, bonus_points, quest_points)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.UserID, c.TaskID, c.CompletedAt, c.Day, string(c.ImpactTier), c.Points, c.BonusPoints, c.QuestPoints)
	if err != nil {
		return fmt.Errorf("completion insert: %w", err)
	}
	return nil
}

// SetQuestPoints records the quest rewards paid out by completion id.
func (r *CompletionRepo) SetQuestPoints(ctx context.Context, id string, points int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE completions SET quest_points = ? WHERE id = ?`, points, id)
	if err != nil {
		return fmt.Errorf("completion set quest points: %w", err)
	}
	return nil
}

// PointsOnDay sums task points logged for userID on day. Quest rewards are excluded.
func (r *CompletionRepo) PointsOnDay(ctx context.Context, userID, day string) (int, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(points), 0)
		FROM completions
		WHERE user_id = ? AND day = ?
	`, userID, day)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("completion points on day: %w", err)
	}
	return n, nil
}

// Recent returns the latest completions for userID, newest first.
func (r *CompletionRepo) Recent(ctx context.Context, userID string, limit int) ([]Completion, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, task_id, completed_at, day, impact_tier, points, bonus_points, quest_points
		FROM completions
		WHERE user_id = ?
		ORDER BY completed_at DESC, id DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("completion recent: %w", err)
	}
	return scanCompletions(rows)
}

// OnDay returns the completions logged for userID on day, oldest first.
// Rows stay after their task is deleted.
func (r *CompletionRepo) OnDay(ctx context.Context, userID, day string) ([]Completion, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, task_id, completed_at, day, impact_tier, points, bonus_points, quest_points
		FROM completions
		WHERE user_id = ? AND day = ?
		ORDER BY completed_at, id
	`, userID, day)
	if err != nil {
		return nil, fmt.Errorf("completion on day: %w", err)
	}
	return scanCompletions(rows)
}

func scanCompletions(rows *sql.Rows) ([]Completion, error) {
	defer rows.Close()

	var out []Completion
	for rows.Next() {
		var (
			c    Completion
			tier string
		)
		if err := rows.Scan(&c.ID, &c.UserID, &c.TaskID, &c.CompletedAt, &c.Day, &tier, &c.Points, &c.BonusPoints, &c.QuestPoints); err != nil {
			return nil, fmt.Errorf("completion scan: %w", err)
		}
		c.ImpactTier = hypeos.ImpactTier(tier)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("completion rows: %w", err)
	}
	return out, nil
}

// AsTasks renders log rows as completed tasks, the shape quest progress is built from.
func AsTasks(cs []Completion) []hypeos.Task {
	out := make([]hypeos.Task, 0, len(cs))
	for i := range cs {
		at := cs[i].CompletedAt
		out = append(out, hypeos.Task{
			ID:            cs[i].TaskID,
			UserID:        cs[i].UserID,
			ImpactTier:    cs[i].ImpactTier,
			Completed:     true,
			CompletedAt:   &at,
			PointsAwarded: cs[i].Points,
		})
	}
	return out
}
