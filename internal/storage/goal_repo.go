package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type GoalRepo struct {
	db DBTX
}

func NewGoalRepo(db DBTX) *GoalRepo {
	return &GoalRepo{db: db}
}

func (r *GoalRepo) Insert(ctx context.Context, g Goal) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO goals (id, user_id, title, description, category, target_date, completed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, g.ID, g.UserID, g.Title, g.Description, g.Category, g.TargetDate, boolToInt(g.Completed), g.CreatedAt)
	if err != nil {
		return fmt.Errorf("goal insert: %w", err)
	}
	return nil
}

func (r *GoalRepo) Get(ctx context.Context, userID, id string) (*Goal, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, title, description, category, target_date, completed, created_at
		FROM goals
		WHERE user_id = ? AND id = ?
	`, userID, id)
	return scanGoalRow(row)
}

func (r *GoalRepo) List(ctx context.Context, userID string) ([]Goal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, title, description, category, target_date, completed, created_at
		FROM goals
		WHERE user_id = ?
		ORDER BY created_at ASC, id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("goal list: %w", err)
	}
	defer rows.Close()

	var out []Goal
	for rows.Next() {
		g, err := scanGoalRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("goal list rows: %w", err)
	}
	return out, nil
}

func (r *GoalRepo) Update(ctx context.Context, g Goal) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE goals
		SET title = ?, description = ?, category = ?, target_date = ?, completed = ?
		WHERE user_id = ? AND id = ?
	`, g.Title, g.Description, g.Category, g.TargetDate, boolToInt(g.Completed), g.UserID, g.ID)
	if err != nil {
		return fmt.Errorf("goal update: %w", err)
	}
	return nil
}

func (r *GoalRepo) Delete(ctx context.Context, userID, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM goals WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return false, fmt.Errorf("goal delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("goal delete rows: %w", err)
	}
	return n > 0, nil
}

func scanGoalRow(row scanner) (*Goal, error) {
	var (
		g           Goal
		description sql.NullString
		category    sql.NullString
		targetDate  sql.NullTime
		completed   int
	)
	if err := row.Scan(&g.ID, &g.UserID, &g.Title, &description, &category, &targetDate, &completed, &g.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("goal scan: %w", err)
	}
	g.Description = description.String
	g.Category = category.String
	if targetDate.Valid {
		v := targetDate.Time
		g.TargetDate = &v
	}
	g.Completed = completed != 0
	return &g, nil
}
