package storage

import (
	"context"
	"database/sql"
	"time"

	"hypeos/internal/hypeos"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so repos can run inside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Goal struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Category    string     `json:"category,omitempty"`
	TargetDate  *time.Time `json:"targetDate,omitempty"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Completion is one row of the append-only completion log.
type Completion struct {
	ID          string            `json:"id"`
	UserID      string            `json:"userId"`
	TaskID      string            `json:"taskId"`
	CompletedAt time.Time         `json:"completedAt"`
	Day         string            `json:"day"`
	ImpactTier  hypeos.ImpactTier `json:"impactTier"`
	Points      int               `json:"points"`
	BonusPoints int               `json:"bonusPoints"`
	QuestPoints int               `json:"questPoints"`
}

// TaskFilter narrows TaskRepo.List. Zero values match everything.
type TaskFilter struct {
	Completed *bool
	GoalID    string
	Category  string
	Day       string // completion day, "2006-01-02"
}
