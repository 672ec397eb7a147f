package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// WithTx runs fn inside a SQL transaction.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}

// Repos groups the repositories bound to one DBTX.
type Repos struct {
	Users       *UserRepo
	Tasks       *TaskRepo
	Goals       *GoalRepo
	Completions *CompletionRepo
}

func NewRepos(q DBTX) *Repos {
	return &Repos{
		Users:       NewUserRepo(q),
		Tasks:       NewTaskRepo(q),
		Goals:       NewGoalRepo(q),
		Completions: NewCompletionRepo(q),
	}
}

// Store is the database plus repos bound to it. InTx hands fn a second set
// bound to a transaction.
type Store struct {
	*Repos
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{Repos: NewRepos(db), db: db}
}

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) InTx(ctx context.Context, fn func(r *Repos) error) error {
	return WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return fn(NewRepos(tx))
	})
}
