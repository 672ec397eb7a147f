package engine

import (
	"errors"
	"fmt"
)

var (
	ErrTaskNotFound  = errors.New("task not found")
	ErrGoalNotFound  = errors.New("goal not found")
	ErrTaskCompleted = errors.New("task already completed")
)

func taskNotFound(id string) error {
	return fmt.Errorf("task %s: %w", id, ErrTaskNotFound)
}

func goalNotFound(id string) error {
	return fmt.Errorf("goal %s: %w", id, ErrGoalNotFound)
}
