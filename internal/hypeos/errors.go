package hypeos

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrClockSkew    = errors.New("clock skew")
)

// InputError names the offending field. It matches ErrInvalidInput with errors.Is.
type InputError struct {
	Field string
	Value any
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Value)
}

func (e *InputError) Unwrap() error { return ErrInvalidInput }

// ClockSkewError is returned when an activity is dated before the last recorded one.
type ClockSkewError struct {
	LastActive time.Time
	Activity   time.Time
}

func (e *ClockSkewError) Error() string {
	return fmt.Sprintf("activity on %s precedes last activity on %s", DateKey(e.Activity), DateKey(e.LastActive))
}

func (e *ClockSkewError) Unwrap() error { return ErrClockSkew }
