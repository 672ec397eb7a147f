// Package hypeos holds the HypeOS rules: task scoring, calendar-day streaks,
// daily quests and levels. Every function is a pure transform over values the
// caller owns; nothing here performs I/O or keeps mutable state.
package hypeos

import "fmt"

// Engine binds the rule functions to one validated Rules value.
type Engine struct {
	rules Rules
}

func New(rules Rules) (*Engine, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return &Engine{rules: rules}, nil
}

// MustNew is New for static tables known to be valid.
func MustNew(rules Rules) *Engine {
	e, err := New(rules)
	if err != nil {
		panic(fmt.Sprintf("hypeos: %v", err))
	}
	return e
}

func (e *Engine) Rules() Rules { return e.rules }
