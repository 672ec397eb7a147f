package hypeos

import "time"

// civilDay strips the clock so calendar days can be subtracted without DST drift.
func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts whole calendar days from a to b, with a viewed in b's location.
func DaysBetween(a, b time.Time) int {
	from := civilDay(a.In(b.Location()))
	to := civilDay(b)
	return int(to.Sub(from).Hours() / 24)
}

// UpdateStreak advances state for an activity on activityDate.
//
// Repeat activity on the same day is a no-op. An activity dated before the
// last recorded one is rejected with a ClockSkewError and state is returned as is.
func (e *Engine) UpdateStreak(state StreakState, activityDate time.Time) (StreakState, error) {
	if state.CurrentStreak < 0 {
		return state, &InputError{Field: "currentStreak", Value: state.CurrentStreak}
	}

	if state.LastActiveDate.IsZero() {
		next := state
		next.CurrentStreak = 1
		next.LongestStreak = max(state.LongestStreak, 1)
		next.StreakStartDate = activityDate
		next.LastActiveDate = activityDate
		next.TotalDaysActive = state.TotalDaysActive + 1
		return next, nil
	}

	days := DaysBetween(state.LastActiveDate, activityDate)
	switch {
	case days < 0:
		return state, &ClockSkewError{LastActive: state.LastActiveDate, Activity: activityDate}
	case days == 0:
		return state, nil
	case days == 1:
		next := state
		next.CurrentStreak = state.CurrentStreak + 1
		next.LongestStreak = max(state.LongestStreak, next.CurrentStreak)
		next.TotalDaysActive = state.TotalDaysActive + 1
		next.LastActiveDate = activityDate
		if state.CurrentStreak == 0 {
			next.StreakStartDate = activityDate
		}
		return next, nil
	default:
		next := state
		next.CurrentStreak = 1
		// A prior active day implies LongestStreak >= 1 already; max only guards hand-built state.
		next.LongestStreak = max(state.LongestStreak, 1)
		next.StreakStartDate = activityDate
		next.TotalDaysActive = state.TotalDaysActive + 1
		next.LastActiveDate = activityDate
		return next, nil
	}
}

type StreakStatus struct {
	IsActive            bool       `json:"isActive"`
	CanMaintain         bool       `json:"canMaintain"`
	DaysUntilReset      int        `json:"daysUntilReset"`
	NextMilestone       *Milestone `json:"nextMilestone,omitempty"`
	DaysToNextMilestone int        `json:"daysToNextMilestone"`
	Multiplier          float64    `json:"multiplier"`
}

// CalculateStreakStatus reports how state looks from today.
func (e *Engine) CalculateStreakStatus(state StreakState, today time.Time) StreakStatus {
	status := StreakStatus{Multiplier: e.rules.StreakMultiplier(state.CurrentStreak)}

	if !state.LastActiveDate.IsZero() && state.CurrentStreak > 0 {
		gap := DaysBetween(state.LastActiveDate, today)
		status.IsActive = gap <= 1
		status.CanMaintain = gap == 1
	}
	if !status.IsActive {
		status.DaysUntilReset = 1
	}

	if m := e.rules.NextMilestone(state.CurrentStreak); m != nil {
		status.NextMilestone = m
		status.DaysToNextMilestone = m.Days - state.CurrentStreak
	}
	return status
}

func (e *Engine) GetStreakMultiplier(streak int) float64 {
	return e.rules.StreakMultiplier(streak)
}

// CalculateStreakBonus is the extra points streak applies on top of basePoints.
func (e *Engine) CalculateStreakBonus(basePoints, streak int) int {
	return round(float64(basePoints)*e.rules.StreakMultiplier(streak)) - basePoints
}
