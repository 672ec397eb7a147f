package hypeos

import "math"

func round(v float64) int {
	return int(math.Round(v))
}

// CalculateTaskPoints scores one completion against the current streak.
func (e *Engine) CalculateTaskPoints(task Task, streak StreakState, isMiniWin bool) (PointsCalculation, error) {
	tierPoints, ok := e.rules.BasePoints[task.ImpactTier]
	if !ok || !task.ImpactTier.IsValid() {
		return PointsCalculation{}, &InputError{Field: "impactTier", Value: task.ImpactTier}
	}
	if streak.CurrentStreak < 0 {
		return PointsCalculation{}, &InputError{Field: "currentStreak", Value: streak.CurrentStreak}
	}

	base := tierPoints
	if isMiniWin {
		base = round(float64(tierPoints) * e.rules.MiniWinRate)
	}
	catMult := e.rules.CategoryMultiplier(task.Category)
	streakMult := e.rules.StreakMultiplier(streak.CurrentStreak)

	total := round(float64(base) * catMult * streakMult)
	withoutStreak := round(float64(base) * catMult)

	return PointsCalculation{
		BasePoints:         base,
		StreakMultiplier:   streakMult,
		CategoryMultiplier: catMult,
		TotalPoints:        total,
		BonusPoints:        total - withoutStreak,
	}, nil
}

// CalculateDailyPoints sums TotalPoints over the completed tasks.
func (e *Engine) CalculateDailyPoints(tasks []Task, streak StreakState) (int, error) {
	sum := 0
	for _, t := range tasks {
		if !t.Completed {
			continue
		}
		calc, err := e.CalculateTaskPoints(t, streak, t.MiniWin)
		if err != nil {
			return 0, err
		}
		sum += calc.TotalPoints
	}
	return sum, nil
}

type WeeklyPoints struct {
	Total int   `json:"total"`
	Daily []int `json:"daily"`
}

// CalculateWeeklyPoints folds CalculateDailyPoints over per-day task groups.
func (e *Engine) CalculateWeeklyPoints(taskGroupsByDay [][]Task, streak StreakState) (WeeklyPoints, error) {
	out := WeeklyPoints{Daily: make([]int, 0, len(taskGroupsByDay))}
	for _, day := range taskGroupsByDay {
		pts, err := e.CalculateDailyPoints(day, streak)
		if err != nil {
			return WeeklyPoints{}, err
		}
		out.Daily = append(out.Daily, pts)
		out.Total += pts
	}
	return out, nil
}

type PointsBreakdown struct {
	ByImpact    map[ImpactTier]int `json:"byImpact"`
	ByCategory  map[string]int     `json:"byCategory"`
	StreakBonus int                `json:"streakBonus"`
	Total       int                `json:"total"`
}

// GetPointsBreakdown groups completed-task totals by tier and category.
func (e *Engine) GetPointsBreakdown(tasks []Task, streak StreakState) (PointsBreakdown, error) {
	out := PointsBreakdown{
		ByImpact:   map[ImpactTier]int{ImpactHigh: 0, ImpactMedium: 0, ImpactLow: 0},
		ByCategory: map[string]int{},
	}
	for _, t := range tasks {
		if !t.Completed {
			continue
		}
		calc, err := e.CalculateTaskPoints(t, streak, t.MiniWin)
		if err != nil {
			return PointsBreakdown{}, err
		}
		out.ByImpact[t.ImpactTier] += calc.TotalPoints
		out.ByCategory[t.Category] += calc.TotalPoints
		out.StreakBonus += calc.BonusPoints
		out.Total += calc.TotalPoints
	}
	return out, nil
}
