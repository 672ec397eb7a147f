package hypeos

import "math"

type LevelInfo struct {
	Level            int     `json:"level"`
	CurrentThreshold int     `json:"currentThreshold"`
	NextThreshold    int     `json:"nextThreshold"`
	PointsToNext     int     `json:"pointsToNext"`
	Progress         float64 `json:"progress"`
	MaxLevel         bool    `json:"maxLevel"`
}

// GetLevelFromPoints maps a cumulative point total onto the threshold table.
// Level 1 is the band starting at 0. Totals past the last threshold saturate.
func (e *Engine) GetLevelFromPoints(points int) LevelInfo {
	th := e.rules.LevelThresholds
	if points < 0 {
		points = 0
	}

	idx := 0
	for i, t := range th {
		if points >= t {
			idx = i
		}
	}

	if idx == len(th)-1 {
		return LevelInfo{
			Level:            idx + 1,
			CurrentThreshold: th[idx],
			NextThreshold:    th[idx],
			PointsToNext:     0,
			Progress:         100,
			MaxLevel:         true,
		}
	}

	cur, next := th[idx], th[idx+1]
	progress := float64(points-cur) / float64(next-cur) * 100
	progress = math.Max(0, math.Min(100, progress))

	return LevelInfo{
		Level:            idx + 1,
		CurrentThreshold: cur,
		NextThreshold:    next,
		PointsToNext:     next - points,
		Progress:         progress,
	}
}
