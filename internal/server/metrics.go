package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hypeos/internal/engine"
)

// Metrics owns a private registry so tests can build several servers.
type Metrics struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	completions     *prometheus.CounterVec
	pointsAwarded   *prometheus.CounterVec
	questsCompleted *prometheus.CounterVec
	streakResets    prometheus.Counter
	levelUps        prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		completions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hypeos_task_completions_total",
				Help: "Completed tasks by impact tier",
			},
			[]string{"impact_tier"},
		),
		pointsAwarded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hypeos_points_awarded_total",
				Help: "Hype points awarded, split by source",
			},
			[]string{"source"},
		),
		questsCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hypeos_quests_completed_total",
				Help: "Daily quests completed by quest id",
			},
			[]string{"quest_id"},
		),
		streakResets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hypeos_streak_resets_total",
			Help: "Streaks broken by a missed day",
		}),
		levelUps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hypeos_level_ups_total",
			Help: "Level ups",
		}),
	}
	m.registry.MustRegister(
		m.requestsTotal, m.requestDuration,
		m.completions, m.pointsAwarded, m.questsCompleted, m.streakResets, m.levelUps,
	)
	return m
}

func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			status := c.Response().Status
			if err != nil {
				status = statusFor(err)
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}
			m.requestsTotal.WithLabelValues(c.Request().Method, c.Path(), strconv.Itoa(status)).Inc()
			m.requestDuration.WithLabelValues(c.Request().Method, c.Path()).Observe(time.Since(start).Seconds())

			return err
		}
	}
}

// ObserveCompletion records the domain side of one task completion.
func (m *Metrics) ObserveCompletion(res *engine.CompleteResult) {
	m.completions.WithLabelValues(string(res.Task.ImpactTier)).Inc()
	m.pointsAwarded.WithLabelValues("base").Add(float64(res.Points.TotalPoints - res.Points.BonusPoints))
	if res.Points.BonusPoints > 0 {
		m.pointsAwarded.WithLabelValues("streak_bonus").Add(float64(res.Points.BonusPoints))
	}
	for _, q := range res.QuestRewards {
		m.questsCompleted.WithLabelValues(q.QuestID).Inc()
		m.pointsAwarded.WithLabelValues("quest").Add(float64(q.Points))
	}
	if res.StreakReset {
		m.streakResets.Inc()
	}
	if res.LevelUp {
		m.levelUps.Inc()
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
