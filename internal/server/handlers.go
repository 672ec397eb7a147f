package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"hypeos/internal/engine"
	"hypeos/internal/hypeos"
	"hypeos/internal/storage"
)

// HeaderUserID selects the profile a request acts on.
const HeaderUserID = "X-User-ID"

const userKey = "user_id"

func (s *Server) userMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := strings.TrimSpace(c.Request().Header.Get(HeaderUserID))
			if id == "" {
				id = s.config.User.DefaultID
			}
			c.Set(userKey, id)
			return next(c)
		}
	}
}

func userID(c echo.Context) string {
	id, _ := c.Get(userKey).(string)
	return id
}

type createTaskRequest struct {
	Title      string `json:"title" validate:"required,max=200"`
	ImpactTier string `json:"impactTier" validate:"required"`
	Category   string `json:"category" validate:"max=40"`
	MiniWin    bool   `json:"miniWin"`
	GoalID     string `json:"goalId"`
}

type updateTaskRequest struct {
	Title      *string `json:"title" validate:"omitempty,max=200"`
	ImpactTier *string `json:"impactTier"`
	Category   *string `json:"category" validate:"omitempty,max=40"`
	MiniWin    *bool   `json:"miniWin"`
	GoalID     *string `json:"goalId"`
}

type createGoalRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Category    string `json:"category" validate:"max=40"`
	TargetDate  string `json:"targetDate" validate:"omitempty,datetime=2006-01-02"`
}

type updateGoalRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Category    *string `json:"category" validate:"omitempty,max=40"`
	TargetDate  *string `json:"targetDate" validate:"omitempty"`
	Completed   *bool   `json:"completed"`
}

type previewRequest struct {
	ImpactTier string `json:"impactTier" validate:"required"`
	Category   string `json:"category" validate:"max=40"`
	MiniWin    bool   `json:"miniWin"`
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	return c.Validate(req)
}

func (s *Server) listTasks(c echo.Context) error {
	var f storage.TaskFilter
	if v := c.QueryParam("completed"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "completed must be true or false")
		}
		f.Completed = &b
	}
	f.GoalID = c.QueryParam("goal")
	f.Category = c.QueryParam("category")
	if v := c.QueryParam("date"); v != "" {
		day, err := s.parseDate(v)
		if err != nil {
			return err
		}
		f.Day = hypeos.DateKey(day)
	}

	tasks, err := s.svc.ListTasks(c.Request().Context(), userID(c), f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tasks)
}

func (s *Server) createTask(c echo.Context) error {
	var req createTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	task, err := s.svc.CreateTask(c.Request().Context(), userID(c), engine.CreateTaskInput{
		Title:      req.Title,
		ImpactTier: req.ImpactTier,
		Category:   req.Category,
		MiniWin:    req.MiniWin,
		GoalID:     req.GoalID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, task)
}

func (s *Server) getTask(c echo.Context) error {
	task, err := s.svc.GetTask(c.Request().Context(), userID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

func (s *Server) updateTask(c echo.Context) error {
	var req updateTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	task, err := s.svc.UpdateTask(c.Request().Context(), userID(c), c.Param("id"), engine.UpdateTaskInput{
		Title:      req.Title,
		ImpactTier: req.ImpactTier,
		Category:   req.Category,
		MiniWin:    req.MiniWin,
		GoalID:     req.GoalID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

func (s *Server) deleteTask(c echo.Context) error {
	if err := s.svc.DeleteTask(c.Request().Context(), userID(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) completeTask(c echo.Context) error {
	res, err := s.svc.CompleteTask(c.Request().Context(), userID(c), c.Param("id"))
	if err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.ObserveCompletion(res)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) listGoals(c echo.Context) error {
	goals, err := s.svc.ListGoals(c.Request().Context(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, goals)
}

func (s *Server) createGoal(c echo.Context) error {
	var req createGoalRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	in := engine.CreateGoalInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
	}
	if req.TargetDate != "" {
		d, err := s.parseDate(req.TargetDate)
		if err != nil {
			return err
		}
		in.TargetDate = &d
	}
	g, err := s.svc.CreateGoal(c.Request().Context(), userID(c), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, g)
}

func (s *Server) getGoal(c echo.Context) error {
	g, err := s.svc.GetGoal(c.Request().Context(), userID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, g)
}

func (s *Server) updateGoal(c echo.Context) error {
	var req updateGoalRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	in := engine.UpdateGoalInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Completed:   req.Completed,
	}
	if req.TargetDate != nil {
		if *req.TargetDate == "" {
			in.ClearTarget = true
		} else {
			d, err := s.parseDate(*req.TargetDate)
			if err != nil {
				return err
			}
			in.TargetDate = &d
		}
	}
	g, err := s.svc.UpdateGoal(c.Request().Context(), userID(c), c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, g)
}

func (s *Server) deleteGoal(c echo.Context) error {
	if err := s.svc.DeleteGoal(c.Request().Context(), userID(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) dashboard(c echo.Context) error {
	d, err := s.svc.Dashboard(c.Request().Context(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

func (s *Server) quests(c echo.Context) error {
	q, err := s.svc.Quests(c.Request().Context(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"progress":       q.Progress,
		"quests":         q.Quests,
		"completionRate": hypeos.GetQuestCompletionRate(q.Quests),
		"rewardsEarned":  hypeos.GetTotalQuestRewards(q.Quests),
	})
}

func (s *Server) streak(c echo.Context) error {
	v, err := s.svc.Streak(c.Request().Context(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v)
}

func (s *Server) achievements(c echo.Context) error {
	list, err := s.svc.Achievements(c.Request().Context(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (s *Server) completions(c echo.Context) error {
	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 500 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be between 1 and 500")
		}
		limit = n
	}
	list, err := s.svc.RecentCompletions(c.Request().Context(), userID(c), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (s *Server) dailyPoints(c echo.Context) error {
	day, err := s.dateParam(c, "date")
	if err != nil {
		return err
	}
	pts, err := s.svc.DailyPoints(c.Request().Context(), userID(c), day)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"date":   hypeos.DateKey(day),
		"points": pts,
	})
}

func (s *Server) weeklyPoints(c echo.Context) error {
	end, err := s.dateParam(c, "end")
	if err != nil {
		return err
	}
	w, err := s.svc.WeeklyPoints(c.Request().Context(), userID(c), end)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"end":   hypeos.DateKey(end),
		"total": w.Total,
		"daily": w.Daily,
	})
}

func (s *Server) breakdown(c echo.Context) error {
	day, err := s.dateParam(c, "date")
	if err != nil {
		return err
	}
	b, err := s.svc.Breakdown(c.Request().Context(), userID(c), day)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, b)
}

func (s *Server) previewPoints(c echo.Context) error {
	var req previewRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	calc, err := s.svc.PreviewPoints(c.Request().Context(), userID(c), engine.PreviewInput{
		ImpactTier: req.ImpactTier,
		Category:   req.Category,
		MiniWin:    req.MiniWin,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, calc)
}

func (s *Server) levels(c echo.Context) error {
	v := c.QueryParam("points")
	if v == "" {
		return c.JSON(http.StatusOK, s.svc.Rules().Rules().LevelThresholds)
	}
	pts, err := strconv.Atoi(v)
	if err != nil || pts < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "points must be a non-negative integer")
	}
	return c.JSON(http.StatusOK, s.svc.Rules().GetLevelFromPoints(pts))
}

func (s *Server) rules(c echo.Context) error {
	return c.JSON(http.StatusOK, s.svc.Rules().Rules())
}

// dateParam reads a YYYY-MM-DD query parameter, defaulting to today.
func (s *Server) dateParam(c echo.Context, name string) (time.Time, error) {
	v := c.QueryParam(name)
	if v == "" {
		return s.svc.Now(), nil
	}
	return s.parseDate(v)
}

func (s *Server) parseDate(v string) (time.Time, error) {
	d, err := time.ParseInLocation(hypeos.DateLayout, v, s.svc.Location())
	if err != nil {
		return time.Time{}, echo.NewHTTPError(http.StatusBadRequest, "dates use YYYY-MM-DD")
	}
	return d, nil
}
