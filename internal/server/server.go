package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"hypeos/internal/config"
	"hypeos/internal/engine"
	"hypeos/internal/logger"
)

// Server is the HTTP API over an engine.Service.
type Server struct {
	echo    *echo.Echo
	config  *config.Config
	logger  *logger.Logger
	svc     *engine.Service
	metrics *Metrics
}

// CustomValidator wraps the validator
type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func New(cfg *config.Config, svc *engine.Service, appLogger *logger.Logger) *Server {
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}
	e.HideBanner = true
	e.HidePort = true

	log := appLogger.WithComponent("http")
	e.HTTPErrorHandler = customErrorHandler(log)

	s := &Server{
		echo:   e,
		config: cfg,
		logger: log,
		svc:    svc,
	}

	s.setupMiddleware()
	if cfg.Metrics.Enabled {
		s.metrics = NewMetrics()
		s.echo.Use(s.metrics.Middleware())
		s.echo.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
	}
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestID())

	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, values middleware.RequestLoggerValues) error {
			if values.Error != nil {
				s.logger.Errorw("HTTP request failed",
					"method", values.Method,
					"uri", values.URI,
					"status", values.Status,
					"request_id", values.RequestID,
					"error", values.Error.Error(),
				)
				return nil
			}
			s.logger.LogHTTPRequest(values.Method, values.URI, values.Status,
				float64(values.Latency.Nanoseconds())/1e6, values.RequestID)
			return nil
		},
	}))

	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: strings.Split(s.config.Security.CORSAllowedOrigins, ","),
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, HeaderUserID},
		AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPost, http.MethodDelete},
	}))

	if s.config.Security.RateLimit > 0 {
		burst := s.config.Security.RateBurst
		if burst <= 0 {
			burst = int(s.config.Security.RateLimit)
		}
		s.echo.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
			Store: middleware.NewRateLimiterMemoryStoreWithConfig(
				middleware.RateLimiterMemoryStoreConfig{Rate: rate.Limit(s.config.Security.RateLimit), Burst: burst, ExpiresIn: 3 * time.Minute},
			),
			IdentifierExtractor: func(c echo.Context) (string, error) {
				return c.RealIP(), nil
			},
			ErrorHandler: func(c echo.Context, err error) error {
				return c.JSON(http.StatusForbidden, map[string]string{"message": "rate limit exceeded"})
			},
			DenyHandler: func(c echo.Context, identifier string, err error) error {
				return c.JSON(http.StatusTooManyRequests, map[string]string{"message": "rate limit exceeded"})
			},
		}))
	}

	s.echo.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
	}))

	if s.config.Server.WriteTimeout > 0 {
		s.echo.Use(middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
			Timeout: s.config.Server.WriteTimeout,
		}))
	}
}

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)

	v1 := s.echo.Group("/api/v1", s.userMiddleware())

	tasks := v1.Group("/tasks")
	tasks.GET("", s.listTasks)
	tasks.POST("", s.createTask)
	tasks.GET("/:id", s.getTask)
	tasks.PUT("/:id", s.updateTask)
	tasks.DELETE("/:id", s.deleteTask)
	tasks.POST("/:id/complete", s.completeTask)

	goals := v1.Group("/goals")
	goals.GET("", s.listGoals)
	goals.POST("", s.createGoal)
	goals.GET("/:id", s.getGoal)
	goals.PUT("/:id", s.updateGoal)
	goals.DELETE("/:id", s.deleteGoal)

	v1.GET("/dashboard", s.dashboard)
	v1.GET("/quests", s.quests)
	v1.GET("/streak", s.streak)
	v1.GET("/achievements", s.achievements)
	v1.GET("/completions", s.completions)

	points := v1.Group("/points")
	points.GET("/daily", s.dailyPoints)
	points.GET("/weekly", s.weeklyPoints)
	points.GET("/breakdown", s.breakdown)
	points.POST("/preview", s.previewPoints)

	v1.GET("/levels", s.levels)
	v1.GET("/rules", s.rules)
}

// ServeHTTP lets the server be mounted or driven by httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start blocks serving on the configured address until Shutdown.
func (s *Server) Start() error {
	addr := s.config.Server.Addr()
	s.logger.Infow("Starting server", "address", addr)
	s.echo.Server.ReadTimeout = s.config.Server.ReadTimeout
	s.echo.Server.WriteTimeout = s.config.Server.WriteTimeout
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Infow("Shutting down server")
	return s.echo.Shutdown(ctx)
}

func (s *Server) healthCheck(c echo.Context) error {
	status := "ok"
	code := http.StatusOK
	if err := s.svc.Store().DB().PingContext(c.Request().Context()); err != nil {
		status = "error"
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, map[string]string{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
