package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"hypeos/internal/engine"
	"hypeos/internal/hypeos"
	"hypeos/internal/logger"
)

type errorResponse struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs), errors.Is(err, hypeos.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrTaskNotFound), errors.Is(err, engine.ErrGoalNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrTaskCompleted), errors.Is(err, hypeos.ErrClockSkew):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func customErrorHandler(log *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		var (
			code = http.StatusInternalServerError
			body errorResponse
		)

		var he *echo.HTTPError
		var verrs validator.ValidationErrors
		switch {
		case errors.As(err, &he):
			code = he.Code
			body.Message = fmt.Sprint(he.Message)
			if he.Internal != nil {
				err = fmt.Errorf("%v, %v", err, he.Internal)
			}
		case errors.As(err, &verrs):
			code = http.StatusBadRequest
			body = errorResponse{Message: "validation failed", Details: verrs.Error()}
		default:
			code = statusFor(err)
			if code == http.StatusInternalServerError {
				body.Message = http.StatusText(code)
			} else {
				body.Message = err.Error()
			}
		}

		if code == http.StatusInternalServerError {
			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			log.WithRequestID(rid).WithError(err).Errorw("Internal server error", "path", c.Request().URL.Path)
		}

		if !c.Response().Committed {
			if c.Request().Method == http.MethodHead {
				err = c.NoContent(code)
			} else {
				err = c.JSON(code, body)
			}
			if err != nil {
				log.Errorw("Error sending response", "error", err)
			}
		}
	}
}
