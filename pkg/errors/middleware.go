package errors

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/labstack/echo/v4"
)

// Recorder counts errors by type. It may be nil.
type Recorder interface {
	RecordError(t ErrorType)
}

// Middleware converts errors returned by handlers into JSON responses with
// the matching status code.
func Middleware(rec Recorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			// Echo errors (404 route, 405) keep their own status.
			var httpErr *echo.HTTPError
			if errors.As(err, &httpErr) {
				if rec != nil {
					rec.RecordError(TypeInternal)
				}
				return err
			}

			structuredErr := AsStructuredError(err)
			if rec != nil {
				rec.RecordError(structuredErr.Type)
			}
			logError(c, structuredErr)

			if err := c.JSON(structuredErr.HTTPStatus(), structuredErr.ToResponse()); err != nil {
				return fmt.Errorf("failed to write error response: %w", err)
			}
			return nil
		}
	}
}

func logError(c echo.Context, err *Error) {
	attrs := []any{
		"error_type", err.Type,
		"message", err.Message,
		"path", c.Request().URL.Path,
		"method", c.Request().Method,
		"status", err.HTTPStatus(),
	}
	for k, v := range err.Context {
		attrs = append(attrs, k, v)
	}
	if err.Cause != nil {
		attrs = append(attrs, "cause", err.Cause)
	}
	if err.HTTPStatus() >= 500 {
		slog.Error("Request failed", attrs...)
		return
	}
	slog.Warn("Request rejected", attrs...)
}
