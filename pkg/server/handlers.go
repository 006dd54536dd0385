package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	apperrors "tableflip.dev/pricematrix/pkg/errors"
	"tableflip.dev/pricematrix/pkg/matrix"
)

func (s *Server) handleHealth(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), s.timeout)
	defer cancel()

	if err := s.app.Ping(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]any{
			"status": "unhealthy",
			"error":  err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.startTime).Seconds(),
	})
}

func (s *Server) handleLoad(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), s.timeout)
	defer cancel()

	m, err := s.app.LoadMatrix(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

func (s *Server) handleSave(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return apperrors.ParseError("failed to read request body", err)
	}
	m, err := matrix.Decode(body)
	if err != nil {
		return apperrors.ParseError("invalid pricing document", err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), s.timeout)
	defer cancel()

	saved, err := s.app.SaveMatrix(ctx, m)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, saved)
}
