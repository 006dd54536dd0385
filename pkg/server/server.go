// Package server exposes the matrix over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	apperrors "tableflip.dev/pricematrix/pkg/errors"
	"tableflip.dev/pricematrix/pkg/matrix"
	"tableflip.dev/pricematrix/pkg/metrics"
)

const (
	defaultListen  = "127.0.0.1:8080"
	defaultTimeout = 10 * time.Second
	maxBodySize    = "1M"
)

// MatrixService is the subset of app.Service the handlers need.
type MatrixService interface {
	LoadMatrix(ctx context.Context) (matrix.Matrix, error)
	SaveMatrix(ctx context.Context, m matrix.Matrix) (matrix.Matrix, error)
	Ping(ctx context.Context) error
}

// Option configures a Server.
type Option func(*Server)

// WithListen sets the listen address.
func WithListen(addr string) Option {
	return func(s *Server) {
		if addr != "" {
			s.listen = addr
		}
	}
}

// WithTimeout bounds every storage call made by a handler.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// Server is the pricing HTTP API.
type Server struct {
	echo      *echo.Echo
	app       MatrixService
	listen    string
	timeout   time.Duration
	startTime time.Time
}

// New builds a Server with routes and middleware registered.
func New(app MatrixService, opts ...Option) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:      e,
		app:       app,
		listen:    defaultListen,
		timeout:   defaultTimeout,
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			slog.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", v.RequestID,
			)
			return nil
		},
	}))
	e.Use(middleware.BodyLimit(maxBodySize))
	e.Use(apperrors.Middleware(metrics.ErrorRecorder{}))

	s.registerRoutes()
	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.listen
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	slog.Info("Starting server", "listen", s.listen)
	if err := s.echo.Start(s.listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
