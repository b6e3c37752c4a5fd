// Package server exposes the pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-kratos/scout"
	"github.com/go-kratos/scout/pipeline"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Runner executes one pipeline request.
type Runner interface {
	Run(context.Context, pipeline.Request) (pipeline.Outcome, error)
}

// Config contains HTTP server configuration.
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	// RateLimit is requests per second per client IP, 0 disables limiting.
	RateLimit float64
	Burst     int
	// BodyLimit caps request bodies, e.g. "1M".
	BodyLimit string
}

// Defaults fill in request fields the caller leaves empty.
type Defaults struct {
	Model       scout.ModelConfig
	RegistryURL string
}

// Option configures a Server.
type Option func(*Server)

// WithDefaults sets the fallbacks for omitted request fields.
func WithDefaults(d Defaults) Option {
	return func(s *Server) {
		s.defaults = d
	}
}

// WithLogger sets the access and error logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// Server serves POST /api/run and GET /healthz.
type Server struct {
	echo     *echo.Echo
	config   Config
	runner   Runner
	defaults Defaults
	logger   logrus.FieldLogger
}

// New creates a server running requests on runner.
func New(runner Runner, config Config, opts ...Option) *Server {
	s := &Server{
		config: config,
		runner: runner,
		logger: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogMethod:    true,
		LogURI:       true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := s.logger.WithFields(logrus.Fields{
				"status":     v.Status,
				"method":     v.Method,
				"uri":        v.URI,
				"latency":    v.Latency,
				"request_id": v.RequestID,
			})
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("request")
			return nil
		},
	}))
	if config.BodyLimit != "" {
		e.Use(middleware.BodyLimit(config.BodyLimit))
	}
	if config.RateLimit > 0 {
		e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:  rate.Limit(config.RateLimit),
				Burst: config.Burst,
			},
		)))
	}

	e.GET("/healthz", s.health)
	e.POST("/api/run", s.run)
	s.echo = e
	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on the configured address until Shutdown is called.
func (s *Server) Start() error {
	hs := &http.Server{
		Addr:         s.config.Addr,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	s.logger.WithField("addr", s.config.Addr).Info("starting server")
	if err := s.echo.StartServer(hs); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server, waiting up to the configured timeout for
// in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.config.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()
	}
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok", Version: scout.Version})
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	message := http.StatusText(code)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		message = fmt.Sprint(he.Message)
	}
	if err := c.JSON(code, ErrorResponse{Error: message}); err != nil {
		s.logger.WithError(err).Warn("failed to send error response")
	}
}
