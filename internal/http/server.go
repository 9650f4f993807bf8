// Package http exposes the validation pipeline over HTTP.
package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fyrsmithlabs/contentgate/internal/config"
	"github.com/fyrsmithlabs/contentgate/internal/content"
	"github.com/fyrsmithlabs/contentgate/internal/logging"
	"github.com/fyrsmithlabs/contentgate/internal/orchestrator"
	"github.com/fyrsmithlabs/contentgate/internal/telemetry"
)

// Server provides the contentgate HTTP API.
type Server struct {
	echo     *echo.Echo
	pipeline *orchestrator.Pipeline
	logger   *logging.Logger
	config   *Config

	gatherer  prometheus.Gatherer
	telemetry *telemetry.Telemetry
	metrics   *HTTPMetrics
	defaults  Defaults
}

// Config holds HTTP server configuration.
type Config struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration

	// RateLimit is the sustained requests per second allowed per client IP.
	// Zero disables rate limiting.
	RateLimit float64
	Burst     int

	MaxBodyBytes    int64
	MaxBatchRecords int

	// AuthToken, when set, is required as a bearer token on /api/v1.
	AuthToken config.Secret
}

// NewConfig maps the process server section onto a Config.
func NewConfig(s config.ServerConfig) *Config {
	return &Config{
		Host:            s.Host,
		Port:            s.Port,
		ShutdownTimeout: s.ShutdownTimeout.Duration(),
		RateLimit:       s.RateLimit,
		Burst:           s.Burst,
		MaxBodyBytes:    s.MaxBodyBytes,
		MaxBatchRecords: s.MaxBatchRecords,
		AuthToken:       s.AuthToken,
	}
}

// DefaultConfig returns a loopback server without rate limiting or auth.
func DefaultConfig() *Config {
	return &Config{
		Host:            "127.0.0.1",
		Port:            8484,
		ShutdownTimeout: 10 * time.Second,
		MaxBodyBytes:    4 << 20,
		MaxBatchRecords: 500,
	}
}

// Addr returns host:port.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Defaults are applied to requests that leave an option unset.
type Defaults struct {
	Phases  []content.Phase
	Options orchestrator.LifecycleOptions
	Workers int
}

// Option configures a Server.
type Option func(*Server)

// WithGatherer serves the collectors of g on /metrics. Without it the
// default Prometheus registry is served.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithTelemetry reports telemetry health on /health and records HTTP
// metrics on its meter.
func WithTelemetry(t *telemetry.Telemetry) Option {
	return func(s *Server) {
		s.telemetry = t
	}
}

// WithDefaults sets the phases and lifecycle options used when a request
// does not name them.
func WithDefaults(d Defaults) Option {
	return func(s *Server) {
		s.defaults = d
	}
}

// NewServer creates a new HTTP server.
func NewServer(pipeline *orchestrator.Pipeline, logger *logging.Logger, cfg *Config, opts ...Option) (*Server, error) {
	if pipeline == nil {
		return nil, fmt.Errorf("pipeline cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}

	s := &Server{
		pipeline: pipeline,
		logger:   logger.Named("http"),
		config:   cfg,
		gatherer: prometheus.DefaultGatherer,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.metrics = NewHTTPMetrics(s.telemetry.Meter(httpInstrumentationName), s.logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = newRequestValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		RequestIDHandler: s.bindRequestID,
	}))
	e.Use(s.requestLogger)
	e.Use(s.metrics.MetricsMiddleware())
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dB", cfg.MaxBodyBytes)))

	s.echo = e
	s.registerRoutes()
	return s, nil
}

// bindRequestID stores the request ID in the request context. Client IDs
// the logger would reject are replaced.
func (s *Server) bindRequestID(c echo.Context, id string) {
	if !logging.ValidID(id) {
		id = newRequestID()
		c.Response().Header().Set(echo.HeaderXRequestID, id)
	}
	req := c.Request()
	c.SetRequest(req.WithContext(logging.WithRequestID(req.Context(), id)))
}

func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
			err = nil
		}

		s.logger.Info(c.Request().Context(), "http request",
			zap.String("method", c.Request().Method),
			zap.String("uri", c.Request().RequestURI),
			zap.Int("status", c.Response().Status),
			zap.Duration("duration", time.Since(start)),
		)
		return err
	}
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	var mw []echo.MiddlewareFunc
	if s.config.RateLimit > 0 {
		mw = append(mw, middleware.RateLimiter(middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(s.config.RateLimit),
				Burst:     s.config.Burst,
				ExpiresIn: 3 * time.Minute,
			},
		)))
	}
	if s.config.AuthToken.IsSet() {
		mw = append(mw, middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
			Validator:    s.checkToken,
			ErrorHandler: s.authError,
		}))
	}

	v1 := s.echo.Group("/api/v1", mw...)
	v1.POST("/validate", s.handleValidate)
	v1.POST("/validate/batch", s.handleValidateBatch)
}

func (s *Server) checkToken(key string, _ echo.Context) (bool, error) {
	return s.config.AuthToken.Matches(key), nil
}

func (s *Server) authError(error, echo.Context) error {
	return echo.NewHTTPError(http.StatusUnauthorized, "missing or invalid bearer token")
}

func newRequestID() string {
	return uuid.NewString()
}

// ServeHTTP lets the server be mounted in tests and other muxes.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start starts the HTTP server and blocks until it stops. A graceful
// shutdown returns nil.
func (s *Server) Start() error {
	addr := s.config.Addr()
	s.logger.Info(context.Background(), "starting http server", zap.String("addr", addr))
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server. Without a deadline on ctx the
// configured shutdown timeout applies.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "shutting down http server")
	if _, ok := ctx.Deadline(); !ok && s.config.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()
	}
	return s.echo.Shutdown(ctx)
}

// requestValidator adapts validator/v10 to echo.Validator.
type requestValidator struct {
	validate *validator.Validate
}

// newRequestValidator reports fields by their JSON names.
func newRequestValidator() *requestValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &requestValidator{validate: v}
}

func (v *requestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}
