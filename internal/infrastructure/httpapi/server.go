// Package httpapi exposes simulations and forecasts over HTTP with gin.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ersonp/resilience-core/internal/application/handlers"
	"github.com/ersonp/resilience-core/internal/infrastructure/metrics"
)

// shutdownTimeout bounds graceful shutdown once the context is cancelled.
const shutdownTimeout = 10 * time.Second

// Handlers groups the application handlers the API serves.
type Handlers struct {
	Dependencies *handlers.DependencyHandler
	Scenarios    *handlers.ScenarioHandler
	Forecasts    *handlers.ForecastHandler
}

// Server serves the resil HTTP API.
type Server struct {
	handlers Handlers
	metrics  *metrics.Registry
	logger   *slog.Logger
	version  string
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics records request metrics and serves /metrics from registry.
func WithMetrics(registry *metrics.Registry) Option {
	return func(s *Server) {
		s.metrics = registry
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithVersion sets the version reported by /v1/health.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.version = version
	}
}

// NewServer creates a new Server.
func NewServer(h Handlers, opts ...Option) *Server {
	s := &Server{
		handlers: h,
		logger:   slog.Default(),
		version:  "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.observe())

	v1 := router.Group("/v1")
	v1.GET("/health", s.handleHealth)
	v1.GET("/dependencies", s.handleListDependencies)
	v1.POST("/simulate", s.handleSimulate)
	v1.GET("/scenarios", s.handleListScenarios)
	v1.GET("/scenarios/:id", s.handleGetScenario)
	v1.POST("/scenarios/:id/run", s.handleRunScenario)
	v1.GET("/forecast", s.handleForecastAll)
	v1.GET("/forecast/:metric", s.handleForecast)

	if s.metrics != nil {
		router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	return router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http api listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving http: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http: %w", err)
	}
	s.logger.Info("http api stopped")
	return nil
}

// observe logs each request and records it in the metrics registry.
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()

		if s.metrics != nil {
			s.metrics.RecordHTTPRequest(c.Request.Method, route, strconv.Itoa(status), duration)
		}
		s.logger.Debug("http request",
			slog.String("method", c.Request.Method),
			slog.String("route", route),
			slog.Int("status", status),
			slog.Duration("duration", duration),
		)
	}
}
