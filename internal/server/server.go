// Package server exposes the orchestrator over HTTP.
//
//	POST /api/agent      run one request (runner.Request -> runner.Outcome)
//	GET  /api/preflight  tool transport connectivity probe
//	GET  /healthz        liveness
//	GET  /metrics        Prometheus metrics (when a gatherer is configured)
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/actionmesh/logging"
	"github.com/hupe1980/actionmesh/runner"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Agent runs orchestration requests. *actionmesh.ActionMesh and
// *runner.Runner satisfy it.
type Agent interface {
	Run(ctx context.Context, req runner.Request) *runner.Outcome
}

// Options configure a Server.
type Options struct {
	Logger *logging.ScopedLogger
	// Gatherer backs /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer
	// Probe backs /api/preflight; nil reports the probe as unavailable.
	Probe        func(ctx context.Context) bool
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server is the HTTP API.
type Server struct {
	echo   *echo.Echo
	agent  Agent
	logger *logging.ScopedLogger
	opts   Options
}

// New builds the server and registers every route.
func New(agent Agent, optFns ...func(o *Options)) *Server {
	opts := Options{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewLogger(&logging.LoggerConfig{Level: logging.LogLevelError, Output: io.Discard})
	}
	logger = logger.WithComponent("server")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = opts.ReadTimeout
	e.Server.WriteTimeout = opts.WriteTimeout

	s := &Server{echo: e, agent: agent, logger: logger, opts: opts}

	e.HTTPErrorHandler = s.handleError
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderXRequestID},
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	if opts.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	api := e.Group("/api")
	api.POST("/agent", s.handleAgent)
	api.GET("/preflight", s.handlePreflight)

	return s
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler { return s.echo }

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.logger.Info("server.start", "address", addr)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleAgent(c echo.Context) error {
	reqID := c.Response().Header().Get(echo.HeaderXRequestID)
	log := s.logger.WithRequest(reqID)
	done := log.StartTimer("api.agent")
	defer done()

	var req runner.Request
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "prompt is required")
	}

	log.Info("api.agent.request",
		"page_id", req.PageID(),
		"history", len(req.ConversationHistory),
	)

	out := s.agent.Run(c.Request().Context(), req)
	if !out.Success {
		log.Warn("api.agent.failed", "error", out.Error)
		return c.JSON(http.StatusInternalServerError, out)
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handlePreflight(c echo.Context) error {
	if s.opts.Probe == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]any{"ok": false, "error": "probe not configured"})
	}
	ok := s.opts.Probe(c.Request().Context())
	status := http.StatusOK
	if !ok {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, map[string]any{"ok": ok})
}

// handleError renders every error as {"success":false,"error":...}.
func (s *Server) handleError(err error, c echo.Context) {
	code := http.StatusInternalServerError
	msg := "internal server error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if he.Message != nil {
			msg = fmt.Sprint(he.Message)
		}
	}
	req := c.Request()
	s.logger.WithRequest(c.Response().Header().Get(echo.HeaderXRequestID)).
		Warn("api.error", "status", code, "method", req.Method, "path", req.URL.Path, "error", err.Error())

	if c.Response().Committed {
		return
	}
	if req.Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, map[string]any{"success": false, "error": msg})
}
