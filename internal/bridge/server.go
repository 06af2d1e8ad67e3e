// Package bridge serves a Backend over HTTP so a client on another machine
// can drive this host's audio devices.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/alkime/mixgraph/internal/backend"
	"github.com/alkime/mixgraph/internal/config"
	"github.com/alkime/mixgraph/pkg/uictl"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

// Server exposes a backend.Backend over HTTP/JSON.
type Server struct {
	config  *config.Config
	logger  *slog.Logger
	router  *gin.Engine
	backend backend.Backend
}

// New creates a bridge for b. token, when non-empty, is required as a
// bearer token on every /v1 route.
func New(cfg *config.Config, b backend.Backend, token string, logger *slog.Logger) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	s := &Server{
		config:  cfg,
		logger:  logger,
		router:  router,
		backend: b,
	}

	setupSecurityMiddleware(router, cfg, logger)
	s.setupRoutes(token)

	return s
}

// Router returns the HTTP handler, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Run serves on BRIDGE_ADDR until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.BridgeAddr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("Bridge listening", "addr", s.config.BridgeAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("bridge stopped: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down bridge: %w", err)
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) setupRoutes(token string) {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/v1", bearerAuth(token))
	{
		v1.GET("/devices", s.handleDevices)
		v1.GET("/sessions", s.handleSessions)
		v1.GET("/devices/volume", s.handleGetDeviceVolume)
		v1.PUT("/devices/volume", s.handleSetDeviceVolume)
		v1.PUT("/sessions/:pid/volume", s.handleSetAppVolume)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "mixgraph-bridge",
	})
}

func (s *Server) handleDevices(c *gin.Context) {
	devices, err := s.backend.EnumerateDevices(c.Request.Context())
	if err != nil {
		s.fail(c, err)

		return
	}

	if devices == nil {
		devices = []backend.AudioDevice{}
	}

	c.JSON(http.StatusOK, devices)
}

func (s *Server) handleSessions(c *gin.Context) {
	sessions, err := s.backend.EnumerateSessions(c.Request.Context())
	if err != nil {
		s.fail(c, err)

		return
	}

	if sessions == nil {
		sessions = []backend.AppSession{}
	}

	c.JSON(http.StatusOK, sessions)
}

// handleGetDeviceVolume answers with a bare JSON number. A non-finite value
// from the backend goes out as null, which clients treat as malformed.
func (s *Server) handleGetDeviceVolume(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		badRequest(c, "name is required")

		return
	}

	isInput, err := strconv.ParseBool(c.DefaultQuery("input", "false"))
	if err != nil {
		badRequest(c, "input must be true or false")

		return
	}

	v, err := s.backend.GetDeviceVolume(c.Request.Context(), name, isInput)
	if err != nil {
		s.fail(c, err)

		return
	}

	if !uictl.Finite(v) {
		c.JSON(http.StatusOK, nil)

		return
	}

	c.JSON(http.StatusOK, v)
}

func (s *Server) handleSetDeviceVolume(c *gin.Context) {
	var req backend.DeviceVolumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body: "+err.Error())

		return
	}

	if req.Name == "" {
		badRequest(c, "name is required")

		return
	}

	if !validVolume(req.Volume) {
		badRequest(c, "volume must be within 0-100")

		return
	}

	if err := s.backend.SetDeviceVolume(c.Request.Context(), req.Name, req.Volume, req.IsInput); err != nil {
		s.fail(c, err)

		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) handleSetAppVolume(c *gin.Context) {
	pid, err := strconv.Atoi(c.Param("pid"))
	if err != nil {
		badRequest(c, "pid must be an integer")

		return
	}

	var req backend.AppVolumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body: "+err.Error())

		return
	}

	if !validVolume(req.Volume) {
		badRequest(c, "volume must be within 0-100")

		return
	}

	if err := s.backend.SetAppVolume(c.Request.Context(), pid, req.Volume); err != nil {
		s.fail(c, err)

		return
	}

	c.Status(http.StatusNoContent)
}

// fail maps a backend error to a status code.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusBadGateway
	if errors.Is(err, backend.ErrUnknownDevice) || errors.Is(err, backend.ErrUnknownSession) {
		status = http.StatusNotFound
	}

	s.logger.Warn("backend call failed", "path", c.FullPath(), "status", status, "error", err)
	c.AbortWithStatusJSON(status, backend.ErrorResponse{Error: err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, backend.ErrorResponse{Error: msg})
}

func validVolume(v float64) bool {
	return uictl.Finite(v) && v >= 0 && v <= 100
}
