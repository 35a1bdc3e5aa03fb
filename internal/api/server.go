package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/cancer-registry-edits/internal/domain"
	"github.com/cancer-registry-edits/internal/health"
	"github.com/cancer-registry-edits/internal/middleware"
	"github.com/cancer-registry-edits/internal/progress"
	"github.com/cancer-registry-edits/internal/service"
	"github.com/cancer-registry-edits/pkg/codes"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// Dependencies are the collaborators the HTTP server exposes
type Dependencies struct {
	Registry *codes.Registry
	Pipeline *service.Pipeline
	Hub      *progress.Hub
	Gatherer prometheus.Gatherer
	// Health defaults to a checker holding only the dictionary check
	Health   *health.Checker
}

// Server represents the HTTP server
type Server struct {
	configManager domain.ConfigManager
	deps          Dependencies
	jobs          *jobStore
	logger        *logrus.Logger
	router        *gin.Engine
	server        *http.Server

	// background validations run on jobCtx and are tracked by running
	jobCtx    context.Context
	cancelJob context.CancelFunc
	running   sync.WaitGroup
}

// NewServer creates a new HTTP server instance
func NewServer(configManager domain.ConfigManager, deps Dependencies, logger *logrus.Logger) *Server {
	cfg := configManager.GetConfig()

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.AuditLogger(logger))

	if deps.Health == nil {
		deps.Health = health.NewChecker(Version, cfg.Server.RequestTimeout, logger)
		deps.Health.RegisterCheck(&health.DictionaryCheck{Registry: deps.Registry})
	}

	jobCtx, cancel := context.WithCancel(context.Background())
	s := &Server{
		configManager: configManager,
		deps:          deps,
		logger:        logger,
		router:        router,
		jobCtx:        jobCtx,
		cancelJob:     cancel,
	}
	s.jobs = newJobStore(cfg.Jobs.MaxJobs, cfg.Jobs.TTL, func(id string) {
		if deps.Hub != nil {
			deps.Hub.Forget(id)
		}
	})

	s.setupRoutes()
	return s
}

// Handler returns the HTTP handler serving every route
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	cfg := s.configManager.GetServerConfig()
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			s.cancelJob()
			return fmt.Errorf("failed to start server: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown stops accepting requests and waits for running validations.
// Validations still running when ctx expires are cancelled.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.server != nil {
		err = s.server.Shutdown(ctx)
	}

	done := make(chan struct{})
	go func() {
		s.running.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("Cancelling validations still running at shutdown")
		s.cancelJob()
		<-done
	}
	s.cancelJob()
	return err
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	cfg := s.configManager.GetConfig()

	s.router.GET("/health", s.handleHealth)

	if cfg.Metrics.Enabled && s.deps.Gatherer != nil {
		s.router.GET(cfg.Metrics.Path, gin.WrapH(promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{})))
	}

	v1 := s.router.Group("/api/v1")
	v1.Use(middleware.RateLimit(cfg.Server.RateLimit, cfg.Server.RateBurst))
	v1.Use(middleware.MaxBodyBytes(cfg.Server.MaxBodyBytes))
	{
		v1.POST("/autocorrect", middleware.RequestTimeout(cfg.Server.RequestTimeout), s.handleAutoCorrect)
		v1.POST("/validations", s.handleStartValidation)
		v1.GET("/validations/:id", s.handleGetValidation)
		v1.GET("/codes/:table", s.handleGetCodes)
	}

	s.router.GET("/ws/validation/:id", s.handleProgressSocket)
}

// handleHealth reports component health; only an unhealthy component fails the request
func (s *Server) handleHealth(c *gin.Context) {
	status := s.deps.Health.Run(c.Request.Context())

	code := http.StatusOK
	if status.Overall == health.StateUnhealthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":      status.Overall,
		"timestamp":   status.Timestamp,
		"version":     status.Version,
		"uptime":      status.Uptime,
		"environment": s.configManager.GetConfig().Environment,
		"components":  status.Components,
		"jobs":        s.jobs.len(),
	})
}
