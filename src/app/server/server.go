// Package server provides HTTP server initialization and lifecycle management.
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"expensetracker/src/app/http/handler"
	"expensetracker/src/app/middleware"
	"expensetracker/src/core/ports"
	"expensetracker/src/core/usecase"
	"expensetracker/src/infra/config"
	"expensetracker/src/infra/logger"
	"expensetracker/web"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	cfg    *config.Config
	log    *slog.Logger
	router *gin.Engine
	http   *http.Server

	// Handlers
	healthHandler  *handler.HealthHandler
	expenseHandler *handler.ExpenseHandler
}

// New creates a new Server with all dependencies wired up. The record store
// is always reported under "store" in the detailed health check, alongside
// any extra components.
func New(cfg *config.Config, log *slog.Logger, repo ports.ExpenseRepository, extra map[string]ports.ExternalService) *Server {
	// Set Gin mode based on log level
	if cfg.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router without default middleware
	router := gin.New()
	// Match on the escaped path so a category may contain an encoded "/".
	router.UseRawPath = true
	router.UnescapePathValues = true

	components := map[string]ports.ExternalService{"store": repo}
	for name, c := range extra {
		components[name] = c
	}

	// Create services
	healthService := usecase.NewHealthService(logger.WithComponent(log, "health"), components)
	expenseService := usecase.NewExpenseService(repo, logger.WithComponent(log, "expenses"))

	s := &Server{
		cfg:            cfg,
		log:            log,
		router:         router,
		healthHandler:  handler.NewHealthHandler(healthService),
		expenseHandler: handler.NewExpenseHandler(expenseService),
	}

	s.setupMiddleware()
	s.setupRoutes()
	s.setupHTTPServer()

	return s
}

// setupMiddleware configures global middleware.
func (s *Server) setupMiddleware() {
	// Order matters: Recovery should be first to catch all panics
	s.router.Use(middleware.Recovery(s.log))
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.CORS(s.cfg.Server.CORSOrigin))
	s.router.Use(middleware.Logging(logger.WithComponent(s.log, "http")))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthHandler.Health)
	s.router.GET("/health/detailed", s.healthHandler.DetailedHealth)

	expenses := s.router.Group("/api/expenses")
	{
		expenses.POST("", s.expenseHandler.Create)
		expenses.GET("", s.expenseHandler.List)
		expenses.GET("/total", s.expenseHandler.Total)
		expenses.GET("/category/:category", s.expenseHandler.ByCategory)
		expenses.GET("/date", s.expenseHandler.ByDateRange)
		expenses.GET("/range", s.expenseHandler.ByDateRange)
		expenses.GET("/:id", s.expenseHandler.Get)
		expenses.PUT("/:id", s.expenseHandler.Update)
		expenses.DELETE("/:id", s.expenseHandler.Delete)
	}

	if s.cfg.Server.WebEnabled {
		s.setupWeb()
	}

	// Handle 404
	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": gin.H{
				"code":       "NOT_FOUND",
				"message":    "The requested resource was not found",
				"request_id": middleware.GetRequestID(c),
			},
		})
	})
}

// setupWeb serves the embedded browser page at / and its assets under /static.
func (s *Server) setupWeb() {
	static, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		s.log.Error("embedded web assets unavailable", "error", err)
		return
	}
	s.router.StaticFS("/static", http.FS(static))

	// c.FileFromFS would redirect index.html requests back to the directory.
	s.router.GET("/", func(c *gin.Context) {
		page, err := fs.ReadFile(static, "index.html")
		if err != nil {
			c.Error(err)
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", page)
	})
}

// setupHTTPServer configures the underlying HTTP server.
func (s *Server) setupHTTPServer() {
	s.http = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}
}

// Run starts the HTTP server and blocks until shutdown.
// It shuts down gracefully on SIGINT/SIGTERM or when ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	// Channel to receive shutdown signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	// Channel to receive server errors
	errCh := make(chan error, 1)

	// Start server in goroutine
	go func() {
		s.log.Info("starting HTTP server",
			"addr", s.cfg.Server.Addr(),
		)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	// Wait for shutdown signal or error
	select {
	case sig := <-quit:
		s.log.Info("received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
		s.log.Info("context cancelled, stopping server")
	case err := <-errCh:
		return err
	}

	// Graceful shutdown
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	s.log.Info("shutting down server", "timeout", s.cfg.Server.ShutdownTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	s.log.Info("server stopped gracefully")
	return nil
}

// Router returns the Gin router for testing.
func (s *Server) Router() *gin.Engine {
	return s.router
}
