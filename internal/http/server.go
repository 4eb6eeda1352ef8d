package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	eventHTTP "github.com/allisson/tickets/internal/event/http"
	syncHTTP "github.com/allisson/tickets/internal/sync/http"
	ticketHTTP "github.com/allisson/tickets/internal/ticket/http"
)

// RouterConfig carries the handlers and optional middleware for the router.
type RouterConfig struct {
	TicketHandler     *ticketHTTP.TicketHandler
	EventHandler      *eventHTTP.EventHandler
	SyncHandler       *syncHTTP.SyncHandler
	MetricsMiddleware gin.HandlerFunc
	CORSEnabled       bool
	CORSAllowOrigins  string
	DB                *sql.DB
}

// Server represents the HTTP server
type Server struct {
	server *http.Server
	router *gin.Engine
	logger *slog.Logger
}

// NewServer creates a new HTTP server with the full route table.
func NewServer(host string, port int, logger *slog.Logger, cfg RouterConfig) *Server {
	router := gin.New()
	router.Use(requestid.New())
	router.Use(CustomLoggerMiddleware(logger))
	router.Use(gin.Recovery())

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}
	if cfg.MetricsMiddleware != nil {
		router.Use(cfg.MetricsMiddleware)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/ready", func(c *gin.Context) {
		if cfg.DB != nil {
			if err := cfg.DB.PingContext(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	api := router.Group("/api")
	{
		api.POST("/tickets", cfg.TicketHandler.RegisterHandler)
		api.GET("/tickets/:id", cfg.TicketHandler.GetHandler)
		api.DELETE("/tickets/:id", cfg.TicketHandler.CancelHandler)

		api.GET("/events", cfg.EventHandler.ListHandler)
		api.GET("/events/:id", cfg.EventHandler.GetHandler)
		api.GET("/events/:id/seats", cfg.EventHandler.SeatsHandler)

		api.POST("/sync/trigger", cfg.SyncHandler.TriggerHandler)
	}

	return &Server{
		router: router,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
