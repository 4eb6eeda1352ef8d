// Package app provides the dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/allisson/tickets/internal/config"
	"github.com/allisson/tickets/internal/database"
	eventUsecase "github.com/allisson/tickets/internal/event/usecase"
	"github.com/allisson/tickets/internal/http"
	"github.com/allisson/tickets/internal/metrics"
	"github.com/allisson/tickets/internal/notification"
	outboxUsecase "github.com/allisson/tickets/internal/outbox/usecase"
	"github.com/allisson/tickets/internal/provider"
	syncUsecase "github.com/allisson/tickets/internal/sync/usecase"
	ticketUsecase "github.com/allisson/tickets/internal/ticket/usecase"
)

// outboxRepository combines the write side used during registration with the
// poll side used by the worker; the concrete repositories implement both.
type outboxRepository interface {
	ticketUsecase.OutboxRepository
	outboxUsecase.OutboxRepository
}

// eventRepository combines the catalog read side with the sync write side.
type eventRepository interface {
	eventUsecase.EventRepository
	syncUsecase.EventRepository
}

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	db              *sql.DB
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	// Managers
	txManager database.TxManager

	// External clients
	providerClient     *provider.Client
	notificationClient *notification.Client

	// Repositories
	ticketRepo      ticketUsecase.TicketRepository
	idempotencyRepo ticketUsecase.IdempotencyRepository
	outboxRepo      outboxRepository
	eventRepo       eventRepository
	syncRepo        syncUsecase.SyncRepository

	// Shared state
	seatsCache *eventUsecase.SeatsCache

	// Use Cases
	ticketUseCase ticketUsecase.UseCase
	eventUseCase  eventUsecase.UseCase
	outboxUseCase *outboxUsecase.OutboxUseCase
	syncUseCase   syncUsecase.UseCase

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                  sync.Mutex
	loggerInit          sync.Once
	dbInit              sync.Once
	metricsProviderInit sync.Once
	businessMetricsInit sync.Once
	txManagerInit       sync.Once
	providerClientInit  sync.Once
	notifierInit        sync.Once
	ticketRepoInit      sync.Once
	idempotencyRepoInit sync.Once
	outboxRepoInit      sync.Once
	eventRepoInit       sync.Once
	syncRepoInit        sync.Once
	seatsCacheInit      sync.Once
	ticketUseCaseInit   sync.Once
	eventUseCaseInit    sync.Once
	outboxUseCaseInit   sync.Once
	syncUseCaseInit     sync.Once
	httpServerInit      sync.Once
	metricsServerInit   sync.Once
	initErrors          map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection.
// It creates and configures the database connection on first access.
func (c *Container) DB() (*sql.DB, error) {
	c.dbInit.Do(func() {
		db, err := database.Connect(context.Background(), c.config)
		if err != nil {
			c.initErrors["db"] = fmt.Errorf("failed to connect to database: %w", err)
			return
		}
		c.db = db
	})
	if err, exists := c.initErrors["db"]; exists {
		return nil, err
	}
	return c.db, nil
}

// TxManager returns the transaction manager.
func (c *Container) TxManager() (database.TxManager, error) {
	c.txManagerInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["txManager"] = fmt.Errorf("failed to get database for tx manager: %w", err)
			return
		}
		c.txManager = database.NewTxManager(db)
	})
	if err, exists := c.initErrors["txManager"]; exists {
		return nil, err
	}
	return c.txManager, nil
}

// MetricsProvider returns the Prometheus metrics provider, or nil when
// metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	c.metricsProviderInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}
		metricsProvider, err := metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metricsProvider"] = fmt.Errorf("failed to create metrics provider: %w", err)
			return
		}
		c.metricsProvider = metricsProvider
	})
	if err, exists := c.initErrors["metricsProvider"]; exists {
		return nil, err
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder. A no-op
// implementation is returned when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	c.businessMetricsInit.Do(func() {
		metricsProvider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["businessMetrics"] = err
			return
		}
		if metricsProvider == nil {
			c.businessMetrics = metrics.NewNoOpBusinessMetrics()
			return
		}
		businessMetrics, err := metrics.NewBusinessMetrics(metricsProvider.MeterProvider(), c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["businessMetrics"] = fmt.Errorf("failed to create business metrics: %w", err)
			return
		}
		c.businessMetrics = businessMetrics
	})
	if err, exists := c.initErrors["businessMetrics"]; exists {
		return nil, err
	}
	return c.businessMetrics, nil
}

// ProviderClient returns the Events Provider HTTP client.
func (c *Container) ProviderClient() *provider.Client {
	c.providerClientInit.Do(func() {
		c.providerClient = provider.NewClient(
			c.config.EventsProviderURL,
			c.config.EventsProviderAPIKey,
			c.config.EventsProviderTimeout,
			c.config.EventsProviderRateLimit,
		)
	})
	return c.providerClient
}

// NotificationClient returns the Capashino notification client.
func (c *Container) NotificationClient() *notification.Client {
	c.notifierInit.Do(func() {
		c.notificationClient = notification.NewClient(
			c.config.CapashinoURL,
			c.config.CapashinoAPIKey,
			c.config.CapashinoTimeout,
		)
	})
	return c.notificationClient
}

// SeatsCache returns the shared seat availability cache.
func (c *Container) SeatsCache() *eventUsecase.SeatsCache {
	c.seatsCacheInit.Do(func() {
		c.seatsCache = eventUsecase.NewSeatsCache(c.config.SeatsCacheTTL)
	})
	return c.seatsCache
}

// HTTPServer returns the HTTP server instance.
func (c *Container) HTTPServer() (*http.Server, error) {
	c.httpServerInit.Do(func() {
		server, err := c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
			return
		}
		c.httpServer = server
	})
	if err, exists := c.initErrors["httpServer"]; exists {
		return nil, err
	}
	return c.httpServer, nil
}

// MetricsServer returns the metrics HTTP server, or nil when metrics are
// disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	c.metricsServerInit.Do(func() {
		metricsProvider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["metricsServer"] = err
			return
		}
		if metricsProvider == nil {
			return
		}
		c.metricsServer = http.NewMetricsServer(
			c.config.ServerHost,
			c.config.MetricsPort,
			c.Logger(),
			metricsProvider,
		)
	})
	if err, exists := c.initErrors["metricsServer"]; exists {
		return nil, err
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}
