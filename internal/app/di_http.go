package app

import (
	"fmt"

	"github.com/gin-gonic/gin"

	eventHTTP "github.com/allisson/tickets/internal/event/http"
	"github.com/allisson/tickets/internal/http"
	"github.com/allisson/tickets/internal/metrics"
	syncHTTP "github.com/allisson/tickets/internal/sync/http"
	ticketHTTP "github.com/allisson/tickets/internal/ticket/http"
)

// initHTTPServer creates the HTTP server with all its dependencies.
func (c *Container) initHTTPServer() (*http.Server, error) {
	logger := c.Logger()

	ticketUseCase, err := c.TicketUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket use case for http server: %w", err)
	}

	eventUseCase, err := c.EventUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get event use case for http server: %w", err)
	}

	syncUseCase, err := c.SyncUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get sync use case for http server: %w", err)
	}

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}

	var metricsMiddleware gin.HandlerFunc
	metricsProvider, err := c.MetricsProvider()
	if err != nil {
		return nil, err
	}
	if metricsProvider != nil {
		metricsMiddleware = metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), c.config.MetricsNamespace)
	}

	server := http.NewServer(
		c.config.ServerHost,
		c.config.ServerPort,
		logger,
		http.RouterConfig{
			TicketHandler:     ticketHTTP.NewTicketHandler(ticketUseCase, logger),
			EventHandler:      eventHTTP.NewEventHandler(eventUseCase, logger),
			SyncHandler:       syncHTTP.NewSyncHandler(syncUseCase, logger),
			MetricsMiddleware: metricsMiddleware,
			CORSEnabled:       c.config.CORSEnabled,
			CORSAllowOrigins:  c.config.CORSAllowOrigins,
			DB:                db,
		},
	)

	return server, nil
}
