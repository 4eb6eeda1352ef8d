// Package http provides HTTP handlers for the event catalog.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/tickets/internal/event/http/dto"
	"github.com/allisson/tickets/internal/event/usecase"
	"github.com/allisson/tickets/internal/httputil"
)

// EventHandler handles event catalog HTTP requests
type EventHandler struct {
	eventUseCase usecase.UseCase
	logger       *slog.Logger
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(eventUseCase usecase.UseCase, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		eventUseCase: eventUseCase,
		logger:       logger,
	}
}

// ListHandler lists events with pagination.
// GET /api/events?date_from=2026-01-01&page=1&page_size=20 - Returns 200 OK.
func (h *EventHandler) ListHandler(c *gin.Context) {
	page, pageSize, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	input := usecase.ListEventsInput{Page: page, PageSize: pageSize}

	if raw := c.Query("date_from"); raw != "" {
		dateFrom, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httputil.HandleValidationErrorGin(c,
				fmt.Errorf("invalid date_from format: must be YYYY-MM-DD"),
				h.logger)
			return
		}
		input.DateFrom = &dateFrom
	}

	events, count, err := h.eventUseCase.List(c.Request.Context(), input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapEventsToListResponse(events, count))
}

// GetHandler retrieves an event by ID.
// GET /api/events/:id - Returns 200 OK with the event.
func (h *EventHandler) GetHandler(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid event ID format: must be a valid UUID"),
			h.logger)
		return
	}

	event, err := h.eventUseCase.Get(c.Request.Context(), eventID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapEventToResponse(event))
}

// SeatsHandler lists the available seats for an event.
// GET /api/events/:id/seats - Returns 200 OK with the seat labels.
func (h *EventHandler) SeatsHandler(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid event ID format: must be a valid UUID"),
			h.logger)
		return
	}

	seats, err := h.eventUseCase.Seats(c.Request.Context(), eventID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.SeatsResponse{Seats: seats})
}
