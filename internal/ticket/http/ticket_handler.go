// Package http provides HTTP handlers for ticket operations.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/tickets/internal/httputil"
	"github.com/allisson/tickets/internal/ticket/http/dto"
	"github.com/allisson/tickets/internal/ticket/usecase"
)

// TicketHandler handles ticket-related HTTP requests
type TicketHandler struct {
	ticketUseCase usecase.UseCase
	logger        *slog.Logger
}

// NewTicketHandler creates a new TicketHandler
func NewTicketHandler(ticketUseCase usecase.UseCase, logger *slog.Logger) *TicketHandler {
	return &TicketHandler{
		ticketUseCase: ticketUseCase,
		logger:        logger,
	}
}

// RegisterHandler registers a seat for an event.
// POST /api/tickets - Returns 201 Created with the ticket. A replayed
// idempotent request returns the original ticket with the same status code.
func (h *TicketHandler) RegisterHandler(c *gin.Context) {
	var req dto.RegisterTicketRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	input := dto.ToRegisterTicketInput(req)

	output, err := h.ticketUseCase.Register(c.Request.Context(), input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	ticket, err := h.ticketUseCase.Get(c.Request.Context(), output.TicketID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapTicketToResponse(ticket))
}

// GetHandler retrieves a ticket by ID.
// GET /api/tickets/:id - Returns 200 OK with the ticket.
func (h *TicketHandler) GetHandler(c *gin.Context) {
	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid ticket ID format: must be a valid UUID"),
			h.logger)
		return
	}

	ticket, err := h.ticketUseCase.Get(c.Request.Context(), ticketID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapTicketToResponse(ticket))
}

// CancelHandler cancels a ticket, freeing its seat.
// DELETE /api/tickets/:id - Returns 204 No Content.
func (h *TicketHandler) CancelHandler(c *gin.Context) {
	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid ticket ID format: must be a valid UUID"),
			h.logger)
		return
	}

	if err := h.ticketUseCase.Cancel(c.Request.Context(), ticketID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}
