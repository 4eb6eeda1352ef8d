package dto

import (
	"github.com/google/uuid"

	"github.com/allisson/tickets/internal/ticket/domain"
	"github.com/allisson/tickets/internal/ticket/usecase"
)

// ToRegisterTicketInput converts a validated request into the use case input.
func ToRegisterTicketInput(req RegisterTicketRequest) usecase.RegisterTicketInput {
	input := usecase.RegisterTicketInput{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Seat:           req.Seat,
		IdempotencyKey: req.IdempotencyKey,
	}
	// The request was validated before mapping, the event id parses.
	input.EventID = uuid.MustParse(req.EventID)
	return input
}

// MapTicketToResponse converts a domain ticket into its API representation.
func MapTicketToResponse(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:        ticket.ID.String(),
		EventID:   ticket.EventID.String(),
		FirstName: ticket.FirstName,
		LastName:  ticket.LastName,
		Email:     ticket.Email,
		Seat:      ticket.Seat,
		Status:    string(ticket.Status),
		CreatedAt: ticket.CreatedAt,
	}
}
