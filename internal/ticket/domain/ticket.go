// Package domain defines the core ticket domain entities and types.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/allisson/tickets/internal/errors"
)

// TicketStatus represents the lifecycle status of a ticket
type TicketStatus string

const (
	TicketStatusActive    TicketStatus = "active"
	TicketStatusCancelled TicketStatus = "cancelled"
)

// Ticket represents a seat registration for an event
type Ticket struct {
	ID               uuid.UUID
	EventID          uuid.UUID
	ProviderTicketID uuid.UUID
	FirstName        string
	LastName         string
	Email            string
	Seat             string
	Status           TicketStatus
	IdempotencyKey   *string
	CreatedAt        time.Time
}

// Domain-specific errors for ticket operations.
var (
	// ErrTicketNotFound indicates the requested ticket does not exist.
	ErrTicketNotFound = errors.Wrap(errors.ErrNotFound, "ticket not found")

	// ErrSeatUnavailable indicates the seat is already held by a live ticket.
	ErrSeatUnavailable = errors.Wrap(errors.ErrConflict, "seat is not available")

	// ErrIdempotencyConflict indicates the idempotency key was reused with a different payload.
	ErrIdempotencyConflict = errors.Wrap(
		errors.ErrConflict,
		"idempotency key already used with different request data",
	)

	// ErrIdempotencyKeyTaken signals the storage-level unique constraint on the
	// idempotency key fired during insert. Callers re-read the record to decide
	// between a safe replay and ErrIdempotencyConflict.
	ErrIdempotencyKeyTaken = errors.New("idempotency key already exists")
)
