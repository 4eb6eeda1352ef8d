// Package repository provides data persistence implementations for ticket entities.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/allisson/tickets/internal/database"
	apperrors "github.com/allisson/tickets/internal/errors"
	"github.com/allisson/tickets/internal/ticket/domain"
)

// seatConstraint and keyConstraint are the unique constraint names created by
// the migrations. They are used to classify unique violations so the use case
// can map them to the right domain error.
const (
	pgSeatConstraint = "tickets_event_seat_active_key"
	pgKeyConstraint  = "idempotency_records_pkey"
)

// PostgreSQLTicketRepository handles ticket persistence for PostgreSQL
type PostgreSQLTicketRepository struct {
	db *sql.DB
}

// NewPostgreSQLTicketRepository creates a new PostgreSQLTicketRepository
func NewPostgreSQLTicketRepository(db *sql.DB) *PostgreSQLTicketRepository {
	return &PostgreSQLTicketRepository{
		db: db,
	}
}

// Create inserts a new ticket. A unique violation on the live-seat index is
// returned as domain.ErrSeatUnavailable; the storage constraint is the
// authoritative guard against concurrent registrations for the same seat.
func (r *PostgreSQLTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO tickets
			  (id, event_id, provider_ticket_id, first_name, last_name, email, seat, status, idempotency_key, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())`

	_, err := querier.ExecContext(ctx, query,
		ticket.ID, ticket.EventID, ticket.ProviderTicketID, ticket.FirstName, ticket.LastName,
		ticket.Email, ticket.Seat, ticket.Status, ticket.IdempotencyKey)
	if err != nil {
		if isPostgreSQLUniqueViolation(err, pgSeatConstraint) {
			return domain.ErrSeatUnavailable
		}
		return apperrors.Wrap(err, "failed to create ticket")
	}
	return nil
}

// GetByID retrieves a ticket by ID
func (r *PostgreSQLTicketRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	var ticket domain.Ticket
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, event_id, provider_ticket_id, first_name, last_name, email, seat, status, idempotency_key, created_at
			  FROM tickets WHERE id = $1`

	err := querier.QueryRowContext(ctx, query, id).Scan(
		&ticket.ID, &ticket.EventID, &ticket.ProviderTicketID, &ticket.FirstName, &ticket.LastName,
		&ticket.Email, &ticket.Seat, &ticket.Status, &ticket.IdempotencyKey, &ticket.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get ticket by id")
	}

	return &ticket, nil
}

// SeatTaken reports whether a live (non-cancelled) ticket already holds the
// seat for the event. This is an advisory pre-check; the unique index remains
// the authoritative guard at commit time.
func (r *PostgreSQLTicketRepository) SeatTaken(ctx context.Context, eventID uuid.UUID, seat string) (bool, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT EXISTS (SELECT 1 FROM tickets WHERE event_id = $1 AND seat = $2 AND status = $3)`

	var taken bool
	err := querier.QueryRowContext(ctx, query, eventID, seat, domain.TicketStatusActive).Scan(&taken)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to check seat availability")
	}
	return taken, nil
}

// Cancel flips the ticket status to cancelled, freeing the seat for the
// partial unique index. Cancelling an already cancelled ticket is a no-op.
func (r *PostgreSQLTicketRepository) Cancel(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE tickets SET status = $1 WHERE id = $2`

	result, err := querier.ExecContext(ctx, query, domain.TicketStatusCancelled, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to cancel ticket")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get affected rows")
	}
	if rows == 0 {
		return domain.ErrTicketNotFound
	}
	return nil
}

// isPostgreSQLUniqueViolation checks if the error is a PostgreSQL unique
// constraint violation on the named constraint.
func isPostgreSQLUniqueViolation(err error, constraint string) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// PostgreSQL: `duplicate key value violates unique constraint "<name>"`
	return strings.Contains(errMsg, "duplicate key") && strings.Contains(errMsg, constraint)
}
