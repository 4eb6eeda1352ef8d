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

const (
	mysqlSeatConstraint = "uq_tickets_event_seat_active"
	mysqlKeyConstraint  = "idempotency_records.PRIMARY"
)

// MySQLTicketRepository handles ticket persistence for MySQL.
//
// MySQL has no partial unique indexes, so seat uniqueness among live tickets
// uses a nullable `active` column: 1 while the ticket is active, NULL once
// cancelled. NULLs never collide in a unique key, so cancelling frees the seat.
type MySQLTicketRepository struct {
	db *sql.DB
}

// NewMySQLTicketRepository creates a new MySQLTicketRepository
func NewMySQLTicketRepository(db *sql.DB) *MySQLTicketRepository {
	return &MySQLTicketRepository{
		db: db,
	}
}

// Create inserts a new ticket. A unique violation on (event_id, seat, active)
// is returned as domain.ErrSeatUnavailable.
func (r *MySQLTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO tickets
			  (id, event_id, provider_ticket_id, first_name, last_name, email, seat, status, active, idempotency_key, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1, ?, NOW())`

	_, err := querier.ExecContext(ctx, query,
		ticket.ID.String(), ticket.EventID.String(), ticket.ProviderTicketID.String(),
		ticket.FirstName, ticket.LastName, ticket.Email, ticket.Seat, ticket.Status, ticket.IdempotencyKey)
	if err != nil {
		if isMySQLUniqueViolation(err, mysqlSeatConstraint) {
			return domain.ErrSeatUnavailable
		}
		return apperrors.Wrap(err, "failed to create ticket")
	}
	return nil
}

// GetByID retrieves a ticket by ID
func (r *MySQLTicketRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	var ticket domain.Ticket
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, event_id, provider_ticket_id, first_name, last_name, email, seat, status, idempotency_key, created_at
			  FROM tickets WHERE id = ?`

	err := querier.QueryRowContext(ctx, query, id.String()).Scan(
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

// SeatTaken reports whether a live ticket already holds the seat for the event.
func (r *MySQLTicketRepository) SeatTaken(ctx context.Context, eventID uuid.UUID, seat string) (bool, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT EXISTS (SELECT 1 FROM tickets WHERE event_id = ? AND seat = ? AND status = ?)`

	var taken bool
	err := querier.QueryRowContext(ctx, query, eventID.String(), seat, domain.TicketStatusActive).Scan(&taken)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to check seat availability")
	}
	return taken, nil
}

// Cancel flips the ticket status to cancelled and clears the active marker,
// freeing the seat in the unique key.
func (r *MySQLTicketRepository) Cancel(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE tickets SET status = ?, active = NULL WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, domain.TicketStatusCancelled, id.String())
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

// isMySQLUniqueViolation checks if the error is a MySQL duplicate entry error
// on the named key.
func isMySQLUniqueViolation(err error, key string) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// MySQL: `Error 1062 (23000): Duplicate entry '...' for key '<name>'`
	return strings.Contains(errMsg, "duplicate entry") && strings.Contains(errMsg, strings.ToLower(key))
}
