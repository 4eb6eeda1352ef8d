// Package repository provides data persistence implementations for outbox records.
package repository

import (
	"context"
	"database/sql"

	"github.com/allisson/tickets/internal/database"
	apperrors "github.com/allisson/tickets/internal/errors"
	"github.com/allisson/tickets/internal/outbox/domain"
)

// PostgreSQLOutboxRepository handles outbox record persistence for PostgreSQL
type PostgreSQLOutboxRepository struct {
	db *sql.DB
}

// NewPostgreSQLOutboxRepository creates a new PostgreSQLOutboxRepository
func NewPostgreSQLOutboxRepository(db *sql.DB) *PostgreSQLOutboxRepository {
	return &PostgreSQLOutboxRepository{
		db: db,
	}
}

// Create inserts a new outbox record
func (r *PostgreSQLOutboxRepository) Create(ctx context.Context, record *domain.Record) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO outbox_records
			  (id, ticket_id, message, reference_id, idempotency_key, status, attempt_count, last_attempt_at, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())`

	_, err := querier.ExecContext(ctx, query, record.ID, record.TicketID,
		record.Payload.Message, record.Payload.ReferenceID, record.Payload.IdempotencyKey,
		record.Status, record.AttemptCount, record.LastAttemptAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create outbox record")
	}
	return nil
}

// GetPending retrieves pending records that have not exhausted their attempt
// budget, oldest first. FOR UPDATE SKIP LOCKED makes the fetch a mutually
// exclusive claim when multiple workers share the table.
func (r *PostgreSQLOutboxRepository) GetPending(
	ctx context.Context,
	limit int,
	maxAttempts int,
) ([]*domain.Record, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, ticket_id, message, reference_id, idempotency_key, status, attempt_count, last_attempt_at, created_at
			  FROM outbox_records
			  WHERE status = $1 AND attempt_count < $2
			  ORDER BY created_at ASC
			  LIMIT $3
			  FOR UPDATE SKIP LOCKED`

	rows, err := querier.QueryContext(ctx, query, domain.RecordStatusPending, maxAttempts, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get pending outbox records")
	}
	defer rows.Close() //nolint:errcheck

	var records []*domain.Record
	for rows.Next() {
		var record domain.Record

		err := rows.Scan(&record.ID, &record.TicketID,
			&record.Payload.Message, &record.Payload.ReferenceID, &record.Payload.IdempotencyKey,
			&record.Status, &record.AttemptCount, &record.LastAttemptAt, &record.CreatedAt)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan outbox record")
		}

		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate outbox records")
	}

	return records, nil
}

// Update persists the delivery bookkeeping for an outbox record
func (r *PostgreSQLOutboxRepository) Update(ctx context.Context, record *domain.Record) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE outbox_records
			  SET status = $1, attempt_count = $2, last_attempt_at = $3
			  WHERE id = $4`

	_, err := querier.ExecContext(ctx, query, record.Status, record.AttemptCount, record.LastAttemptAt, record.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update outbox record")
	}
	return nil
}
