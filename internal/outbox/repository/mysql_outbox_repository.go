package repository

import (
	"context"
	"database/sql"

	"github.com/allisson/tickets/internal/database"
	apperrors "github.com/allisson/tickets/internal/errors"
	"github.com/allisson/tickets/internal/outbox/domain"
)

// MySQLOutboxRepository handles outbox record persistence for MySQL
type MySQLOutboxRepository struct {
	db *sql.DB
}

// NewMySQLOutboxRepository creates a new MySQLOutboxRepository
func NewMySQLOutboxRepository(db *sql.DB) *MySQLOutboxRepository {
	return &MySQLOutboxRepository{
		db: db,
	}
}

// Create inserts a new outbox record
func (r *MySQLOutboxRepository) Create(ctx context.Context, record *domain.Record) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO outbox_records
			  (id, ticket_id, message, reference_id, idempotency_key, status, attempt_count, last_attempt_at, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, NOW())`

	_, err := querier.ExecContext(ctx, query, record.ID.String(), record.TicketID.String(),
		record.Payload.Message, record.Payload.ReferenceID, record.Payload.IdempotencyKey,
		record.Status, record.AttemptCount, record.LastAttemptAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create outbox record")
	}
	return nil
}

// GetPending retrieves pending records that have not exhausted their attempt
// budget, oldest first, claiming them with FOR UPDATE SKIP LOCKED.
func (r *MySQLOutboxRepository) GetPending(
	ctx context.Context,
	limit int,
	maxAttempts int,
) ([]*domain.Record, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, ticket_id, message, reference_id, idempotency_key, status, attempt_count, last_attempt_at, created_at
			  FROM outbox_records
			  WHERE status = ? AND attempt_count < ?
			  ORDER BY created_at ASC
			  LIMIT ?
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
func (r *MySQLOutboxRepository) Update(ctx context.Context, record *domain.Record) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE outbox_records
			  SET status = ?, attempt_count = ?, last_attempt_at = ?
			  WHERE id = ?`

	_, err := querier.ExecContext(ctx, query, record.Status, record.AttemptCount, record.LastAttemptAt, record.ID.String())
	if err != nil {
		return apperrors.Wrap(err, "failed to update outbox record")
	}
	return nil
}
