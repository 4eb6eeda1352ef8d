package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/allisson/tickets/internal/database"
	apperrors "github.com/allisson/tickets/internal/errors"
	"github.com/allisson/tickets/internal/ticket/domain"
)

// PostgreSQLIdempotencyRepository handles idempotency record persistence for PostgreSQL
type PostgreSQLIdempotencyRepository struct {
	db *sql.DB
}

// NewPostgreSQLIdempotencyRepository creates a new PostgreSQLIdempotencyRepository
func NewPostgreSQLIdempotencyRepository(db *sql.DB) *PostgreSQLIdempotencyRepository {
	return &PostgreSQLIdempotencyRepository{
		db: db,
	}
}

// Create inserts a new idempotency record. A unique violation on the key is
// returned as domain.ErrIdempotencyKeyTaken so the caller can re-read the
// winning record and decide between replay and conflict.
func (r *PostgreSQLIdempotencyRepository) Create(ctx context.Context, record *domain.IdempotencyRecord) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO idempotency_records (key, fingerprint, ticket_id, created_at)
			  VALUES ($1, $2, $3, NOW())`

	_, err := querier.ExecContext(ctx, query, record.Key, record.Fingerprint, record.TicketID)
	if err != nil {
		if isPostgreSQLUniqueViolation(err, pgKeyConstraint) {
			return domain.ErrIdempotencyKeyTaken
		}
		return apperrors.Wrap(err, "failed to create idempotency record")
	}
	return nil
}

// GetByKey retrieves an idempotency record by key. Returns (nil, nil) when no
// record exists for the key.
func (r *PostgreSQLIdempotencyRepository) GetByKey(ctx context.Context, key string) (*domain.IdempotencyRecord, error) {
	var record domain.IdempotencyRecord
	querier := database.GetTx(ctx, r.db)

	query := `SELECT key, fingerprint, ticket_id FROM idempotency_records WHERE key = $1`

	err := querier.QueryRowContext(ctx, query, key).Scan(&record.Key, &record.Fingerprint, &record.TicketID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.Wrap(err, "failed to get idempotency record by key")
	}

	return &record, nil
}
