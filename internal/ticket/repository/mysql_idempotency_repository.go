package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/allisson/tickets/internal/database"
	apperrors "github.com/allisson/tickets/internal/errors"
	"github.com/allisson/tickets/internal/ticket/domain"
)

// MySQLIdempotencyRepository handles idempotency record persistence for MySQL
type MySQLIdempotencyRepository struct {
	db *sql.DB
}

// NewMySQLIdempotencyRepository creates a new MySQLIdempotencyRepository
func NewMySQLIdempotencyRepository(db *sql.DB) *MySQLIdempotencyRepository {
	return &MySQLIdempotencyRepository{
		db: db,
	}
}

// Create inserts a new idempotency record. A duplicate key is returned as
// domain.ErrIdempotencyKeyTaken.
func (r *MySQLIdempotencyRepository) Create(ctx context.Context, record *domain.IdempotencyRecord) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO idempotency_records (` + "`key`" + `, fingerprint, ticket_id, created_at)
			  VALUES (?, ?, ?, NOW())`

	_, err := querier.ExecContext(ctx, query, record.Key, record.Fingerprint, record.TicketID.String())
	if err != nil {
		if isMySQLUniqueViolation(err, mysqlKeyConstraint) {
			return domain.ErrIdempotencyKeyTaken
		}
		return apperrors.Wrap(err, "failed to create idempotency record")
	}
	return nil
}

// GetByKey retrieves an idempotency record by key. Returns (nil, nil) when no
// record exists for the key.
func (r *MySQLIdempotencyRepository) GetByKey(ctx context.Context, key string) (*domain.IdempotencyRecord, error) {
	var record domain.IdempotencyRecord
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + "`key`" + `, fingerprint, ticket_id FROM idempotency_records WHERE ` + "`key`" + ` = ?`

	err := querier.QueryRowContext(ctx, query, key).Scan(&record.Key, &record.Fingerprint, &record.TicketID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.Wrap(err, "failed to get idempotency record by key")
	}

	return &record, nil
}
