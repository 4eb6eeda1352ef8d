package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/allisson/tickets/internal/database"
	apperrors "github.com/allisson/tickets/internal/errors"
	"github.com/allisson/tickets/internal/event/domain"
)

// PostgreSQLSyncRepository handles sync metadata persistence for PostgreSQL
type PostgreSQLSyncRepository struct {
	db *sql.DB
}

// NewPostgreSQLSyncRepository creates a new PostgreSQLSyncRepository
func NewPostgreSQLSyncRepository(db *sql.DB) *PostgreSQLSyncRepository {
	return &PostgreSQLSyncRepository{
		db: db,
	}
}

// GetOrCreate returns the single sync metadata row, creating it if absent.
func (r *PostgreSQLSyncRepository) GetOrCreate(ctx context.Context) (*domain.SyncMetadata, error) {
	querier := database.GetTx(ctx, r.db)

	var meta domain.SyncMetadata
	query := `SELECT id, last_sync_time, last_changed_at, sync_status, updated_at
			  FROM sync_metadata ORDER BY id ASC LIMIT 1`

	err := querier.QueryRowContext(ctx, query).Scan(
		&meta.ID, &meta.LastSyncTime, &meta.LastChangedAt, &meta.SyncStatus, &meta.UpdatedAt,
	)
	if err == nil {
		return &meta, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Wrap(err, "failed to get sync metadata")
	}

	insert := `INSERT INTO sync_metadata (sync_status, updated_at)
			   VALUES ($1, NOW())
			   RETURNING id, last_sync_time, last_changed_at, sync_status, updated_at`

	err = querier.QueryRowContext(ctx, insert, domain.SyncStatusIdle).Scan(
		&meta.ID, &meta.LastSyncTime, &meta.LastChangedAt, &meta.SyncStatus, &meta.UpdatedAt,
	)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create sync metadata")
	}
	return &meta, nil
}

// ClaimRunning atomically flips the status to running, returning false when
// another run already holds it. The condition lives in the UPDATE so two
// concurrent claims can never both win.
func (r *PostgreSQLSyncRepository) ClaimRunning(ctx context.Context, id int64) (bool, error) {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE sync_metadata
			  SET sync_status = $1, updated_at = NOW()
			  WHERE id = $2 AND sync_status <> $1`

	result, err := querier.ExecContext(ctx, query, domain.SyncStatusRunning, id)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to claim sync run")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to read sync claim result")
	}
	return rows > 0, nil
}

// UpdateStatus updates the sync status and, when provided, the last sync time
// and changed_at watermark.
func (r *PostgreSQLSyncRepository) UpdateStatus(
	ctx context.Context,
	id int64,
	status domain.SyncStatus,
	lastSyncTime *time.Time,
	lastChangedAt *string,
) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE sync_metadata
			  SET sync_status = $1,
			      last_sync_time = COALESCE($2, last_sync_time),
			      last_changed_at = COALESCE($3, last_changed_at),
			      updated_at = NOW()
			  WHERE id = $4`

	_, err := querier.ExecContext(ctx, query, status, lastSyncTime, lastChangedAt, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to update sync metadata")
	}
	return nil
}
