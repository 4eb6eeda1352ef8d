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

// MySQLSyncRepository handles sync metadata persistence for MySQL
type MySQLSyncRepository struct {
	db *sql.DB
}

// NewMySQLSyncRepository creates a new MySQLSyncRepository
func NewMySQLSyncRepository(db *sql.DB) *MySQLSyncRepository {
	return &MySQLSyncRepository{
		db: db,
	}
}

// GetOrCreate returns the single sync metadata row, creating it if absent.
func (r *MySQLSyncRepository) GetOrCreate(ctx context.Context) (*domain.SyncMetadata, error) {
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

	insert := `INSERT INTO sync_metadata (sync_status, updated_at) VALUES (?, NOW())`

	result, err := querier.ExecContext(ctx, insert, domain.SyncStatusIdle)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create sync metadata")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get sync metadata id")
	}

	err = querier.QueryRowContext(ctx,
		`SELECT id, last_sync_time, last_changed_at, sync_status, updated_at FROM sync_metadata WHERE id = ?`,
		id,
	).Scan(&meta.ID, &meta.LastSyncTime, &meta.LastChangedAt, &meta.SyncStatus, &meta.UpdatedAt)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to reload sync metadata")
	}
	return &meta, nil
}

// ClaimRunning atomically flips the status to running, returning false when
// another run already holds it. The condition lives in the UPDATE so two
// concurrent claims can never both win.
func (r *MySQLSyncRepository) ClaimRunning(ctx context.Context, id int64) (bool, error) {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE sync_metadata
			  SET sync_status = ?, updated_at = NOW()
			  WHERE id = ? AND sync_status <> ?`

	result, err := querier.ExecContext(ctx, query, domain.SyncStatusRunning, id, domain.SyncStatusRunning)
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
func (r *MySQLSyncRepository) UpdateStatus(
	ctx context.Context,
	id int64,
	status domain.SyncStatus,
	lastSyncTime *time.Time,
	lastChangedAt *string,
) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE sync_metadata
			  SET sync_status = ?,
			      last_sync_time = COALESCE(?, last_sync_time),
			      last_changed_at = COALESCE(?, last_changed_at),
			      updated_at = NOW()
			  WHERE id = ?`

	_, err := querier.ExecContext(ctx, query, status, lastSyncTime, lastChangedAt, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to update sync metadata")
	}
	return nil
}
