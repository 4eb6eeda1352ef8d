package domain

import (
	"time"

	"github.com/allisson/tickets/internal/errors"
)

// ErrSyncAlreadyRunning indicates a catalog sync is already in progress.
var ErrSyncAlreadyRunning = errors.Wrap(errors.ErrConflict, "catalog sync is already running")

// SyncStatus values for the catalog sync state machine.
type SyncStatus string

const (
	SyncStatusIdle    SyncStatus = "idle"
	SyncStatusRunning SyncStatus = "running"
	SyncStatusSuccess SyncStatus = "success"
	SyncStatusError   SyncStatus = "error"
)

// SyncMetadata is the single-row bookkeeping record for the catalog sync:
// when it last ran, the changed_at watermark to resume from, and whether a
// run is currently in progress.
type SyncMetadata struct {
	ID            int64
	LastSyncTime  *time.Time
	LastChangedAt *string // YYYY-MM-DD, as accepted by the provider API
	SyncStatus    SyncStatus
	UpdatedAt     time.Time
}
