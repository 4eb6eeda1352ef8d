// Package usecase implements the event catalog synchronization against the
// upstream Events Provider.
package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/tickets/internal/database"
	apperrors "github.com/allisson/tickets/internal/errors"
	"github.com/allisson/tickets/internal/event/domain"
	"github.com/allisson/tickets/internal/metrics"
	"github.com/allisson/tickets/internal/provider"
)

const upsertBatchSize = 100

// firstSyncDate is the changed_at filter used when no watermark exists yet,
// so the first run pulls the full catalog with a well-formed query.
const firstSyncDate = "2000-01-01"

// EventRepository defines the catalog write operations used by the sync
type EventRepository interface {
	UpsertPlace(ctx context.Context, place *domain.Place) error
	UpsertEvent(ctx context.Context, event *domain.Event) error
}

// SyncRepository defines the sync metadata operations
type SyncRepository interface {
	GetOrCreate(ctx context.Context) (*domain.SyncMetadata, error)
	ClaimRunning(ctx context.Context, id int64) (bool, error)
	UpdateStatus(ctx context.Context, id int64, status domain.SyncStatus, lastSyncTime *time.Time, lastChangedAt *string) error
}

// UseCase defines the interface for catalog sync operations
type UseCase interface {
	Sync(ctx context.Context, changedAtOverride string) error
	Trigger(ctx context.Context, changedAtOverride string) error
	Start(ctx context.Context) error
}

// SyncUseCase pulls changed events from the Events Provider into the local
// catalog
type SyncUseCase struct {
	txManager       database.TxManager
	eventRepo       EventRepository
	syncRepo        SyncRepository
	client          *provider.Client
	interval        time.Duration
	businessMetrics metrics.BusinessMetrics
	logger          *slog.Logger
	now             func() time.Time
}

// NewSyncUseCase creates a new SyncUseCase
func NewSyncUseCase(
	txManager database.TxManager,
	eventRepo EventRepository,
	syncRepo SyncRepository,
	client *provider.Client,
	interval time.Duration,
	businessMetrics metrics.BusinessMetrics,
	logger *slog.Logger,
) *SyncUseCase {
	return &SyncUseCase{
		txManager:       txManager,
		eventRepo:       eventRepo,
		syncRepo:        syncRepo,
		client:          client,
		interval:        interval,
		businessMetrics: businessMetrics,
		logger:          logger,
		now:             time.Now,
	}
}

// Start runs the periodic sync loop until the context is cancelled. A run that
// overlaps another (for example one triggered over HTTP) is skipped by the
// running guard rather than queued.
func (uc *SyncUseCase) Start(ctx context.Context) error {
	uc.logger.Info("catalog sync loop started", slog.Duration("interval", uc.interval))

	ticker := time.NewTicker(uc.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			uc.logger.Info("catalog sync loop stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := uc.Sync(ctx, ""); err != nil {
				if apperrors.Is(err, domain.ErrSyncAlreadyRunning) {
					continue
				}
				uc.logger.Error("scheduled catalog sync failed", slog.String("error", err.Error()))
			}
		}
	}
}

// Sync performs one full synchronization run. The changed_at watermark from
// the previous successful run limits the pull to events changed since then;
// changedAtOverride (YYYY-MM-DD) replaces the stored watermark when set.
func (uc *SyncUseCase) Sync(ctx context.Context, changedAtOverride string) error {
	meta, err := uc.acquire(ctx)
	if err != nil {
		return err
	}
	return uc.run(ctx, meta, changedAtOverride)
}

// Trigger starts a sync in the background. The running guard is taken
// synchronously, so the caller learns immediately when a run is already in
// progress; the pull itself outlives the caller's request.
func (uc *SyncUseCase) Trigger(ctx context.Context, changedAtOverride string) error {
	meta, err := uc.acquire(ctx)
	if err != nil {
		return err
	}

	bgCtx := context.WithoutCancel(ctx)
	go func() {
		if err := uc.run(bgCtx, meta, changedAtOverride); err != nil {
			uc.logger.Error("triggered catalog sync failed", slog.String("error", err.Error()))
		}
	}()

	return nil
}

// acquire loads the sync metadata and claims the running status. The claim is
// a conditional update, so concurrent triggers race on the database row and
// exactly one of them wins.
func (uc *SyncUseCase) acquire(ctx context.Context) (*domain.SyncMetadata, error) {
	meta, err := uc.syncRepo.GetOrCreate(ctx)
	if err != nil {
		return nil, err
	}

	claimed, err := uc.syncRepo.ClaimRunning(ctx, meta.ID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, domain.ErrSyncAlreadyRunning
	}
	return meta, nil
}

func (uc *SyncUseCase) run(ctx context.Context, meta *domain.SyncMetadata, changedAtOverride string) error {
	changedAt := changedAtOverride
	if changedAt == "" && meta.LastChangedAt != nil {
		changedAt = *meta.LastChangedAt
	}
	if changedAt == "" {
		changedAt = firstSyncDate
	}

	synced, watermark, err := uc.pull(ctx, changedAt)
	if err != nil {
		uc.recordOperation(ctx, "run", "error")
		if updateErr := uc.syncRepo.UpdateStatus(ctx, meta.ID, domain.SyncStatusError, nil, nil); updateErr != nil {
			uc.logger.Error("failed to mark sync as errored", slog.String("error", updateErr.Error()))
		}
		return err
	}

	syncTime := uc.now()
	var lastChangedAt *string
	if watermark != "" {
		lastChangedAt = &watermark
	}
	if err := uc.syncRepo.UpdateStatus(ctx, meta.ID, domain.SyncStatusSuccess, &syncTime, lastChangedAt); err != nil {
		return err
	}

	uc.recordOperation(ctx, "run", "success")
	uc.logger.Info("catalog sync finished",
		slog.Int("events_synced", synced),
		slog.String("changed_at", changedAt),
	)
	return nil
}

// pull walks the paginated provider listing and upserts events in batches.
// It returns the number of synced events and the highest change date seen,
// to be stored as the next run's watermark.
func (uc *SyncUseCase) pull(ctx context.Context, changedAt string) (int, string, error) {
	paginator := provider.NewPaginator(uc.client, changedAt)

	var (
		batch     []*domain.Event
		synced    int
		watermark string
	)

	for {
		data, err := paginator.Next(ctx)
		if err != nil {
			return synced, watermark, err
		}
		if data == nil {
			break
		}

		event, err := mapEventData(data)
		if err != nil {
			uc.logger.Warn("skipping malformed provider event",
				slog.String("provider_event_id", data.ID),
				slog.String("error", err.Error()),
			)
			continue
		}

		watermark = maxChangeDate(watermark, data.ChangedAt, data.StatusChangedAt)
		batch = append(batch, event)

		if len(batch) >= upsertBatchSize {
			if err := uc.flush(ctx, batch); err != nil {
				return synced, watermark, err
			}
			synced += len(batch)
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		if err := uc.flush(ctx, batch); err != nil {
			return synced, watermark, err
		}
		synced += len(batch)
	}

	return synced, watermark, nil
}

// flush upserts one batch of events and their places in a single transaction
func (uc *SyncUseCase) flush(ctx context.Context, events []*domain.Event) error {
	return uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		for _, event := range events {
			if err := uc.eventRepo.UpsertPlace(ctx, event.Place); err != nil {
				return err
			}
			if err := uc.eventRepo.UpsertEvent(ctx, event); err != nil {
				return err
			}
		}
		return nil
	})
}

// mapEventData converts a provider event payload into domain entities
func mapEventData(data *provider.EventData) (*domain.Event, error) {
	eventID, err := uuid.Parse(data.ID)
	if err != nil {
		return nil, apperrors.Wrap(err, "invalid event id")
	}
	placeID, err := uuid.Parse(data.Place.ID)
	if err != nil {
		return nil, apperrors.Wrap(err, "invalid place id")
	}
	eventTime, err := time.Parse(time.RFC3339, data.EventTime)
	if err != nil {
		return nil, apperrors.Wrap(err, "invalid event_time")
	}
	deadline, err := time.Parse(time.RFC3339, data.RegistrationDeadline)
	if err != nil {
		return nil, apperrors.Wrap(err, "invalid registration_deadline")
	}

	var changedAt *time.Time
	if data.ChangedAt != "" {
		parsed, err := time.Parse(time.RFC3339, data.ChangedAt)
		if err != nil {
			return nil, apperrors.Wrap(err, "invalid changed_at")
		}
		changedAt = &parsed
	}

	return &domain.Event{
		ID:      eventID,
		Name:    data.Name,
		PlaceID: placeID,
		Place: &domain.Place{
			ID:           placeID,
			Name:         data.Place.Name,
			City:         data.Place.City,
			Address:      data.Place.Address,
			SeatsPattern: data.Place.SeatsPattern,
		},
		EventTime:            eventTime,
		RegistrationDeadline: deadline,
		Status:               domain.EventStatus(data.Status),
		NumberOfVisitors:     data.NumberOfVisitors,
		ChangedAt:            changedAt,
	}, nil
}

// maxChangeDate returns the lexicographically greatest date prefix (YYYY-MM-DD)
// among the current watermark and the given RFC 3339 timestamps.
func maxChangeDate(current string, timestamps ...string) string {
	greatest := current
	for _, ts := range timestamps {
		if len(ts) < 10 {
			continue
		}
		if date := ts[:10]; date > greatest {
			greatest = date
		}
	}
	return greatest
}

func (uc *SyncUseCase) recordOperation(ctx context.Context, operation, status string) {
	if uc.businessMetrics != nil {
		uc.businessMetrics.RecordOperation(ctx, "sync", operation, status)
	}
}
