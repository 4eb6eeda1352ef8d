// Package usecase implements the outbox worker that drains pending
// notification records to the Capashino notification service.
package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/allisson/tickets/internal/database"
	"github.com/allisson/tickets/internal/metrics"
	"github.com/allisson/tickets/internal/notification"
	"github.com/allisson/tickets/internal/outbox/domain"
)

// OutboxRepository defines the outbox record repository operations
type OutboxRepository interface {
	GetPending(ctx context.Context, limit, maxAttempts int) ([]*domain.Record, error)
	Update(ctx context.Context, record *domain.Record) error
}

// Notifier delivers a notification message. Implementations must treat a
// repeated delivery with the same idempotency key as success.
type Notifier interface {
	Send(ctx context.Context, message, referenceID, idempotencyKey string) error
}

// OutboxUseCase polls the outbox table and delivers pending records
type OutboxUseCase struct {
	txManager       database.TxManager
	outboxRepo      OutboxRepository
	notifier        Notifier
	pollInterval    time.Duration
	maxAttempts     int
	batchSize       int
	businessMetrics metrics.BusinessMetrics
	logger          *slog.Logger
	now             func() time.Time
}

// NewOutboxUseCase creates a new OutboxUseCase
func NewOutboxUseCase(
	txManager database.TxManager,
	outboxRepo OutboxRepository,
	notifier Notifier,
	pollInterval time.Duration,
	maxAttempts int,
	batchSize int,
	businessMetrics metrics.BusinessMetrics,
	logger *slog.Logger,
) *OutboxUseCase {
	return &OutboxUseCase{
		txManager:       txManager,
		outboxRepo:      outboxRepo,
		notifier:        notifier,
		pollInterval:    pollInterval,
		maxAttempts:     maxAttempts,
		batchSize:       batchSize,
		businessMetrics: businessMetrics,
		logger:          logger,
		now:             time.Now,
	}
}

// Start runs the worker loop until the context is cancelled. Each tick
// processes one batch; errors are logged and the loop keeps running.
func (uc *OutboxUseCase) Start(ctx context.Context) error {
	uc.logger.Info("outbox worker started",
		slog.Duration("poll_interval", uc.pollInterval),
		slog.Int("max_attempts", uc.maxAttempts),
		slog.Int("batch_size", uc.batchSize),
	)

	ticker := time.NewTicker(uc.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			uc.logger.Info("outbox worker stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := uc.ProcessRecords(ctx); err != nil {
				uc.logger.Error("outbox batch failed", slog.String("error", err.Error()))
			}
		}
	}
}

// ProcessRecords claims one batch of pending records and attempts delivery
// for each. The claim and the status updates share a transaction, so the
// row locks taken by the claim keep concurrent workers off the same records
// until the batch commits.
func (uc *OutboxUseCase) ProcessRecords(ctx context.Context) error {
	return uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		records, err := uc.outboxRepo.GetPending(ctx, uc.batchSize, uc.maxAttempts)
		if err != nil {
			return err
		}

		for _, record := range records {
			uc.processRecord(ctx, record)
		}

		return nil
	})
}

// processRecord attempts delivery of a single record. Failures are contained
// here: a record that cannot be delivered or updated never aborts the batch.
func (uc *OutboxUseCase) processRecord(ctx context.Context, record *domain.Record) {
	sendErr := uc.notifier.Send(ctx, record.Payload.Message, record.Payload.ReferenceID, record.Payload.IdempotencyKey)

	now := uc.now()
	record.AttemptCount++
	record.LastAttemptAt = &now

	switch {
	case sendErr == nil:
		record.Status = domain.RecordStatusSent
		uc.recordOperation(ctx, "delivery", "sent")
	case record.AttemptCount >= uc.maxAttempts:
		record.Status = domain.RecordStatusFailed
		uc.recordOperation(ctx, "delivery", "dead_letter")
		uc.logger.Error("outbox record exhausted retry attempts",
			slog.String("record_id", record.ID.String()),
			slog.Int("attempt_count", record.AttemptCount),
			slog.String("error", sendErr.Error()),
		)
	default:
		// Rejections and transient failures book the same way: the attempt is
		// counted and the record stays pending until the cap is reached.
		uc.recordOperation(ctx, "delivery", "attempt_failed")
		uc.logger.Warn("outbox record delivery failed, will retry",
			slog.String("record_id", record.ID.String()),
			slog.Int("attempt_count", record.AttemptCount),
			slog.Bool("rejected", notification.IsRejected(sendErr)),
			slog.String("error", sendErr.Error()),
		)
	}

	if err := uc.outboxRepo.Update(ctx, record); err != nil {
		uc.logger.Error("failed to update outbox record",
			slog.String("record_id", record.ID.String()),
			slog.String("error", err.Error()),
		)
	}
}

func (uc *OutboxUseCase) recordOperation(ctx context.Context, operation, status string) {
	if uc.businessMetrics != nil {
		uc.businessMetrics.RecordOperation(ctx, "outbox", operation, status)
	}
}
