// Package usecase implements the ticket business logic and orchestrates ticket domain operations.
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/jellydator/validation"

	"github.com/google/uuid"

	"github.com/allisson/tickets/internal/database"
	apperrors "github.com/allisson/tickets/internal/errors"
	eventDomain "github.com/allisson/tickets/internal/event/domain"
	"github.com/allisson/tickets/internal/metrics"
	outboxDomain "github.com/allisson/tickets/internal/outbox/domain"
	"github.com/allisson/tickets/internal/provider"
	"github.com/allisson/tickets/internal/ticket/domain"
	appValidation "github.com/allisson/tickets/internal/validation"
)

// RegisterTicketInput contains the input data for ticket registration
type RegisterTicketInput struct {
	EventID        uuid.UUID `json:"event_id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          string    `json:"email"`
	Seat           string    `json:"seat"`
	IdempotencyKey *string   `json:"idempotency_key"`
}

// RegisterTicketOutput is the result of a registration. Replayed is true when
// the idempotency key matched a previous identical request and no new ticket
// was created.
type RegisterTicketOutput struct {
	TicketID uuid.UUID
	Replayed bool
}

// UseCase defines the interface for ticket business logic operations
type UseCase interface {
	Register(ctx context.Context, input RegisterTicketInput) (*RegisterTicketOutput, error)
	Cancel(ctx context.Context, ticketID uuid.UUID) error
	Get(ctx context.Context, ticketID uuid.UUID) (*domain.Ticket, error)
}

// TicketRepository defines ticket repository operations
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Ticket, error)
	SeatTaken(ctx context.Context, eventID uuid.UUID, seat string) (bool, error)
	Cancel(ctx context.Context, id uuid.UUID) error
}

// IdempotencyRepository defines idempotency record repository operations
type IdempotencyRepository interface {
	Create(ctx context.Context, record *domain.IdempotencyRecord) error
	GetByKey(ctx context.Context, key string) (*domain.IdempotencyRecord, error)
}

// OutboxRepository defines the outbox operations required by registration
type OutboxRepository interface {
	Create(ctx context.Context, record *outboxDomain.Record) error
}

// EventRepository defines the event catalog operations required by registration
type EventRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*eventDomain.Event, error)
}

// ProviderClient defines the Events Provider operations used on the ticket path
type ProviderClient interface {
	Register(ctx context.Context, eventID string, input provider.RegisterInput) (string, error)
	Unregister(ctx context.Context, eventID, ticketID string) error
}

// SeatsCacheInvalidator invalidates cached seat lists after a registration or
// cancellation changes seat occupancy.
type SeatsCacheInvalidator interface {
	Invalidate(eventID string)
}

// TicketUseCase handles ticket-related business logic
type TicketUseCase struct {
	txManager       database.TxManager
	ticketRepo      TicketRepository
	idempotencyRepo IdempotencyRepository
	outboxRepo      OutboxRepository
	eventRepo       EventRepository
	providerClient  ProviderClient
	seatsCache      SeatsCacheInvalidator
	businessMetrics metrics.BusinessMetrics
	logger          *slog.Logger
	now             func() time.Time
}

// NewTicketUseCase creates a new TicketUseCase
func NewTicketUseCase(
	txManager database.TxManager,
	ticketRepo TicketRepository,
	idempotencyRepo IdempotencyRepository,
	outboxRepo OutboxRepository,
	eventRepo EventRepository,
	providerClient ProviderClient,
	seatsCache SeatsCacheInvalidator,
	businessMetrics metrics.BusinessMetrics,
	logger *slog.Logger,
) *TicketUseCase {
	return &TicketUseCase{
		txManager:       txManager,
		ticketRepo:      ticketRepo,
		idempotencyRepo: idempotencyRepo,
		outboxRepo:      outboxRepo,
		eventRepo:       eventRepo,
		providerClient:  providerClient,
		seatsCache:      seatsCache,
		businessMetrics: businessMetrics,
		logger:          logger,
		now:             time.Now,
	}
}

// validateRegisterTicketInput validates the registration input using jellydator/validation
func (uc *TicketUseCase) validateRegisterTicketInput(input RegisterTicketInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.EventID,
			validation.Required.Error("event_id is required"),
		),
		validation.Field(&input.FirstName,
			validation.Required.Error("first_name is required"),
			appValidation.NotBlank,
			validation.Length(1, 100).Error("first_name must be between 1 and 100 characters"),
		),
		validation.Field(&input.LastName,
			validation.Required.Error("last_name is required"),
			appValidation.NotBlank,
			validation.Length(1, 100).Error("last_name must be between 1 and 100 characters"),
		),
		validation.Field(&input.Email,
			validation.Required.Error("email is required"),
			appValidation.NotBlank,
			appValidation.Email,
			validation.Length(5, 255).Error("email must be between 5 and 255 characters"),
		),
		validation.Field(&input.Seat,
			validation.Required.Error("seat is required"),
			appValidation.SeatLabel,
		),
		validation.Field(&input.IdempotencyKey,
			validation.When(input.IdempotencyKey != nil,
				validation.Length(1, 255).Error("idempotency_key must be between 1 and 255 characters"),
			),
		),
	)
	return appValidation.WrapValidationError(err)
}

// Register registers a seat for an event.
//
// The ticket, its idempotency record (when a key is supplied), and the outbox
// record are written in one transaction, so a committed ticket always has
// exactly one pending notification and the worker can never observe a partial
// state. Uniqueness of the idempotency key and of the live (event, seat) pair
// is enforced by storage constraints; the pre-checks only exist to fail early
// with friendly errors, the constraint violation at commit is authoritative.
func (uc *TicketUseCase) Register(ctx context.Context, input RegisterTicketInput) (*RegisterTicketOutput, error) {
	if err := uc.validateRegisterTicketInput(input); err != nil {
		return nil, err
	}

	fingerprint := domain.ComputeFingerprint(domain.FingerprintInput{
		EventID:   input.EventID,
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Email:     strings.TrimSpace(strings.ToLower(input.Email)),
		Seat:      strings.TrimSpace(input.Seat),
	})

	// Replay fast-path: a matching record means this logical operation already
	// completed, so we must not touch the provider or insert anything.
	if input.IdempotencyKey != nil {
		decision, err := uc.resolveIdempotency(ctx, *input.IdempotencyKey, fingerprint)
		if err != nil {
			return nil, err
		}
		switch decision.Kind {
		case decisionReplay:
			return &RegisterTicketOutput{TicketID: decision.TicketID, Replayed: true}, nil
		case decisionConflict:
			return nil, domain.ErrIdempotencyConflict
		}
	}

	event, err := uc.eventRepo.GetByID(ctx, input.EventID)
	if err != nil {
		return nil, err
	}
	if err := event.OpenForRegistration(uc.now()); err != nil {
		return nil, err
	}

	taken, err := uc.ticketRepo.SeatTaken(ctx, input.EventID, input.Seat)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrSeatUnavailable
	}

	providerTicketID, err := uc.registerUpstream(ctx, input)
	if err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		ID:               uuid.Must(uuid.NewV7()),
		EventID:          input.EventID,
		ProviderTicketID: providerTicketID,
		FirstName:        strings.TrimSpace(input.FirstName),
		LastName:         strings.TrimSpace(input.LastName),
		Email:            strings.TrimSpace(strings.ToLower(input.Email)),
		Seat:             strings.TrimSpace(input.Seat),
		Status:           domain.TicketStatusActive,
		IdempotencyKey:   input.IdempotencyKey,
	}

	message := fmt.Sprintf("You have been successfully registered for %s", event.Name)

	err = uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := uc.ticketRepo.Create(ctx, ticket); err != nil {
			return err
		}

		if input.IdempotencyKey != nil {
			record := &domain.IdempotencyRecord{
				Key:         *input.IdempotencyKey,
				Fingerprint: fingerprint,
				TicketID:    ticket.ID,
			}
			if err := uc.idempotencyRepo.Create(ctx, record); err != nil {
				return err
			}
		}

		outboxRecord := outboxDomain.NewTicketPurchasedRecord(ticket.ID, message)
		if err := uc.outboxRepo.Create(ctx, outboxRecord); err != nil {
			return apperrors.Wrap(err, "failed to create outbox record")
		}

		return nil
	})
	if err != nil {
		// The local write did not commit, so the seat registered upstream is
		// orphaned; release it before reporting the failure.
		uc.compensateUpstream(ctx, input.EventID, providerTicketID)

		// A concurrent request with the same new key can win the insert race.
		// The constraint fired inside the transaction; re-read the winning
		// record to classify the outcome.
		if apperrors.Is(err, domain.ErrIdempotencyKeyTaken) && input.IdempotencyKey != nil {
			decision, resolveErr := uc.resolveIdempotency(ctx, *input.IdempotencyKey, fingerprint)
			if resolveErr != nil {
				return nil, resolveErr
			}
			if decision.Kind == decisionReplay {
				return &RegisterTicketOutput{TicketID: decision.TicketID, Replayed: true}, nil
			}
			return nil, domain.ErrIdempotencyConflict
		}

		uc.recordOperation(ctx, "register", "error")
		return nil, err
	}

	uc.seatsCache.Invalidate(input.EventID.String())
	uc.recordOperation(ctx, "register", "success")

	uc.logger.Info("ticket registered",
		slog.String("ticket_id", ticket.ID.String()),
		slog.String("event_id", input.EventID.String()),
		slog.String("seat", ticket.Seat),
	)

	return &RegisterTicketOutput{TicketID: ticket.ID}, nil
}

// Cancel cancels a ticket, freeing its seat. The upstream registration is
// released first so the provider never holds a seat we consider free.
func (uc *TicketUseCase) Cancel(ctx context.Context, ticketID uuid.UUID) error {
	ticket, err := uc.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		return err
	}

	if ticket.Status == domain.TicketStatusCancelled {
		return nil
	}

	err = uc.providerClient.Unregister(ctx, ticket.EventID.String(), ticket.ProviderTicketID.String())
	if err != nil {
		uc.recordOperation(ctx, "cancel", "error")
		return err
	}

	if err := uc.ticketRepo.Cancel(ctx, ticketID); err != nil {
		uc.recordOperation(ctx, "cancel", "error")
		return err
	}

	uc.seatsCache.Invalidate(ticket.EventID.String())
	uc.recordOperation(ctx, "cancel", "success")

	uc.logger.Info("ticket cancelled",
		slog.String("ticket_id", ticketID.String()),
		slog.String("event_id", ticket.EventID.String()),
	)

	return nil
}

// Get retrieves a ticket by ID
func (uc *TicketUseCase) Get(ctx context.Context, ticketID uuid.UUID) (*domain.Ticket, error) {
	return uc.ticketRepo.GetByID(ctx, ticketID)
}

// registerUpstream registers the seat with the Events Provider and returns the
// provider ticket id.
func (uc *TicketUseCase) registerUpstream(ctx context.Context, input RegisterTicketInput) (uuid.UUID, error) {
	rawID, err := uc.providerClient.Register(ctx, input.EventID.String(), provider.RegisterInput{
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Email:     strings.TrimSpace(strings.ToLower(input.Email)),
		Seat:      strings.TrimSpace(input.Seat),
	})
	if err != nil {
		return uuid.Nil, err
	}

	providerTicketID, err := uuid.Parse(rawID)
	if err != nil {
		return uuid.Nil, apperrors.Wrap(err, "events provider returned invalid ticket id")
	}
	return providerTicketID, nil
}

// compensateUpstream releases a provider-side registration whose local
// transaction did not commit. Best effort: a release failure is logged and
// the original error still reaches the caller.
func (uc *TicketUseCase) compensateUpstream(ctx context.Context, eventID, providerTicketID uuid.UUID) {
	if err := uc.providerClient.Unregister(ctx, eventID.String(), providerTicketID.String()); err != nil {
		uc.logger.Error("failed to release upstream registration",
			slog.String("event_id", eventID.String()),
			slog.String("provider_ticket_id", providerTicketID.String()),
			slog.String("error", err.Error()),
		)
	}
}

func (uc *TicketUseCase) recordOperation(ctx context.Context, operation, status string) {
	if uc.businessMetrics != nil {
		uc.businessMetrics.RecordOperation(ctx, "ticket", operation, status)
	}
}
