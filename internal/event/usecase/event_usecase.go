// Package usecase implements the event catalog business logic.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/tickets/internal/event/domain"
)

// ListEventsInput contains the filters and paging for event listing
type ListEventsInput struct {
	DateFrom *time.Time
	Page     int
	PageSize int
}

// UseCase defines the interface for event catalog operations
type UseCase interface {
	List(ctx context.Context, input ListEventsInput) ([]*domain.Event, int, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Event, error)
	Seats(ctx context.Context, id uuid.UUID) ([]string, error)
}

// EventRepository defines the event repository operations used by the use case
type EventRepository interface {
	List(ctx context.Context, dateFrom *time.Time, page, pageSize int) ([]*domain.Event, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error)
}

// SeatsProvider fetches the current seat availability from the Events Provider
type SeatsProvider interface {
	Seats(ctx context.Context, eventID string) ([]string, error)
}

// EventUseCase handles event catalog queries
type EventUseCase struct {
	eventRepo     EventRepository
	seatsProvider SeatsProvider
	seatsCache    *SeatsCache
}

// NewEventUseCase creates a new EventUseCase
func NewEventUseCase(eventRepo EventRepository, seatsProvider SeatsProvider, seatsCache *SeatsCache) *EventUseCase {
	return &EventUseCase{
		eventRepo:     eventRepo,
		seatsProvider: seatsProvider,
		seatsCache:    seatsCache,
	}
}

// List returns a page of events and the total count, optionally filtered by
// a minimum event date
func (uc *EventUseCase) List(ctx context.Context, input ListEventsInput) ([]*domain.Event, int, error) {
	return uc.eventRepo.List(ctx, input.DateFrom, input.Page, input.PageSize)
}

// Get returns a single event by id
func (uc *EventUseCase) Get(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	return uc.eventRepo.GetByID(ctx, id)
}

// Seats returns the available seats for an event, served from the cache when
// fresh. The event must exist locally before the provider is consulted.
func (uc *EventUseCase) Seats(ctx context.Context, id uuid.UUID) ([]string, error) {
	if _, err := uc.eventRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	eventID := id.String()
	if seats, ok := uc.seatsCache.Get(eventID); ok {
		return seats, nil
	}

	seats, err := uc.seatsProvider.Seats(ctx, eventID)
	if err != nil {
		return nil, err
	}

	uc.seatsCache.Set(eventID, seats)
	return seats, nil
}
