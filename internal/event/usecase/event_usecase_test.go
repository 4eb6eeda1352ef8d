package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/tickets/internal/errors"
	"github.com/allisson/tickets/internal/event/domain"
)

// MockEventRepository is a mock implementation of EventRepository
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) List(ctx context.Context, dateFrom *time.Time, page, pageSize int) ([]*domain.Event, int, error) {
	args := m.Called(ctx, dateFrom, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.Event), args.Int(1), args.Error(2)
}

func (m *MockEventRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

// MockSeatsProvider is a mock implementation of SeatsProvider
type MockSeatsProvider struct {
	mock.Mock
}

func (m *MockSeatsProvider) Seats(ctx context.Context, eventID string) ([]string, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func testEvent() *domain.Event {
	return &domain.Event{
		ID:     uuid.Must(uuid.NewV7()),
		Name:   "Go Conference",
		Status: domain.EventStatusPublished,
	}
}

func TestEventUseCase_List(t *testing.T) {
	eventRepo := &MockEventRepository{}
	useCase := NewEventUseCase(eventRepo, nil, NewSeatsCache(time.Minute))

	ctx := context.Background()
	event := testEvent()
	dateFrom := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	eventRepo.On("List", ctx, &dateFrom, 1, 20).Return([]*domain.Event{event}, 1, nil)

	events, total, err := useCase.List(ctx, ListEventsInput{DateFrom: &dateFrom, Page: 1, PageSize: 20})

	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, events, 1)
	assert.Equal(t, event.ID, events[0].ID)
}

func TestEventUseCase_Get_NotFound(t *testing.T) {
	eventRepo := &MockEventRepository{}
	useCase := NewEventUseCase(eventRepo, nil, NewSeatsCache(time.Minute))

	ctx := context.Background()
	id := uuid.Must(uuid.NewV7())
	eventRepo.On("GetByID", ctx, id).Return(nil, apperrors.ErrNotFound)

	event, err := useCase.Get(ctx, id)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Nil(t, event)
}

func TestEventUseCase_Seats_FetchesAndCaches(t *testing.T) {
	eventRepo := &MockEventRepository{}
	seatsProvider := &MockSeatsProvider{}
	useCase := NewEventUseCase(eventRepo, seatsProvider, NewSeatsCache(time.Minute))

	ctx := context.Background()
	event := testEvent()

	eventRepo.On("GetByID", ctx, event.ID).Return(event, nil)
	seatsProvider.On("Seats", ctx, event.ID.String()).Return([]string{"A1", "A2"}, nil).Once()

	seats, err := useCase.Seats(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A2"}, seats)

	// Second call within the TTL is served from the cache.
	seats, err = useCase.Seats(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A2"}, seats)

	seatsProvider.AssertExpectations(t)
}

func TestEventUseCase_Seats_UnknownEvent(t *testing.T) {
	eventRepo := &MockEventRepository{}
	seatsProvider := &MockSeatsProvider{}
	useCase := NewEventUseCase(eventRepo, seatsProvider, NewSeatsCache(time.Minute))

	ctx := context.Background()
	id := uuid.Must(uuid.NewV7())
	eventRepo.On("GetByID", ctx, id).Return(nil, apperrors.ErrNotFound)

	_, err := useCase.Seats(ctx, id)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	seatsProvider.AssertNotCalled(t, "Seats", mock.Anything, mock.Anything)
}

func TestEventUseCase_Seats_ProviderError(t *testing.T) {
	eventRepo := &MockEventRepository{}
	seatsProvider := &MockSeatsProvider{}
	useCase := NewEventUseCase(eventRepo, seatsProvider, NewSeatsCache(time.Minute))

	ctx := context.Background()
	event := testEvent()

	eventRepo.On("GetByID", ctx, event.ID).Return(event, nil)
	seatsProvider.On("Seats", ctx, event.ID.String()).Return(nil, apperrors.ErrUpstreamUnavailable)

	_, err := useCase.Seats(ctx, event.ID)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUpstreamUnavailable)
}

func TestSeatsCache_Expiry(t *testing.T) {
	cache := NewSeatsCache(30 * time.Second)
	current := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return current }

	cache.Set("event-1", []string{"A1"})

	seats, ok := cache.Get("event-1")
	require.True(t, ok)
	assert.Equal(t, []string{"A1"}, seats)

	current = current.Add(31 * time.Second)
	_, ok = cache.Get("event-1")
	assert.False(t, ok)
}

func TestSeatsCache_Invalidate(t *testing.T) {
	cache := NewSeatsCache(time.Minute)
	cache.Set("event-1", []string{"A1"})
	cache.Set("event-2", []string{"B1"})

	cache.Invalidate("event-1")

	_, ok := cache.Get("event-1")
	assert.False(t, ok)
	seats, ok := cache.Get("event-2")
	require.True(t, ok)
	assert.Equal(t, []string{"B1"}, seats)
}

func TestSeatsCache_GetMissing(t *testing.T) {
	cache := NewSeatsCache(time.Minute)
	_, ok := cache.Get("unknown")
	assert.False(t, ok)
}
