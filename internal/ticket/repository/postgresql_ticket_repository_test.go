package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/tickets/internal/testutil"
	"github.com/allisson/tickets/internal/ticket/domain"
)

func newTestTicket(eventID uuid.UUID, seat string) *domain.Ticket {
	return &domain.Ticket{
		ID:               uuid.Must(uuid.NewV7()),
		EventID:          eventID,
		ProviderTicketID: uuid.Must(uuid.NewV7()),
		FirstName:        "John",
		LastName:         "Doe",
		Email:            "john@example.com",
		Seat:             seat,
		Status:           domain.TicketStatusActive,
		CreatedAt:        time.Now().UTC(),
	}
}

func TestNewPostgreSQLTicketRepository(t *testing.T) {
	testutil.SkipIfNoPostgres(t)
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)

	repo := NewPostgreSQLTicketRepository(db)
	assert.NotNil(t, repo)
	assert.IsType(t, &PostgreSQLTicketRepository{}, repo)
}

func TestPostgreSQLTicketRepository_Create(t *testing.T) {
	testutil.SkipIfNoPostgres(t)
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLTicketRepository(db)
	ctx := context.Background()

	eventID := testutil.CreateTestEvent(t, db, "postgres", "create-ticket-event")
	ticket := newTestTicket(eventID, "A12")

	err := repo.Create(ctx, ticket)
	require.NoError(t, err)

	read, err := repo.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, read.ID)
	assert.Equal(t, ticket.EventID, read.EventID)
	assert.Equal(t, ticket.ProviderTicketID, read.ProviderTicketID)
	assert.Equal(t, "John", read.FirstName)
	assert.Equal(t, "Doe", read.LastName)
	assert.Equal(t, "john@example.com", read.Email)
	assert.Equal(t, "A12", read.Seat)
	assert.Equal(t, domain.TicketStatusActive, read.Status)
	assert.Nil(t, read.IdempotencyKey)
}

func TestPostgreSQLTicketRepository_Create_SeatTaken(t *testing.T) {
	testutil.SkipIfNoPostgres(t)
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLTicketRepository(db)
	ctx := context.Background()

	eventID := testutil.CreateTestEvent(t, db, "postgres", "seat-taken-event")

	require.NoError(t, repo.Create(ctx, newTestTicket(eventID, "B7")))

	err := repo.Create(ctx, newTestTicket(eventID, "B7"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSeatUnavailable)
}

func TestPostgreSQLTicketRepository_Create_SameSeatDifferentEvents(t *testing.T) {
	testutil.SkipIfNoPostgres(t)
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLTicketRepository(db)
	ctx := context.Background()

	firstEvent := testutil.CreateTestEvent(t, db, "postgres", "first-event")
	secondEvent := testutil.CreateTestEvent(t, db, "postgres", "second-event")

	require.NoError(t, repo.Create(ctx, newTestTicket(firstEvent, "C1")))
	require.NoError(t, repo.Create(ctx, newTestTicket(secondEvent, "C1")))
}

func TestPostgreSQLTicketRepository_Cancel_FreesSeat(t *testing.T) {
	testutil.SkipIfNoPostgres(t)
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLTicketRepository(db)
	ctx := context.Background()

	eventID := testutil.CreateTestEvent(t, db, "postgres", "cancel-event")
	ticket := newTestTicket(eventID, "D4")
	require.NoError(t, repo.Create(ctx, ticket))

	require.NoError(t, repo.Cancel(ctx, ticket.ID))

	read, err := repo.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusCancelled, read.Status)

	// The cancelled ticket no longer holds the seat.
	err = repo.Create(ctx, newTestTicket(eventID, "D4"))
	require.NoError(t, err)
}

func TestPostgreSQLTicketRepository_Cancel_NotFound(t *testing.T) {
	testutil.SkipIfNoPostgres(t)
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLTicketRepository(db)

	err := repo.Cancel(context.Background(), uuid.Must(uuid.NewV7()))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTicketNotFound)
}

func TestPostgreSQLTicketRepository_GetByID_NotFound(t *testing.T) {
	testutil.SkipIfNoPostgres(t)
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLTicketRepository(db)

	_, err := repo.GetByID(context.Background(), uuid.Must(uuid.NewV7()))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTicketNotFound)
}

func TestPostgreSQLTicketRepository_SeatTaken(t *testing.T) {
	testutil.SkipIfNoPostgres(t)
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLTicketRepository(db)
	ctx := context.Background()

	eventID := testutil.CreateTestEvent(t, db, "postgres", "seat-check-event")

	taken, err := repo.SeatTaken(ctx, eventID, "E5")
	require.NoError(t, err)
	assert.False(t, taken)

	ticket := newTestTicket(eventID, "E5")
	require.NoError(t, repo.Create(ctx, ticket))

	taken, err = repo.SeatTaken(ctx, eventID, "E5")
	require.NoError(t, err)
	assert.True(t, taken)

	require.NoError(t, repo.Cancel(ctx, ticket.ID))

	taken, err = repo.SeatTaken(ctx, eventID, "E5")
	require.NoError(t, err)
	assert.False(t, taken)
}
