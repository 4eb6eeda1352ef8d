package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/tickets/internal/testutil"
	"github.com/allisson/tickets/internal/ticket/domain"
)

func TestMySQLTicketRepository_Create(t *testing.T) {
	testutil.SkipIfNoMySQL(t)
	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupMySQLDB(t, db)

	repo := NewMySQLTicketRepository(db)
	ctx := context.Background()

	eventID := testutil.CreateTestEvent(t, db, "mysql", "create-ticket-event")
	ticket := newTestTicket(eventID, "A12")

	err := repo.Create(ctx, ticket)
	require.NoError(t, err)

	read, err := repo.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, read.ID)
	assert.Equal(t, ticket.EventID, read.EventID)
	assert.Equal(t, "A12", read.Seat)
	assert.Equal(t, domain.TicketStatusActive, read.Status)
}

func TestMySQLTicketRepository_Create_SeatTaken(t *testing.T) {
	testutil.SkipIfNoMySQL(t)
	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupMySQLDB(t, db)

	repo := NewMySQLTicketRepository(db)
	ctx := context.Background()

	eventID := testutil.CreateTestEvent(t, db, "mysql", "seat-taken-event")

	require.NoError(t, repo.Create(ctx, newTestTicket(eventID, "B7")))

	err := repo.Create(ctx, newTestTicket(eventID, "B7"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSeatUnavailable)
}

func TestMySQLTicketRepository_Cancel_FreesSeat(t *testing.T) {
	testutil.SkipIfNoMySQL(t)
	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupMySQLDB(t, db)

	repo := NewMySQLTicketRepository(db)
	ctx := context.Background()

	eventID := testutil.CreateTestEvent(t, db, "mysql", "cancel-event")
	ticket := newTestTicket(eventID, "D4")
	require.NoError(t, repo.Create(ctx, ticket))

	require.NoError(t, repo.Cancel(ctx, ticket.ID))

	read, err := repo.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusCancelled, read.Status)

	// The NULLed active marker frees the seat in the unique key.
	require.NoError(t, repo.Create(ctx, newTestTicket(eventID, "D4")))
}

func TestMySQLTicketRepository_GetByID_NotFound(t *testing.T) {
	testutil.SkipIfNoMySQL(t)
	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupMySQLDB(t, db)

	repo := NewMySQLTicketRepository(db)

	_, err := repo.GetByID(context.Background(), uuid.Must(uuid.NewV7()))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTicketNotFound)
}

func TestMySQLIdempotencyRepository_CreateAndGet(t *testing.T) {
	testutil.SkipIfNoMySQL(t)
	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupMySQLDB(t, db)

	repo := NewMySQLIdempotencyRepository(db)
	ticketRepo := NewMySQLTicketRepository(db)
	ctx := context.Background()

	eventID := testutil.CreateTestEvent(t, db, "mysql", "idempotency-event")
	ticket := newTestTicket(eventID, "A1")
	require.NoError(t, ticketRepo.Create(ctx, ticket))

	record := &domain.IdempotencyRecord{
		Key: "order-42",
		Fingerprint: domain.ComputeFingerprint(domain.FingerprintInput{
			EventID:   eventID,
			FirstName: "John",
			LastName:  "Doe",
			Email:     "john@example.com",
			Seat:      "A1",
		}),
		TicketID: ticket.ID,
	}
	require.NoError(t, repo.Create(ctx, record))

	read, err := repo.GetByKey(ctx, "order-42")
	require.NoError(t, err)
	require.NotNil(t, read)
	assert.Equal(t, record.Fingerprint, read.Fingerprint)
	assert.Equal(t, ticket.ID, read.TicketID)

	err = repo.Create(ctx, &domain.IdempotencyRecord{
		Key:         "order-42",
		Fingerprint: record.Fingerprint,
		TicketID:    ticket.ID,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrIdempotencyKeyTaken)

	missing, err := repo.GetByKey(ctx, "unknown-key")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
