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

func createTicketFixture(t *testing.T, repo *PostgreSQLTicketRepository, eventID uuid.UUID, seat string) *domain.Ticket {
	t.Helper()

	ticket := newTestTicket(eventID, seat)
	require.NoError(t, repo.Create(context.Background(), ticket))
	return ticket
}

func TestPostgreSQLIdempotencyRepository_Create(t *testing.T) {
	testutil.SkipIfNoPostgres(t)
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLIdempotencyRepository(db)
	ctx := context.Background()

	eventID := testutil.CreateTestEvent(t, db, "postgres", "idempotency-event")
	ticket := createTicketFixture(t, NewPostgreSQLTicketRepository(db), eventID, "A1")

	record := &domain.IdempotencyRecord{
		Key:         "order-42",
		Fingerprint: domain.ComputeFingerprint(domain.FingerprintInput{
			EventID:   eventID,
			FirstName: "John",
			LastName:  "Doe",
			Email:     "john@example.com",
			Seat:      "A1",
		}),
		TicketID: ticket.ID,
	}

	err := repo.Create(ctx, record)
	require.NoError(t, err)

	read, err := repo.GetByKey(ctx, "order-42")
	require.NoError(t, err)
	require.NotNil(t, read)
	assert.Equal(t, record.Key, read.Key)
	assert.Equal(t, record.Fingerprint, read.Fingerprint)
	assert.Equal(t, ticket.ID, read.TicketID)
}

func TestPostgreSQLIdempotencyRepository_Create_KeyTaken(t *testing.T) {
	testutil.SkipIfNoPostgres(t)
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLIdempotencyRepository(db)
	ctx := context.Background()

	eventID := testutil.CreateTestEvent(t, db, "postgres", "key-taken-event")
	ticketRepo := NewPostgreSQLTicketRepository(db)
	first := createTicketFixture(t, ticketRepo, eventID, "A1")
	second := createTicketFixture(t, ticketRepo, eventID, "A2")

	require.NoError(t, repo.Create(ctx, &domain.IdempotencyRecord{
		Key:         "order-42",
		Fingerprint: "fingerprint-1",
		TicketID:    first.ID,
	}))

	err := repo.Create(ctx, &domain.IdempotencyRecord{
		Key:         "order-42",
		Fingerprint: "fingerprint-2",
		TicketID:    second.ID,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrIdempotencyKeyTaken)
}

func TestPostgreSQLIdempotencyRepository_GetByKey_Missing(t *testing.T) {
	testutil.SkipIfNoPostgres(t)
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLIdempotencyRepository(db)

	record, err := repo.GetByKey(context.Background(), "unknown-key")
	require.NoError(t, err)
	assert.Nil(t, record)
}
