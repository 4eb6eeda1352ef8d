package usecase

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	apperrors "github.com/allisson/tickets/internal/errors"
	"github.com/allisson/tickets/internal/notification"
	"github.com/allisson/tickets/internal/outbox/domain"
)

// MockTxManager is a mock implementation of database.TxManager
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Get(0) != nil {
		return args.Error(0)
	}
	// Execute the function to test the logic inside
	return fn(ctx)
}

// MockOutboxRepository is a mock implementation of OutboxRepository
type MockOutboxRepository struct {
	mock.Mock
}

func (m *MockOutboxRepository) GetPending(ctx context.Context, limit, maxAttempts int) ([]*domain.Record, error) {
	args := m.Called(ctx, limit, maxAttempts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Record), args.Error(1)
}

func (m *MockOutboxRepository) Update(ctx context.Context, record *domain.Record) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// MockNotifier is a mock implementation of Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, message, referenceID, idempotencyKey string) error {
	args := m.Called(ctx, message, referenceID, idempotencyKey)
	return args.Error(0)
}

const testMaxAttempts = 3

func newOutboxUseCase(repo *MockOutboxRepository, notifier *MockNotifier) *OutboxUseCase {
	txManager := &MockTxManager{}
	txManager.On("WithTx", mock.Anything, mock.AnythingOfType("func(context.Context) error")).Return(nil)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewOutboxUseCase(txManager, repo, notifier, 10*time.Millisecond, testMaxAttempts, 50, nil, logger)
}

func pendingRecord() *domain.Record {
	ticketID := uuid.Must(uuid.NewV7())
	return domain.NewTicketPurchasedRecord(ticketID, "You have been successfully registered for Go Conference")
}

func TestOutboxUseCase_ProcessRecords_DeliversPending(t *testing.T) {
	repo := &MockOutboxRepository{}
	notifier := &MockNotifier{}
	useCase := newOutboxUseCase(repo, notifier)

	ctx := context.Background()
	record := pendingRecord()

	repo.On("GetPending", ctx, 50, testMaxAttempts).Return([]*domain.Record{record}, nil)
	notifier.On("Send", ctx, record.Payload.Message, record.Payload.ReferenceID, record.Payload.IdempotencyKey).
		Return(nil)
	repo.On("Update", ctx, record).Return(nil)

	err := useCase.ProcessRecords(ctx)

	require.NoError(t, err)
	assert.Equal(t, domain.RecordStatusSent, record.Status)
	assert.Equal(t, 1, record.AttemptCount)
	require.NotNil(t, record.LastAttemptAt)

	repo.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestOutboxUseCase_ProcessRecords_RetryKeepsSameIdempotencyKey(t *testing.T) {
	repo := &MockOutboxRepository{}
	notifier := &MockNotifier{}
	useCase := newOutboxUseCase(repo, notifier)

	ctx := context.Background()
	record := pendingRecord()
	originalKey := record.Payload.IdempotencyKey

	repo.On("GetPending", ctx, 50, testMaxAttempts).Return([]*domain.Record{record}, nil)
	repo.On("Update", ctx, record).Return(nil)

	// First tick fails with a retryable error, second tick succeeds. Both
	// deliveries must carry the key fixed at record creation.
	notifier.On("Send", ctx, record.Payload.Message, record.Payload.ReferenceID, originalKey).
		Return(apperrors.ErrUpstreamUnavailable).Once()
	notifier.On("Send", ctx, record.Payload.Message, record.Payload.ReferenceID, originalKey).
		Return(nil).Once()

	require.NoError(t, useCase.ProcessRecords(ctx))
	assert.Equal(t, domain.RecordStatusPending, record.Status)
	assert.Equal(t, 1, record.AttemptCount)

	require.NoError(t, useCase.ProcessRecords(ctx))
	assert.Equal(t, domain.RecordStatusSent, record.Status)
	assert.Equal(t, 2, record.AttemptCount)

	notifier.AssertExpectations(t)
}

func TestOutboxUseCase_ProcessRecords_DeadLetterAfterMaxAttempts(t *testing.T) {
	repo := &MockOutboxRepository{}
	notifier := &MockNotifier{}
	useCase := newOutboxUseCase(repo, notifier)

	ctx := context.Background()
	record := pendingRecord()
	record.AttemptCount = testMaxAttempts - 1

	repo.On("GetPending", ctx, 50, testMaxAttempts).Return([]*domain.Record{record}, nil)
	notifier.On("Send", ctx, record.Payload.Message, record.Payload.ReferenceID, record.Payload.IdempotencyKey).
		Return(apperrors.ErrUpstreamUnavailable)
	repo.On("Update", ctx, record).Return(nil)

	require.NoError(t, useCase.ProcessRecords(ctx))

	assert.Equal(t, domain.RecordStatusFailed, record.Status)
	assert.Equal(t, testMaxAttempts, record.AttemptCount)
}

func TestOutboxUseCase_ProcessRecords_RejectionIsRetried(t *testing.T) {
	repo := &MockOutboxRepository{}
	notifier := &MockNotifier{}
	useCase := newOutboxUseCase(repo, notifier)

	ctx := context.Background()
	record := pendingRecord()

	repo.On("GetPending", ctx, 50, testMaxAttempts).Return([]*domain.Record{record}, nil)
	notifier.On("Send", ctx, record.Payload.Message, record.Payload.ReferenceID, record.Payload.IdempotencyKey).
		Return(notification.ErrRejected)
	repo.On("Update", ctx, record).Return(nil)

	require.NoError(t, useCase.ProcessRecords(ctx))

	// A rejection books the same as a timeout: the attempt is counted and the
	// record stays pending for the next tick.
	assert.Equal(t, domain.RecordStatusPending, record.Status)
	assert.Equal(t, 1, record.AttemptCount)
	assert.NotNil(t, record.LastAttemptAt)
}

func TestOutboxUseCase_ProcessRecords_RejectionDeadLettersAtMaxAttempts(t *testing.T) {
	repo := &MockOutboxRepository{}
	notifier := &MockNotifier{}
	useCase := newOutboxUseCase(repo, notifier)

	ctx := context.Background()
	record := pendingRecord()
	record.AttemptCount = testMaxAttempts - 1

	repo.On("GetPending", ctx, 50, testMaxAttempts).Return([]*domain.Record{record}, nil)
	notifier.On("Send", ctx, record.Payload.Message, record.Payload.ReferenceID, record.Payload.IdempotencyKey).
		Return(notification.ErrRejected)
	repo.On("Update", ctx, record).Return(nil)

	require.NoError(t, useCase.ProcessRecords(ctx))

	assert.Equal(t, domain.RecordStatusFailed, record.Status)
	assert.Equal(t, testMaxAttempts, record.AttemptCount)
}

func TestOutboxUseCase_ProcessRecords_FailureDoesNotStopBatch(t *testing.T) {
	repo := &MockOutboxRepository{}
	notifier := &MockNotifier{}
	useCase := newOutboxUseCase(repo, notifier)

	ctx := context.Background()
	failing := pendingRecord()
	succeeding := pendingRecord()

	repo.On("GetPending", ctx, 50, testMaxAttempts).Return([]*domain.Record{failing, succeeding}, nil)
	notifier.On("Send", ctx, failing.Payload.Message, failing.Payload.ReferenceID, failing.Payload.IdempotencyKey).
		Return(apperrors.ErrUpstreamUnavailable)
	notifier.On("Send", ctx, succeeding.Payload.Message, succeeding.Payload.ReferenceID, succeeding.Payload.IdempotencyKey).
		Return(nil)
	repo.On("Update", ctx, failing).Return(nil)
	repo.On("Update", ctx, succeeding).Return(nil)

	require.NoError(t, useCase.ProcessRecords(ctx))

	assert.Equal(t, domain.RecordStatusPending, failing.Status)
	assert.Equal(t, domain.RecordStatusSent, succeeding.Status)
	repo.AssertExpectations(t)
}

func TestOutboxUseCase_ProcessRecords_GetPendingError(t *testing.T) {
	repo := &MockOutboxRepository{}
	notifier := &MockNotifier{}
	useCase := newOutboxUseCase(repo, notifier)

	ctx := context.Background()
	repo.On("GetPending", ctx, 50, testMaxAttempts).Return(nil, assert.AnError)

	err := useCase.ProcessRecords(ctx)

	require.Error(t, err)
	notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOutboxUseCase_Start_StopsOnContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	repo := &MockOutboxRepository{}
	notifier := &MockNotifier{}
	useCase := newOutboxUseCase(repo, notifier)

	repo.On("GetPending", mock.Anything, 50, testMaxAttempts).Return([]*domain.Record{}, nil)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- useCase.Start(ctx)
	}()

	// Let the worker tick at least once before stopping it.
	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after context cancellation")
	}
}
