package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/allisson/tickets/internal/event/domain"
)

// MockSyncUseCase is a mock implementation of usecase.UseCase
type MockSyncUseCase struct {
	mock.Mock
}

func (m *MockSyncUseCase) Sync(ctx context.Context, changedAtOverride string) error {
	args := m.Called(ctx, changedAtOverride)
	return args.Error(0)
}

func (m *MockSyncUseCase) Trigger(ctx context.Context, changedAtOverride string) error {
	args := m.Called(ctx, changedAtOverride)
	return args.Error(0)
}

func (m *MockSyncUseCase) Start(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// setupTestHandler creates a test handler with mocked dependencies.
func setupTestHandler(t *testing.T) (*SyncHandler, *MockSyncUseCase) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	mockUseCase := &MockSyncUseCase{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := NewSyncHandler(mockUseCase, logger)

	return handler, mockUseCase
}

// createTestContext creates a test Gin context with the given request.
func createTestContext(method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	return c, w
}

func TestSyncHandler_TriggerHandler(t *testing.T) {
	t.Run("Success_EmptyBody", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		mockUseCase.On("Trigger", mock.Anything, "").Return(nil).Once()

		c, w := createTestContext(http.MethodPost, "/api/sync/trigger", nil)

		handler.TriggerHandler(c)

		assert.Equal(t, http.StatusAccepted, w.Code)

		var response map[string]string
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "sync started", response["status"])
	})

	t.Run("Success_ChangedAtOverride", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		mockUseCase.On("Trigger", mock.Anything, "2026-01-01").Return(nil).Once()

		c, w := createTestContext(http.MethodPost, "/api/sync/trigger", TriggerSyncRequest{ChangedAt: "2026-01-01"})

		handler.TriggerHandler(c)

		assert.Equal(t, http.StatusAccepted, w.Code)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_InvalidChangedAt", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		c, w := createTestContext(http.MethodPost, "/api/sync/trigger", TriggerSyncRequest{ChangedAt: "01/01/2026"})

		handler.TriggerHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockUseCase.AssertNotCalled(t, "Trigger", mock.Anything, mock.Anything)
	})

	t.Run("Error_AlreadyRunning", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		mockUseCase.On("Trigger", mock.Anything, "").Return(domain.ErrSyncAlreadyRunning).Once()

		c, w := createTestContext(http.MethodPost, "/api/sync/trigger", nil)

		handler.TriggerHandler(c)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Error_InvalidJSON", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		req := httptest.NewRequest(http.MethodPost, "/api/sync/trigger", bytes.NewReader([]byte("{invalid")))
		req.Header.Set("Content-Type", "application/json")
		c.Request = req

		handler.TriggerHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockUseCase.AssertNotCalled(t, "Trigger", mock.Anything, mock.Anything)
	})
}
