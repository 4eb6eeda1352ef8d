// Package http provides HTTP handlers for the catalog sync.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/allisson/tickets/internal/httputil"
	"github.com/allisson/tickets/internal/sync/usecase"
)

// TriggerSyncRequest contains the optional parameters for a manual sync run.
type TriggerSyncRequest struct {
	ChangedAt string `json:"changed_at"`
}

// SyncHandler handles catalog sync HTTP requests
type SyncHandler struct {
	syncUseCase usecase.UseCase
	logger      *slog.Logger
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(syncUseCase usecase.UseCase, logger *slog.Logger) *SyncHandler {
	return &SyncHandler{
		syncUseCase: syncUseCase,
		logger:      logger,
	}
}

// TriggerHandler starts a catalog sync in the background.
// POST /api/sync/trigger - Returns 202 Accepted, or 409 Conflict when a sync
// is already running. An optional changed_at (YYYY-MM-DD) overrides the
// stored watermark.
func (h *SyncHandler) TriggerHandler(c *gin.Context) {
	var req TriggerSyncRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httputil.HandleBadRequestGin(c, err, h.logger)
			return
		}
	}

	if req.ChangedAt != "" {
		if _, err := time.Parse("2006-01-02", req.ChangedAt); err != nil {
			httputil.HandleValidationErrorGin(c,
				fmt.Errorf("invalid changed_at format: must be YYYY-MM-DD"),
				h.logger)
			return
		}
	}

	if err := h.syncUseCase.Trigger(c.Request.Context(), req.ChangedAt); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "sync started"})
}
