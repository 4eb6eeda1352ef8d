// Package notification implements the HTTP client for the Capashino
// notification service.
package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/allisson/tickets/internal/errors"
)

// ErrRejected indicates Capashino rejected the notification outright (4xx
// other than the idempotent-replay 409). Distinguished from transient
// failures for observability; the outbox worker books both as a failed attempt.
var ErrRejected = apperrors.New("notification rejected")

// IsRejected reports whether the delivery failure was a non-retryable rejection.
func IsRejected(err error) bool {
	return apperrors.Is(err, ErrRejected)
}

// Client is an HTTP client for the Capashino notification service.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new Capashino client. The timeout bounds every delivery
// attempt so a hung downstream resolves to a failed attempt instead of a
// stuck worker.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Send delivers a notification via POST /api/notifications.
//
// 201 is success. 409 is also success: Capashino deduplicates by idempotency
// key, so a replayed delivery after a false-negative timeout reports the
// notification already exists. Other 4xx statuses return ErrRejected; 5xx and
// transport errors return ErrUpstreamUnavailable.
func (c *Client) Send(ctx context.Context, message, referenceID, idempotencyKey string) error {
	payload := map[string]string{
		"message":         message,
		"reference_id":    referenceID,
		"idempotency_key": idempotencyKey,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return apperrors.Wrap(err, "failed to encode notification")
	}

	endpoint := c.baseURL + "/api/notifications"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(raw))
	if err != nil {
		return apperrors.Wrap(err, "failed to create request")
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrUpstreamUnavailable, err.Error())
	}
	defer resp.Body.Close() //nolint:errcheck

	body, _ := io.ReadAll(resp.Body)

	switch {
	case resp.StatusCode == http.StatusCreated, resp.StatusCode == http.StatusConflict:
		return nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return apperrors.Wrap(ErrRejected,
			fmt.Sprintf("capashino returned %d: %s", resp.StatusCode, string(body)))
	default:
		return apperrors.Wrap(apperrors.ErrUpstreamUnavailable,
			fmt.Sprintf("capashino returned %d", resp.StatusCode))
	}
}
