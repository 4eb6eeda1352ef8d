// Package provider implements the HTTP client for the upstream Events Provider API.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	apperrors "github.com/allisson/tickets/internal/errors"
)

// PlaceData is a venue as returned by the Events Provider.
type PlaceData struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	City         string  `json:"city"`
	Address      string  `json:"address"`
	SeatsPattern *string `json:"seats_pattern"`
}

// EventData is an event as returned by the Events Provider.
type EventData struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	Place                PlaceData `json:"place"`
	EventTime            string    `json:"event_time"`
	RegistrationDeadline string    `json:"registration_deadline"`
	Status               string    `json:"status"`
	NumberOfVisitors     int       `json:"number_of_visitors"`
	ChangedAt            string    `json:"changed_at"`
	StatusChangedAt      string    `json:"status_changed_at"`
}

// EventsPage is one page of the cursor-paginated events listing.
type EventsPage struct {
	Count    int         `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  []EventData `json:"results"`
}

// Client is an HTTP client for the Events Provider API. All requests share a
// client-side rate limiter so bulk synchronization cannot flood the provider.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new Events Provider client. requestsPerSecond bounds the
// outbound request rate; zero or negative disables the limit.
func NewClient(baseURL, apiKey string, timeout time.Duration, requestsPerSecond float64) *Client {
	var limiter *rate.Limiter
	if requestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
	}
}

// Events fetches one page of events changed at or after changedAt (YYYY-MM-DD).
func (c *Client) Events(ctx context.Context, changedAt string, cursor string) (*EventsPage, error) {
	params := url.Values{}
	params.Set("changed_at", changedAt)
	if cursor != "" {
		params.Set("cursor", cursor)
	}

	endpoint := fmt.Sprintf("%s/api/events/?%s", c.baseURL, params.Encode())
	return c.eventsByURL(ctx, endpoint)
}

// EventsByURL fetches a page of events by full URL (the pagination next link).
func (c *Client) EventsByURL(ctx context.Context, pageURL string) (*EventsPage, error) {
	return c.eventsByURL(ctx, pageURL)
}

func (c *Client) eventsByURL(ctx context.Context, pageURL string) (*EventsPage, error) {
	body, err := c.do(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}

	var page EventsPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, apperrors.Wrap(err, "failed to decode events page")
	}
	return &page, nil
}

// Seats fetches the available seats for an event.
func (c *Client) Seats(ctx context.Context, eventID string) ([]string, error) {
	endpoint := fmt.Sprintf("%s/api/events/%s/seats/", c.baseURL, eventID)

	body, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Seats []string `json:"seats"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, apperrors.Wrap(err, "failed to decode seats response")
	}
	return payload.Seats, nil
}

// RegisterInput holds the registrant fields sent to the provider.
type RegisterInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Seat      string `json:"seat"`
}

// Register registers a seat with the provider and returns the provider ticket id.
func (c *Client) Register(ctx context.Context, eventID string, input RegisterInput) (string, error) {
	endpoint := fmt.Sprintf("%s/api/events/%s/register/", c.baseURL, eventID)

	body, err := c.do(ctx, http.MethodPost, endpoint, input)
	if err != nil {
		return "", err
	}

	var payload struct {
		TicketID string `json:"ticket_id"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", apperrors.Wrap(err, "failed to decode register response")
	}
	return payload.TicketID, nil
}

// Unregister cancels a registration with the provider.
func (c *Client) Unregister(ctx context.Context, eventID, ticketID string) error {
	endpoint := fmt.Sprintf("%s/api/events/%s/unregister/", c.baseURL, eventID)

	_, err := c.do(ctx, http.MethodDelete, endpoint, map[string]string{"ticket_id": ticketID})
	return err
}

// do performs a request with the provider headers and maps failures onto the
// domain error taxonomy: 5xx and transport errors are ErrUpstreamUnavailable,
// other non-2xx statuses are ErrUnprocessable.
func (c *Client) do(ctx context.Context, method, endpoint string, payload any) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, apperrors.Wrap(err, "rate limiter wait interrupted")
		}
	}

	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to encode request body")
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create request")
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("accept", "application/json")
	if payload != nil {
		req.Header.Set("content-type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUpstreamUnavailable, err.Error())
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUpstreamUnavailable, err.Error())
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, nil
	case resp.StatusCode >= 500:
		return nil, apperrors.Wrap(apperrors.ErrUpstreamUnavailable,
			fmt.Sprintf("events provider returned %d", resp.StatusCode))
	default:
		return nil, apperrors.Wrap(apperrors.ErrUnprocessable,
			fmt.Sprintf("events provider rejected request with %d: %s", resp.StatusCode, string(body)))
	}
}
