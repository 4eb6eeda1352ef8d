// Package domain defines the event catalog domain entities and types.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/allisson/tickets/internal/errors"
)

// EventStatus values mirror the upstream Events Provider statuses.
type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPublished EventStatus = "published"
	EventStatusClosed    EventStatus = "closed"
	EventStatusFinished  EventStatus = "finished"
)

// Place represents a venue mirrored from the Events Provider.
type Place struct {
	ID           uuid.UUID
	Name         string
	City         string
	Address      string
	SeatsPattern *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Event represents an event mirrored from the Events Provider.
type Event struct {
	ID                   uuid.UUID
	Name                 string
	PlaceID              uuid.UUID
	Place                *Place
	EventTime            time.Time
	RegistrationDeadline time.Time
	Status               EventStatus
	NumberOfVisitors     int
	ChangedAt            *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// OpenForRegistration reports whether tickets can be registered for the event
// at the given time.
func (e *Event) OpenForRegistration(now time.Time) error {
	if e.Status != EventStatusPublished {
		if e.Status == EventStatusFinished {
			return ErrEventFinished
		}
		return ErrEventNotPublished
	}
	if e.RegistrationDeadline.Before(now) {
		return ErrRegistrationClosed
	}
	return nil
}

// Domain-specific errors for event operations.
var (
	// ErrEventNotFound indicates the requested event does not exist.
	ErrEventNotFound = errors.Wrap(errors.ErrNotFound, "event not found")

	// ErrEventNotPublished indicates the event is not open for registration.
	ErrEventNotPublished = errors.Wrap(errors.ErrUnprocessable, "event is not published for registration")

	// ErrEventFinished indicates the event has already finished.
	ErrEventFinished = errors.Wrap(errors.ErrUnprocessable, "event has finished")

	// ErrRegistrationClosed indicates the registration deadline has passed.
	ErrRegistrationClosed = errors.Wrap(errors.ErrUnprocessable, "registration deadline has passed")
)
