// Package domain defines the core outbox domain entities and types.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// RecordStatus represents the status of an outbox record
type RecordStatus string

const (
	RecordStatusPending RecordStatus = "pending"
	RecordStatusSent    RecordStatus = "sent"
	RecordStatusFailed  RecordStatus = "failed"
)

// Payload is the notification payload delivered to the downstream service.
// The idempotency key is fixed when the record is created and reused verbatim
// on every delivery attempt, so a retry after a timeout cannot double-notify
// a downstream that deduplicates by key.
type Payload struct {
	Message        string `json:"message"`
	ReferenceID    string `json:"reference_id"`
	IdempotencyKey string `json:"idempotency_key"`
}

// Record represents a durable notification in the transactional outbox.
// Exactly one record is created per successful ticket insertion, in the same
// transaction. Once sent the record is terminal; once attempts reach the
// configured maximum without success the record is dead-lettered as failed.
type Record struct {
	ID            uuid.UUID
	TicketID      uuid.UUID
	Payload       Payload
	Status        RecordStatus
	AttemptCount  int
	LastAttemptAt *time.Time
	CreatedAt     time.Time
}

// NewTicketPurchasedRecord builds a pending outbox record for a freshly
// registered ticket.
func NewTicketPurchasedRecord(ticketID uuid.UUID, message string) *Record {
	return &Record{
		ID:       uuid.Must(uuid.NewV7()),
		TicketID: ticketID,
		Payload: Payload{
			Message:        message,
			ReferenceID:    ticketID.String(),
			IdempotencyKey: "ticket-" + ticketID.String(),
		},
		Status: RecordStatusPending,
	}
}
