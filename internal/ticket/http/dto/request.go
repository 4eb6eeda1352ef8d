// Package dto provides data transfer objects for ticket HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	"github.com/google/uuid"

	customValidation "github.com/allisson/tickets/internal/validation"
)

// RegisterTicketRequest contains the parameters for registering a seat.
// The idempotency key is optional; requests without one are always treated as
// independent.
type RegisterTicketRequest struct {
	EventID        string  `json:"event_id"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	Email          string  `json:"email"`
	Seat           string  `json:"seat"`
	IdempotencyKey *string `json:"idempotency_key"`
}

// Validate checks if the register ticket request is valid.
func (r *RegisterTicketRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.EventID,
			validation.Required,
			validation.By(validateUUID),
		),
		validation.Field(&r.FirstName,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 100),
		),
		validation.Field(&r.LastName,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 100),
		),
		validation.Field(&r.Email,
			validation.Required,
			customValidation.NotBlank,
			customValidation.Email,
		),
		validation.Field(&r.Seat,
			validation.Required,
			customValidation.SeatLabel,
		),
		validation.Field(&r.IdempotencyKey,
			validation.When(r.IdempotencyKey != nil,
				validation.Length(1, 255),
			),
		),
	)
}

// validateUUID validates that a string field is a well-formed UUID.
func validateUUID(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_uuid_type", "must be a string")
	}
	if _, err := uuid.Parse(s); err != nil {
		return validation.NewError("validation_uuid", "must be a valid UUID")
	}
	return nil
}
