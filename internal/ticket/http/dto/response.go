package dto

import "time"

// TicketResponse represents a ticket in API responses.
type TicketResponse struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Seat      string    `json:"seat"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
