// Package dto provides data transfer objects for event HTTP responses.
package dto

import "time"

// PlaceResponse represents a venue in API responses.
type PlaceResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	City    string `json:"city"`
	Address string `json:"address"`
}

// EventResponse represents an event in API responses.
type EventResponse struct {
	ID                   string         `json:"id"`
	Name                 string         `json:"name"`
	Place                *PlaceResponse `json:"place,omitempty"`
	EventTime            time.Time      `json:"event_time"`
	RegistrationDeadline time.Time      `json:"registration_deadline"`
	Status               string         `json:"status"`
	NumberOfVisitors     int            `json:"number_of_visitors"`
}

// EventListResponse is a paginated list of events.
type EventListResponse struct {
	Count  int             `json:"count"`
	Events []EventResponse `json:"events"`
}

// SeatsResponse lists the currently available seats for an event.
type SeatsResponse struct {
	Seats []string `json:"seats"`
}
