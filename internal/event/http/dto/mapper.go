package dto

import "github.com/allisson/tickets/internal/event/domain"

// MapEventToResponse converts a domain event into its API representation.
func MapEventToResponse(event *domain.Event) EventResponse {
	response := EventResponse{
		ID:                   event.ID.String(),
		Name:                 event.Name,
		EventTime:            event.EventTime,
		RegistrationDeadline: event.RegistrationDeadline,
		Status:               string(event.Status),
		NumberOfVisitors:     event.NumberOfVisitors,
	}
	if event.Place != nil {
		response.Place = &PlaceResponse{
			ID:      event.Place.ID.String(),
			Name:    event.Place.Name,
			City:    event.Place.City,
			Address: event.Place.Address,
		}
	}
	return response
}

// MapEventsToListResponse converts a page of events into the list response.
func MapEventsToListResponse(events []*domain.Event, count int) EventListResponse {
	responses := make([]EventResponse, 0, len(events))
	for _, event := range events {
		responses = append(responses, MapEventToResponse(event))
	}
	return EventListResponse{Count: count, Events: responses}
}
