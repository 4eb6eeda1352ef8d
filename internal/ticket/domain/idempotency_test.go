package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestComputeFingerprint(t *testing.T) {
	eventID := uuid.Must(uuid.NewV7())
	input := FingerprintInput{
		EventID:   eventID,
		FirstName: "John",
		LastName:  "Doe",
		Email:     "john@example.com",
		Seat:      "A12",
	}

	first := ComputeFingerprint(input)
	second := ComputeFingerprint(input)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
}

func TestComputeFingerprint_SensitiveToEveryField(t *testing.T) {
	eventID := uuid.Must(uuid.NewV7())
	base := FingerprintInput{
		EventID:   eventID,
		FirstName: "John",
		LastName:  "Doe",
		Email:     "john@example.com",
		Seat:      "A12",
	}
	baseFingerprint := ComputeFingerprint(base)

	variations := []FingerprintInput{
		{EventID: uuid.Must(uuid.NewV7()), FirstName: "John", LastName: "Doe", Email: "john@example.com", Seat: "A12"},
		{EventID: eventID, FirstName: "Jane", LastName: "Doe", Email: "john@example.com", Seat: "A12"},
		{EventID: eventID, FirstName: "John", LastName: "Smith", Email: "john@example.com", Seat: "A12"},
		{EventID: eventID, FirstName: "John", LastName: "Doe", Email: "jane@example.com", Seat: "A12"},
		{EventID: eventID, FirstName: "John", LastName: "Doe", Email: "john@example.com", Seat: "B1"},
	}

	for _, variation := range variations {
		assert.NotEqual(t, baseFingerprint, ComputeFingerprint(variation))
	}
}
