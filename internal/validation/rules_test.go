package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/allisson/tickets/internal/errors"
)

func TestEmail(t *testing.T) {
	tests := []struct {
		name      string
		email     string
		shouldErr bool
	}{
		{"valid email", "john@example.com", false},
		{"valid email with plus", "john+tag@example.com", false},
		{"valid email with subdomain", "john@mail.example.com", false},
		{"missing at sign", "johnexample.com", true},
		{"missing domain", "john@", true},
		{"missing tld", "john@example", true},
		{"contains spaces", "john doe@example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Email.Validate(tt.email)
			if tt.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSeatLabel(t *testing.T) {
	tests := []struct {
		name      string
		seat      string
		shouldErr bool
	}{
		{"single letter row", "A12", false},
		{"double letter row", "BB3", false},
		{"triple letter row", "AAA1", false},
		{"lowercase row", "a12", false},
		{"four digit number", "A1234", false},
		{"number first", "12A", true},
		{"no number", "AB", true},
		{"no row", "12", true},
		{"too many letters", "ABCD1", true},
		{"too many digits", "A12345", true},
		{"empty", "", true},
		{"contains space", "A 12", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := SeatLabel.Validate(tt.seat)
			if tt.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNotBlank(t *testing.T) {
	assert.NoError(t, NotBlank.Validate("John"))
	assert.Error(t, NotBlank.Validate(""))
	assert.Error(t, NotBlank.Validate("   "))
	assert.Error(t, NotBlank.Validate("\t\n"))
}

func TestNoWhitespace(t *testing.T) {
	assert.NoError(t, NoWhitespace.Validate("John"))
	assert.Error(t, NoWhitespace.Validate(" John"))
	assert.Error(t, NoWhitespace.Validate("John "))
}

func TestWrapValidationError(t *testing.T) {
	assert.NoError(t, WrapValidationError(nil))

	err := WrapValidationError(assert.AnError)
	assert.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
