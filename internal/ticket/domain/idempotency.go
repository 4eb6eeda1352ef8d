package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/google/uuid"
)

// IdempotencyRecord maps a client-supplied idempotency key to the ticket it
// produced and a fingerprint of the request that created it. A given key maps
// to at most one fingerprint and one ticket.
type IdempotencyRecord struct {
	Key         string
	Fingerprint string
	TicketID    uuid.UUID
}

// FingerprintInput holds the client-significant fields of a registration request.
type FingerprintInput struct {
	EventID   uuid.UUID
	FirstName string
	LastName  string
	Email     string
	Seat      string
}

// ComputeFingerprint returns a deterministic SHA-256 digest of the
// client-significant registration fields. Marshaling a struct with fixed
// field order keeps the digest independent of how the request arrived.
func ComputeFingerprint(input FingerprintInput) string {
	data := struct {
		EventID   string `json:"event_id"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Email     string `json:"email"`
		Seat      string `json:"seat"`
	}{
		EventID:   input.EventID.String(),
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Seat:      input.Seat,
	}

	raw, _ := json.Marshal(data)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
