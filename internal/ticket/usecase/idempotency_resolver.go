package usecase

import (
	"context"

	"github.com/google/uuid"
)

type decisionKind int

const (
	// decisionProceed means no record exists for the key: continue creating a ticket.
	decisionProceed decisionKind = iota
	// decisionReplay means an identical request already completed: return its ticket.
	decisionReplay
	// decisionConflict means the key was used with a different payload.
	decisionConflict
)

type idempotencyDecision struct {
	Kind     decisionKind
	TicketID uuid.UUID
}

// resolveIdempotency classifies a registration attempt against the stored
// record for its key. An absent record means proceed; a record with the same
// payload fingerprint means replay; a record with a different fingerprint is a
// conflict, the key is bound to another payload forever.
func (uc *TicketUseCase) resolveIdempotency(ctx context.Context, key, fingerprint string) (idempotencyDecision, error) {
	record, err := uc.idempotencyRepo.GetByKey(ctx, key)
	if err != nil {
		return idempotencyDecision{}, err
	}
	if record == nil {
		return idempotencyDecision{Kind: decisionProceed}, nil
	}
	if record.Fingerprint == fingerprint {
		return idempotencyDecision{Kind: decisionReplay, TicketID: record.TicketID}, nil
	}
	return idempotencyDecision{Kind: decisionConflict}, nil
}
