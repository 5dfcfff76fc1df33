package claim

import (
	"github.com/google/uuid"

	"github.com/satsurance/pool/crypto"
)

// ClaimEvent is an immutable audit-trail entry appended on every status
// transition, grounded in native/escrow's append-only dispute event log.
type ClaimEvent struct {
	ID        string
	ClaimID   uint64
	Status    Status
	Actor     crypto.Address
	Timestamp int64
	Detail    string
}

func newEvent(claimID uint64, status Status, actor crypto.Address, timestamp int64, detail string) ClaimEvent {
	return ClaimEvent{
		ID:        uuid.New().String(),
		ClaimID:   claimID,
		Status:    status,
		Actor:     actor,
		Timestamp: timestamp,
		Detail:    detail,
	}
}
