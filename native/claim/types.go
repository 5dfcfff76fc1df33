// Package claim implements the Claim Engine: the governed,
// deposit-gated, timelocked claim lifecycle that ultimately dispatches
// slash to the Pool Engine.
package claim

import (
	"math/big"

	"github.com/satsurance/pool/crypto"
)

// Status is a closed tagged status, never a stringly-typed enum.
type Status int

const (
	StatusPending Status = iota
	StatusApproved
	StatusExecuting
	StatusExecuted
	StatusRejected
	StatusSpam
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusApproved:
		return "approved"
	case StatusExecuting:
		return "executing"
	case StatusExecuted:
		return "executed"
	case StatusRejected:
		return "rejected"
	case StatusSpam:
		return "spam"
	default:
		return "unknown"
	}
}

// DefaultTimelockDuration is the claim execution timelock default, 24h in
// seconds.
const DefaultTimelockDuration int64 = 24 * 3600

// Claim is a single proposed insurance payout working through the
// governed lifecycle.
type Claim struct {
	ID             uint64
	Proposer       crypto.Address
	Receiver       crypto.Address
	Amount         *big.Int
	PoolCanisterID string
	Description    string
	Status         Status
	CreatedAt      int64
	ApprovedAt     int64
	ApprovedBy     crypto.Address
	DepositAmount  *big.Int
	Spam           bool
}

// Governance holds the singleton governance state.
type Governance struct {
	Owner              crypto.Address
	Approvers          map[string]bool
	ExecutorPrincipal  crypto.Address
	LedgerCanisterID   string
	ApprovalPeriod     int64
	ExecutionTimeout   int64
	ClaimDeposit       *big.Int
}
