package claim

import (
	"math/big"

	claimerrors "github.com/satsurance/pool/core/errors"
	"github.com/satsurance/pool/crypto"
)

// NewGovernance constructs the initial governance singleton for a fresh
// Claim Engine deployment. The owner is an approver from the start.
func NewGovernance(owner, executorPrincipal crypto.Address, ledgerCanisterID string) *Governance {
	return &Governance{
		Owner:             owner,
		Approvers:         map[string]bool{addrKey(owner): true},
		ExecutorPrincipal: executorPrincipal,
		LedgerCanisterID:  ledgerCanisterID,
		ApprovalPeriod:    DefaultTimelockDuration,
		ExecutionTimeout:  DefaultTimelockDuration,
		ClaimDeposit:      big.NewInt(0),
	}
}

func (e *Engine) requireOwner(caller crypto.Address, gov *Governance) error {
	if !gov.Owner.Equal(caller) {
		return claimerrors.ErrInsufficientPermissions
	}
	return nil
}

// AddApprover grants approval rights to an address. Owner-only.
func (e *Engine) AddApprover(caller, approver crypto.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.guard(); err != nil {
		return err
	}
	gov, err := e.ensureGovernance()
	if err != nil {
		return err
	}
	if err := e.requireOwner(caller, gov); err != nil {
		return err
	}
	gov.Approvers[addrKey(approver)] = true
	return e.state.PutGovernance(gov)
}

// RemoveApprover revokes approval rights. Owner-only; refuses to remove
// the owner itself from the approver set when it was also granted
// approver status, since that path is never how ownership is relinquished.
func (e *Engine) RemoveApprover(caller, approver crypto.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.guard(); err != nil {
		return err
	}
	gov, err := e.ensureGovernance()
	if err != nil {
		return err
	}
	if err := e.requireOwner(caller, gov); err != nil {
		return err
	}
	if gov.Owner.Equal(approver) {
		return claimerrors.ErrInsufficientPermissions
	}
	delete(gov.Approvers, addrKey(approver))
	return e.state.PutGovernance(gov)
}

// SetClaimDeposit updates the deposit required to propose a new claim.
// Owner-only.
func (e *Engine) SetClaimDeposit(caller crypto.Address, amount *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.guard(); err != nil {
		return err
	}
	gov, err := e.ensureGovernance()
	if err != nil {
		return err
	}
	if err := e.requireOwner(caller, gov); err != nil {
		return err
	}
	if amount == nil || amount.Sign() < 0 {
		return claimerrors.ErrInvalidStatus
	}
	gov.ClaimDeposit = new(big.Int).Set(amount)
	return e.state.PutGovernance(gov)
}

// SetExecutionTimeout updates the delay required between a claim's
// approval and its execution. Owner-only.
func (e *Engine) SetExecutionTimeout(caller crypto.Address, seconds int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.guard(); err != nil {
		return err
	}
	gov, err := e.ensureGovernance()
	if err != nil {
		return err
	}
	if err := e.requireOwner(caller, gov); err != nil {
		return err
	}
	if seconds < 0 {
		return claimerrors.ErrInvalidStatus
	}
	gov.ExecutionTimeout = seconds
	return e.state.PutGovernance(gov)
}

// SetApprovalPeriod updates the window during which a pending claim may
// still be approved. Owner-only.
func (e *Engine) SetApprovalPeriod(caller crypto.Address, seconds int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.guard(); err != nil {
		return err
	}
	gov, err := e.ensureGovernance()
	if err != nil {
		return err
	}
	if err := e.requireOwner(caller, gov); err != nil {
		return err
	}
	if seconds < 0 {
		return claimerrors.ErrInvalidStatus
	}
	gov.ApprovalPeriod = seconds
	return e.state.PutGovernance(gov)
}
