package claim

import (
	"context"
	"math/big"

	"github.com/google/uuid"

	claimerrors "github.com/satsurance/pool/core/errors"
	"github.com/satsurance/pool/crypto"
	"github.com/satsurance/pool/ledger"
)

func (e *Engine) ensureGovernance() (*Governance, error) {
	gov, err := e.state.GetGovernance()
	if err != nil {
		return nil, err
	}
	if gov.Approvers == nil {
		gov.Approvers = make(map[string]bool)
	}
	if gov.ClaimDeposit == nil {
		gov.ClaimDeposit = big.NewInt(0)
	}
	return gov, nil
}

// AddClaim proposes a new claim. When claim_deposit > 0 the proposer must
// have pre-funded their per-proposer derived deposit subaccount with at
// least that amount.
func (e *Engine) AddClaim(ctx context.Context, proposer, receiver crypto.Address, amount *big.Int, poolCanisterID, description string) (*Claim, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.guard(); err != nil {
		return nil, err
	}
	gov, err := e.ensureGovernance()
	if err != nil {
		return nil, err
	}

	depositAmount := big.NewInt(0)
	if gov.ClaimDeposit.Sign() > 0 {
		sub := crypto.ClaimDepositSubaccount(proposer)
		balance, err := e.ledger.BalanceOf(ctx, ledger.Account{Owner: e.ownAccount.Owner, Subaccount: &sub})
		if err != nil {
			return nil, claimerrors.PoolCallFailed(err.Error())
		}
		if balance.Cmp(gov.ClaimDeposit) < 0 {
			return nil, claimerrors.ErrInsufficientDeposit
		}
		depositAmount = new(big.Int).Set(gov.ClaimDeposit)
	}

	id, err := e.state.NextClaimID()
	if err != nil {
		return nil, err
	}
	now := e.now()
	c := &Claim{
		ID:             id,
		Proposer:       proposer,
		Receiver:       receiver,
		Amount:         new(big.Int).Set(amount),
		PoolCanisterID: poolCanisterID,
		Description:    description,
		Status:         StatusPending,
		CreatedAt:      now,
		DepositAmount:  depositAmount,
	}
	if err := e.state.PutClaim(c); err != nil {
		return nil, err
	}
	return c, e.state.AppendEvent(newEvent(c.ID, StatusPending, proposer, now, ""))
}

func (e *Engine) isApprover(gov *Governance, addr crypto.Address) bool {
	return gov.Approvers[addrKey(addr)]
}

// ApproveClaim transitions a Pending claim to Approved, refunding the
// proposer's deposit immediately (the Open Question resolution recorded
// in DESIGN.md).
func (e *Engine) ApproveClaim(ctx context.Context, approver crypto.Address, claimID uint64) (*Claim, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.guard(); err != nil {
		return nil, err
	}
	gov, err := e.ensureGovernance()
	if err != nil {
		return nil, err
	}
	if !e.isApprover(gov, approver) {
		return nil, claimerrors.ErrNotApprover
	}
	if err := e.checkApproverQuota(approver); err != nil {
		return nil, err
	}

	c, err := e.state.GetClaim(claimID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, claimerrors.ErrNotFound
	}
	if c.Status == StatusApproved || c.Status == StatusExecuted || c.Status == StatusExecuting {
		return nil, claimerrors.ErrAlreadyApproved
	}
	if c.Status != StatusPending {
		return nil, claimerrors.ErrInvalidStatus
	}

	now := e.now()
	if now > c.CreatedAt+gov.ApprovalPeriod {
		return nil, claimerrors.ErrApprovalPeriodExpired
	}

	c.Status = StatusApproved
	c.ApprovedAt = now
	c.ApprovedBy = approver
	if err := e.state.PutClaim(c); err != nil {
		return nil, err
	}

	if c.DepositAmount.Sign() > 0 {
		sub := crypto.ClaimDepositSubaccount(c.Proposer)
		memo := uuid.New().String()
		if _, err := ledger.Sweep(ctx, e.ledger, ledger.Account{Owner: e.ownAccount.Owner, Subaccount: &sub}, ledger.Account{Owner: c.Proposer}, []byte(memo)); err != nil {
			return nil, claimerrors.ErrDepositTransferFailed
		}
		c.DepositAmount = big.NewInt(0)
		if err := e.state.PutClaim(c); err != nil {
			return nil, err
		}
	}

	return c, e.state.AppendEvent(newEvent(c.ID, StatusApproved, approver, now, ""))
}

// ExecuteClaim dispatches slash to the pool once the execution timelock
// has elapsed, using the Executing status to prevent concurrent
// execution attempts during the outbound call.
func (e *Engine) ExecuteClaim(ctx context.Context, caller crypto.Address, claimID uint64) (*Claim, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.guard(); err != nil {
		return nil, err
	}
	gov, err := e.ensureGovernance()
	if err != nil {
		return nil, err
	}

	c, err := e.state.GetClaim(claimID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, claimerrors.ErrNotFound
	}
	if c.Status == StatusExecuted {
		return nil, claimerrors.ErrAlreadyExecuted
	}
	if c.Status == StatusExecuting {
		return nil, claimerrors.ErrAlreadyExecuting
	}
	if c.Status != StatusApproved {
		return nil, claimerrors.ErrNotApproved
	}

	now := e.now()
	if now < c.ApprovedAt+gov.ExecutionTimeout {
		return nil, claimerrors.ErrExecutionTimeoutNotExpired
	}

	receiver, amount := c.Receiver, new(big.Int).Set(c.Amount)

	c.Status = StatusExecuting
	if err := e.state.PutClaim(c); err != nil {
		return nil, err
	}
	if err := e.state.AppendEvent(newEvent(c.ID, StatusExecuting, caller, now, "")); err != nil {
		return nil, err
	}

	if _, err := e.slashCaller.Slash(ctx, gov.ExecutorPrincipal, receiver, amount); err != nil {
		c.Status = StatusApproved
		if putErr := e.state.PutClaim(c); putErr != nil {
			return nil, putErr
		}
		if evErr := e.state.AppendEvent(newEvent(c.ID, StatusApproved, caller, e.now(), err.Error())); evErr != nil {
			return nil, evErr
		}
		return nil, claimerrors.PoolCallFailed(err.Error())
	}

	c.Status = StatusExecuted
	if err := e.state.PutClaim(c); err != nil {
		return nil, err
	}
	return c, e.state.AppendEvent(newEvent(c.ID, StatusExecuted, caller, e.now(), ""))
}

// WithdrawDeposit lets the proposer reclaim their deposit when no other
// path has already refunded or forfeited it.
func (e *Engine) WithdrawDeposit(ctx context.Context, proposer crypto.Address, claimID uint64) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.guard(); err != nil {
		return nil, err
	}
	gov, err := e.ensureGovernance()
	if err != nil {
		return nil, err
	}

	c, err := e.state.GetClaim(claimID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, claimerrors.ErrNotFound
	}
	if !c.Proposer.Equal(proposer) {
		return nil, claimerrors.ErrNotProposer
	}
	if c.DepositAmount == nil || c.DepositAmount.Sign() == 0 {
		return nil, claimerrors.ErrNoDepositToWithdraw
	}
	if c.Status == StatusApproved {
		return nil, claimerrors.ErrCannotWithdrawApprovedClaim
	}
	if c.Status == StatusSpam {
		return nil, claimerrors.ErrCannotWithdrawSpamClaim
	}
	if c.Status == StatusPending {
		now := e.now()
		if now <= c.CreatedAt+gov.ApprovalPeriod {
			return nil, claimerrors.ErrApprovalPeriodNotExpired
		}
	}

	sub := crypto.ClaimDepositSubaccount(c.Proposer)
	memo := uuid.New().String()
	amount, err := ledger.Sweep(ctx, e.ledger, ledger.Account{Owner: e.ownAccount.Owner, Subaccount: &sub}, ledger.Account{Owner: proposer}, []byte(memo))
	if err != nil {
		return nil, claimerrors.ErrDepositTransferFailed
	}

	c.DepositAmount = big.NewInt(0)
	if err := e.state.PutClaim(c); err != nil {
		return nil, err
	}
	return amount, nil
}

// MarkAsSpam is approver-only; the deposit is forfeit, no refund path
// exists afterward.
func (e *Engine) MarkAsSpam(approver crypto.Address, claimID uint64) (*Claim, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.guard(); err != nil {
		return nil, err
	}
	gov, err := e.ensureGovernance()
	if err != nil {
		return nil, err
	}
	if !e.isApprover(gov, approver) {
		return nil, claimerrors.ErrNotApprover
	}
	if err := e.checkApproverQuota(approver); err != nil {
		return nil, err
	}

	c, err := e.state.GetClaim(claimID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, claimerrors.ErrNotFound
	}
	if c.Status == StatusExecuted || c.Status == StatusApproved {
		return nil, claimerrors.ErrInvalidStatus
	}
	if c.Spam {
		return nil, claimerrors.ErrAlreadyMarkedAsSpam
	}

	c.Spam = true
	c.Status = StatusSpam
	if err := e.state.PutClaim(c); err != nil {
		return nil, err
	}
	return c, e.state.AppendEvent(newEvent(c.ID, StatusSpam, approver, e.now(), ""))
}

// GetClaim returns a stored claim without mutating state.
func (e *Engine) GetClaim(id uint64) (*Claim, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, err := e.state.GetClaim(id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, claimerrors.ErrNotFound
	}
	return c, nil
}

// Events returns the audit trail for a claim.
func (e *Engine) Events(claimID uint64) ([]ClaimEvent, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.ListEvents(claimID)
}
