package errors

import (
	stderrors "errors"
	"fmt"
)

// Claim Engine error taxonomy.
var (
	ErrNotFound                    = stderrors.New("claim: not found")
	ErrNotApprover                 = stderrors.New("claim: caller is not an approver")
	ErrAlreadyApproved             = stderrors.New("claim: already approved")
	ErrAlreadyExecuting            = stderrors.New("claim: already executing")
	ErrAlreadyExecuted             = stderrors.New("claim: already executed")
	ErrNotApproved                 = stderrors.New("claim: not approved")
	ErrClaimTimelockNotExpired     = stderrors.New("claim: timelock has not expired")
	ErrExecutionTimeoutNotExpired  = stderrors.New("claim: execution timeout has not expired")
	ErrInsufficientPermissions     = stderrors.New("claim: insufficient permissions")
	ErrInvalidStatus               = stderrors.New("claim: invalid status for operation")
	ErrInsufficientDeposit         = stderrors.New("claim: insufficient deposit")
	ErrNotProposer                 = stderrors.New("claim: caller is not the proposer")
	ErrApprovalPeriodExpired       = stderrors.New("claim: approval period expired")
	ErrApprovalPeriodNotExpired    = stderrors.New("claim: approval period has not expired")
	ErrNoDepositToWithdraw         = stderrors.New("claim: no deposit to withdraw")
	ErrAlreadyMarkedAsSpam         = stderrors.New("claim: already marked as spam")
	ErrCannotWithdrawApprovedClaim = stderrors.New("claim: cannot withdraw deposit for an approved claim")
	ErrCannotWithdrawSpamClaim     = stderrors.New("claim: cannot withdraw deposit for a spam claim")
	ErrDepositTransferFailed       = stderrors.New("claim: deposit transfer failed")
	ErrApproverRateLimited         = stderrors.New("claim: approver rate limit exceeded")
)

// PoolCallFailedError wraps the detail surfaced when the dispatched
// pool-engine slash call fails. ExecuteClaim reverts the claim back to
// Approved and returns this error verbatim.
type PoolCallFailedError struct {
	Detail string
}

func (e *PoolCallFailedError) Error() string {
	return fmt.Sprintf("claim: pool call failed: %s", e.Detail)
}

// PoolCallFailed constructs a PoolCallFailedError carrying the underlying
// ledger/pool failure detail.
func PoolCallFailed(detail string) error {
	return &PoolCallFailedError{Detail: detail}
}
