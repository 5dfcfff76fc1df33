// Package errors holds the stable, wire-facing error taxonomies for the
// pool and claim engines. Every failure mode is a package-level sentinel so
// callers compare with errors.Is rather than matching strings.
package errors

import stderrors "errors"

// Pool Engine error taxonomy.
var (
	ErrNoDeposit              = stderrors.New("pool: no deposit for id")
	ErrInsufficientBalance    = stderrors.New("pool: insufficient balance")
	ErrTransferFailed         = stderrors.New("pool: ledger transfer failed")
	ErrLedgerCallFailed       = stderrors.New("pool: ledger call failed")
	ErrLedgerNotSet           = stderrors.New("pool: ledger client not configured")
	ErrNotOwner               = stderrors.New("pool: caller does not own deposit")
	ErrTimelockNotExpired     = stderrors.New("pool: timelock has not expired")
	ErrEpisodeNotActive       = stderrors.New("pool: episode is not active")
	ErrEpisodeNotStakable     = stderrors.New("pool: episode is not stakable")
	ErrNotSlashingExecutor    = stderrors.New("pool: caller is not the slashing executor")
	ErrNotPoolManager         = stderrors.New("pool: caller is not the pool manager")
	ErrProductNotActive       = stderrors.New("pool: product is not active")
	ErrCoverageDurationTooLong  = stderrors.New("pool: coverage duration exceeds product maximum")
	ErrCoverageDurationTooShort = stderrors.New("pool: coverage duration below episode duration")
	ErrNotEnoughAssetsToCover = stderrors.New("pool: not enough assets to cover requested allocation")
	ErrProductNotFound        = stderrors.New("pool: product not found")
	ErrInvalidProductParameters = stderrors.New("pool: invalid product parameters")
	ErrCoveredAccountAnonymous  = stderrors.New("pool: covered account must not be anonymous")
)
