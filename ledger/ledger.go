// Package ledger models the fungible-token ledger collaborator the pool
// and claim engines sweep and pay out through. The real ledger service
// lives outside this module; this package only defines the narrow client
// surface the engines depend on, plus an in-memory double used by tests
// and local development.
package ledger

import (
	"context"
	"fmt"
	"math/big"

	"github.com/satsurance/pool/crypto"
)

// Account identifies a ledger balance: an owning principal plus an
// optional 32-byte subaccount.
type Account struct {
	Owner      crypto.Address
	Subaccount *crypto.Subaccount
}

// String renders the account for logs; subaccount-less accounts render as
// just the owner.
func (a Account) String() string {
	if a.Subaccount == nil {
		return a.Owner.String()
	}
	return fmt.Sprintf("%s/%x", a.Owner.String(), a.Subaccount[:])
}

// TransferArg mirrors an ICRC-1-shaped transfer request.
type TransferArg struct {
	FromSubaccount *crypto.Subaccount
	To             Account
	Amount         *big.Int
	Fee            *big.Int
	Memo           []byte
	CreatedAtTime  *uint64
}

// TransferErrorKind enumerates the ICRC-1 transfer error variants. It is a
// closed sum type, never a string code.
type TransferErrorKind int

const (
	TransferErrorUnspecified TransferErrorKind = iota
	TransferErrorBadFee
	TransferErrorBadBurn
	TransferErrorInsufficientFunds
	TransferErrorTooOld
	TransferErrorCreatedInFuture
	TransferErrorTemporarilyUnavailable
	TransferErrorDuplicate
	TransferErrorGeneric
)

// TransferError is the tagged variant returned by a failed transfer.
type TransferError struct {
	Kind          TransferErrorKind
	ExpectedFee   *big.Int
	MinBurnAmount *big.Int
	Balance       *big.Int
	LedgerTime    uint64
	DuplicateOf   uint64
	ErrorCode     uint64
	Message       string
}

func (e *TransferError) Error() string {
	switch e.Kind {
	case TransferErrorBadFee:
		return fmt.Sprintf("ledger: bad fee, expected %s", e.ExpectedFee)
	case TransferErrorBadBurn:
		return fmt.Sprintf("ledger: bad burn, minimum %s", e.MinBurnAmount)
	case TransferErrorInsufficientFunds:
		return fmt.Sprintf("ledger: insufficient funds, balance %s", e.Balance)
	case TransferErrorTooOld:
		return "ledger: transaction too old"
	case TransferErrorCreatedInFuture:
		return fmt.Sprintf("ledger: created in future, ledger time %d", e.LedgerTime)
	case TransferErrorTemporarilyUnavailable:
		return "ledger: temporarily unavailable"
	case TransferErrorDuplicate:
		return fmt.Sprintf("ledger: duplicate of block %d", e.DuplicateOf)
	default:
		return fmt.Sprintf("ledger: generic error %d: %s", e.ErrorCode, e.Message)
	}
}

// Client is the narrow surface the pool and claim engines depend on. The
// production implementation calls out to the external ledger collaborator;
// InMemory below is a test double with identical semantics.
type Client interface {
	BalanceOf(ctx context.Context, account Account) (*big.Int, error)
	Transfer(ctx context.Context, arg TransferArg) (blockIndex uint64, err error)
	TransferFee() *big.Int
}

// Sweep moves the entire balance of `from` into `to`, net of the ledger's
// fixed transfer fee, treating a gross balance at or below the fee as a
// no-op. It returns the net amount that was actually transferred.
func Sweep(ctx context.Context, client Client, from Account, to Account, memo []byte) (*big.Int, error) {
	if client == nil {
		return nil, fmt.Errorf("ledger: client not configured")
	}
	gross, err := client.BalanceOf(ctx, from)
	if err != nil {
		return nil, err
	}
	fee := client.TransferFee()
	if gross == nil || fee == nil || gross.Cmp(fee) <= 0 {
		return big.NewInt(0), nil
	}
	net := new(big.Int).Sub(gross, fee)
	arg := TransferArg{
		FromSubaccount: from.Subaccount,
		To:             to,
		Amount:         net,
		Fee:            fee,
		Memo:           memo,
	}
	if _, err := client.Transfer(ctx, arg); err != nil {
		return nil, err
	}
	return net, nil
}
