package ledger

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/satsurance/pool/crypto"
)

// accountKey keys subaccount balances by the subaccount alone (the double
// tracks no owner for them, see selfOwner) and plain accounts by owner.
func accountKey(a Account) string {
	if a.Subaccount == nil {
		return a.Owner.String()
	}
	return fmt.Sprintf("%x", a.Subaccount[:])
}

// InMemory is a deterministic Client double for tests and local
// development. It has no notion of deduplication or timestamps; it only
// enforces the balance and fee semantics a real ledger would.
type InMemory struct {
	mu       sync.Mutex
	fee      *big.Int
	balances map[string]*big.Int
	nextBlock uint64
}

// NewInMemory constructs an empty ledger double with the given transfer fee.
func NewInMemory(fee *big.Int) *InMemory {
	return &InMemory{
		fee:      new(big.Int).Set(fee),
		balances: make(map[string]*big.Int),
	}
}

// Credit adds amount to account's balance, for test setup and for engines
// crediting deposits/payouts they've already authorized.
func (m *InMemory) Credit(account Account, amount *big.Int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := accountKey(account)
	bal, ok := m.balances[key]
	if !ok {
		bal = big.NewInt(0)
	}
	m.balances[key] = new(big.Int).Add(bal, amount)
}

// BalanceOf returns the account's current balance, zero if unknown.
func (m *InMemory) BalanceOf(_ context.Context, account Account) (*big.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	bal, ok := m.balances[accountKey(account)]
	if !ok {
		return big.NewInt(0), nil
	}
	return new(big.Int).Set(bal), nil
}

// TransferFee returns the ledger's fixed per-transfer fee.
func (m *InMemory) TransferFee() *big.Int {
	return new(big.Int).Set(m.fee)
}

// Transfer debits arg.Amount+fee from the implicit from-account (owner is
// not tracked here; callers pass the subaccount via FromSubaccount, the
// owner is assumed to be the pool/claim engine's own principal) and credits
// arg.To. It fails with TransferErrorInsufficientFunds if the source lacks
// amount+fee.
func (m *InMemory) Transfer(_ context.Context, arg TransferArg) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	from := Account{Owner: m.selfOwner(), Subaccount: arg.FromSubaccount}
	fromKey := accountKey(from)
	bal, ok := m.balances[fromKey]
	if !ok {
		bal = big.NewInt(0)
	}
	total := new(big.Int).Add(arg.Amount, m.fee)
	if bal.Cmp(total) < 0 {
		return 0, &TransferError{Kind: TransferErrorInsufficientFunds, Balance: new(big.Int).Set(bal)}
	}
	m.balances[fromKey] = new(big.Int).Sub(bal, total)

	toKey := accountKey(arg.To)
	toBal, ok := m.balances[toKey]
	if !ok {
		toBal = big.NewInt(0)
	}
	m.balances[toKey] = new(big.Int).Add(toBal, arg.Amount)

	m.nextBlock++
	return m.nextBlock, nil
}

// selfOwner is the fixed synthetic owner every subaccount in this double
// hangs off of; tests address balances purely by subaccount.
func (m *InMemory) selfOwner() crypto.Address {
	return crypto.MustNewAddress(crypto.SinsPrefix, make([]byte, 20))
}
