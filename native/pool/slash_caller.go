package pool

import (
	"context"
	"math/big"

	"github.com/satsurance/pool/crypto"
)

// SlashCaller is the narrow surface the Claim Engine dispatches
// execute_claim's slash call through. In the in-process test harness it
// is satisfied directly by *Engine; production wiring authenticates the
// call across the process boundary with a signed executor-principal
// token before invoking it.
type SlashCaller interface {
	Slash(ctx context.Context, caller crypto.Address, receiver crypto.Address, amount *big.Int) (*big.Int, error)
}
