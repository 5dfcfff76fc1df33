package pool

import (
	"context"
	"math/big"

	"github.com/google/uuid"

	poolerrors "github.com/satsurance/pool/core/errors"
	"github.com/satsurance/pool/crypto"
	"github.com/satsurance/pool/ledger"
)

// Slash proportionally reduces assets_staked across active buckets using
// the pre-slash pool denominator, leaving share counts untouched, then
// pays the receiver what was actually removed. The in-memory reduction is
// committed before the receiver transfer; a transfer failure leaves
// assets already removed from the pool rather than rolling back.
func (e *Engine) Slash(ctx context.Context, caller crypto.Address, receiver crypto.Address, amount *big.Int) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.guard(); err != nil {
		return nil, err
	}
	if err := e.requireLedger(); err != nil {
		return nil, err
	}
	if e.executorPrincipal.IsZero() || !caller.Equal(e.executorPrincipal) {
		return nil, poolerrors.ErrNotSlashingExecutor
	}
	if err := e.processEpisodes(); err != nil {
		return nil, err
	}

	state, err := e.state.GetState()
	if err != nil {
		return nil, err
	}
	if state.TotalAssets.Sign() == 0 {
		return big.NewInt(0), nil
	}
	totalAssetsAtEntry := new(big.Int).Set(state.TotalAssets)

	current := GetCurrentEpisode(e.now())
	accumulatedSlashed := big.NewInt(0)
	for id := current; id < current+MaxActiveEpisodes; id++ {
		bucket, err := e.state.GetEpisode(id)
		if err != nil {
			return nil, err
		}
		if bucket.AssetsStaked.Sign() == 0 {
			continue
		}
		cut := new(big.Int).Mul(amount, bucket.AssetsStaked)
		cut.Quo(cut, totalAssetsAtEntry)
		if cut.Sign() == 0 {
			continue
		}
		bucket.AssetsStaked = new(big.Int).Sub(bucket.AssetsStaked, cut)
		if err := e.state.PutEpisode(bucket); err != nil {
			return nil, err
		}
		accumulatedSlashed = new(big.Int).Add(accumulatedSlashed, cut)
	}

	state.TotalAssets = new(big.Int).Sub(state.TotalAssets, accumulatedSlashed)
	if err := e.state.PutState(state); err != nil {
		return nil, err
	}

	if accumulatedSlashed.Sign() == 0 {
		return big.NewInt(0), nil
	}

	fee := e.ledger.TransferFee()
	payout := new(big.Int).Sub(accumulatedSlashed, fee)
	if payout.Sign() <= 0 {
		return accumulatedSlashed, nil
	}

	memo := uuid.New().String()
	if _, err := e.ledger.Transfer(ctx, ledger.TransferArg{
		To:     ledger.Account{Owner: receiver},
		Amount: payout,
		Fee:    fee,
		Memo:   []byte(memo),
	}); err != nil {
		return accumulatedSlashed, poolerrors.ErrTransferFailed
	}
	return accumulatedSlashed, nil
}
