package pool

import (
	"context"
	"math/big"

	"github.com/google/uuid"

	poolerrors "github.com/satsurance/pool/core/errors"
	"github.com/satsurance/pool/crypto"
	"github.com/satsurance/pool/ledger"
)

// Deposit sweeps the balance of the user's per-episode derived subaccount
// into the pool and mints shares proportional to current pool assets.
func (e *Engine) Deposit(ctx context.Context, user crypto.Address, episodeID int64) (*Deposit, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.guard(); err != nil {
		return nil, err
	}
	if err := e.requireLedger(); err != nil {
		return nil, err
	}
	if err := e.processEpisodes(); err != nil {
		return nil, err
	}

	current := GetCurrentEpisode(e.now())
	if !IsActive(episodeID, current) {
		return nil, poolerrors.ErrEpisodeNotActive
	}
	if !IsStakable(episodeID) {
		return nil, poolerrors.ErrEpisodeNotStakable
	}

	sub := crypto.DepositSubaccount(user, uint64(episodeID))
	from := ledger.Account{Owner: user, Subaccount: &sub}

	gross, err := e.ledger.BalanceOf(ctx, from)
	if err != nil {
		return nil, poolerrors.ErrLedgerCallFailed
	}
	if gross.Cmp(big.NewInt(MinimumDepositAmount)) <= 0 {
		return nil, poolerrors.ErrInsufficientBalance
	}

	memo := uuid.New().String()
	amount, err := ledger.Sweep(ctx, e.ledger, from, e.mainAccount, []byte(memo))
	if err != nil {
		return nil, poolerrors.ErrTransferFailed
	}
	if amount.Sign() == 0 {
		return nil, poolerrors.ErrInsufficientBalance
	}

	state, err := e.state.GetState()
	if err != nil {
		return nil, err
	}
	acc, err := e.state.GetAccumulator()
	if err != nil {
		return nil, err
	}

	shares := new(big.Int)
	if state.TotalShares.Sign() == 0 {
		shares.Set(amount)
	} else {
		shares.Mul(amount, state.TotalShares)
		shares.Quo(shares, state.TotalAssets)
	}

	bucket, err := e.state.GetEpisode(episodeID)
	if err != nil {
		return nil, err
	}
	bucket.EpisodeShares = new(big.Int).Add(bucket.EpisodeShares, shares)
	bucket.AssetsStaked = new(big.Int).Add(bucket.AssetsStaked, amount)
	if err := e.state.PutEpisode(bucket); err != nil {
		return nil, err
	}

	state.TotalAssets = new(big.Int).Add(state.TotalAssets, amount)
	state.TotalShares = new(big.Int).Add(state.TotalShares, shares)
	if err := e.state.PutState(state); err != nil {
		return nil, err
	}

	depositID, err := e.state.NextDepositID()
	if err != nil {
		return nil, err
	}
	deposit := &Deposit{
		ID:                     depositID,
		Owner:                  user,
		Episode:                episodeID,
		Shares:                 shares,
		RewardPerShareBaseline: new(big.Int).Set(acc.AccumulatedRewardPerShare),
		RewardsCollected:       big.NewInt(0),
	}
	if err := e.state.PutDeposit(deposit); err != nil {
		return nil, err
	}
	return deposit, nil
}

// collectRewards computes (and optionally realises) pending rewards for
// the given deposits against the supplied accumulator value. Mutating
// callers pass the freshly persisted accumulator after processEpisodes;
// read-only callers pass a lazily projected one.
func (e *Engine) collectRewards(acc *RewardAccumulator, depositIDs []uint64, mutate bool) (*big.Int, error) {
	total := big.NewInt(0)
	for _, id := range depositIDs {
		d, err := e.state.GetDeposit(id)
		if err != nil {
			return nil, err
		}
		if d == nil {
			return nil, poolerrors.ErrNoDeposit
		}
		earned := new(big.Int).Sub(acc.AccumulatedRewardPerShare, d.RewardPerShareBaseline)
		earned.Mul(earned, d.Shares)
		earned.Quo(earned, PrecisionScale)

		uncollected := new(big.Int).Sub(earned, d.RewardsCollected)
		if uncollected.Sign() < 0 {
			uncollected = big.NewInt(0)
		}
		total.Add(total, uncollected)
		if mutate {
			d.RewardsCollected = new(big.Int).Add(d.RewardsCollected, uncollected)
			if err := e.state.PutDeposit(d); err != nil {
				return nil, err
			}
		}
	}
	return total, nil
}

// CollectRewards is the read-only query form of collectRewards: it never
// persists episode processing, instead projecting the accumulator forward
// to now the way GetProduct projects allocation.
func (e *Engine) CollectRewards(depositIDs []uint64) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, acc, err := e.projectState()
	if err != nil {
		return nil, err
	}
	return e.collectRewards(acc, depositIDs, false)
}

// Withdraw closes a deposit whose bucket has fully closed, paying out the
// bucket-proportional asset share plus any pending rewards.
func (e *Engine) Withdraw(ctx context.Context, caller crypto.Address, depositID uint64) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.guard(); err != nil {
		return nil, err
	}
	if err := e.requireLedger(); err != nil {
		return nil, err
	}
	if err := e.processEpisodes(); err != nil {
		return nil, err
	}

	d, err := e.state.GetDeposit(depositID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, poolerrors.ErrNoDeposit
	}
	if !d.Owner.Equal(caller) {
		return nil, poolerrors.ErrNotOwner
	}
	current := GetCurrentEpisode(e.now())
	if d.Episode >= current {
		return nil, poolerrors.ErrTimelockNotExpired
	}

	bucket, err := e.state.GetEpisode(d.Episode)
	if err != nil {
		return nil, err
	}
	if bucket.EpisodeShares.Sign() == 0 {
		return nil, poolerrors.ErrNoDeposit
	}

	withdrawalAmount := new(big.Int).Mul(d.Shares, bucket.AssetsStaked)
	withdrawalAmount.Quo(withdrawalAmount, bucket.EpisodeShares)

	acc, err := e.state.GetAccumulator()
	if err != nil {
		return nil, err
	}
	pending, err := e.collectRewards(acc, []uint64{depositID}, true)
	if err != nil {
		return nil, err
	}

	gross := new(big.Int).Add(withdrawalAmount, pending)
	fee := e.ledger.TransferFee()
	payout := new(big.Int).Sub(gross, fee)
	if payout.Sign() < 0 {
		payout = big.NewInt(0)
	}

	memo := uuid.New().String()
	if payout.Sign() > 0 {
		if _, err := e.ledger.Transfer(ctx, ledger.TransferArg{
			To:     ledger.Account{Owner: caller},
			Amount: payout,
			Fee:    fee,
			Memo:   []byte(memo),
		}); err != nil {
			return nil, poolerrors.ErrTransferFailed
		}
	}

	bucket.EpisodeShares = new(big.Int).Sub(bucket.EpisodeShares, d.Shares)
	bucket.AssetsStaked = new(big.Int).Sub(bucket.AssetsStaked, withdrawalAmount)
	if err := e.state.PutEpisode(bucket); err != nil {
		return nil, err
	}
	if bucket.IsEmpty() {
		if err := e.state.DeleteEpisode(bucket.ID); err != nil {
			return nil, err
		}
	}

	if err := e.state.DeleteDeposit(depositID); err != nil {
		return nil, err
	}
	return payout, nil
}

// WithdrawRewards pays out accrued-but-uncollected rewards for the given
// deposits without closing them.
func (e *Engine) WithdrawRewards(ctx context.Context, caller crypto.Address, depositIDs []uint64) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.guard(); err != nil {
		return nil, err
	}
	if err := e.requireLedger(); err != nil {
		return nil, err
	}
	if err := e.processEpisodes(); err != nil {
		return nil, err
	}

	for _, id := range depositIDs {
		d, err := e.state.GetDeposit(id)
		if err != nil {
			return nil, err
		}
		if d == nil {
			return nil, poolerrors.ErrNoDeposit
		}
		if !d.Owner.Equal(caller) {
			return nil, poolerrors.ErrNotOwner
		}
	}

	acc, err := e.state.GetAccumulator()
	if err != nil {
		return nil, err
	}
	gross, err := e.collectRewards(acc, depositIDs, true)
	if err != nil {
		return nil, err
	}
	fee := e.ledger.TransferFee()
	payout := new(big.Int).Sub(gross, fee)
	if payout.Sign() <= 0 {
		return big.NewInt(0), nil
	}

	memo := uuid.New().String()
	if _, err := e.ledger.Transfer(ctx, ledger.TransferArg{
		To:     ledger.Account{Owner: caller},
		Amount: payout,
		Fee:    fee,
		Memo:   []byte(memo),
	}); err != nil {
		return nil, poolerrors.ErrTransferFailed
	}
	return payout, nil
}
