package pool

import (
	"context"
	"math/big"

	"github.com/google/uuid"

	"github.com/satsurance/pool/crypto"
	"github.com/satsurance/pool/ledger"
)

// rewardAccount returns the ledger account the reward
// subaccount resolves to for the pool's own principal.
func (e *Engine) rewardAccount() ledger.Account {
	sub := crypto.RewardSubaccount()
	return ledger.Account{Owner: e.mainAccount.Owner, Subaccount: &sub}
}

// scheduleRewardStream spreads amount over the window ending at bucket
// endBucket by raising pool_reward_rate and scheduling its removal on
// endBucket's reward_decrease. Shared by reward_pool and
// reward_pool_with_duration; they differ only in which bucket the
// rate-decrease lands on (see DESIGN.md for the reconciled +1 offset).
func (e *Engine) scheduleRewardStream(amount *big.Int, endBucket int64) error {
	if amount.Sign() <= 0 {
		return nil
	}
	now := e.now()
	duration := (endBucket+1)*EpisodeDuration - now
	if duration <= 0 {
		return nil
	}

	acc, err := e.state.GetAccumulator()
	if err != nil {
		return err
	}
	rateIncrease := new(big.Int).Mul(amount, PrecisionScale)
	rateIncrease.Quo(rateIncrease, big.NewInt(duration))

	acc.PoolRewardRate = new(big.Int).Add(acc.PoolRewardRate, rateIncrease)
	if err := e.state.PutAccumulator(acc); err != nil {
		return err
	}

	bucket, err := e.state.GetEpisode(endBucket)
	if err != nil {
		return err
	}
	bucket.RewardDecrease = new(big.Int).Add(bucket.RewardDecrease, rateIncrease)
	return e.state.PutEpisode(bucket)
}

// RewardPool sweeps the fixed reward subaccount and streams its balance
// into pool_reward_rate over a 12-episode window.
func (e *Engine) RewardPool(ctx context.Context) (*big.Int, error) {
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

	memo := uuid.New().String()
	amount, err := ledger.Sweep(ctx, e.ledger, e.rewardAccount(), e.mainAccount, []byte(memo))
	if err != nil {
		return nil, err
	}
	if amount.Sign() == 0 {
		return big.NewInt(0), nil
	}

	current := GetCurrentEpisode(e.now())
	endBucket := current + rewardWindowEpisodes
	if err := e.scheduleRewardStream(amount, endBucket); err != nil {
		return nil, err
	}
	return amount, nil
}

// rewardPoolWithDuration is reward_pool's sibling invoked by coverage
// purchases: the window ends one bucket past the coverage's last covered
// episode so the rate-decrease strictly follows the last bucket that
// still owes rewards.
func (e *Engine) rewardPoolWithDuration(amount *big.Int, duration int64) error {
	if amount.Sign() <= 0 {
		return nil
	}
	lastCoveredEpisode := (e.now() + duration) / EpisodeDuration
	return e.scheduleRewardStream(amount, lastCoveredEpisode+1)
}
