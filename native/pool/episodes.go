package pool

import "math/big"

// ratePerShare computes pool_reward_rate * (b-a) / total_shares, floored,
// returning zero when there are no shares to accrue against.
func ratePerShare(rate *big.Int, a, b int64, totalShares *big.Int) *big.Int {
	if totalShares == nil || totalShares.Sign() == 0 || b <= a {
		return big.NewInt(0)
	}
	elapsed := big.NewInt(b - a)
	out := new(big.Int).Mul(rate, elapsed)
	out.Quo(out, totalShares)
	return out
}

// Tick runs process_episodes on demand, for callers (e.g. a periodic
// scheduler in cmd/poolengine) that want to advance episode accounting
// without performing a deposit/withdraw/slash/coverage operation.
func (e *Engine) Tick() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.guard(); err != nil {
		return err
	}
	return e.processEpisodes()
}

// processEpisodes is the heart of the accounting model: it integrates the
// reward accumulator and shrinks the pool bucket-by-bucket for every
// episode boundary crossed since the last update, then integrates the
// tail up to now. It must be invoked before any state-reading or
// mutating operation and is idempotent per wall-clock time.
func (e *Engine) processEpisodes() error {
	state, err := e.state.GetState()
	if err != nil {
		return err
	}
	acc, err := e.state.GetAccumulator()
	if err != nil {
		return err
	}

	now := e.now()
	tLast := acc.LastTimeUpdated
	firstBucket := tLast / EpisodeDuration
	lastBucketExclusive := now / EpisodeDuration

	for bucketID := firstBucket; bucketID < lastBucketExclusive; bucketID++ {
		tEnd := (bucketID + 1) * EpisodeDuration

		inc := ratePerShare(acc.PoolRewardRate, tLast, tEnd, state.TotalShares)
		acc.AccumulatedRewardPerShare = new(big.Int).Add(acc.AccumulatedRewardPerShare, inc)

		bucket, err := e.state.GetEpisode(bucketID)
		if err != nil {
			return err
		}
		bucket.AccRewardPerShareOnExpire = new(big.Int).Set(acc.AccumulatedRewardPerShare)
		bucket.Processed = true

		acc.PoolRewardRate = new(big.Int).Sub(acc.PoolRewardRate, bucket.RewardDecrease)
		if acc.PoolRewardRate.Sign() < 0 {
			acc.PoolRewardRate = big.NewInt(0)
		}

		state.TotalAssets = new(big.Int).Sub(state.TotalAssets, bucket.AssetsStaked)
		state.TotalShares = new(big.Int).Sub(state.TotalShares, bucket.EpisodeShares)
		if state.TotalAssets.Sign() < 0 {
			state.TotalAssets = big.NewInt(0)
		}
		if state.TotalShares.Sign() < 0 {
			state.TotalShares = big.NewInt(0)
		}

		if err := e.state.PutEpisode(bucket); err != nil {
			return err
		}
		if bucket.IsEmpty() {
			if err := e.state.DeleteEpisode(bucketID); err != nil {
				return err
			}
		}

		tLast = tEnd
	}

	tail := ratePerShare(acc.PoolRewardRate, tLast, now, state.TotalShares)
	acc.AccumulatedRewardPerShare = new(big.Int).Add(acc.AccumulatedRewardPerShare, tail)
	acc.LastTimeUpdated = now

	if err := e.state.PutAccumulator(acc); err != nil {
		return err
	}
	return e.state.PutState(state)
}

// projectState mirrors processEpisodes' integration math but never calls
// PutEpisode/DeleteEpisode/PutAccumulator/PutState: it derives what the
// pool scalars and accumulator would be as of now, for read-only queries
// that must not mutate stored state.
func (e *Engine) projectState() (*State, *RewardAccumulator, error) {
	state, err := e.state.GetState()
	if err != nil {
		return nil, nil, err
	}
	acc, err := e.state.GetAccumulator()
	if err != nil {
		return nil, nil, err
	}

	projState := &State{
		TotalAssets: new(big.Int).Set(state.TotalAssets),
		TotalShares: new(big.Int).Set(state.TotalShares),
	}
	projAcc := &RewardAccumulator{
		PoolRewardRate:            new(big.Int).Set(acc.PoolRewardRate),
		AccumulatedRewardPerShare: new(big.Int).Set(acc.AccumulatedRewardPerShare),
		LastTimeUpdated:           acc.LastTimeUpdated,
	}

	now := e.now()
	tLast := projAcc.LastTimeUpdated
	firstBucket := tLast / EpisodeDuration
	lastBucketExclusive := now / EpisodeDuration

	for bucketID := firstBucket; bucketID < lastBucketExclusive; bucketID++ {
		tEnd := (bucketID + 1) * EpisodeDuration

		inc := ratePerShare(projAcc.PoolRewardRate, tLast, tEnd, projState.TotalShares)
		projAcc.AccumulatedRewardPerShare = new(big.Int).Add(projAcc.AccumulatedRewardPerShare, inc)

		bucket, err := e.state.GetEpisode(bucketID)
		if err != nil {
			return nil, nil, err
		}

		projAcc.PoolRewardRate = new(big.Int).Sub(projAcc.PoolRewardRate, bucket.RewardDecrease)
		if projAcc.PoolRewardRate.Sign() < 0 {
			projAcc.PoolRewardRate = big.NewInt(0)
		}

		projState.TotalAssets = new(big.Int).Sub(projState.TotalAssets, bucket.AssetsStaked)
		projState.TotalShares = new(big.Int).Sub(projState.TotalShares, bucket.EpisodeShares)
		if projState.TotalAssets.Sign() < 0 {
			projState.TotalAssets = big.NewInt(0)
		}
		if projState.TotalShares.Sign() < 0 {
			projState.TotalShares = big.NewInt(0)
		}

		tLast = tEnd
	}

	tail := ratePerShare(projAcc.PoolRewardRate, tLast, now, projState.TotalShares)
	projAcc.AccumulatedRewardPerShare = new(big.Int).Add(projAcc.AccumulatedRewardPerShare, tail)
	projAcc.LastTimeUpdated = now

	return projState, projAcc, nil
}
