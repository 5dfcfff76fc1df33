package pool_test

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/satsurance/pool/native/pool"
)

func within(t *testing.T, expected, actual *big.Int, tolerance int64) {
	t.Helper()
	diff := new(big.Int).Sub(expected, actual)
	diff.Abs(diff)
	require.LessOrEqual(t, diff.Int64(), tolerance, "expected %s within %d of %s", expected, tolerance, actual)
}

// TestRewardAtWindowEnd checks rewards accrue up to the window end and no further.
func TestRewardAtWindowEnd(t *testing.T) {
	start := time.Unix(2_000_000_000, 0)
	h := newHarness(t, start)
	episode := firstStakableAt(start)
	user := testAddr(t, 1)

	h.fundDeposit(t, user, episode, big.NewInt(100_000_000))
	d, err := h.engine.Deposit(context.Background(), user, episode)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(99_999_990), d.Shares)

	h.fundReward(t, big.NewInt(25_000_000))
	_, err = h.engine.RewardPool(context.Background())
	require.NoError(t, err)

	current := pool.GetCurrentEpisode(h.clock.Now().Unix())
	endBucket := current + 12
	windowDuration := (endBucket+1)*pool.EpisodeDuration - h.clock.Now().Unix()
	h.clock.Advance(time.Duration(windowDuration) * time.Second)

	pending, err := h.engine.CollectRewards([]uint64{d.ID})
	require.NoError(t, err)
	within(t, big.NewInt(25_000_000), pending, 10)
}

// TestTwoUsersJoinedAtDifferentTimes checks reward share reflects each user's join time.
func TestTwoUsersJoinedAtDifferentTimes(t *testing.T) {
	start := time.Unix(2_000_000_000, 0)
	h := newHarness(t, start)
	episode := firstStakableAt(start)

	userA := testAddr(t, 1)
	h.fundDeposit(t, userA, episode, big.NewInt(100_000_000))
	dA, err := h.engine.Deposit(context.Background(), userA, episode)
	require.NoError(t, err)

	h.fundReward(t, big.NewInt(200_000_000))
	_, err = h.engine.RewardPool(context.Background())
	require.NoError(t, err)

	current := pool.GetCurrentEpisode(h.clock.Now().Unix())
	endBucket := current + 12
	windowDuration := (endBucket+1)*pool.EpisodeDuration - h.clock.Now().Unix()

	h.clock.Advance(time.Duration(windowDuration/4) * time.Second)

	episodeB := episode + 3
	h.fundDeposit(t, testAddr(t, 2), episodeB, big.NewInt(100_000_000))
	dB, err := h.engine.Deposit(context.Background(), testAddr(t, 2), episodeB)
	require.NoError(t, err)

	h.clock.Advance(time.Duration(windowDuration-windowDuration/4) * time.Second)

	pendingA, err := h.engine.CollectRewards([]uint64{dA.ID})
	require.NoError(t, err)
	pendingB, err := h.engine.CollectRewards([]uint64{dB.ID})
	require.NoError(t, err)

	within(t, big.NewInt(125_000_000), pendingA, 10)
	within(t, big.NewInt(75_000_000), pendingB, 10)
}
