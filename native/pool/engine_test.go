package pool_test

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/satsurance/pool/crypto"
	"github.com/satsurance/pool/ledger"
	nativecommon "github.com/satsurance/pool/native/common"
	"github.com/satsurance/pool/native/pool"
)

func testAddr(t *testing.T, seed byte) crypto.Address {
	t.Helper()
	b := make([]byte, 20)
	b[0] = seed
	addr, err := crypto.NewAddress(crypto.SinsPrefix, b)
	require.NoError(t, err)
	return addr
}

type harness struct {
	engine *pool.Engine
	ledger *ledger.InMemory
	clock  *nativecommon.FakeClock
	main   ledger.Account
}

func newHarness(t *testing.T, start time.Time) *harness {
	t.Helper()
	mainAddr := testAddr(t, 0xff)
	main := ledger.Account{Owner: mainAddr}

	mem := ledger.NewInMemory(pool.TransferFee)
	clock := nativecommon.NewFakeClock(start)

	e := pool.NewEngine(main)
	e.SetState(pool.NewMemStore())
	e.SetLedger(mem)
	e.SetClock(clock)

	return &harness{engine: e, ledger: mem, clock: clock, main: main}
}

func (h *harness) fundDeposit(t *testing.T, user crypto.Address, episodeID int64, amount *big.Int) {
	t.Helper()
	sub := crypto.DepositSubaccount(user, uint64(episodeID))
	h.ledger.Credit(ledger.Account{Subaccount: &sub}, amount)
}

func (h *harness) fundReward(t *testing.T, amount *big.Int) {
	t.Helper()
	sub := crypto.RewardSubaccount()
	h.ledger.Credit(ledger.Account{Owner: h.main.Owner, Subaccount: &sub}, amount)
}

// firstStakableAt returns the first stakable (id mod 3 == 2) episode at or
// after t.
func firstStakableAt(t time.Time) int64 {
	id := pool.GetCurrentEpisode(t.Unix())
	for !pool.IsStakable(id) {
		id++
	}
	return id
}

func TestDepositFirstShareOneToOne(t *testing.T) {
	start := time.Unix(2_000_000_000, 0)
	h := newHarness(t, start)
	episode := firstStakableAt(start)

	user := testAddr(t, 1)
	h.fundDeposit(t, user, episode, big.NewInt(200_000_000))

	d, err := h.engine.Deposit(context.Background(), user, episode)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(199_999_990), d.Shares)

	totalAssets, totalShares, err := h.engine.TotalAssetsAndShares()
	require.NoError(t, err)
	require.Equal(t, big.NewInt(199_999_990), totalAssets)
	require.Equal(t, big.NewInt(199_999_990), totalShares)
}

func TestDepositSecondPooledProRata(t *testing.T) {
	start := time.Unix(2_000_000_000, 0)
	h := newHarness(t, start)
	episode1 := firstStakableAt(start)
	episode2 := episode1 + 3

	user1 := testAddr(t, 1)
	user2 := testAddr(t, 2)
	h.fundDeposit(t, user1, episode1, big.NewInt(200_000_000))
	h.fundDeposit(t, user2, episode2, big.NewInt(200_000_000))

	d1, err := h.engine.Deposit(context.Background(), user1, episode1)
	require.NoError(t, err)
	d2, err := h.engine.Deposit(context.Background(), user2, episode2)
	require.NoError(t, err)

	require.Equal(t, d1.Shares, d2.Shares)

	totalAssets, totalShares, err := h.engine.TotalAssetsAndShares()
	require.NoError(t, err)
	require.Equal(t, big.NewInt(399_999_980), totalAssets)
	require.Equal(t, big.NewInt(399_999_980), totalShares)
}

func TestDepositBelowMinimumFails(t *testing.T) {
	start := time.Unix(2_000_000_000, 0)
	h := newHarness(t, start)
	episode := firstStakableAt(start)
	user := testAddr(t, 1)

	h.fundDeposit(t, user, episode, big.NewInt(pool.MinimumDepositAmount))
	_, err := h.engine.Deposit(context.Background(), user, episode)
	require.Error(t, err)

	h.fundDeposit(t, user, episode, big.NewInt(1))
	_, err = h.engine.Deposit(context.Background(), user, episode)
	require.NoError(t, err)
}

func TestDepositNonStakableEpisodeFails(t *testing.T) {
	start := time.Unix(2_000_000_000, 0)
	h := newHarness(t, start)
	episode := firstStakableAt(start) + 1
	require.False(t, pool.IsStakable(episode))

	user := testAddr(t, 1)
	h.fundDeposit(t, user, episode, big.NewInt(200_000_000))
	_, err := h.engine.Deposit(context.Background(), user, episode)
	require.Error(t, err)
}

func TestDepositPastOrFarEpisodeFails(t *testing.T) {
	start := time.Unix(2_000_000_000, 0)
	h := newHarness(t, start)
	user := testAddr(t, 1)

	past := firstStakableAt(start) - 3
	h.fundDeposit(t, user, past, big.NewInt(200_000_000))
	_, err := h.engine.Deposit(context.Background(), user, past)
	require.Error(t, err)

	farFuture := firstStakableAt(start) + pool.MaxActiveEpisodes*3
	h.fundDeposit(t, user, farFuture, big.NewInt(200_000_000))
	_, err = h.engine.Deposit(context.Background(), user, farFuture)
	require.Error(t, err)
}
