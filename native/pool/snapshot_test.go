package pool_test

import (
	"context"
	"math/big"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/satsurance/pool/crypto"
	"github.com/satsurance/pool/ledger"
	nativecommon "github.com/satsurance/pool/native/common"
	"github.com/satsurance/pool/native/pool"
)

func TestSnapshotRoundTrip(t *testing.T) {
	start := time.Unix(2_000_000_000, 0)
	store := pool.NewMemStore()

	mainAddr := testAddr(t, 0xff)
	mem := ledger.NewInMemory(pool.TransferFee)
	clock := nativecommon.NewFakeClock(start)

	e := pool.NewEngine(ledger.Account{Owner: mainAddr})
	e.SetState(store)
	e.SetLedger(mem)
	e.SetClock(clock)

	episode := firstStakableAt(start)
	user := testAddr(t, 1)
	sub := crypto.DepositSubaccount(user, uint64(episode))
	mem.Credit(ledger.Account{Subaccount: &sub}, big.NewInt(200_000_000))

	_, err := e.Deposit(context.Background(), user, episode)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, store.SaveSnapshot(path))

	restored := pool.NewMemStore()
	require.NoError(t, restored.LoadSnapshot(path))

	state, err := restored.GetState()
	require.NoError(t, err)
	require.Equal(t, 0, state.TotalAssets.Cmp(big.NewInt(199_999_990)))

	deposits, err := restored.ListDepositsByOwner(user)
	require.NoError(t, err)
	require.Len(t, deposits, 1)
}

func TestSnapshotMissingFileIsNotError(t *testing.T) {
	store := pool.NewMemStore()
	path := filepath.Join(t.TempDir(), "does-not-exist.json")
	require.NoError(t, store.LoadSnapshot(path))

	state, err := store.GetState()
	require.NoError(t, err)
	require.Equal(t, 0, state.TotalAssets.Cmp(big.NewInt(0)))
}
