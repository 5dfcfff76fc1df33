package pool_test

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/satsurance/pool/core/errors"
	"github.com/satsurance/pool/native/pool"
)

// TestSlashProportionality checks slash losses are shared proportionally to stake.
func TestSlashProportionality(t *testing.T) {
	start := time.Unix(2_000_000_000, 0)
	h := newHarness(t, start)
	episode1 := firstStakableAt(start)
	episode2 := episode1 + 3

	userA := testAddr(t, 1)
	userB := testAddr(t, 2)
	h.fundDeposit(t, userA, episode1, big.NewInt(300_000_000))
	h.fundDeposit(t, userB, episode2, big.NewInt(200_000_000))

	_, err := h.engine.Deposit(context.Background(), userA, episode1)
	require.NoError(t, err)
	_, err = h.engine.Deposit(context.Background(), userB, episode2)
	require.NoError(t, err)

	executor := testAddr(t, 0xee)
	h.engine.SetExecutorPrincipal(executor)

	receiver := testAddr(t, 3)
	slashed, err := h.engine.Slash(context.Background(), executor, receiver, big.NewInt(100_000_000))
	require.NoError(t, err)
	require.Equal(t, big.NewInt(99_999_998), slashed)
}

func TestSlashRequiresExecutorPrincipal(t *testing.T) {
	start := time.Unix(2_000_000_000, 0)
	h := newHarness(t, start)
	h.engine.SetExecutorPrincipal(testAddr(t, 0xee))

	_, err := h.engine.Slash(context.Background(), testAddr(t, 1), testAddr(t, 2), big.NewInt(1))
	require.ErrorIs(t, err, errors.ErrNotSlashingExecutor)
}

func TestSlashSharesUntouched(t *testing.T) {
	start := time.Unix(2_000_000_000, 0)
	h := newHarness(t, start)
	episode := firstStakableAt(start)
	user := testAddr(t, 1)

	h.fundDeposit(t, user, episode, big.NewInt(300_000_000))
	d, err := h.engine.Deposit(context.Background(), user, episode)
	require.NoError(t, err)
	sharesBefore := new(big.Int).Set(d.Shares)

	executor := testAddr(t, 0xee)
	h.engine.SetExecutorPrincipal(executor)
	_, err = h.engine.Slash(context.Background(), executor, testAddr(t, 3), big.NewInt(50_000_000))
	require.NoError(t, err)

	after, err := h.engine.GetDeposit(d.ID)
	require.NoError(t, err)
	require.Equal(t, sharesBefore, after.Shares)
}
