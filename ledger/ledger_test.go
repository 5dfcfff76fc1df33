package ledger_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/satsurance/pool/crypto"
	"github.com/satsurance/pool/ledger"
)

func testAccount(t *testing.T, seed byte, sub *crypto.Subaccount) ledger.Account {
	t.Helper()
	b := make([]byte, 20)
	b[0] = seed
	addr, err := crypto.NewAddress(crypto.SinsPrefix, b)
	require.NoError(t, err)
	return ledger.Account{Owner: addr, Subaccount: sub}
}

func TestSweepNoOpBelowFee(t *testing.T) {
	mem := ledger.NewInMemory(big.NewInt(10))
	sub := crypto.DepositSubaccount(mustAddr(t, 1), 0)
	from := ledger.Account{Subaccount: &sub}
	mem.Credit(from, big.NewInt(5))

	net, err := ledger.Sweep(context.Background(), mem, from, testAccount(t, 2, nil), nil)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(0), net)
}

func TestSweepTransfersNetOfFee(t *testing.T) {
	mem := ledger.NewInMemory(big.NewInt(10))
	sub := crypto.DepositSubaccount(mustAddr(t, 1), 0)
	from := ledger.Account{Subaccount: &sub}
	mem.Credit(from, big.NewInt(100))

	to := testAccount(t, 2, nil)
	net, err := ledger.Sweep(context.Background(), mem, from, to, []byte("memo"))
	require.NoError(t, err)
	require.Equal(t, big.NewInt(90), net)

	bal, err := mem.BalanceOf(context.Background(), to)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(90), bal)
}

func TestTransferInsufficientFunds(t *testing.T) {
	mem := ledger.NewInMemory(big.NewInt(1))
	sub := crypto.DepositSubaccount(mustAddr(t, 1), 0)
	from := ledger.Account{Subaccount: &sub}
	mem.Credit(from, big.NewInt(1))

	_, err := mem.Transfer(context.Background(), ledger.TransferArg{
		FromSubaccount: &sub,
		To:             testAccount(t, 2, nil),
		Amount:         big.NewInt(5),
	})
	require.Error(t, err)
	var transferErr *ledger.TransferError
	require.ErrorAs(t, err, &transferErr)
	require.Equal(t, ledger.TransferErrorInsufficientFunds, transferErr.Kind)
}

func mustAddr(t *testing.T, seed byte) crypto.Address {
	t.Helper()
	b := make([]byte, 20)
	b[0] = seed
	addr, err := crypto.NewAddress(crypto.SinsPrefix, b)
	require.NoError(t, err)
	return addr
}
