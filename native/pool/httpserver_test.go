package pool_test

import (
	"context"
	"math/big"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/satsurance/pool/crypto"
	"github.com/satsurance/pool/native/claim"
	"github.com/satsurance/pool/native/pool"
)

func TestHTTPSlashRoundTrip(t *testing.T) {
	start := time.Unix(2_000_000_000, 0)
	h := newHarness(t, start)
	executor := testAddr(t, 0x30)
	h.engine.SetExecutorPrincipal(executor)

	user := testAddr(t, 0x01)
	episode := firstStakableAt(start)
	h.fundDeposit(t, user, episode, big.NewInt(300_000_000))
	_, err := h.engine.Deposit(context.Background(), user, episode)
	require.NoError(t, err)

	server := httptest.NewServer(pool.SlashHandler(h.engine, []byte("test-secret"), executor.String(), h.clock))
	defer server.Close()

	caller := &claim.HTTPSlashCaller{
		BaseURL:           server.URL,
		ExecutorPrincipal: executor.String(),
		JWTSecret:         []byte("test-secret"),
		Clock:             h.clock,
	}

	receiver := testAddr(t, 0x99)
	slashed, err := caller.Slash(context.Background(), executor, receiver, big.NewInt(100_000_000))
	require.NoError(t, err)
	require.True(t, slashed.Sign() > 0)
}

func TestHTTPSlashRejectsWrongExecutor(t *testing.T) {
	start := time.Unix(2_000_000_000, 0)
	h := newHarness(t, start)
	executor := testAddr(t, 0x30)
	h.engine.SetExecutorPrincipal(executor)

	server := httptest.NewServer(pool.SlashHandler(h.engine, []byte("test-secret"), executor.String(), h.clock))
	defer server.Close()

	wrong := testAddr(t, 0x31)
	caller := &claim.HTTPSlashCaller{
		BaseURL:           server.URL,
		ExecutorPrincipal: wrong.String(),
		JWTSecret:         []byte("test-secret"),
		Clock:             h.clock,
	}

	receiver := testAddr(t, 0x99)
	_, err := caller.Slash(context.Background(), wrong, receiver, big.NewInt(100))
	require.Error(t, err)
}
