package pool_test

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	poolerrors "github.com/satsurance/pool/core/errors"
	"github.com/satsurance/pool/crypto"
	"github.com/satsurance/pool/ledger"
	"github.com/satsurance/pool/native/pool"
)

func (h *harness) createProduct(t *testing.T, manager crypto.Address, maxDuration int64, maxAllocPercent int64) *pool.Product {
	t.Helper()
	p, err := h.engine.CreateProduct(manager, "fire", big.NewInt(1_000), maxDuration, big.NewInt(maxAllocPercent))
	require.NoError(t, err)
	return p
}

func TestCreateProductRejectsOversizedDuration(t *testing.T) {
	start := time.Unix(2_000_000_000, 0)
	h := newHarness(t, start)
	manager := testAddr(t, 0xaa)
	h.engine.SetPoolManagerPrincipal(manager)

	_, err := h.engine.CreateProduct(manager, "fire", big.NewInt(1_000), (pool.MaxActiveEpisodes-1)*pool.EpisodeDuration, big.NewInt(5_000))
	require.ErrorIs(t, err, poolerrors.ErrInvalidProductParameters)
}

func TestCreateProductRejectsZeroAnnualPercent(t *testing.T) {
	start := time.Unix(2_000_000_000, 0)
	h := newHarness(t, start)
	manager := testAddr(t, 0xaa)
	h.engine.SetPoolManagerPrincipal(manager)

	_, err := h.engine.CreateProduct(manager, "fire", big.NewInt(0), pool.EpisodeDuration, big.NewInt(5_000))
	require.ErrorIs(t, err, poolerrors.ErrInvalidProductParameters)
}

func TestPurchaseCoverageHappyPath(t *testing.T) {
	start := time.Unix(2_000_000_000, 0)
	h := newHarness(t, start)
	manager := testAddr(t, 0xaa)
	h.engine.SetPoolManagerPrincipal(manager)
	product := h.createProduct(t, manager, pool.EpisodeDuration*6, 5_000)

	depositUser := testAddr(t, 1)
	episode := firstStakableAt(start)
	h.fundDeposit(t, depositUser, episode, big.NewInt(10_000_000_000))
	_, err := h.engine.Deposit(context.Background(), depositUser, episode)
	require.NoError(t, err)

	buyer := testAddr(t, 2)
	coveredAccount := testAddr(t, 3)
	sub := crypto.PurchaseSubaccount(buyer, product.ID)
	h.ledger.Credit(ledger.Account{Owner: buyer, Subaccount: &sub}, big.NewInt(1_000_000))

	coverage, err := h.engine.PurchaseCoverage(context.Background(), buyer, product.ID, coveredAccount, pool.EpisodeDuration*2, big.NewInt(100_000_000))
	require.NoError(t, err)
	require.Equal(t, buyer, coverage.Buyer)
	require.True(t, coverage.PremiumAmount.Sign() > 0)
}

func TestPurchaseCoverageRejectsAnonymousCoveredAccount(t *testing.T) {
	start := time.Unix(2_000_000_000, 0)
	h := newHarness(t, start)
	manager := testAddr(t, 0xaa)
	h.engine.SetPoolManagerPrincipal(manager)
	product := h.createProduct(t, manager, pool.EpisodeDuration*6, 5_000)

	buyer := testAddr(t, 2)
	anonymous, err := crypto.NewAddress(crypto.SinsPrefix, make([]byte, 20))
	require.NoError(t, err)

	_, err = h.engine.PurchaseCoverage(context.Background(), buyer, product.ID, anonymous, pool.EpisodeDuration*2, big.NewInt(1))
	require.ErrorIs(t, err, poolerrors.ErrCoveredAccountAnonymous)
}

func TestPurchaseCoverageDurationBoundary(t *testing.T) {
	start := time.Unix(2_000_000_000, 0)
	h := newHarness(t, start)
	manager := testAddr(t, 0xaa)
	h.engine.SetPoolManagerPrincipal(manager)
	product := h.createProduct(t, manager, pool.EpisodeDuration*6, 5_000)

	depositUser := testAddr(t, 1)
	episode := firstStakableAt(start)
	h.fundDeposit(t, depositUser, episode, big.NewInt(10_000_000_000))
	_, err := h.engine.Deposit(context.Background(), depositUser, episode)
	require.NoError(t, err)

	buyer := testAddr(t, 2)
	coveredAccount := testAddr(t, 3)
	sub := crypto.PurchaseSubaccount(buyer, product.ID)
	h.ledger.Credit(ledger.Account{Owner: buyer, Subaccount: &sub}, big.NewInt(1_000_000))

	_, err = h.engine.PurchaseCoverage(context.Background(), buyer, product.ID, coveredAccount, pool.EpisodeDuration-1, big.NewInt(1_000))
	require.ErrorIs(t, err, poolerrors.ErrCoverageDurationTooShort)

	h.ledger.Credit(ledger.Account{Owner: buyer, Subaccount: &sub}, big.NewInt(1_000_000))
	_, err = h.engine.PurchaseCoverage(context.Background(), buyer, product.ID, coveredAccount, pool.EpisodeDuration, big.NewInt(1_000))
	require.NoError(t, err)
}
