package pool

import (
	"context"
	"math/big"

	"github.com/google/uuid"

	poolerrors "github.com/satsurance/pool/core/errors"
	"github.com/satsurance/pool/crypto"
	"github.com/satsurance/pool/ledger"
)

// CreateProduct registers a new coverage product; only the pool manager
// may call it.
func (e *Engine) CreateProduct(caller crypto.Address, name string, annualPercent *big.Int, maxCoverageDuration int64, maxPoolAllocationPercent *big.Int) (*Product, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.poolManagerPrincipal.IsZero() || !caller.Equal(e.poolManagerPrincipal) {
		return nil, poolerrors.ErrNotPoolManager
	}
	if annualPercent == nil || annualPercent.Sign() == 0 {
		return nil, poolerrors.ErrInvalidProductParameters
	}
	if maxPoolAllocationPercent == nil || maxPoolAllocationPercent.Cmp(big.NewInt(BasisPoints)) > 0 {
		return nil, poolerrors.ErrInvalidProductParameters
	}
	if maxCoverageDuration >= (MaxActiveEpisodes-1)*EpisodeDuration {
		return nil, poolerrors.ErrInvalidProductParameters
	}

	id, err := e.state.NextProductID()
	if err != nil {
		return nil, err
	}
	current := GetCurrentEpisode(e.now())
	product := &Product{
		ID:                       id,
		Name:                     name,
		AnnualPercent:            new(big.Int).Set(annualPercent),
		MaxCoverageDuration:      maxCoverageDuration,
		MaxPoolAllocationPercent: new(big.Int).Set(maxPoolAllocationPercent),
		Allocation:               big.NewInt(0),
		LastAllocationUpdate:     current,
		Active:                   true,
	}
	if err := e.state.PutProduct(product); err != nil {
		return nil, err
	}
	return product, nil
}

// computeCurrentAllocation refreshes and returns a product's current
// outstanding allocation, subtracting cuts attributable to buckets that
// have expired since the product was last touched.
func (e *Engine) computeCurrentAllocation(product *Product) (*big.Int, error) {
	current := GetCurrentEpisode(e.now())
	if product.LastAllocationUpdate == current {
		return new(big.Int).Set(product.Allocation), nil
	}
	if current-product.LastAllocationUpdate > MaxActiveEpisodes {
		return big.NewInt(0), nil
	}

	allocation := new(big.Int).Set(product.Allocation)
	for i := product.LastAllocationUpdate; i < current; i++ {
		cut, err := e.state.GetAllocationCut(product.ID, i)
		if err != nil {
			return nil, err
		}
		allocation.Sub(allocation, cut)
	}
	if allocation.Sign() < 0 {
		allocation = big.NewInt(0)
	}
	return allocation, nil
}

// verifyProductAllocation walks forward from lastCoveredEpisode through
// the active window, accumulating projected per-bucket asset backing
// until the running sum reaches required capacity.
func (e *Engine) verifyProductAllocation(lastCoveredEpisode int64, required *big.Int) (bool, error) {
	state, err := e.state.GetState()
	if err != nil {
		return false, err
	}
	if state.TotalShares.Sign() == 0 {
		return false, nil
	}

	current := GetCurrentEpisode(e.now())
	sum := big.NewInt(0)
	for id := lastCoveredEpisode; id < current+MaxActiveEpisodes; id++ {
		bucket, err := e.state.GetEpisode(id)
		if err != nil {
			return false, err
		}
		contribution := new(big.Int).Mul(bucket.EpisodeShares, state.TotalAssets)
		contribution.Quo(contribution, state.TotalShares)
		sum.Add(sum, contribution)
		if sum.Cmp(required) >= 0 {
			return true, nil
		}
	}
	return false, nil
}

// PurchaseCoverage prices and books a coverage policy, sweeping the
// buyer's purchase subaccount for the premium and streaming it back to
// depositors via reward_pool_with_duration.
func (e *Engine) PurchaseCoverage(ctx context.Context, buyer crypto.Address, productID uint64, coveredAccount crypto.Address, duration int64, coverageAmount *big.Int) (*Coverage, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.guard(); err != nil {
		return nil, err
	}
	if err := e.requireLedger(); err != nil {
		return nil, err
	}
	if coveredAccount.IsAnonymous() {
		return nil, poolerrors.ErrCoveredAccountAnonymous
	}
	if err := e.processEpisodes(); err != nil {
		return nil, err
	}

	product, err := e.state.GetProduct(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, poolerrors.ErrProductNotFound
	}
	if !product.Active {
		return nil, poolerrors.ErrProductNotActive
	}
	if duration < EpisodeDuration {
		return nil, poolerrors.ErrCoverageDurationTooShort
	}
	if duration > product.MaxCoverageDuration {
		return nil, poolerrors.ErrCoverageDurationTooLong
	}

	allocation, err := e.computeCurrentAllocation(product)
	if err != nil {
		return nil, err
	}
	product.Allocation = allocation
	current := GetCurrentEpisode(e.now())
	product.LastAllocationUpdate = current

	lastCoveredEpisode := (e.now() + duration) / EpisodeDuration

	required := new(big.Int).Add(allocation, coverageAmount)
	required.Mul(required, big.NewInt(BasisPoints))
	required.Quo(required, product.MaxPoolAllocationPercent)

	ok, err := e.verifyProductAllocation(lastCoveredEpisode, required)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, poolerrors.ErrNotEnoughAssetsToCover
	}

	if err := e.state.AddAllocationCut(productID, lastCoveredEpisode, coverageAmount); err != nil {
		return nil, err
	}
	product.Allocation = new(big.Int).Add(product.Allocation, coverageAmount)
	if err := e.state.PutProduct(product); err != nil {
		return nil, err
	}

	bucket, err := e.state.GetEpisode(lastCoveredEpisode)
	if err != nil {
		return nil, err
	}
	bucket.CoverageDecrease = new(big.Int).Add(bucket.CoverageDecrease, coverageAmount)
	if err := e.state.PutEpisode(bucket); err != nil {
		return nil, err
	}

	premium := new(big.Int).Mul(big.NewInt(duration), product.AnnualPercent)
	premium.Mul(premium, coverageAmount)
	premium.Quo(premium, new(big.Int).Mul(big.NewInt(SecondsPerYear), big.NewInt(BasisPoints)))

	sub := crypto.PurchaseSubaccount(buyer, productID)
	from := ledger.Account{Owner: buyer, Subaccount: &sub}

	memo := uuid.New().String()
	if _, err := e.ledger.Transfer(ctx, ledger.TransferArg{
		FromSubaccount: &sub,
		To:             e.mainAccount,
		Amount:         premium,
		Fee:            e.ledger.TransferFee(),
		Memo:           []byte(memo),
	}); err != nil {
		return nil, poolerrors.ErrTransferFailed
	}

	// Refund any excess balance left on the purchase subaccount.
	if _, err := ledger.Sweep(ctx, e.ledger, from, ledger.Account{Owner: buyer}, []byte(memo)); err != nil {
		return nil, poolerrors.ErrTransferFailed
	}

	net := new(big.Int).Sub(premium, e.ledger.TransferFee())
	if net.Sign() > 0 {
		if err := e.rewardPoolWithDuration(net, duration); err != nil {
			return nil, err
		}
	}

	coverageID, err := e.state.NextCoverageID()
	if err != nil {
		return nil, err
	}
	coverage := &Coverage{
		ID:             coverageID,
		Buyer:          buyer,
		CoveredAccount: coveredAccount,
		ProductID:      productID,
		CoverageAmount: new(big.Int).Set(coverageAmount),
		PremiumAmount:  new(big.Int).Set(premium),
		StartTime:      e.now(),
		EndTime:        e.now() + duration,
	}
	if err := e.state.PutCoverage(coverage); err != nil {
		return nil, err
	}
	return coverage, nil
}
