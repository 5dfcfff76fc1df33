package pool

import (
	"math/big"

	poolerrors "github.com/satsurance/pool/core/errors"
	"github.com/satsurance/pool/crypto"
)

// GetProduct recomputes and returns a product's current allocation
// without mutating stored state.
func (e *Engine) GetProduct(id uint64) (*Product, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	product, err := e.state.GetProduct(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, poolerrors.ErrProductNotFound
	}
	allocation, err := e.computeCurrentAllocation(product)
	if err != nil {
		return nil, err
	}
	out := *product
	out.Allocation = allocation
	out.LastAllocationUpdate = GetCurrentEpisode(e.now())
	return &out, nil
}

// GetDeposit returns a stored deposit without mutating state.
func (e *Engine) GetDeposit(id uint64) (*Deposit, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	d, err := e.state.GetDeposit(id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, poolerrors.ErrNoDeposit
	}
	return d, nil
}

// GetCoverage returns a stored coverage record.
func (e *Engine) GetCoverage(id uint64) (*Coverage, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, err := e.state.GetCoverage(id)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// TotalAssetsAndShares returns the pool-wide scalars projected forward to
// now, without persisting episode processing.
func (e *Engine) TotalAssetsAndShares() (*big.Int, *big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	state, _, err := e.projectState()
	if err != nil {
		return nil, nil, err
	}
	return new(big.Int).Set(state.TotalAssets), new(big.Int).Set(state.TotalShares), nil
}

// DepositsByOwner lists every open deposit owned by addr.
func (e *Engine) DepositsByOwner(addr crypto.Address) ([]*Deposit, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.ListDepositsByOwner(addr)
}
