package pool

import (
	"math/big"

	"github.com/satsurance/pool/crypto"
)

// engineState is the persistence seam the Engine reads and writes
// through, grounded in native/lending's engineState interface.
type engineState interface {
	GetState() (*State, error)
	PutState(*State) error

	GetAccumulator() (*RewardAccumulator, error)
	PutAccumulator(*RewardAccumulator) error

	GetEpisode(id int64) (*Episode, error)
	PutEpisode(*Episode) error
	DeleteEpisode(id int64) error

	NextDepositID() (uint64, error)
	GetDeposit(id uint64) (*Deposit, error)
	PutDeposit(*Deposit) error
	DeleteDeposit(id uint64) error
	ListDepositsByOwner(owner crypto.Address) ([]*Deposit, error)

	NextProductID() (uint64, error)
	GetProduct(id uint64) (*Product, error)
	PutProduct(*Product) error
	ListProducts() ([]*Product, error)

	GetAllocationCut(productID uint64, episodeID int64) (*big.Int, error)
	AddAllocationCut(productID uint64, episodeID int64, amount *big.Int) error
	DeleteAllocationCut(productID uint64, episodeID int64) error

	NextCoverageID() (uint64, error)
	PutCoverage(*Coverage) error
	GetCoverage(id uint64) (*Coverage, error)
	ListCoveragesByBuyer(buyer crypto.Address) ([]*Coverage, error)
}
