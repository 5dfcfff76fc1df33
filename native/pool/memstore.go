package pool

import (
	"math/big"
	"sync"

	"github.com/satsurance/pool/crypto"
)

// MemStore is an in-memory engineState implementation used by default and
// by tests; the host-provided stable storage collaborator is out of this
// spec's scope.
type MemStore struct {
	mu sync.Mutex

	state       *State
	accumulator *RewardAccumulator
	episodes    map[int64]*Episode
	deposits    map[uint64]*Deposit
	nextDeposit uint64
	products    map[uint64]*Product
	nextProduct uint64
	allocCuts   map[allocationCutKey]*big.Int
	coverages   map[uint64]*Coverage
	nextCoverage uint64
}

// NewMemStore constructs an empty store seeded with zeroed scalars.
func NewMemStore() *MemStore {
	return &MemStore{
		state:       &State{TotalAssets: big.NewInt(0), TotalShares: big.NewInt(0)},
		accumulator: &RewardAccumulator{PoolRewardRate: big.NewInt(0), AccumulatedRewardPerShare: big.NewInt(0)},
		episodes:    make(map[int64]*Episode),
		deposits:    make(map[uint64]*Deposit),
		products:    make(map[uint64]*Product),
		allocCuts:   make(map[allocationCutKey]*big.Int),
		coverages:   make(map[uint64]*Coverage),
	}
}

func (s *MemStore) GetState() (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, nil
}

func (s *MemStore) PutState(state *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	return nil
}

func (s *MemStore) GetAccumulator() (*RewardAccumulator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accumulator, nil
}

func (s *MemStore) PutAccumulator(acc *RewardAccumulator) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accumulator = acc
	return nil
}

func (s *MemStore) GetEpisode(id int64) (*Episode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ep, ok := s.episodes[id]
	if !ok {
		return newEpisode(id), nil
	}
	return ep, nil
}

func (s *MemStore) PutEpisode(ep *Episode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.episodes[ep.ID] = ep
	return nil
}

func (s *MemStore) DeleteEpisode(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.episodes, id)
	return nil
}

func (s *MemStore) NextDepositID() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextDeposit++
	return s.nextDeposit, nil
}

func (s *MemStore) GetDeposit(id uint64) (*Deposit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.deposits[id]
	if !ok {
		return nil, nil
	}
	return d, nil
}

func (s *MemStore) PutDeposit(d *Deposit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deposits[d.ID] = d
	return nil
}

func (s *MemStore) DeleteDeposit(id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.deposits, id)
	return nil
}

func (s *MemStore) ListDepositsByOwner(owner crypto.Address) ([]*Deposit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Deposit
	for _, d := range s.deposits {
		if d.Owner.Equal(owner) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *MemStore) NextProductID() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextProduct++
	return s.nextProduct, nil
}

func (s *MemStore) GetProduct(id uint64) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, nil
	}
	return p, nil
}

func (s *MemStore) PutProduct(p *Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
	return nil
}

func (s *MemStore) ListProducts() ([]*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	return out, nil
}

func (s *MemStore) GetAllocationCut(productID uint64, episodeID int64) (*big.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.allocCuts[allocationCutKey{productID, episodeID}]
	if !ok {
		return big.NewInt(0), nil
	}
	return v, nil
}

func (s *MemStore) AddAllocationCut(productID uint64, episodeID int64, amount *big.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := allocationCutKey{productID, episodeID}
	cur, ok := s.allocCuts[key]
	if !ok {
		cur = big.NewInt(0)
	}
	s.allocCuts[key] = new(big.Int).Add(cur, amount)
	return nil
}

func (s *MemStore) DeleteAllocationCut(productID uint64, episodeID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.allocCuts, allocationCutKey{productID, episodeID})
	return nil
}

func (s *MemStore) NextCoverageID() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextCoverage++
	return s.nextCoverage, nil
}

func (s *MemStore) PutCoverage(c *Coverage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coverages[c.ID] = c
	return nil
}

func (s *MemStore) GetCoverage(id uint64) (*Coverage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.coverages[id]
	if !ok {
		return nil, nil
	}
	return c, nil
}

func (s *MemStore) ListCoveragesByBuyer(buyer crypto.Address) ([]*Coverage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Coverage
	for _, c := range s.coverages {
		if c.Buyer.Equal(buyer) {
			out = append(out, c)
		}
	}
	return out, nil
}
