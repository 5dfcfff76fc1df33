package pool

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/google/uuid"
)

// Snapshot is the on-disk checkpoint of a MemStore, written by cmd/poolengine
// before shutdown and read back on the next start in place of the host's
// stable storage collaborator. CorrelationID ties a dumped snapshot file to
// the structured logs and traces emitted around the save that produced it.
type Snapshot struct {
	CorrelationID string                       `json:"correlationId"`
	SavedAt       time.Time                    `json:"savedAt"`
	State         *State                       `json:"state"`
	Accumulator   *RewardAccumulator           `json:"accumulator"`
	Episodes      map[int64]*Episode           `json:"episodes"`
	Deposits      map[uint64]*Deposit          `json:"deposits"`
	NextDeposit   uint64                       `json:"nextDeposit"`
	Products      map[uint64]*Product          `json:"products"`
	NextProduct   uint64                       `json:"nextProduct"`
	AllocCuts     []allocationCutEntry         `json:"allocCuts"`
	Coverages     map[uint64]*Coverage         `json:"coverages"`
	NextCoverage  uint64                       `json:"nextCoverage"`
}

type allocationCutEntry struct {
	ProductID uint64   `json:"productId"`
	EpisodeID int64    `json:"episodeId"`
	Amount    *big.Int `json:"amount"`
}

// Snapshot captures the store's current contents for persistence.
func (s *MemStore) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	cuts := make([]allocationCutEntry, 0, len(s.allocCuts))
	for k, v := range s.allocCuts {
		cuts = append(cuts, allocationCutEntry{ProductID: k.ProductID, EpisodeID: k.EpisodeID, Amount: v})
	}

	return &Snapshot{
		CorrelationID: uuid.NewString(),
		SavedAt:       time.Now(),
		State:         s.state,
		Accumulator:   s.accumulator,
		Episodes:      s.episodes,
		Deposits:      s.deposits,
		NextDeposit:   s.nextDeposit,
		Products:      s.products,
		NextProduct:   s.nextProduct,
		AllocCuts:     cuts,
		Coverages:     s.coverages,
		NextCoverage:  s.nextCoverage,
	}
}

// Restore replaces the store's contents with a previously saved snapshot.
func (s *MemStore) Restore(snap *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = snap.State
	s.accumulator = snap.Accumulator
	s.episodes = snap.Episodes
	s.deposits = snap.Deposits
	s.nextDeposit = snap.NextDeposit
	s.products = snap.Products
	s.nextProduct = snap.NextProduct
	s.coverages = snap.Coverages
	s.nextCoverage = snap.NextCoverage

	s.allocCuts = make(map[allocationCutKey]*big.Int, len(snap.AllocCuts))
	for _, e := range snap.AllocCuts {
		s.allocCuts[allocationCutKey{ProductID: e.ProductID, EpisodeID: e.EpisodeID}] = e.Amount
	}
}

// SaveSnapshot writes the store's contents to path as JSON.
func (s *MemStore) SaveSnapshot(path string) error {
	snap := s.Snapshot()
	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("pool: marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("pool: write snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads a previously saved snapshot from path into the store.
// A missing file is not an error: the store keeps its freshly-initialized
// zero state, the same as a first run against a host with no checkpoint.
func (s *MemStore) LoadSnapshot(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("pool: read snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return fmt.Errorf("pool: unmarshal snapshot: %w", err)
	}
	s.Restore(&snap)
	return nil
}
