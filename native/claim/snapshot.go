package claim

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

// Snapshot is the on-disk checkpoint of a MemStore, written by
// cmd/claimengine before shutdown and read back on the next start in
// place of the host's stable storage collaborator.
type Snapshot struct {
	CorrelationID string                   `json:"correlationId"`
	SavedAt       time.Time                `json:"savedAt"`
	Governance    *Governance              `json:"governance"`
	Claims        map[uint64]*Claim        `json:"claims"`
	NextClaim     uint64                   `json:"nextClaim"`
	Events        map[uint64][]ClaimEvent  `json:"events"`
}

// Snapshot captures the store's current contents for persistence.
func (s *MemStore) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &Snapshot{
		CorrelationID: uuid.NewString(),
		SavedAt:       time.Now(),
		Governance:    s.governance,
		Claims:        s.claims,
		NextClaim:     s.nextClaim,
		Events:        s.events,
	}
}

// Restore replaces the store's contents with a previously saved snapshot.
func (s *MemStore) Restore(snap *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.governance = snap.Governance
	s.claims = snap.Claims
	s.nextClaim = snap.NextClaim
	s.events = snap.Events
}

// SaveSnapshot writes the store's contents to path as JSON.
func (s *MemStore) SaveSnapshot(path string) error {
	snap := s.Snapshot()
	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("claim: marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("claim: write snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads a previously saved snapshot from path into the store.
// A missing file is not an error: the store keeps the governance singleton
// it was constructed with and an empty claim set, the same as a first run
// against a host with no checkpoint.
func (s *MemStore) LoadSnapshot(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("claim: read snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return fmt.Errorf("claim: unmarshal snapshot: %w", err)
	}
	s.Restore(&snap)
	return nil
}
