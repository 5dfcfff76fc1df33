// Package pool implements the Pool Engine: episode-bucketed share
// accounting, reward accrual, proportional slashing, and coverage
// underwriting.
package pool

import (
	"math/big"

	"github.com/satsurance/pool/crypto"
)

// Episode-cadence and precision constants, binding per the external
// interface table.
const (
	EpisodeDuration      int64 = 7 * 24 * 3600
	MaxActiveEpisodes    int64 = 12
	MinimumDepositAmount       = 100_000_000 // base units
	SecondsPerYear       int64 = 365 * 24 * 3600
	BasisPoints          int64 = 10_000

	// rewardWindowEpisodes is the 12-episode spread window reward_pool
	// streams swept rewards over; reward_pool_with_duration sizes its
	// window from the coverage duration instead.
	rewardWindowEpisodes int64 = 12
)

// PrecisionScale keeps the reward rate integral; multiplications always
// precede divisions wherever it is used.
var PrecisionScale = big.NewInt(1_000_000_000_000)

// TransferFee is the ledger's fixed fee deducted from every transfer.
var TransferFee = big.NewInt(10)

func bi(v int64) *big.Int { return big.NewInt(v) }

// Episode is a fixed-duration time bucket.
type Episode struct {
	ID                      int64
	EpisodeShares           *big.Int
	AssetsStaked            *big.Int
	RewardDecrease          *big.Int
	CoverageDecrease        *big.Int
	AccRewardPerShareOnExpire *big.Int
	Processed               bool
}

func newEpisode(id int64) *Episode {
	return &Episode{
		ID:               id,
		EpisodeShares:    big.NewInt(0),
		AssetsStaked:     big.NewInt(0),
		RewardDecrease:   big.NewInt(0),
		CoverageDecrease: big.NewInt(0),
	}
}

// IsEmpty reports whether the bucket has fully drained and may be deleted.
func (e *Episode) IsEmpty() bool {
	return e.EpisodeShares.Sign() == 0
}

// Deposit is a single user stake, keyed by a monotonic id.
type Deposit struct {
	ID                   uint64
	Owner                crypto.Address
	Episode              int64
	Shares               *big.Int
	RewardPerShareBaseline *big.Int
	RewardsCollected     *big.Int
}

// State holds the two pool-wide scalars.
type State struct {
	TotalAssets *big.Int
	TotalShares *big.Int
}

// RewardAccumulator holds the running reward-rate integral.
type RewardAccumulator struct {
	PoolRewardRate            *big.Int
	AccumulatedRewardPerShare *big.Int
	LastTimeUpdated           int64
}

// Product is an insurable coverage offering.
type Product struct {
	ID                       uint64
	Name                     string
	AnnualPercent            *big.Int // basis points * 100, i.e. 10_000 == 100%
	MaxCoverageDuration      int64
	MaxPoolAllocationPercent *big.Int // basis points
	Allocation               *big.Int
	LastAllocationUpdate     int64
	Active                   bool
}

// Coverage is a purchased policy.
type Coverage struct {
	ID             uint64
	Buyer          crypto.Address
	CoveredAccount crypto.Address
	ProductID      uint64
	CoverageAmount *big.Int
	PremiumAmount  *big.Int
	StartTime      int64
	EndTime        int64
}

// allocationCutKey indexes the episode-allocation-cut map.
type allocationCutKey struct {
	ProductID uint64
	EpisodeID int64
}

// GetCurrentEpisode returns floor(now / EpisodeDuration).
func GetCurrentEpisode(now int64) int64 {
	return now / EpisodeDuration
}

// IsStakable reports whether deposits may target this episode id: every
// third bucket, `id mod 3 == 2`.
func IsStakable(episodeID int64) bool {
	return episodeID%3 == 2
}

// IsActive reports whether episodeID falls within the sliding window
// `[current, current+MaxActiveEpisodes)`.
func IsActive(episodeID, current int64) bool {
	return episodeID >= current && episodeID < current+MaxActiveEpisodes
}
