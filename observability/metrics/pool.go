package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// PoolMetrics exposes the Pool Engine's prometheus surface.
type PoolMetrics struct {
	deposits            prometheus.Counter
	withdrawals         prometheus.Counter
	episodesProcessed   prometheus.Counter
	rewardRate          prometheus.Gauge
	accRewardPerShare   prometheus.Gauge
	totalAssets         prometheus.Gauge
	totalShares         prometheus.Gauge
	slashTotal          prometheus.Counter
	coveragePurchases   prometheus.Counter
}

var (
	poolOnce     sync.Once
	poolRegistry *PoolMetrics
)

// Pool returns the lazily-initialised Pool Engine metrics registry.
func Pool() *PoolMetrics {
	poolOnce.Do(func() {
		poolRegistry = &PoolMetrics{
			deposits: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "pool_deposits_total",
				Help: "Count of successful deposits.",
			}),
			withdrawals: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "pool_withdrawals_total",
				Help: "Count of successful withdrawals.",
			}),
			episodesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "pool_episodes_processed_total",
				Help: "Count of episode buckets closed by process_episodes.",
			}),
			rewardRate: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "pool_reward_rate",
				Help: "Current pool-wide reward rate, PRECISION_SCALE-denominated.",
			}),
			accRewardPerShare: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "pool_accumulated_reward_per_share",
				Help: "Current accumulated reward per share, PRECISION_SCALE-denominated.",
			}),
			totalAssets: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "pool_total_assets",
				Help: "Current total assets under management.",
			}),
			totalShares: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "pool_total_shares",
				Help: "Current total outstanding shares.",
			}),
			slashTotal: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "pool_slash_total",
				Help: "Cumulative amount actually debited across all slash calls.",
			}),
			coveragePurchases: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "pool_coverage_purchases_total",
				Help: "Count of successful purchase_coverage calls.",
			}),
		}
		prometheus.MustRegister(
			poolRegistry.deposits,
			poolRegistry.withdrawals,
			poolRegistry.episodesProcessed,
			poolRegistry.rewardRate,
			poolRegistry.accRewardPerShare,
			poolRegistry.totalAssets,
			poolRegistry.totalShares,
			poolRegistry.slashTotal,
			poolRegistry.coveragePurchases,
		)
	})
	return poolRegistry
}

func (m *PoolMetrics) ObserveDeposit() {
	if m == nil {
		return
	}
	m.deposits.Inc()
}

func (m *PoolMetrics) ObserveWithdrawal() {
	if m == nil {
		return
	}
	m.withdrawals.Inc()
}

func (m *PoolMetrics) ObserveEpisodesProcessed(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.episodesProcessed.Add(float64(count))
}

func (m *PoolMetrics) SetRewardRate(v float64) {
	if m == nil {
		return
	}
	m.rewardRate.Set(v)
}

func (m *PoolMetrics) SetAccumulatedRewardPerShare(v float64) {
	if m == nil {
		return
	}
	m.accRewardPerShare.Set(v)
}

func (m *PoolMetrics) SetTotalAssets(v float64) {
	if m == nil {
		return
	}
	m.totalAssets.Set(v)
}

func (m *PoolMetrics) SetTotalShares(v float64) {
	if m == nil {
		return
	}
	m.totalShares.Set(v)
}

func (m *PoolMetrics) ObserveSlash(amount float64) {
	if m == nil {
		return
	}
	m.slashTotal.Add(amount)
}

func (m *PoolMetrics) ObserveCoveragePurchase() {
	if m == nil {
		return
	}
	m.coveragePurchases.Inc()
}
