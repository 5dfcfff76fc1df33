package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// ClaimMetrics exposes the Claim Engine's prometheus surface.
type ClaimMetrics struct {
	added            *prometheus.CounterVec
	approved         prometheus.Counter
	executed         prometheus.Counter
	executionFailed  prometheus.Counter
	markedSpam       prometheus.Counter
	depositWithdrawn prometheus.Counter
	approverQuota    *prometheus.CounterVec
}

var (
	claimOnce     sync.Once
	claimRegistry *ClaimMetrics
)

// Claim returns the lazily-initialised Claim Engine metrics registry.
func Claim() *ClaimMetrics {
	claimOnce.Do(func() {
		claimRegistry = &ClaimMetrics{
			added: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "claim_added_total",
				Help: "Count of claims proposed, segmented by whether a deposit was required.",
			}, []string{"deposit_required"}),
			approved: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "claim_approved_total",
				Help: "Count of claims approved.",
			}),
			executed: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "claim_executed_total",
				Help: "Count of claims successfully executed against the pool.",
			}),
			executionFailed: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "claim_execution_failed_total",
				Help: "Count of execute_claim calls that reverted to Approved after a pool call failure.",
			}),
			markedSpam: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "claim_marked_spam_total",
				Help: "Count of claims marked as spam.",
			}),
			depositWithdrawn: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "claim_deposit_withdrawn_total",
				Help: "Count of successful withdraw_deposit calls.",
			}),
			approverQuota: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "claim_approver_quota_rejected_total",
				Help: "Count of approve_claim/mark_as_spam calls rejected by the per-approver abuse guard.",
			}, []string{"approver"}),
		}
		prometheus.MustRegister(
			claimRegistry.added,
			claimRegistry.approved,
			claimRegistry.executed,
			claimRegistry.executionFailed,
			claimRegistry.markedSpam,
			claimRegistry.depositWithdrawn,
			claimRegistry.approverQuota,
		)
	})
	return claimRegistry
}

func (m *ClaimMetrics) ObserveAdded(depositRequired bool) {
	if m == nil {
		return
	}
	label := "false"
	if depositRequired {
		label = "true"
	}
	m.added.WithLabelValues(label).Inc()
}

func (m *ClaimMetrics) ObserveApproved() {
	if m == nil {
		return
	}
	m.approved.Inc()
}

func (m *ClaimMetrics) ObserveExecuted() {
	if m == nil {
		return
	}
	m.executed.Inc()
}

func (m *ClaimMetrics) ObserveExecutionFailed() {
	if m == nil {
		return
	}
	m.executionFailed.Inc()
}

func (m *ClaimMetrics) ObserveMarkedSpam() {
	if m == nil {
		return
	}
	m.markedSpam.Inc()
}

func (m *ClaimMetrics) ObserveDepositWithdrawn() {
	if m == nil {
		return
	}
	m.depositWithdrawn.Inc()
}

func (m *ClaimMetrics) ObserveApproverQuotaRejected(approver string) {
	if m == nil {
		return
	}
	if approver == "" {
		approver = "unknown"
	}
	m.approverQuota.WithLabelValues(approver).Inc()
}
