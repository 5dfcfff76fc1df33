package observability

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type eventMetrics struct {
	transfers *prometheus.CounterVec
}

var (
	eventMetricsOnce sync.Once
	eventRegistry    *eventMetrics
)

// Events returns the metrics registry tracking ledger transfer events
// issued by either engine through the Ledger Adapter.
func Events() *eventMetrics {
	eventMetricsOnce.Do(func() {
		eventRegistry = &eventMetrics{
			transfers: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "satsurance",
				Subsystem: "events",
				Name:      "ledger_transfers_total",
				Help:      "Count of ledger transfers issued, segmented by purpose.",
			}, []string{"purpose"}),
		}
		prometheus.MustRegister(eventRegistry.transfers)
	})
	return eventRegistry
}

// RecordTransfer increments the transfer counter for the supplied purpose
// (e.g. "deposit", "withdraw", "premium", "slash_payout").
func (m *eventMetrics) RecordTransfer(purpose string) {
	if m == nil {
		return
	}
	normalized := strings.TrimSpace(strings.ToUpper(purpose))
	if normalized == "" {
		normalized = "UNKNOWN"
	}
	m.transfers.WithLabelValues(normalized).Inc()
}
