package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CommissionMetrics holds the engine's counters. A nil *CommissionMetrics records nothing.
type CommissionMetrics struct {
	// Payouts
	PayoutsTotal       *prometheus.CounterVec
	PayoutAmountTotal  *prometheus.CounterVec
	PairsMatchedTotal  prometheus.Counter
	CappedPayoutsTotal prometheus.Counter

	// Tree
	PlacementsTotal        *prometheus.CounterVec
	PropagationDepth       prometheus.Histogram
	BrokenLinksTotal       prometheus.Counter
	HoldingTankParkedTotal prometheus.Counter

	// Dispatch and errors
	NotificationFailuresTotal prometheus.Counter
	CascadeRetriesTotal       *prometheus.CounterVec
	ErrorsTotal               *prometheus.CounterVec
	SweepDuration             prometheus.Histogram
}

func NewCommissionMetrics(reg prometheus.Registerer) *CommissionMetrics {
	factory := promauto.With(reg)
	return &CommissionMetrics{
		PayoutsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "binary_payouts_total",
				Help: "Number of credits written, by commission type",
			},
			[]string{"type"},
		),
		PayoutAmountTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "binary_payout_amount_total",
				Help: "Sum of credited amounts, by commission type",
			},
			[]string{"type"},
		),
		PairsMatchedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "binary_pairs_matched_total",
			Help: "Pairs matched by binary pairing",
		}),
		CappedPayoutsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "binary_capped_payouts_total",
			Help: "Binary payouts clamped by the daily cap",
		}),
		PlacementsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "binary_placements_total",
				Help: "Members placed into the tree, by spillover strategy",
			},
			[]string{"strategy"},
		),
		PropagationDepth: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "binary_propagation_depth",
			Help:    "Ancestors credited by one volume propagation",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 250, 500},
		}),
		BrokenLinksTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "binary_broken_links_total",
			Help: "Parent links skipped because the parent did not point back",
		}),
		HoldingTankParkedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "binary_holding_tank_parked_total",
			Help: "Activated members parked in the holding tank",
		}),
		NotificationFailuresTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "binary_notification_failures_total",
			Help: "Notifications that could not be dispatched",
		}),
		CascadeRetriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "binary_cascade_retries_total",
				Help: "Units of work replayed after a retryable failure",
			},
			[]string{"operation"},
		),
		ErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "binary_errors_total",
				Help: "Failed operations",
			},
			[]string{"operation"},
		),
		SweepDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "binary_sweep_duration_seconds",
			Help:    "Duration of a full pairing sweep",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *CommissionMetrics) RecordPayout(commissionType string, amount float64) {
	if m == nil {
		return
	}
	m.PayoutsTotal.WithLabelValues(commissionType).Inc()
	m.PayoutAmountTotal.WithLabelValues(commissionType).Add(amount)
}

func (m *CommissionMetrics) RecordPairs(pairs int64, capped int) {
	if m == nil {
		return
	}
	m.PairsMatchedTotal.Add(float64(pairs))
	m.CappedPayoutsTotal.Add(float64(capped))
}

func (m *CommissionMetrics) RecordPlacement(strategy string) {
	if m == nil {
		return
	}
	m.PlacementsTotal.WithLabelValues(strategy).Inc()
}

func (m *CommissionMetrics) RecordPropagation(depth int, brokenLinks int) {
	if m == nil {
		return
	}
	m.PropagationDepth.Observe(float64(depth))
	m.BrokenLinksTotal.Add(float64(brokenLinks))
}

func (m *CommissionMetrics) RecordParked() {
	if m == nil {
		return
	}
	m.HoldingTankParkedTotal.Inc()
}

func (m *CommissionMetrics) RecordNotificationFailure() {
	if m == nil {
		return
	}
	m.NotificationFailuresTotal.Inc()
}

func (m *CommissionMetrics) RecordRetry(operation string) {
	if m == nil {
		return
	}
	m.CascadeRetriesTotal.WithLabelValues(operation).Inc()
}

func (m *CommissionMetrics) RecordError(operation string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(operation).Inc()
}

func (m *CommissionMetrics) RecordSweep(seconds float64) {
	if m == nil {
		return
	}
	m.SweepDuration.Observe(seconds)
}
