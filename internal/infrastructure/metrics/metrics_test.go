package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCommissionMetrics_Record(t *testing.T) {
	m := NewCommissionMetrics(prometheus.NewRegistry())

	m.RecordPayout("BINARY_BONUS", 10)
	m.RecordPayout("BINARY_BONUS", 5)
	m.RecordPairs(3, 1)
	m.RecordPropagation(4, 1)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PayoutsTotal.WithLabelValues("BINARY_BONUS")))
	assert.Equal(t, 15.0, testutil.ToFloat64(m.PayoutAmountTotal.WithLabelValues("BINARY_BONUS")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.PairsMatchedTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CappedPayoutsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BrokenLinksTotal))
}

func TestCommissionMetrics_NilIsNoop(t *testing.T) {
	var m *CommissionMetrics
	assert.NotPanics(t, func() {
		m.RecordPayout("ROI", 1)
		m.RecordError("propagate")
		m.RecordSweep(0.5)
	})
}
