package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"pledge-escrow/internal/core/domain"
)

func TestObserve(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveOperation("refund", nil)
	m.ObserveOperation("refund", domain.ErrNothingToRefund)
	m.ObserveOperation("refund", errors.New("db down"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("refund", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("refund", "nothing_to_refund")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("refund", "unknown")))

	m.ObserveEvent(domain.ContributionMade{CampaignID: 1, Contributor: "x", Amount: 40})
	m.ObserveEvent(domain.ContributionMade{CampaignID: 1, Contributor: "y", Amount: 60})
	m.ObserveEvent(domain.CampaignResolved{CampaignID: 1, GoalReached: true, AmountSettled: 100})
	assert.Equal(t, 100.0, testutil.ToFloat64(m.pledgedAmount))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.campaignsResolved.WithLabelValues("success")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveOperation("pledge", nil)
		m.ObserveTransferFailure("payout")
		m.ObserveEvent(domain.RefundIssued{Amount: 1})
		m.ObserveHTTP("GET", "/", "200", 0.1)
	})
}
