package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"pledge-escrow/internal/core/domain"
)

const namespace = "escrow"

// Metrics groups the prometheus collectors of the escrow service. A nil
// *Metrics is valid and records nothing, which keeps tests free of
// registry plumbing.
type Metrics struct {
	operations        *prometheus.CounterVec
	campaignsCreated  prometheus.Counter
	pledgedAmount     prometheus.Counter
	campaignsResolved *prometheus.CounterVec
	refundedAmount    prometheus.Counter
	transferFailures  *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New registers all collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		operations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Lifecycle operations by name and result code",
		}, []string{"op", "result"}),
		campaignsCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "campaigns_created_total",
			Help:      "Campaigns registered",
		}),
		pledgedAmount: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pledged_amount_total",
			Help:      "Value pledged into escrow",
		}),
		campaignsResolved: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "campaigns_resolved_total",
			Help:      "Campaigns resolved by outcome",
		}, []string{"outcome"}),
		refundedAmount: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refunded_amount_total",
			Help:      "Value refunded to contributors",
		}),
		transferFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfer_failures_total",
			Help:      "Rejected outbound transfers by kind",
		}, []string{"kind"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		}, []string{"method", "route"}),
	}
}

// ObserveOperation counts one lifecycle call. The result label is "ok" or
// the lower-cased domain error code.
func (m *Metrics) ObserveOperation(op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = strings.ToLower(string(domain.CodeOf(err)))
	}
	m.operations.WithLabelValues(op, result).Inc()
}

// ObserveTransferFailure counts a rejected payout or refund.
func (m *Metrics) ObserveTransferFailure(kind string) {
	if m == nil {
		return
	}
	m.transferFailures.WithLabelValues(kind).Inc()
}

// ObserveEvent updates the business counters from a committed event.
func (m *Metrics) ObserveEvent(e domain.Event) {
	if m == nil {
		return
	}
	switch ev := e.(type) {
	case domain.CampaignCreated:
		m.campaignsCreated.Inc()
	case domain.ContributionMade:
		m.pledgedAmount.Add(float64(ev.Amount))
	case domain.CampaignResolved:
		outcome := "failure"
		if ev.GoalReached {
			outcome = "success"
		}
		m.campaignsResolved.WithLabelValues(outcome).Inc()
	case domain.RefundIssued:
		m.refundedAmount.Add(float64(ev.Amount))
	}
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(seconds)
}
