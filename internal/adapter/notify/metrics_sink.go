package notify

import (
	"context"

	"pledge-escrow/internal/core/domain"
	"pledge-escrow/internal/metrics"
)

// MetricsSink feeds committed events into the business counters.
type MetricsSink struct {
	m *metrics.Metrics
}

func NewMetricsSink(m *metrics.Metrics) *MetricsSink {
	return &MetricsSink{m: m}
}

func (s *MetricsSink) Name() string { return "metrics" }

func (s *MetricsSink) Handle(_ context.Context, e domain.Event) {
	s.m.ObserveEvent(e)
}
