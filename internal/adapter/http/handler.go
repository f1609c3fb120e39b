package httpadapter

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pledge-escrow/internal/core/port"
	"pledge-escrow/internal/metrics"
)

// Handler contains dependencies and routes. It is an inbound adapter for
// HTTP exposing the escrow lifecycle. Mutating routes identify the caller
// by the X-Caller-ID header.
type Handler struct {
	svc     port.EscrowUseCase
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	router  chi.Router
}

// NewHandler creates a handler with all routes configured. The gatherer
// backs GET /metrics; m may be nil.
func NewHandler(svc port.EscrowUseCase, logger *slog.Logger, m *metrics.Metrics, gatherer prometheus.Gatherer) *Handler {
	h := &Handler{svc: svc, logger: logger, metrics: m, now: time.Now}
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer, h.observe)

	r.Route("/api/v1/campaigns", func(r chi.Router) {
		r.Get("/", h.handleListCampaigns)
		r.Get("/count", h.handleCountCampaigns)
		r.Get("/{id}", h.handleGetCampaign)
		r.Get("/{id}/contributions/{contributor}", h.handleGetContribution)

		r.Group(func(r chi.Router) {
			r.Use(requireCaller)
			r.Post("/", h.handleCreateCampaign)
			r.Post("/{id}/pledges", h.handlePledge)
			r.Post("/{id}/resolve", h.handleResolve)
			r.Post("/{id}/refund", h.handleRefund)
		})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	h.router = r
	return h
}

// Router returns the underlying http.Handler.
func (h *Handler) Router() http.Handler {
	return h.router
}
