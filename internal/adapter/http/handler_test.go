package httpadapter

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pledge-escrow/internal/adapter/memory"
	"pledge-escrow/internal/adapter/notify"
	"pledge-escrow/internal/adapter/usecase"
	"pledge-escrow/internal/metrics"
)

type testServer struct {
	t       *testing.T
	handler http.Handler
	vault   *memory.Vault
	clock   time.Time
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	vault := memory.NewVault()
	bus := notify.NewBus(logger)
	require.NoError(t, bus.Subscribe(notify.NewMetricsSink(m), false))
	svc := usecase.NewEscrowUseCase(memory.NewStore(), usecase.NewFundTransferGuard(vault, logger, m), bus, m)

	ts := &testServer{t: t, vault: vault, clock: time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)}
	h := NewHandler(svc, logger, m, reg)
	h.now = func() time.Time { return ts.clock }
	ts.handler = h.Router()
	return ts
}

func (s *testServer) do(method, path, caller string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(s.t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if caller != "" {
		req.Header.Set(CallerHeader, caller)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func (s *testServer) createCampaign(goal, duration uint64) uint64 {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/v1/campaigns", "alice", map[string]any{
		"title":            "Community garden",
		"description":      "Raised beds",
		"goal_amount":      goal,
		"duration_seconds": duration,
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[map[string]uint64](s.t, rec)["id"]
}

func TestSuccessfulCampaignFlow(t *testing.T) {
	s := newTestServer(t)
	id := s.createCampaign(100, 3600)
	assert.Equal(t, uint64(0), id)

	rec := s.do(http.MethodPost, "/api/v1/campaigns/0/pledges", "bob", map[string]uint64{"amount": 60})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	rec = s.do(http.MethodPost, "/api/v1/campaigns/0/pledges", "carol", map[string]uint64{"amount": 40})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = s.do(http.MethodGet, "/api/v1/campaigns/0", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	c := decode[campaignResponse](t, rec)
	assert.Equal(t, "alice", c.Owner)
	assert.Equal(t, uint64(100), c.RaisedAmount)
	assert.True(t, c.GoalReached)
	assert.Equal(t, "active", c.Phase)

	rec = s.do(http.MethodPost, "/api/v1/campaigns/0/resolve", "bob", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", decode[errorResponse](t, rec).Code)

	rec = s.do(http.MethodPost, "/api/v1/campaigns/0/resolve", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, resolveResponse{Phase: "resolved_success", AmountSettled: 100}, decode[resolveResponse](t, rec))
	assert.Equal(t, uint64(100), s.vault.Balance("alice"))

	rec = s.do(http.MethodPost, "/api/v1/campaigns/0/resolve", "alice", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "INVALID_STATE", decode[errorResponse](t, rec).Code)
}

func TestFailedCampaignRefundFlow(t *testing.T) {
	s := newTestServer(t)
	id := s.createCampaign(1000, 60)
	require.Equal(t, uint64(0), id)

	rec := s.do(http.MethodPost, "/api/v1/campaigns/0/pledges", "bob", map[string]uint64{"amount": 70})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodPost, "/api/v1/campaigns/0/resolve", "alice", nil)
	assert.Equal(t, http.StatusConflict, rec.Code, "deadline not passed")

	s.clock = s.clock.Add(61 * time.Second)
	rec = s.do(http.MethodPost, "/api/v1/campaigns/0/pledges", "carol", map[string]uint64{"amount": 1})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodPost, "/api/v1/campaigns/0/resolve", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, resolveResponse{Phase: "resolved_failure"}, decode[resolveResponse](t, rec))

	rec = s.do(http.MethodGet, "/api/v1/campaigns/0/contributions/bob", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(70), decode[contributionResponse](t, rec).Amount)

	rec = s.do(http.MethodPost, "/api/v1/campaigns/0/refund", "bob", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, uint64(70), decode[map[string]uint64](t, rec)["amount"])
	assert.Equal(t, uint64(70), s.vault.Balance("bob"))

	rec = s.do(http.MethodPost, "/api/v1/campaigns/0/refund", "bob", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "NOTHING_TO_REFUND", decode[errorResponse](t, rec).Code)
}

func TestRejectedPayoutReturnsBadGateway(t *testing.T) {
	s := newTestServer(t)
	s.createCampaign(10, 60)
	require.Equal(t, http.StatusNoContent,
		s.do(http.MethodPost, "/api/v1/campaigns/0/pledges", "bob", map[string]uint64{"amount": 10}).Code)

	s.vault.Reject("alice")
	rec := s.do(http.MethodPost, "/api/v1/campaigns/0/resolve", "alice", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "TRANSFER_FAILED", decode[errorResponse](t, rec).Code)

	c := decode[campaignResponse](t, s.do(http.MethodGet, "/api/v1/campaigns/0", "", nil))
	assert.Equal(t, "active", c.Phase)
	assert.Equal(t, uint64(10), c.RaisedAmount)
}

func TestRequestValidation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		caller string
		body   any
		status int
		code   string
	}{
		{"missing caller", http.MethodPost, "/api/v1/campaigns", "", map[string]any{"title": "x"}, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"empty title", http.MethodPost, "/api/v1/campaigns", "alice",
			map[string]any{"title": " ", "goal_amount": 1, "duration_seconds": 1}, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown field", http.MethodPost, "/api/v1/campaigns", "alice", map[string]any{"goal": 1}, http.StatusBadRequest, "INVALID_INPUT"},
		{"huge duration", http.MethodPost, "/api/v1/campaigns", "alice",
			map[string]any{"title": "x", "goal_amount": 1, "duration_seconds": uint64(1 << 62)}, http.StatusUnprocessableEntity, "OVERFLOW"},
		{"bad id", http.MethodGet, "/api/v1/campaigns/abc", "", nil, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown campaign", http.MethodGet, "/api/v1/campaigns/42", "", nil, http.StatusNotFound, "NOT_FOUND"},
		{"pledge unknown campaign", http.MethodPost, "/api/v1/campaigns/42/pledges", "bob", map[string]uint64{"amount": 1}, http.StatusNotFound, "NOT_FOUND"},
		{"bad limit", http.MethodGet, "/api/v1/campaigns?limit=-1", "", nil, http.StatusBadRequest, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(tt.method, tt.path, tt.caller, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, decode[errorResponse](t, rec).Code)
		})
	}
}

func TestListAndCount(t *testing.T) {
	s := newTestServer(t)
	for i := 0; i < 3; i++ {
		s.createCampaign(100, 60)
	}

	rec := s.do(http.MethodGet, "/api/v1/campaigns/count", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(3), decode[map[string]uint64](t, rec)["total"])

	rec = s.do(http.MethodGet, "/api/v1/campaigns?offset=1&limit=5", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[map[string][]campaignResponse](t, rec)["campaigns"]
	require.Len(t, page, 2)
	assert.Equal(t, uint64(1), page[0].ID)
	assert.Equal(t, uint64(2), page[1].ID)

	rec = s.do(http.MethodGet, "/api/v1/campaigns?offset=10", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"campaigns":[]}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.createCampaign(100, 60)
	s.do(http.MethodGet, "/api/v1/campaigns/0", "", nil)

	rec := s.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "escrow_campaigns_created_total 1")
	assert.Contains(t, body, `escrow_operations_total{op="create_campaign",result="ok"} 1`)
	assert.True(t, strings.Contains(body, `route="/api/v1/campaigns/{id}"`), body)
}
