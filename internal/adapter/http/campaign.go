package httpadapter

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"pledge-escrow/internal/core/port"
)

type createCampaignRequest struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	GoalAmount      uint64 `json:"goal_amount"`
	DurationSeconds uint64 `json:"duration_seconds"`
}

// handleCreateCampaign registers a campaign owned by the caller and
// returns 201 with its id.
func (h *Handler) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var body createCampaignRequest
	if err := decodeBody(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	id, err := h.svc.CreateCampaign(r.Context(), port.CreateCampaignReq{
		Owner:           callerFrom(r.Context()),
		Title:           body.Title,
		Description:     body.Description,
		GoalAmount:      body.GoalAmount,
		DurationSeconds: body.DurationSeconds,
	}, h.now())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]uint64{"id": id})
}

func (h *Handler) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := campaignIDParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := h.svc.GetCampaign(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toCampaignResponse(*c))
}

// handleListCampaigns returns a page of campaigns ordered by id. offset
// and limit are optional query parameters.
func (h *Handler) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	var (
		q             = r.URL.Query()
		offset, limit uint64
		err           error
	)
	if s := q.Get("offset"); s != "" {
		if offset, err = strconv.ParseUint(s, 10, 64); err != nil {
			h.writeError(w, r, invalidInput("invalid 'offset'"))
			return
		}
	}
	if s := q.Get("limit"); s != "" {
		if limit, err = strconv.ParseUint(s, 10, 64); err != nil {
			h.writeError(w, r, invalidInput("invalid 'limit'"))
			return
		}
	}

	campaigns, err := h.svc.ListCampaigns(r.Context(), offset, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]campaignResponse, 0, len(campaigns))
	for _, c := range campaigns {
		out = append(out, toCampaignResponse(c))
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"campaigns": out})
}

func (h *Handler) handleCountCampaigns(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.GetTotalCampaigns(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]uint64{"total": n})
}

type contributionResponse struct {
	CampaignID  uint64 `json:"campaign_id"`
	Contributor string `json:"contributor"`
	Amount      uint64 `json:"amount"`
}

// handleGetContribution returns the escrowed balance of a contributor.
// Unknown campaigns and contributors read as zero.
func (h *Handler) handleGetContribution(w http.ResponseWriter, r *http.Request) {
	id, err := campaignIDParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	contributor := chi.URLParam(r, "contributor")
	if contributor == "" {
		h.writeError(w, r, invalidInput("missing contributor"))
		return
	}
	amount, err := h.svc.GetContribution(r.Context(), id, contributor)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, contributionResponse{CampaignID: id, Contributor: contributor, Amount: amount})
}
