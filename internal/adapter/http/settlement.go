package httpadapter

import (
	"net/http"
)

type pledgeRequest struct {
	Amount uint64 `json:"amount"`
}

// handlePledge escrows amount from the caller and returns 204.
func (h *Handler) handlePledge(w http.ResponseWriter, r *http.Request) {
	id, err := campaignIDParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var body pledgeRequest
	if err = decodeBody(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err = h.svc.Pledge(r.Context(), id, callerFrom(r.Context()), body.Amount, h.now()); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type resolveResponse struct {
	Phase         string `json:"phase"`
	AmountSettled uint64 `json:"amount_settled"`
}

// handleResolve settles the campaign on behalf of its owner.
func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	id, err := campaignIDParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.svc.Resolve(r.Context(), id, callerFrom(r.Context()), h.now())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resolveResponse{Phase: string(res.Phase), AmountSettled: res.AmountSettled})
}

// handleRefund pays the caller's balance back from a failed campaign.
func (h *Handler) handleRefund(w http.ResponseWriter, r *http.Request) {
	id, err := campaignIDParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	amount, err := h.svc.Refund(r.Context(), id, callerFrom(r.Context()), h.now())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]uint64{"amount": amount})
}
