package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"pledge-escrow/internal/core/domain"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type campaignResponse struct {
	ID           uint64     `json:"id"`
	Owner        string     `json:"owner"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	GoalAmount   uint64     `json:"goal_amount"`
	RaisedAmount uint64     `json:"raised_amount"`
	Deadline     time.Time  `json:"deadline"`
	Phase        string     `json:"phase"`
	GoalReached  bool       `json:"goal_reached"`
	CreatedAt    time.Time  `json:"created_at"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
}

func toCampaignResponse(c domain.Campaign) campaignResponse {
	return campaignResponse{
		ID:           c.ID,
		Owner:        c.Owner,
		Title:        c.Title,
		Description:  c.Description,
		GoalAmount:   c.GoalAmount,
		RaisedAmount: c.RaisedAmount,
		Deadline:     c.Deadline,
		Phase:        string(c.Phase),
		GoalReached:  c.GoalReached,
		CreatedAt:    c.CreatedAt,
		ResolvedAt:   c.ResolvedAt,
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	if err := writeJSON(w, status, v); err != nil {
		// encoding should rarely fail; the status is already sent
		h.logger.Error("encode response error", slog.Any("error", err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// writeError maps err to its status. Errors without a domain code are
// logged and reported as a generic internal error.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.CodeOf(err)
	status := code.HTTPStatus()

	var de *domain.Error
	message := "internal error"
	if errors.As(err, &de) {
		message = de.Error()
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
	}
	h.writeJSON(w, status, errorResponse{Code: string(code), Message: message})
}

func invalidInput(message string) error {
	return domain.New(domain.CodeInvalidInput, message)
}

func campaignIDParam(r *http.Request) (uint64, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, invalidInput("invalid campaign id")
	}
	return id, nil
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return invalidInput("invalid JSON: " + err.Error())
	}
	return nil
}
