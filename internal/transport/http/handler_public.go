package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	appgame "pick-derby/internal/app/game"
	"pick-derby/internal/draw"

	"github.com/go-chi/chi/v5"
)

// PublicHandlers is the audit surface: anyone can read the pool, the
// period history, every outcome, the pot split, and the tenure
// ledger. Scores and rankings are reproducible from this data alone.
type PublicHandlers struct {
	svc *appgame.Service
}

func NewPublicHandlers(svc *appgame.Service) *PublicHandlers {
	return &PublicHandlers{svc: svc}
}

func (h *PublicHandlers) Status() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(h.svc.Status())
	}
}

func (h *PublicHandlers) Pool() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(h.svc.Pool())
	}
}

func (h *PublicHandlers) Periods() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := ParsePagination(r)
		resp, err := h.svc.Periods(r.Context(), limit, offset)
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *PublicHandlers) Outcome() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		seq, err := strconv.ParseUint(chi.URLParam(r, "seq"), 10, 64)
		if err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		resp, err := h.svc.Outcome(r.Context(), seq)
		if err != nil {
			if errors.Is(err, draw.ErrNotResolved) {
				WriteHTTPError(w, http.StatusNotFound, "not_resolved")
				return
			}
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *PublicHandlers) Outcomes() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := ParsePagination(r)
		resp, err := h.svc.Outcomes(r.Context(), limit, offset)
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *PublicHandlers) Loyalty() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(h.svc.Loyalty())
	}
}
