package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	appgame "pick-derby/internal/app/game"
	"pick-derby/internal/draw"
	"pick-derby/internal/loyalty"
	"pick-derby/internal/oracle"
	"pick-derby/internal/prize"
	"pick-derby/internal/store"

	"github.com/go-chi/chi/v5"
)

type AdminHandlers struct {
	svc   *appgame.Service
	store *store.Store
}

func NewAdminHandlers(svc *appgame.Service, st *store.Store) *AdminHandlers {
	return &AdminHandlers{svc: svc, store: st}
}

func (h *AdminHandlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.store.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "db": "down"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "db": "up"})
	}
}

// Resolve triggers resolution and settlement for one period by hand.
// The scheduler drives the same code path on a cron.
func (h *AdminHandlers) Resolve() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		seq, err := strconv.ParseUint(chi.URLParam(r, "seq"), 10, 64)
		if err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		metricResolveTotal.Add(1)
		resp, err := h.svc.ResolvePeriod(r.Context(), seq)
		if err != nil {
			metricResolveErrors.Add(1)
			switch {
			case errors.Is(err, appgame.ErrPeriodNotFound):
				WriteHTTPError(w, http.StatusNotFound, "period_not_found")
			case errors.Is(err, draw.ErrDrawNotReady):
				WriteHTTPError(w, http.StatusConflict, "draw_not_ready")
			case errors.Is(err, draw.ErrAlreadyResolved):
				WriteHTTPError(w, http.StatusConflict, "already_resolved")
			case errors.Is(err, draw.ErrAlreadySettled):
				WriteHTTPError(w, http.StatusConflict, "already_settled")
			case errors.Is(err, prize.ErrRetentionViolation):
				WriteHTTPError(w, http.StatusUnprocessableEntity, "retention_violation")
			case errors.Is(err, draw.ErrInvalidObservation):
				WriteHTTPError(w, http.StatusBadGateway, "invalid_observation")
			case errors.Is(err, oracle.ErrUnavailable), errors.Is(err, oracle.ErrStale), errors.Is(err, oracle.ErrPartialCoverage):
				WriteHTTPError(w, http.StatusBadGateway, "observation_unavailable")
			default:
				WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			}
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *AdminHandlers) Sweep() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.svc.SweepExpired(r.Context())
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		metricSweptUnitsTotal.Add(resp.SweptUnits)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *AdminHandlers) Endgame() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.svc.RunEndgame(r.Context())
		if err != nil {
			if errors.Is(err, loyalty.ErrEndgameAlreadyRun) {
				WriteHTTPError(w, http.StatusConflict, "endgame_already_run")
				return
			}
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *AdminHandlers) Ledger() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := ParsePagination(r)
		items, err := h.store.ListLedgerEntries(r.Context(), r.URL.Query().Get("player_id"), limit, offset)
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"items": items, "limit": limit, "offset": offset})
	}
}
