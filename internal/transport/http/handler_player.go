package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	appgame "pick-derby/internal/app/game"
	"pick-derby/internal/config"
	"pick-derby/internal/draw"
	"pick-derby/internal/prize"
	"pick-derby/internal/store"

	"github.com/go-chi/chi/v5"
)

type PlayerHandlers struct {
	svc   *appgame.Service
	store *store.Store
	cfg   config.ServerConfig
}

func NewPlayerHandlers(svc *appgame.Service, st *store.Store, cfg config.ServerConfig) *PlayerHandlers {
	return &PlayerHandlers{svc: svc, store: st, cfg: cfg}
}

func (h *PlayerHandlers) Register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if strings.TrimSpace(body.Name) == "" {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		apiKey := "pd_" + store.NewID()
		id, err := h.store.CreatePlayer(r.Context(), body.Name, apiKey)
		if err != nil {
			WriteHTTPError(w, http.StatusConflict, "name_taken")
			return
		}
		if err := h.store.EnsureAccount(r.Context(), id, h.cfg.SignupGrantUnits); err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"player_id": id,
			"api_key":   apiKey,
			"balance":   h.cfg.SignupGrantUnits,
		})
	}
}

func (h *PlayerHandlers) Me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		player, ok := PlayerFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		balance, err := h.store.GetAccountBalance(r.Context(), player.ID)
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"player_id":     player.ID,
			"name":          player.Name,
			"balance_units": balance,
			"created_at":    player.CreatedAt,
		})
	}
}

func (h *PlayerHandlers) Submit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		player, ok := PlayerFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var in appgame.SubmitInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		metricSubmitTotal.Add(1)
		resp, err := h.svc.SubmitPicks(r.Context(), player.ID, in)
		if err != nil {
			metricSubmitErrors.Add(1)
			switch {
			case errors.Is(err, draw.ErrInvalidPicks):
				WriteHTTPError(w, http.StatusBadRequest, "invalid_picks")
			case errors.Is(err, draw.ErrSubmissionWindowClosed):
				WriteHTTPError(w, http.StatusConflict, "submission_window_closed")
			case errors.Is(err, draw.ErrPickAlreadySubmitted):
				WriteHTTPError(w, http.StatusConflict, "pick_already_submitted")
			case errors.Is(err, draw.ErrTicketLimit):
				WriteHTTPError(w, http.StatusConflict, "ticket_limit_reached")
			case errors.Is(err, draw.ErrGameNotActive):
				WriteHTTPError(w, http.StatusGone, "game_not_active")
			case errors.Is(err, appgame.ErrInsufficientBalance):
				WriteHTTPError(w, http.StatusPaymentRequired, "insufficient_balance")
			default:
				WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			}
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *PlayerHandlers) Claims() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		player, ok := PlayerFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		limit, offset := ParsePagination(r)
		resp, err := h.svc.Claims(r.Context(), player.ID, limit, offset)
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *PlayerHandlers) Claim() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		player, ok := PlayerFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		seq, err := strconv.ParseUint(chi.URLParam(r, "seq"), 10, 64)
		if err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		tier, err := strconv.Atoi(chi.URLParam(r, "tier"))
		if err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		metricClaimTotal.Add(1)
		resp, err := h.svc.ClaimPrize(r.Context(), player.ID, seq, tier)
		if err != nil {
			metricClaimErrors.Add(1)
			switch {
			case errors.Is(err, prize.ErrClaimNotFound):
				WriteHTTPError(w, http.StatusNotFound, "claim_not_found")
			case errors.Is(err, prize.ErrAlreadyClaimed):
				WriteHTTPError(w, http.StatusConflict, "already_claimed")
			case errors.Is(err, appgame.ErrClaimExpired):
				WriteHTTPError(w, http.StatusGone, "claim_expired")
			default:
				WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			}
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *PlayerHandlers) Ledger() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		player, ok := PlayerFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		limit, offset := ParsePagination(r)
		items, err := h.store.ListLedgerEntries(r.Context(), player.ID, limit, offset)
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"items": items, "limit": limit, "offset": offset})
	}
}
