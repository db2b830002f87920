package tablehost

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"baccarat-table/internal/game"
	"baccarat-table/internal/wallet"
)

var ssePingInterval = 15 * time.Second

func writeErr(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": code})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func tableFromRequest(h *Host, w http.ResponseWriter, r *http.Request) (*Table, bool) {
	id := chi.URLParam(r, "table_id")
	if id == "" {
		writeErr(w, http.StatusBadRequest, "table_not_found")
		return nil, false
	}
	t, err := h.Table(id)
	if err != nil {
		writeErr(w, http.StatusNotFound, "table_not_found")
		return nil, false
	}
	return t, true
}

// TablesHandler lists every table with its current snapshot.
func TablesHandler(h *Host) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tables := h.Tables()
		out := make([]game.Snapshot, 0, len(tables))
		for _, t := range tables {
			out = append(out, t.Session.Snapshot())
		}
		writeJSON(w, map[string]any{"tables": out})
	}
}

// StateHandler returns one table's snapshot.
func StateHandler(h *Host) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, ok := tableFromRequest(h, w, r)
		if !ok {
			return
		}
		writeJSON(w, t.Session.Snapshot())
	}
}

// BetRequest is the wire form of a bet placement.
type BetRequest struct {
	BetType string `json:"bet_type"`
	Amount  int64  `json:"amount"`
}

// PlaceBetHandler accepts a bet into the table's open round.
func PlaceBetHandler(h *Host) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, ok := tableFromRequest(h, w, r)
		if !ok {
			return
		}
		var req BetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid_json")
			return
		}
		bt, ok := game.ParseBetType(req.BetType)
		if !ok {
			writeErr(w, http.StatusBadRequest, "invalid_bet_type")
			return
		}
		if req.Amount <= 0 {
			writeErr(w, http.StatusBadRequest, "invalid_amount")
			return
		}
		if err := t.Session.PlaceBet(r.Context(), bt, req.Amount); err != nil {
			status, code := mapBetErr(err)
			writeErr(w, status, code)
			return
		}
		writeJSON(w, t.Session.Snapshot())
	}
}

// CancelBetHandler removes the unconfirmed portion of one bet, or every
// unconfirmed bet when no bet_type query parameter is given.
func CancelBetHandler(h *Host) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, ok := tableFromRequest(h, w, r)
		if !ok {
			return
		}
		if name := r.URL.Query().Get("bet_type"); name != "" {
			bt, ok := game.ParseBetType(name)
			if !ok {
				writeErr(w, http.StatusBadRequest, "invalid_bet_type")
				return
			}
			t.Session.CancelBet(bt)
		} else {
			t.Session.CancelAll()
		}
		writeJSON(w, t.Session.Snapshot())
	}
}

// ConfirmBetsHandler reserves the unconfirmed ledger total at the wallet
// and returns the receipt.
func ConfirmBetsHandler(h *Host) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, ok := tableFromRequest(h, w, r)
		if !ok {
			return
		}
		receipt, err := t.Session.ConfirmBets(r.Context())
		if err != nil {
			status, code := mapBetErr(err)
			writeErr(w, status, code)
			return
		}
		writeJSON(w, receipt)
	}
}

// HistoryHandler returns recent round results, newest first.
func HistoryHandler(h *Host) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, ok := tableFromRequest(h, w, r)
		if !ok {
			return
		}
		writeJSON(w, map[string]any{"results": t.History()})
	}
}

// ChipsHandler decomposes an amount into chip stacks from the table's
// catalog, reporting any remainder the catalog cannot represent.
func ChipsHandler(h *Host) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, ok := tableFromRequest(h, w, r)
		if !ok {
			return
		}
		amount, err := strconv.ParseInt(r.URL.Query().Get("amount"), 10, 64)
		if err != nil || amount <= 0 {
			writeErr(w, http.StatusBadRequest, "invalid_amount")
			return
		}
		catalog := t.Session.Catalog()
		stacks, remainder := t.Session.Rules().RecommendChips(amount, catalog)
		resp := map[string]any{
			"amount":    amount,
			"stacks":    stacks,
			"remainder": remainder,
		}
		if chip, ok := game.LargestUsable(amount, catalog); ok {
			resp["largest_usable"] = chip
		}
		writeJSON(w, resp)
	}
}

// EventsHandler streams table events over SSE, replaying the buffered
// window after the client's Last-Event-ID before following live events.
func EventsHandler(h *Host) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, ok := tableFromRequest(h, w, r)
		if !ok {
			return
		}
		flusher, ok := w.(http.Flusher)
		if !ok {
			writeErr(w, http.StatusInternalServerError, "stream_not_supported")
			return
		}
		SetSSEHeaders(w)

		for _, ev := range t.Buffer.ReplayAfter(r.Header.Get("Last-Event-ID")) {
			if err := WriteSSE(w, ev); err != nil {
				return
			}
		}
		flusher.Flush()

		ch := t.Buffer.Subscribe()
		defer t.Buffer.Unsubscribe(ch)
		ticker := time.NewTicker(ssePingInterval)
		defer ticker.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				if err := WriteSSE(w, ev); err != nil {
					return
				}
				flusher.Flush()
			case <-ticker.C:
				ping := StreamEvent{
					Event:    "ping",
					TableID:  t.ID,
					ServerTS: time.Now().UnixMilli(),
				}
				if err := WriteSSE(w, ping); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}

func mapBetErr(err error) (int, string) {
	switch {
	case errors.Is(err, game.ErrBettingClosed):
		return http.StatusConflict, "betting_closed"
	case errors.Is(err, game.ErrBetDebounced):
		return http.StatusTooManyRequests, "bet_debounced"
	case errors.Is(err, game.ErrInvalidBetType):
		return http.StatusBadRequest, "invalid_bet_type"
	case errors.Is(err, game.ErrBelowMinBet):
		return http.StatusBadRequest, "below_min_bet"
	case errors.Is(err, game.ErrAboveMaxBet):
		return http.StatusBadRequest, "above_max_bet"
	case errors.Is(err, game.ErrInsufficientBalance):
		return http.StatusBadRequest, "insufficient_balance"
	case errors.Is(err, game.ErrFeatureDisabled):
		return http.StatusBadRequest, "feature_disabled"
	case errors.Is(err, game.ErrAlreadyConfirming):
		return http.StatusConflict, "already_confirming"
	case errors.Is(err, game.ErrNothingToConfirm):
		return http.StatusBadRequest, "nothing_to_confirm"
	case errors.Is(err, wallet.ErrRejected):
		return http.StatusPaymentRequired, "wallet_rejected"
	case errors.Is(err, wallet.ErrTimeout):
		return http.StatusGatewayTimeout, "wallet_timeout"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// Routes mounts every table endpoint on a fresh router subtree.
func Routes(h *Host) chi.Router {
	r := chi.NewRouter()
	r.Get("/tables", TablesHandler(h))
	r.Route("/tables/{table_id}", func(r chi.Router) {
		r.Get("/state", StateHandler(h))
		r.Get("/history", HistoryHandler(h))
		r.Get("/chips", ChipsHandler(h))
		r.Get("/events", EventsHandler(h))
		r.Post("/bets", PlaceBetHandler(h))
		r.Delete("/bets", CancelBetHandler(h))
		r.Post("/bets/confirm", ConfirmBetsHandler(h))
	})
	return r
}
