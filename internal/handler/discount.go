package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/kart-discounts/internal/domain/cart"
	"github.com/xenking/kart-discounts/internal/domain/discount"
	"github.com/xenking/kart-discounts/internal/wire"
)

// Calculate prices the posted cart. Calculation failures are reported in the
// result body with status 200; only malformed requests are rejected.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	d, err := readBody(w, r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	req, err := wire.DecodeCalculateRequest(d)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	customer, err := discount.ParseCustomerType(req.CustomerType)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_customer_type", err.Error())
		return
	}
	if err := cart.Validate(req.Lines); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_cart", err.Error())
		return
	}

	res := h.calc.Calculate(r.Context(), req.Lines, customer)
	writeJSON(w, r, http.StatusOK, func(e *jx.Encoder) {
		wire.EncodeResult(e, res)
	})
}

// ListActive returns the active rule snapshot in evaluation order.
func (h *Handler) ListActive(w http.ResponseWriter, r *http.Request) {
	rules, err := h.rules.ActiveRules(r.Context())
	if err != nil {
		zctx.From(r.Context()).Error("Listing active rules failed", zap.Error(err))
		writeError(w, r, http.StatusServiceUnavailable, "unavailable", "rules are unavailable")
		return
	}
	writeJSON(w, r, http.StatusOK, func(e *jx.Encoder) {
		wire.EncodeRules(e, rules)
	})
}

// CreateRule validates and stores a new rule.
func (h *Handler) CreateRule(w http.ResponseWriter, r *http.Request) {
	d, err := readBody(w, r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	rule, err := wire.DecodeRule(d)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	rule.ID = 0

	id, err := h.admin.Create(r.Context(), rule)
	if err != nil {
		h.writeAdminError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, func(e *jx.Encoder) {
		wire.EncodeID(e, id)
	})
}

// SetActive enables or disables a rule.
func (h *Handler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, ok := ruleID(w, r)
	if !ok {
		return
	}
	d, err := readBody(w, r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	active, err := wire.DecodeActive(d)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if err := h.admin.SetActive(r.Context(), id, active); err != nil {
		h.writeAdminError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteRule removes a rule.
func (h *Handler) DeleteRule(w http.ResponseWriter, r *http.Request) {
	id, ok := ruleID(w, r)
	if !ok {
		return
	}
	if err := h.admin.Delete(r.Context(), id); err != nil {
		h.writeAdminError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearCache drops the active rule snapshot.
func (h *Handler) ClearCache(w http.ResponseWriter, r *http.Request) {
	h.rules.ClearCache(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func ruleID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "invalid rule id "+strconv.Quote(raw))
		return 0, false
	}
	return id, true
}

// writeAdminError maps domain errors to HTTP responses.
func (h *Handler) writeAdminError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *discount.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, r, http.StatusBadRequest, "invalid_rule", verr.Error())
	case errors.Is(err, discount.ErrRuleNotFound):
		writeError(w, r, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, discount.ErrRuleExists):
		writeError(w, r, http.StatusConflict, "conflict", err.Error())
	default:
		zctx.From(r.Context()).Error("Rule administration failed", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal", "internal error")
	}
}
