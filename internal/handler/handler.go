package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/kart-discounts/internal/domain/cart"
	"github.com/xenking/kart-discounts/internal/domain/discount"
	"github.com/xenking/kart-discounts/internal/wire"
	"github.com/xenking/kart-discounts/pkg/httpmiddleware"
)

const maxBodyBytes = 1 << 20

// Calculator prices carts.
type Calculator interface {
	Calculate(ctx context.Context, lines []cart.Line, customer discount.CustomerType) discount.Result
}

// RuleAdmin mutates rule records.
type RuleAdmin interface {
	Create(ctx context.Context, r discount.Rule) (int64, error)
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error
}

var (
	_ Calculator = (*discount.Engine)(nil)
	_ RuleAdmin  = (*discount.Admin)(nil)
)

// Handler serves the discount HTTP API.
type Handler struct {
	calc  Calculator
	admin RuleAdmin
	rules discount.Source
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(calc Calculator, admin RuleAdmin, rules discount.Source) *Handler {
	return &Handler{calc: calc, admin: admin, rules: rules}
}

// Routes returns the API router. Paths are relative to the /api prefix.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(httpmiddleware.LogRequests())

	r.Post("/discounts/calculate", h.Calculate)
	r.Route("/rules", func(r chi.Router) {
		r.Get("/active", h.ListActive)
		r.Post("/", h.CreateRule)
		r.Delete("/cache", h.ClearCache)
		r.Put("/{id}/active", h.SetActive)
		r.Delete("/{id}", h.DeleteRule)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "not_found", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})
	return r
}

// readBody returns a decoder over the size-limited request body.
func readBody(w http.ResponseWriter, r *http.Request) (*jx.Decoder, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	return jx.DecodeBytes(data), nil
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, encode func(e *jx.Encoder)) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	encode(e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(e.Bytes()); err != nil {
		zctx.From(r.Context()).Debug("Response write failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	writeJSON(w, r, status, func(e *jx.Encoder) {
		wire.EncodeError(e, code, msg)
	})
}
