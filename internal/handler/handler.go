// Package handler exposes the catalog, discount, and order operations over
// HTTP. Request and response bodies are encoded with go-faster/jx.
package handler

import (
	"context"
	"net/http"

	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/imperialessence/essence-backend/internal/domain/order"
	"github.com/imperialessence/essence-backend/internal/domain/product"
)

// OrderPlacer is the pricing engine contract the handler depends on.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, req order.PlaceOrderRequest) (*order.Order, error)
}

// DiscountChecker validates a discount code.
type DiscountChecker interface {
	Check(code string) (bool, decimal.Decimal)
}

// Seeder inserts the demo catalog when the product collection is empty.
type Seeder interface {
	Run(ctx context.Context) (int, error)
}

// StoreStatus provides best-effort store introspection for the status and
// stats endpoints.
type StoreStatus interface {
	Ping(ctx context.Context) error
	Collections(ctx context.Context) ([]string, error)
	Count(ctx context.Context, collection string) (int64, error)
	SumNumeric(ctx context.Context, collection, field string) (decimal.Decimal, error)
}

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// DatabaseURLSet and DatabaseNameSet report whether the respective
	// environment configuration was provided (as opposed to defaulted);
	// surfaced by the status endpoint.
	DatabaseURLSet  bool
	DatabaseNameSet bool
	// DatabaseName is the configured database name, echoed by the status
	// endpoint.
	DatabaseName string
}

// Handler routes HTTP requests to the injected domain components.
type Handler struct {
	cfg       Config
	products  product.Repository
	discounts DiscountChecker
	orders    OrderPlacer
	seeder    Seeder
	store     StoreStatus
}

// New constructs a Handler with the required dependencies.
func New(
	cfg Config,
	products product.Repository,
	discounts DiscountChecker,
	orders OrderPlacer,
	seeder Seeder,
	store StoreStatus,
) *Handler {
	return &Handler{
		cfg:       cfg,
		products:  products,
		discounts: discounts,
		orders:    orders,
		seeder:    seeder,
		store:     store,
	}
}

// Register attaches all routes to the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /products", h.ListProducts)
	mux.HandleFunc("POST /discount", h.CheckDiscount)
	mux.HandleFunc("POST /order", h.PlaceOrder)
	mux.HandleFunc("POST /seed", h.Seed)
	mux.HandleFunc("GET /test", h.Status)
	mux.HandleFunc("GET /stats", h.Stats)
	mux.HandleFunc("GET /{$}", h.Root)
}

// Root is a minimal liveness hint for humans poking the base URL.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	e := &jx.Encoder{}
	e.ObjStart()
	e.FieldStart("message")
	e.Str("Imperial Essence backend running")
	e.ObjEnd()
	writeJSON(w, http.StatusOK, e)
}

// writeJSON writes the encoder contents with the given status code.
func writeJSON(w http.ResponseWriter, status int, e *jx.Encoder) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeError writes a {code, message} error payload.
func writeError(w http.ResponseWriter, status int, message string) {
	e := &jx.Encoder{}
	e.ObjStart()
	e.FieldStart("code")
	e.Int(status)
	e.FieldStart("message")
	e.Str(message)
	e.ObjEnd()
	writeJSON(w, status, e)
}

// internalError logs the error and responds with a generic 500. Store
// unavailability surfaces here: a server error with no retry.
func internalError(w http.ResponseWriter, r *http.Request, err error) {
	zctx.From(r.Context()).Error("request failed",
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeError(w, http.StatusInternalServerError, "internal server error")
}
