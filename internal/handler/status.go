package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/imperialessence/essence-backend/internal/storage/postgres"
)

// Status reports backend and store health. It degrades gracefully: store
// failures are reported inside the payload instead of failing the request.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	pingErr := h.store.Ping(ctx)

	var collections []string
	if pingErr == nil {
		var err error
		collections, err = h.store.Collections(ctx)
		if err != nil {
			// Best effort: report the database as reachable anyway.
			zctx.From(ctx).Warn("list collections", zap.Error(err))
		}
	}

	e := &jx.Encoder{}
	e.ObjStart()
	e.FieldStart("backend")
	e.Str("running")
	e.FieldStart("database")
	if pingErr == nil {
		e.Str("available")
	} else {
		e.Str("unavailable")
	}
	e.FieldStart("database_url")
	e.Str(setOrNot(h.cfg.DatabaseURLSet))
	e.FieldStart("database_name")
	if h.cfg.DatabaseName != "" {
		e.Str(h.cfg.DatabaseName)
	} else {
		e.Str(setOrNot(h.cfg.DatabaseNameSet))
	}
	e.FieldStart("connection_status")
	if pingErr == nil {
		e.Str("connected")
	} else {
		e.Str("not connected")
	}
	e.FieldStart("collections")
	e.ArrStart()
	for _, name := range collections {
		e.Str(name)
	}
	e.ArrEnd()
	if pingErr != nil {
		e.FieldStart("error")
		e.Str(pingErr.Error())
	}
	e.ObjEnd()
	writeJSON(w, http.StatusOK, e)
}

func setOrNot(set bool) string {
	if set {
		return "set"
	}
	return "not set"
}

// Stats reports catalog size, order count, and summed revenue. The three
// aggregates are independent, so they run concurrently.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	var (
		products int64
		orders   int64
		revenue  decimal.Decimal
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		products, err = h.store.Count(ctx, postgres.ProductCollection)
		return err
	})
	g.Go(func() error {
		var err error
		orders, err = h.store.Count(ctx, postgres.OrderCollection)
		return err
	})
	g.Go(func() error {
		var err error
		revenue, err = h.store.SumNumeric(ctx, postgres.OrderCollection, "total")
		return err
	})
	if err := g.Wait(); err != nil {
		internalError(w, r, err)
		return
	}

	e := &jx.Encoder{}
	e.ObjStart()
	e.FieldStart("products")
	e.Int64(products)
	e.FieldStart("orders")
	e.Int64(orders)
	e.FieldStart("revenue")
	e.Float64(revenue.InexactFloat64())
	e.ObjEnd()
	writeJSON(w, http.StatusOK, e)
}
