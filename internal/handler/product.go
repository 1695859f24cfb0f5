package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/imperialessence/essence-backend/internal/domain/product"
)

// ListProducts returns the catalog, optionally filtered by the q (name) and
// brand query parameters. Both filters are case-insensitive substring matches
// and are ANDed when both are present.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	products, err := h.products.Search(r.Context(), query.Get("q"), query.Get("brand"))
	if err != nil {
		internalError(w, r, err)
		return
	}

	e := &jx.Encoder{}
	e.ArrStart()
	for i := range products {
		encodeProduct(e, &products[i])
	}
	e.ArrEnd()
	writeJSON(w, http.StatusOK, e)
}

func encodeProduct(e *jx.Encoder, p *product.Product) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(p.ID)
	e.FieldStart("name")
	e.Str(p.Name)
	e.FieldStart("brand")
	e.Str(p.Brand)
	e.FieldStart("category")
	e.Str(p.Category)
	if p.Description != "" {
		e.FieldStart("description")
		e.Str(p.Description)
	}
	e.FieldStart("price")
	e.Float64(p.Price.InexactFloat64())
	e.FieldStart("stock")
	e.Int(p.Stock)
	if p.Image != "" {
		e.FieldStart("image")
		e.Str(p.Image)
	}
	if len(p.Notes) > 0 {
		e.FieldStart("notes")
		e.ArrStart()
		for _, note := range p.Notes {
			e.Str(note)
		}
		e.ArrEnd()
	}
	e.ObjEnd()
}
