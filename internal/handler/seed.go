package handler

import (
	"net/http"

	"github.com/go-faster/jx"
)

// Seed inserts the demo catalog. Seeding is idempotent: when products already
// exist the call is a no-op reporting zero insertions.
func (h *Handler) Seed(w http.ResponseWriter, r *http.Request) {
	inserted, err := h.seeder.Run(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}

	e := &jx.Encoder{}
	e.ObjStart()
	e.FieldStart("seeded")
	e.Bool(inserted > 0)
	e.FieldStart("inserted")
	e.Int(inserted)
	e.ObjEnd()
	writeJSON(w, http.StatusOK, e)
}
