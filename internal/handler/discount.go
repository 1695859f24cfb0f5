package handler

import (
	"io"
	"net/http"

	"github.com/go-faster/jx"
)

// CheckDiscount validates a discount code. Unknown codes are not an error:
// they report valid=false with a zero percentage.
func (h *Handler) CheckDiscount(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read request body")
		return
	}

	code, err := decodeDiscountRequest(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: expected {\"code\": string}")
		return
	}

	valid, percent := h.discounts.Check(code)

	e := &jx.Encoder{}
	e.ObjStart()
	e.FieldStart("valid")
	e.Bool(valid)
	e.FieldStart("percent")
	e.Float64(percent.InexactFloat64())
	e.ObjEnd()
	writeJSON(w, http.StatusOK, e)
}

func decodeDiscountRequest(data []byte) (string, error) {
	var code string
	d := jx.DecodeBytes(data)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "code" {
			return d.Skip()
		}
		v, err := d.Str()
		code = v
		return err
	})
	return code, err
}
