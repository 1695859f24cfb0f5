package handler

import (
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/imperialessence/essence-backend/internal/domain/order"
)

// PlaceOrder decodes the checkout request, delegates to the pricing engine,
// and echoes the persisted order including its generated id.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read request body")
		return
	}

	req, err := decodeOrderRequest(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	o, err := h.orders.PlaceOrder(r.Context(), *req)
	if err != nil {
		h.writeOrderError(w, r, err)
		return
	}

	e := &jx.Encoder{}
	encodeOrder(e, o)
	writeJSON(w, http.StatusCreated, e)
}

// writeOrderError maps pricing engine errors onto the HTTP error taxonomy:
// validation failures and invalid product references are client errors, and
// everything else is a server error.
func (h *Handler) writeOrderError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, order.ErrEmptyItems) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var iqErr *order.InvalidQuantityError
	if errors.As(err, &iqErr) {
		writeError(w, http.StatusUnprocessableEntity, iqErr.Error())
		return
	}

	var ipErr *order.InvalidProductError
	if errors.As(err, &ipErr) {
		writeError(w, http.StatusUnprocessableEntity, ipErr.Error())
		return
	}

	internalError(w, r, err)
}

func decodeOrderRequest(data []byte) (*order.PlaceOrderRequest, error) {
	var req order.PlaceOrderRequest
	d := jx.DecodeBytes(data)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "items":
			return d.Arr(func(d *jx.Decoder) error {
				item, err := decodeCartItem(d)
				if err != nil {
					return err
				}
				req.Items = append(req.Items, item)
				return nil
			})
		case "discount_code":
			return decodeOptString(d, &req.DiscountCode)
		case "customer_name":
			return decodeOptString(d, &req.CustomerName)
		case "customer_phone":
			return decodeOptString(d, &req.CustomerPhone)
		case "customer_address":
			return decodeOptString(d, &req.CustomerAddress)
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func decodeCartItem(d *jx.Decoder) (order.CartItem, error) {
	var item order.CartItem
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "product_id":
			v, err := d.Str()
			item.ProductID = v
			return err
		case "quantity":
			v, err := d.Int()
			item.Quantity = v
			return err
		default:
			return d.Skip()
		}
	})
	return item, err
}

// decodeOptString reads a string field that clients may also send as null.
func decodeOptString(d *jx.Decoder, dst *string) error {
	if d.Next() == jx.Null {
		return d.Null()
	}
	v, err := d.Str()
	*dst = v
	return err
}

func encodeOrder(e *jx.Encoder, o *order.Order) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(o.ID)
	e.FieldStart("items")
	e.ArrStart()
	for _, item := range o.Items {
		e.ObjStart()
		e.FieldStart("product_id")
		e.Str(item.ProductID)
		e.FieldStart("name")
		e.Str(item.Name)
		e.FieldStart("price")
		e.Float64(item.Price.InexactFloat64())
		e.FieldStart("quantity")
		e.Int(item.Quantity)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.FieldStart("subtotal")
	e.Float64(o.Subtotal.InexactFloat64())
	e.FieldStart("discount_code")
	if o.DiscountCode == "" {
		e.Null()
	} else {
		e.Str(o.DiscountCode)
	}
	e.FieldStart("discount_amount")
	e.Float64(o.DiscountAmount.InexactFloat64())
	e.FieldStart("total")
	e.Float64(o.Total.InexactFloat64())
	if o.CustomerName != "" {
		e.FieldStart("customer_name")
		e.Str(o.CustomerName)
	}
	e.ObjEnd()
}
