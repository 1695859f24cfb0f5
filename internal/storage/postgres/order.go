package postgres

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/imperialessence/essence-backend/internal/docstore"
	"github.com/imperialessence/essence-backend/internal/domain/order"
)

var _ order.Repository = (*OrderRepository)(nil)

// orderDoc is the serialization mapping between an Order and its stored
// document representation. DiscountCode is an explicit null when no code
// resolved to a positive percentage.
type orderDoc struct {
	Items           []lineItemDoc   `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountCode    *string         `json:"discount_code"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	Total           decimal.Decimal `json:"total"`
	CustomerName    string          `json:"customer_name,omitempty"`
	CustomerPhone   string          `json:"customer_phone,omitempty"`
	CustomerAddress string          `json:"customer_address,omitempty"`
}

type lineItemDoc struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// OrderRepository implements order.Repository on the document store.
type OrderRepository struct {
	store *docstore.Store
}

// NewOrderRepository returns an OrderRepository backed by the given store.
func NewOrderRepository(store *docstore.Store) *OrderRepository {
	return &OrderRepository{store: store}
}

// Create persists a new order document and returns the stored order with its
// assigned id and creation timestamp.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) (*order.Order, error) {
	items := make([]lineItemDoc, len(o.Items))
	for i, item := range o.Items {
		items[i] = lineItemDoc{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
	}

	var code *string
	if o.DiscountCode != "" {
		code = &o.DiscountCode
	}

	doc := orderDoc{
		Items:           items,
		Subtotal:        o.Subtotal,
		DiscountCode:    code,
		DiscountAmount:  o.DiscountAmount,
		Total:           o.Total,
		CustomerName:    o.CustomerName,
		CustomerPhone:   o.CustomerPhone,
		CustomerAddress: o.CustomerAddress,
	}

	d, err := r.store.Create(ctx, OrderCollection, doc)
	if err != nil {
		return nil, errors.Wrap(err, "create order")
	}
	return mapOrder(*d)
}

// Count returns the number of placed orders.
func (r *OrderRepository) Count(ctx context.Context) (int64, error) {
	return r.store.Count(ctx, OrderCollection)
}

// SumRevenue returns the sum of order totals across all orders.
func (r *OrderRepository) SumRevenue(ctx context.Context) (decimal.Decimal, error) {
	return r.store.SumNumeric(ctx, OrderCollection, "total")
}

// mapOrder decodes a stored document into the domain type.
func mapOrder(d docstore.Document) (*order.Order, error) {
	var doc orderDoc
	if err := json.Unmarshal(d.Data, &doc); err != nil {
		return nil, errors.Wrapf(err, "decode order %s", d.ID)
	}

	items := make([]order.LineItem, len(doc.Items))
	for i, item := range doc.Items {
		items[i] = order.LineItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
	}

	code := ""
	if doc.DiscountCode != nil {
		code = *doc.DiscountCode
	}

	return &order.Order{
		ID:              d.ID,
		Items:           items,
		Subtotal:        doc.Subtotal,
		DiscountCode:    code,
		DiscountAmount:  doc.DiscountAmount,
		Total:           doc.Total,
		CustomerName:    doc.CustomerName,
		CustomerPhone:   doc.CustomerPhone,
		CustomerAddress: doc.CustomerAddress,
		CreatedAt:       d.CreatedAt,
	}, nil
}
