package order

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/imperialessence/essence-backend/internal/domain/product"
)

// DiscountResolver resolves a discount code to a fractional percentage.
// Unknown or empty codes resolve to zero.
type DiscountResolver interface {
	Resolve(code string) decimal.Decimal
}

// PlaceOrderRequest holds the input for placing an order.
type PlaceOrderRequest struct {
	Items           []CartItem
	DiscountCode    string
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
}

// Service is the order pricing engine. It derives authoritative line-item
// prices from the catalog, applies a discount code, and persists the result.
type Service struct {
	products  product.Repository
	discounts DiscountResolver
	orders    Repository
}

// NewService creates a Service with the required dependencies.
func NewService(products product.Repository, discounts DiscountResolver, orders Repository) *Service {
	return &Service{
		products:  products,
		discounts: discounts,
		orders:    orders,
	}
}

// PlaceOrder resolves every requested product, snapshots name and price,
// computes subtotal, discount, and total, and persists the order. A single
// failed product lookup aborts the whole operation before anything is
// written, so no partial order can exist.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	subtotal := decimal.Zero
	items := make([]LineItem, len(req.Items))
	for i, item := range req.Items {
		if item.Quantity < 1 {
			return nil, &InvalidQuantityError{ProductID: item.ProductID}
		}

		p, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, product.ErrNotFound) {
				return nil, &InvalidProductError{ProductID: item.ProductID}
			}
			return nil, errors.Wrapf(err, "get product %s", item.ProductID)
		}

		items[i] = LineItem{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  item.Quantity,
		}
		subtotal = subtotal.Add(p.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	percent := s.discounts.Resolve(req.DiscountCode)
	discountAmount := subtotal.Mul(percent).Round(2)

	total := subtotal.Sub(discountAmount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	total = total.Round(2)

	// The code is stored only when it actually granted a discount.
	code := ""
	if percent.IsPositive() {
		code = normalizeCode(req.DiscountCode)
	}

	o := &Order{
		Items:           items,
		Subtotal:        subtotal.Round(2),
		DiscountCode:    code,
		DiscountAmount:  discountAmount,
		Total:           total,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
	}

	persisted, err := s.orders.Create(ctx, o)
	if err != nil {
		return nil, errors.Wrap(err, "create order")
	}
	return persisted, nil
}

// normalizeCode mirrors the registry's normalization so the stored code
// matches the registry entry rather than whatever casing the client sent.
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
