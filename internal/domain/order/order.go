package order

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Order represents a completed checkout with server-computed pricing. Orders
// are created exactly once and never mutated or deleted.
type Order struct {
	ID              string
	Items           []LineItem
	Subtotal        decimal.Decimal
	DiscountCode    string // empty when no code resolved to a positive percentage
	DiscountAmount  decimal.Decimal
	Total           decimal.Decimal
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	CreatedAt       time.Time
}

// LineItem is a single product-and-quantity entry within an order. Name and
// unit price are captured from the catalog at order time; later catalog
// changes never alter stored orders.
type LineItem struct {
	ProductID string
	Name      string
	Price     decimal.Decimal
	Quantity  int
}

// CartItem is the client-submitted form of a line item. Prices are never
// accepted from the client.
type CartItem struct {
	ProductID string
	Quantity  int
}

// Repository defines persistence operations for orders.
type Repository interface {
	// Create persists a new order and returns it with its assigned id.
	Create(ctx context.Context, o *Order) (*Order, error)
}

// ErrEmptyItems is returned when an order request carries no items.
var ErrEmptyItems = fmt.Errorf("items required")

// InvalidQuantityError indicates a line item with a quantity below 1.
type InvalidQuantityError struct {
	ProductID string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be at least 1 for product %s", e.ProductID)
}

// InvalidProductError indicates an order referenced a product id that is
// malformed or does not exist. The whole order is rejected.
type InvalidProductError struct {
	ProductID string
}

func (e *InvalidProductError) Error() string {
	return fmt.Sprintf("invalid product %s", e.ProductID)
}
