package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// DefaultCategory is assigned to products created without an explicit category.
const DefaultCategory = "fragrance"

// Product represents a catalog item available for purchase. Products are
// read-only from the API's perspective: they are created by seeding and never
// mutated through a public endpoint.
type Product struct {
	ID          string
	Name        string
	Brand       string
	Category    string
	Description string
	Price       decimal.Decimal
	Stock       int
	Image       string
	Notes       []string
}

// Validate checks invariants the store itself cannot enforce. It is applied
// both before writes and after reads.
func (p *Product) Validate() error {
	if p.Name == "" {
		return errors.New("product name is required")
	}
	if p.Price.IsNegative() {
		return errors.Errorf("product %s has negative price %s", p.Name, p.Price)
	}
	return nil
}

// Repository defines persistence operations for the product catalog.
type Repository interface {
	// Search returns products whose name and brand contain the respective
	// query substrings, case-insensitively. Empty queries match everything,
	// subject to the store's list cap.
	Search(ctx context.Context, nameQuery, brandQuery string) ([]Product, error)
	// GetByID returns a single product, or ErrNotFound for unknown or
	// malformed identifiers.
	GetByID(ctx context.Context, id string) (*Product, error)
	// Create persists a new product and returns it with its assigned id.
	Create(ctx context.Context, p Product) (*Product, error)
	// Count returns the catalog size.
	Count(ctx context.Context) (int64, error)
}
