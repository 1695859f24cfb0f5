// Package seed loads the demo perfume catalog into the product collection.
package seed

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/imperialessence/essence-backend/db"
	"github.com/imperialessence/essence-backend/internal/domain/product"
)

// productJSON is the external catalog file format.
type productJSON struct {
	Name        string          `json:"name"`
	Brand       string          `json:"brand"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Image       string          `json:"image"`
	Notes       []string        `json:"notes"`
}

// Parse decodes a JSON catalog into products, applying category defaults and
// validating each entry.
func Parse(data []byte) ([]product.Product, error) {
	var entries []productJSON
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, errors.Wrap(err, "parse catalog JSON")
	}

	products := make([]product.Product, len(entries))
	for i, e := range entries {
		p := product.Product{
			Name:        e.Name,
			Brand:       e.Brand,
			Category:    e.Category,
			Description: e.Description,
			Price:       e.Price,
			Stock:       e.Stock,
			Image:       e.Image,
			Notes:       e.Notes,
		}
		if p.Category == "" {
			p.Category = product.DefaultCategory
		}
		if err := p.Validate(); err != nil {
			return nil, errors.Wrapf(err, "catalog entry %d", i)
		}
		products[i] = p
	}
	return products, nil
}

// Catalog seeds the demo catalog idempotently.
type Catalog struct {
	products product.Repository
}

// New creates a Catalog seeder over the given repository.
func New(products product.Repository) *Catalog {
	return &Catalog{products: products}
}

// Run inserts the embedded demo catalog when the product collection is empty.
// It returns the number of inserted products; a second run is a no-op and
// reports zero insertions.
func (c *Catalog) Run(ctx context.Context) (int, error) {
	count, err := c.products.Count(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "count products")
	}
	if count > 0 {
		return 0, nil
	}

	products, err := Parse(db.SeedProducts)
	if err != nil {
		return 0, err
	}

	for _, p := range products {
		if _, err := c.products.Create(ctx, p); err != nil {
			return 0, errors.Wrapf(err, "seed product %q", p.Name)
		}
	}
	return len(products), nil
}
