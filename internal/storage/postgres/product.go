package postgres

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/imperialessence/essence-backend/internal/docstore"
	"github.com/imperialessence/essence-backend/internal/domain/product"
)

var _ product.Repository = (*ProductRepository)(nil)

// productDoc is the serialization mapping between a Product and its stored
// document representation.
type productDoc struct {
	Name        string          `json:"name"`
	Brand       string          `json:"brand"`
	Category    string          `json:"category"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Image       string          `json:"image,omitempty"`
	Notes       []string        `json:"notes,omitempty"`
}

// ProductRepository implements product.Repository on the document store.
type ProductRepository struct {
	store *docstore.Store
}

// NewProductRepository returns a ProductRepository backed by the given store.
func NewProductRepository(store *docstore.Store) *ProductRepository {
	return &ProductRepository{store: store}
}

// Search returns products matching the optional name and brand substring
// queries. Both filters are independent; when both are present they are ANDed.
func (r *ProductRepository) Search(ctx context.Context, nameQuery, brandQuery string) ([]product.Product, error) {
	var filter docstore.Filter
	if nameQuery != "" {
		filter = append(filter, docstore.Condition{Field: "name", Contains: nameQuery})
	}
	if brandQuery != "" {
		filter = append(filter, docstore.Condition{Field: "brand", Contains: brandQuery})
	}

	docs, err := r.store.List(ctx, ProductCollection, filter, docstore.DefaultLimit)
	if err != nil {
		return nil, errors.Wrap(err, "search products")
	}

	products := make([]product.Product, 0, len(docs))
	for _, d := range docs {
		p, err := mapProduct(d)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, nil
}

// GetByID returns a single product by id. Malformed and unknown identifiers
// both map to product.ErrNotFound.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	d, err := r.store.Get(ctx, ProductCollection, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, product.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get product %s", id)
	}
	return mapProduct(*d)
}

// Create validates and persists a new product, returning it with its
// store-assigned id.
func (r *ProductRepository) Create(ctx context.Context, p product.Product) (*product.Product, error) {
	if p.Category == "" {
		p.Category = product.DefaultCategory
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	doc := productDoc{
		Name:        p.Name,
		Brand:       p.Brand,
		Category:    p.Category,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		Image:       p.Image,
		Notes:       p.Notes,
	}
	d, err := r.store.Create(ctx, ProductCollection, doc)
	if err != nil {
		return nil, errors.Wrapf(err, "create product %q", p.Name)
	}
	return mapProduct(*d)
}

// Count returns the catalog size.
func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	return r.store.Count(ctx, ProductCollection)
}

// mapProduct decodes a stored document into the domain type, validating on
// read since the store cannot enforce schema.
func mapProduct(d docstore.Document) (*product.Product, error) {
	var doc productDoc
	if err := json.Unmarshal(d.Data, &doc); err != nil {
		return nil, errors.Wrapf(err, "decode product %s", d.ID)
	}

	p := product.Product{
		ID:          d.ID,
		Name:        doc.Name,
		Brand:       doc.Brand,
		Category:    doc.Category,
		Description: doc.Description,
		Price:       doc.Price,
		Stock:       doc.Stock,
		Image:       doc.Image,
		Notes:       doc.Notes,
	}
	if p.Category == "" {
		p.Category = product.DefaultCategory
	}
	if err := p.Validate(); err != nil {
		return nil, errors.Wrapf(err, "stored product %s", d.ID)
	}
	return &p, nil
}
