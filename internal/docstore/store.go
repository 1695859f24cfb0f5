// Package docstore implements generic document operations over named JSONB
// collections. Each collection is a PostgreSQL table holding a string id, the
// document body, and creation/update timestamps stamped on insert. The store
// never leaks its native row representation: callers always see documents with
// a string id field.
package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("document not found")

// DefaultLimit is the hard cap applied to list operations. It is a cap, not a
// page size: there is no pagination cursor.
const DefaultLimit = 200

// Document is a stored record with its storage-assigned identifier and
// timestamps normalized out of the body.
type Document struct {
	ID        string
	Data      json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Condition matches documents whose named top-level field contains the given
// substring, case-insensitively.
type Condition struct {
	Field    string
	Contains string
}

// Filter is a set of conditions ANDed together. An empty filter matches all
// documents in the collection.
type Filter []Condition

// Store provides document operations backed by a PostgreSQL pool.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store on top of the given pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Create marshals doc, assigns a fresh string id, stamps equal creation and
// update timestamps, writes the document, and reads it back so the caller
// receives exactly what was stored.
func (s *Store) Create(ctx context.Context, collection string, doc any) (*Document, error) {
	table, err := tableName(collection)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "marshal document")
	}

	id := uuid.New().String()
	now := time.Now().UTC()

	query := fmt.Sprintf(
		`INSERT INTO %s (id, doc, created_at, updated_at) VALUES ($1, $2, $3, $3)`, table)
	if _, err := s.pool.Exec(ctx, query, id, payload, now); err != nil {
		return nil, errors.Wrapf(err, "insert into %s", collection)
	}

	return s.Get(ctx, collection, id)
}

// Get returns a single document by id. It returns ErrNotFound when no
// document matches; a malformed id simply matches nothing.
func (s *Store) Get(ctx context.Context, collection, id string) (*Document, error) {
	table, err := tableName(collection)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		`SELECT id, doc, created_at, updated_at FROM %s WHERE id = $1`, table)

	var d Document
	err = s.pool.QueryRow(ctx, query, id).Scan(&d.ID, &d.Data, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get %s/%s", collection, id)
	}
	return &d, nil
}

// List returns up to limit documents matching the filter, in insertion order.
// A non-positive or oversized limit falls back to DefaultLimit.
func (s *Store) List(ctx context.Context, collection string, filter Filter, limit int) ([]Document, error) {
	table, err := tableName(collection)
	if err != nil {
		return nil, err
	}

	query, args, err := buildListQuery(table, filter, limit)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "list %s", collection)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.Data, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, errors.Wrapf(err, "scan %s row", collection)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// Count returns the number of documents in the collection.
func (s *Store) Count(ctx context.Context, collection string) (int64, error) {
	table, err := tableName(collection)
	if err != nil {
		return 0, err
	}

	var n int64
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, table)
	if err := s.pool.QueryRow(ctx, query).Scan(&n); err != nil {
		return 0, errors.Wrapf(err, "count %s", collection)
	}
	return n, nil
}

// SumNumeric sums a numeric top-level field across all documents in the
// collection. Missing or empty collections sum to zero.
func (s *Store) SumNumeric(ctx context.Context, collection, field string) (decimal.Decimal, error) {
	table, err := tableName(collection)
	if err != nil {
		return decimal.Zero, err
	}
	if !isIdent(field) {
		return decimal.Zero, errors.Errorf("invalid field name %q", field)
	}

	var sum decimal.Decimal
	query := fmt.Sprintf(
		`SELECT COALESCE(SUM((doc ->> '%s')::numeric), 0) FROM %s`, field, table)
	if err := s.pool.QueryRow(ctx, query).Scan(&sum); err != nil {
		return decimal.Zero, errors.Wrapf(err, "sum %s.%s", collection, field)
	}
	return sum, nil
}

// Collections returns the names of all collections present in the store.
func (s *Store) Collections(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT tablename FROM pg_catalog.pg_tables WHERE schemaname = 'public' ORDER BY tablename`)
	if err != nil {
		return nil, errors.Wrap(err, "list collections")
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(err, "scan collection name")
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Ping reports whether the underlying store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// buildListQuery assembles the SELECT for List. Substring conditions are
// matched with ILIKE against the JSONB text projection of each field; wildcard
// characters in user input are escaped so they match literally.
func buildListQuery(table string, filter Filter, limit int) (string, []any, error) {
	if limit <= 0 || limit > DefaultLimit {
		limit = DefaultLimit
	}

	var b strings.Builder
	b.WriteString("SELECT id, doc, created_at, updated_at FROM ")
	b.WriteString(table)

	args := make([]any, 0, len(filter)+1)
	for i, cond := range filter {
		if !isIdent(cond.Field) {
			return "", nil, errors.Errorf("invalid field name %q", cond.Field)
		}
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		args = append(args, escapeLike(cond.Contains))
		fmt.Fprintf(&b, "doc ->> '%s' ILIKE '%%' || $%d || '%%'", cond.Field, len(args))
	}

	args = append(args, limit)
	fmt.Fprintf(&b, " ORDER BY created_at, id LIMIT $%d", len(args))

	return b.String(), args, nil
}

// tableName validates and quotes a collection name for interpolation into SQL.
// Collection names come from code, not from requests, but "order" is a
// reserved word and needs quoting either way.
func tableName(collection string) (string, error) {
	if !isIdent(collection) {
		return "", errors.Errorf("invalid collection name %q", collection)
	}
	return pgx.Identifier{collection}.Sanitize(), nil
}

// isIdent reports whether s is a safe lowercase identifier.
func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && r != '_' {
			return false
		}
	}
	return true
}

// escapeLike escapes the LIKE wildcard characters so user-supplied substrings
// match literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
