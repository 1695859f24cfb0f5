// Package db provides the embedded database schema and seed data.
package db

import _ "embed"

// Schema contains the DDL statements for the document collection tables.
//
//go:embed migrations/001_schema.sql
var Schema string

// SeedProducts contains the demo perfume catalog as a JSON array.
//
//go:embed seed/products.json
var SeedProducts []byte
