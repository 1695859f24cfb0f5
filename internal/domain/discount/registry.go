// Package discount implements the static discount code registry.
package discount

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Registry maps uppercase discount codes to fractional percentages
// (0.15 means 15% off the subtotal).
type Registry struct {
	codes map[string]decimal.Decimal
}

// New returns the registry with the built-in codes.
func New() *Registry {
	return &Registry{codes: map[string]decimal.Decimal{
		"IMPERIAL10": decimal.RequireFromString("0.10"),
		"OUD15":      decimal.RequireFromString("0.15"),
		"ROYAL20":    decimal.RequireFromString("0.20"),
	}}
}

// NewWithCodes returns a registry with the given code set. Keys are
// normalized the same way lookups are.
func NewWithCodes(codes map[string]decimal.Decimal) *Registry {
	normalized := make(map[string]decimal.Decimal, len(codes))
	for code, percent := range codes {
		normalized[normalize(code)] = percent
	}
	return &Registry{codes: normalized}
}

// Resolve returns the percentage for a code. Input is trimmed and
// upper-cased before lookup; unknown or empty codes resolve to zero rather
// than an error.
func (r *Registry) Resolve(code string) decimal.Decimal {
	if percent, ok := r.codes[normalize(code)]; ok {
		return percent
	}
	return decimal.Zero
}

// Check reports whether a code grants a discount, along with its percentage.
func (r *Registry) Check(code string) (bool, decimal.Decimal) {
	percent := r.Resolve(code)
	return percent.IsPositive(), percent
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
