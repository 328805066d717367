package voucher

import (
	"context"
	"strings"

	"storefront/internal/model"
)

// Catalog is a set of vouchers keyed by normalised code.
type Catalog interface {
	// Get returns the voucher with the given code.
	Get(code string) (model.Voucher, bool)

	// Contains checks if a voucher code exists in the catalog.
	Contains(code string) bool

	// All returns the vouchers in the order they were added.
	All() []model.Voucher

	// Size returns the number of vouchers in the catalog.
	Size() int
}

// Loader defines the interface for loading voucher catalog files.
type Loader interface {
	// Load reads a gzipped JSON-lines catalog and returns its vouchers.
	Load(ctx context.Context, path string) (Catalog, error)
}

// NormalizeCode canonicalises a voucher code for comparison. Codes are case-insensitive.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
