// Package catalog holds the static pricing catalog the checkout flow sells
// from. Prices live in assets/config/pricing.json so the marketing site and
// the backend share one source of truth.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/deceroacien/backend/internal/pkg/env"
)

const defaultPricingPath = "assets/config/pricing.json"

// Product is one sellable catalog entry.
type Product struct {
	Title       string  `json:"title"`
	UnitPrice   float64 `json:"unit_price"`
	Entitlement string  `json:"entitlement,omitempty"`
}

type Catalog struct {
	Currency string             `json:"currency"`
	Products map[string]Product `json:"products"`
}

// New builds a catalog from in-memory data (used by tests and seeds).
func New(currency string, products map[string]Product) *Catalog {
	return &Catalog{Currency: currency, Products: products}
}

// Load reads the pricing file. An unreadable or invalid file is a
// construction-time failure: the server must not start selling without prices.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading pricing file %s: %w", path, err)
	}
	var c Catalog
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parsing pricing file %s: %w", path, err)
	}
	if c.Currency == "" {
		c.Currency = "CLP"
	}
	if len(c.Products) == 0 {
		return nil, fmt.Errorf("pricing file %s contains no products", path)
	}
	return &c, nil
}

// LoadFromEnv loads the catalog from PRICING_PATH or the default location.
func LoadFromEnv() (*Catalog, error) {
	return Load(env.GetEnv("PRICING_PATH", defaultPricingPath))
}

// Lookup resolves a bare SKU to its catalog entry.
func (c *Catalog) Lookup(sku string) (Product, bool) {
	p, ok := c.Products[strings.TrimSpace(sku)]
	return p, ok
}

// EntitlementForSKU maps a known SKU to the access key it unlocks. Catalog
// entries without an explicit entitlement default to the SKU itself, which is
// how the course products are keyed.
func (c *Catalog) EntitlementForSKU(sku string) (string, bool) {
	p, ok := c.Lookup(sku)
	if !ok {
		return "", false
	}
	if p.Entitlement != "" {
		return p.Entitlement, true
	}
	return strings.TrimSpace(sku), true
}
