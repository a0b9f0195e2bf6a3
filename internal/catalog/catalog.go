// Package catalog loads the price list used to bill actions.
//
// The catalog is read once at startup from a JSON array of
// {"name": ..., "price": ...} objects. Array order is kept so replies list
// actions the way the file does.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"ledgerbot/internal/core"
)

type entry struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// Default is used when no catalog file is configured.
var Default = []core.CatalogEntry{
	{Name: "שתל", UnitPrice: 500},
	{Name: "כתר", UnitPrice: 300},
	{Name: "סתימה", UnitPrice: 200},
	{Name: "עקירה", UnitPrice: 150},
	{Name: "טיפול שורש", UnitPrice: 800},
	{Name: "ניקוי אבנית", UnitPrice: 120},
}

// Load reads the catalog from path. An empty path yields the Default catalog.
func Load(path string) (*core.Catalog, error) {
	if path == "" {
		return core.NewCatalog(Default)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return Parse(b)
}

// Parse decodes a JSON catalog document.
func Parse(b []byte) (*core.Catalog, error) {
	var raw []entry
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(raw) == 0 {
		return nil, errors.New("catalog file has no entries")
	}
	entries := make([]core.CatalogEntry, len(raw))
	for i, e := range raw {
		entries[i] = core.CatalogEntry{Name: e.Name, UnitPrice: e.Price}
	}
	c, err := core.NewCatalog(entries)
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}
	return c, nil
}
