package core

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCatalog     = errors.New("catalog has no entries")
	ErrDuplicateAction  = errors.New("duplicate action name")
	ErrInvalidUnitPrice = errors.New("invalid unit price")
	ErrEmptyActionEntry = errors.New("empty action name in catalog")
)

type CatalogEntry struct {
	Name      string
	UnitPrice int64
}

// Catalog maps action names to unit prices. It is immutable once built and
// remembers the order entries were given in.
type Catalog struct {
	entries []CatalogEntry
	index   map[string]int64
}

// NewCatalog validates entries and builds the lookup index. Names are trimmed
// the same way as parsed message text; no other normalization is applied.
func NewCatalog(entries []CatalogEntry) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyCatalog
	}
	c := &Catalog{
		entries: make([]CatalogEntry, 0, len(entries)),
		index:   make(map[string]int64, len(entries)),
	}
	for _, e := range entries {
		name := TrimText(e.Name)
		if name == "" {
			return nil, ErrEmptyActionEntry
		}
		if e.UnitPrice <= 0 {
			return nil, fmt.Errorf("%w: %q has price %d", ErrInvalidUnitPrice, name, e.UnitPrice)
		}
		if _, dup := c.index[name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateAction, name)
		}
		c.index[name] = e.UnitPrice
		c.entries = append(c.entries, CatalogEntry{Name: name, UnitPrice: e.UnitPrice})
	}
	return c, nil
}

// Lookup returns the unit price for an exact action name.
func (c *Catalog) Lookup(name string) (int64, bool) {
	p, ok := c.index[name]
	return p, ok
}

func (c *Catalog) Names() []string {
	out := make([]string, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Name
	}
	return out
}

func (c *Catalog) Entries() []CatalogEntry {
	return append([]CatalogEntry(nil), c.entries...)
}

func (c *Catalog) Len() int { return len(c.entries) }
