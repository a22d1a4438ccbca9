// Package catalog holds the immutable item reference data: name, category
// and resale unit price.
package catalog

import (
	"fmt"
	"strings"

	pkgerrors "github.com/angelmondragon/paperledger/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	CategoryPaper       = "paper"
	CategoryProduct     = "product"
	CategoryLargeFormat = "large_format"
	CategorySpecialty   = "specialty"
)

// Item is one sellable catalog entry. Names match case-sensitively.
type Item struct {
	Name      string          `json:"item_name"`
	Category  string          `json:"category"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Catalog is safe for concurrent reads; it is never mutated after New.
type Catalog struct {
	items  []Item
	byName map[string]Item
}

// New builds a catalog, rejecting blank and duplicate names and negative prices.
func New(items []Item) (*Catalog, error) {
	c := &Catalog{
		items:  make([]Item, 0, len(items)),
		byName: make(map[string]Item, len(items)),
	}
	for _, item := range items {
		if strings.TrimSpace(item.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog item name is required")
		}
		if item.UnitPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("catalog item %q has a negative unit price", item.Name))
		}
		if _, dup := c.byName[item.Name]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("duplicate catalog item %q", item.Name))
		}
		c.byName[item.Name] = item
		c.items = append(c.items, item)
	}
	return c, nil
}

// Lookup returns the item with exactly the given name.
func (c *Catalog) Lookup(name string) (Item, bool) {
	item, ok := c.byName[name]
	return item, ok
}

// Require is Lookup that fails with INVALID_ITEM_NAME for unknown items.
func (c *Catalog) Require(name string) (Item, error) {
	item, ok := c.byName[name]
	if !ok {
		return Item{}, pkgerrors.New(pkgerrors.CodeInvalidItemName, fmt.Sprintf("item %q is not in the catalog", name))
	}
	return item, nil
}

// Items returns every item in load order.
func (c *Catalog) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Catalog) Len() int {
	return len(c.items)
}
