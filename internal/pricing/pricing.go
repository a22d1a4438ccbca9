// Package pricing applies the tiered bulk discount and renders quote text.
package pricing

import (
	"fmt"
	"strings"

	"github.com/angelmondragon/paperledger/internal/catalog"
	pkgerrors "github.com/angelmondragon/paperledger/pkg/errors"
	"github.com/angelmondragon/paperledger/pkg/validate"
	"github.com/shopspring/decimal"
)

type tier struct {
	minQuantity int
	percent     int
}

// tiers are ordered from the largest threshold down.
var tiers = []tier{
	{minQuantity: 1000, percent: 15},
	{minQuantity: 500, percent: 10},
	{minQuantity: 100, percent: 5},
}

var hundred = decimal.NewFromInt(100)

// DiscountPercent returns the bulk discount tier for quantity.
func DiscountPercent(quantity int) int {
	for _, t := range tiers {
		if quantity >= t.minQuantity {
			return t.percent
		}
	}
	return 0
}

// Discount is the priced result for one item and quantity.
type Discount struct {
	ItemName            string          `json:"item_name"`
	Quantity            int             `json:"quantity"`
	UnitPrice           decimal.Decimal `json:"unit_price"`
	DiscountPercentage  int             `json:"discount_percentage"`
	DiscountedUnitPrice decimal.Decimal `json:"discounted_unit_price"`
	TotalPrice          decimal.Decimal `json:"total_price"`
}

// QuoteLine is one priced item rendered into a quote explanation.
type QuoteLine struct {
	ItemName           string          `json:"item_name" validate:"required"`
	Quantity           int             `json:"quantity" validate:"gte=0"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	DiscountPercentage int             `json:"discount_percentage" validate:"min=0,max=100"`
	TotalPrice         decimal.Decimal `json:"total_price"`
}

// Line converts a discount result into a quote line.
func (d Discount) Line() QuoteLine {
	return QuoteLine{
		ItemName:           d.ItemName,
		Quantity:           d.Quantity,
		UnitPrice:          d.UnitPrice,
		DiscountPercentage: d.DiscountPercentage,
		TotalPrice:         d.TotalPrice,
	}
}

type Engine struct {
	catalog *catalog.Catalog
}

func NewEngine(cat *catalog.Catalog) (*Engine, error) {
	if cat == nil {
		return nil, fmt.Errorf("catalog required")
	}
	return &Engine{catalog: cat}, nil
}

// BulkDiscount prices quantity units of itemName at its catalog price.
func (e *Engine) BulkDiscount(itemName string, quantity int) (*Discount, error) {
	item, err := e.catalog.Require(itemName)
	if err != nil {
		return nil, err
	}
	if quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative")
	}

	percent := DiscountPercent(quantity)
	factor := hundred.Sub(decimal.NewFromInt(int64(percent))).Div(hundred)
	discounted := item.UnitPrice.Mul(factor)

	return &Discount{
		ItemName:            item.Name,
		Quantity:            quantity,
		UnitPrice:           item.UnitPrice,
		DiscountPercentage:  percent,
		DiscountedUnitPrice: discounted,
		TotalPrice:          discounted.Mul(decimal.NewFromInt(int64(quantity))),
	}, nil
}

// Explain renders the customer-facing quote text. The discount clause only
// appears for lines with a discount above zero.
func Explain(lines []QuoteLine, total decimal.Decimal, deliveryDate string) (string, error) {
	var b strings.Builder
	b.WriteString("Thank you for your order! ")
	for i, line := range lines {
		if err := validate.Struct(line); err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("quote line %d", i))
		}
		if line.DiscountPercentage > 0 {
			fmt.Fprintf(&b, "For %d %s at $%s each with a %d%% bulk discount, the cost is $%s. ",
				line.Quantity, line.ItemName, line.UnitPrice.StringFixed(2), line.DiscountPercentage, line.TotalPrice.StringFixed(2))
			continue
		}
		fmt.Fprintf(&b, "For %d %s at $%s each, the cost is $%s. ",
			line.Quantity, line.ItemName, line.UnitPrice.StringFixed(2), line.TotalPrice.StringFixed(2))
	}
	fmt.Fprintf(&b, "The total cost for your order is $%s, and it will be delivered by %s.", total.StringFixed(2), deliveryDate)
	return b.String(), nil
}
