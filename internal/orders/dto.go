package orders

import (
	"github.com/angelmondragon/paperledger/internal/inventory"
	"github.com/angelmondragon/paperledger/internal/restock"
	"github.com/angelmondragon/paperledger/pkg/enums"
	"github.com/shopspring/decimal"
)

// Line is one requested item. A zero Price is replaced by the bulk-discount
// total for the quantity.
type Line struct {
	ItemName string          `json:"item_name" validate:"required"`
	Quantity int             `json:"quantity" validate:"gt=0"`
	Price    decimal.Decimal `json:"price"`
}

// LineResult is the outcome of one order line.
type LineResult struct {
	ItemName      string           `json:"item_name"`
	Quantity      int              `json:"quantity"`
	Price         decimal.Decimal  `json:"price"`
	Status        enums.LineStatus `json:"status"`
	TransactionID *int64           `json:"transaction_id,omitempty"`
}

// Order is the complete result of ProcessOrder. Every submitted line has a
// result, in submission order.
type Order struct {
	OrderDate         string           `json:"order_date"`
	OrderResults      []LineResult     `json:"order_results"`
	TotalSalesAmount  decimal.Decimal  `json:"total_sales_amount"`
	RestockResults    []restock.Result `json:"restock_results"`
	AllItemsProcessed bool             `json:"all_items_processed"`
}

// Status describes a ledger entry looked up by id.
type Status struct {
	OrderID              int64                  `json:"order_id"`
	Status               enums.OrderStatus      `json:"status"`
	TransactionType      enums.TransactionType  `json:"transaction_type,omitempty"`
	ItemName             string                 `json:"item_name,omitempty"`
	Quantity             *int                   `json:"quantity,omitempty"`
	Price                *decimal.Decimal       `json:"price,omitempty"`
	TransactionDate      string                 `json:"transaction_date,omitempty"`
	InventoryStatus      *inventory.StockStatus `json:"inventory_status,omitempty"`
	ExpectedDeliveryDate string                 `json:"expected_delivery_date,omitempty"`
	Details              string                 `json:"details,omitempty"`
}
