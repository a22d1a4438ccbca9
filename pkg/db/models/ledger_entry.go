package models

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/paperledger/pkg/enums"
)

// LedgerEntry is one immutable row of the transactions table. Entries without
// an item name are pure cash movements.
type LedgerEntry struct {
	ID              int64                 `gorm:"column:id;primaryKey;autoIncrement"`
	ItemName        *string               `gorm:"column:item_name;index:idx_transactions_item_date,priority:1"`
	TransactionType enums.TransactionType `gorm:"column:transaction_type;type:varchar(32);not null"`
	Units           *int                  `gorm:"column:units"`
	Price           decimal.Decimal       `gorm:"column:price;type:numeric;not null"`
	TransactionDate string                `gorm:"column:transaction_date;type:varchar(32);not null;index:idx_transactions_item_date,priority:2"`
}

func (LedgerEntry) TableName() string { return "transactions" }

// HasItem reports whether the entry moves stock.
func (e LedgerEntry) HasItem() bool {
	return e.ItemName != nil && *e.ItemName != ""
}

// UnitCount returns the entry units, or zero for cash entries.
func (e LedgerEntry) UnitCount() int {
	if e.Units == nil {
		return 0
	}
	return *e.Units
}
