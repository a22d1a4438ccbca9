package models

// InventoryThreshold holds the reorder floor for a stocked item.
type InventoryThreshold struct {
	ItemName      string `gorm:"column:item_name;primaryKey"`
	MinStockLevel int    `gorm:"column:min_stock_level;not null"`
}

func (InventoryThreshold) TableName() string { return "inventory" }
