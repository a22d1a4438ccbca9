package ledger

import (
	"context"
	"slices"
	"strings"

	"github.com/angelmondragon/paperledger/pkg/db/models"
	"github.com/angelmondragon/paperledger/pkg/enums"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// dateCutoff compares on the date portion so stored date-times still match.
const dateCutoff = "substr(transaction_date, 1, 10) <= ?"

// ItemSales aggregates the sale entries of one item.
type ItemSales struct {
	ItemName     string          `json:"item_name"`
	TotalUnits   int64           `json:"total_units"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

// Repository persists ledger entries. It has no update or delete.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.LedgerEntry) error
	FindByID(ctx context.Context, id int64, asOf string) (*models.LedgerEntry, error)
	NetQuantity(ctx context.Context, itemName, asOf string) (int64, error)
	PositiveBalances(ctx context.Context, asOf string) (map[string]int64, error)
	SignedCash(ctx context.Context, asOf string) (decimal.Decimal, error)
	SumAmount(ctx context.Context, kind enums.TransactionType, start, end string) (decimal.Decimal, error)
	SalesByItem(ctx context.Context, asOf string, limit int) ([]ItemSales, error)
	ListRecent(ctx context.Context, asOf string, limit int) ([]models.LedgerEntry, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.LedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) FindByID(ctx context.Context, id int64, asOf string) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Where(dateCutoff, asOf).
		First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) NetQuantity(ctx context.Context, itemName, asOf string) (int64, error) {
	var row struct {
		Net int64 `gorm:"column:net"`
	}
	err := r.db.WithContext(ctx).Raw(`
SELECT COALESCE(SUM(CASE
	WHEN transaction_type = ? THEN units
	WHEN transaction_type = ? THEN -units
	ELSE 0 END), 0) AS net
FROM transactions
WHERE item_name = ? AND `+dateCutoff,
		enums.TransactionTypeStockOrders, enums.TransactionTypeSales, itemName, asOf,
	).Scan(&row).Error
	if err != nil {
		return 0, err
	}
	return row.Net, nil
}

func (r *repository) PositiveBalances(ctx context.Context, asOf string) (map[string]int64, error) {
	var rows []struct {
		ItemName string `gorm:"column:item_name"`
		Net      int64  `gorm:"column:net"`
	}
	err := r.db.WithContext(ctx).Raw(`
SELECT item_name, SUM(CASE
	WHEN transaction_type = ? THEN units
	WHEN transaction_type = ? THEN -units
	ELSE 0 END) AS net
FROM transactions
WHERE item_name IS NOT NULL AND `+dateCutoff+`
GROUP BY item_name
HAVING SUM(CASE
	WHEN transaction_type = ? THEN units
	WHEN transaction_type = ? THEN -units
	ELSE 0 END) > 0`,
		enums.TransactionTypeStockOrders, enums.TransactionTypeSales, asOf,
		enums.TransactionTypeStockOrders, enums.TransactionTypeSales,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	balances := make(map[string]int64, len(rows))
	for _, row := range rows {
		balances[row.ItemName] = row.Net
	}
	return balances, nil
}

// Money totals are summed in Go over the scanned rows: sqlite hands back
// SUM over a NUMERIC column as a float64, which is not exact.
func (r *repository) SignedCash(ctx context.Context, asOf string) (decimal.Decimal, error) {
	var rows []models.LedgerEntry
	if err := r.db.WithContext(ctx).
		Select("transaction_type", "price").
		Where(dateCutoff, asOf).
		Find(&rows).Error; err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, row := range rows {
		switch row.TransactionType {
		case enums.TransactionTypeSales:
			total = total.Add(row.Price)
		case enums.TransactionTypeStockOrders:
			total = total.Sub(row.Price)
		}
	}
	return total, nil
}

func (r *repository) SumAmount(ctx context.Context, kind enums.TransactionType, start, end string) (decimal.Decimal, error) {
	var rows []models.LedgerEntry
	if err := r.db.WithContext(ctx).
		Select("price").
		Where("transaction_type = ?", kind).
		Where("substr(transaction_date, 1, 10) >= ?", start).
		Where(dateCutoff, end).
		Find(&rows).Error; err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.Price)
	}
	return total, nil
}

func (r *repository) SalesByItem(ctx context.Context, asOf string, limit int) ([]ItemSales, error) {
	var rows []models.LedgerEntry
	if err := r.db.WithContext(ctx).
		Select("item_name", "units", "price").
		Where("transaction_type = ?", enums.TransactionTypeSales).
		Where("item_name IS NOT NULL").
		Where(dateCutoff, asOf).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	byItem := map[string]*ItemSales{}
	for _, row := range rows {
		if !row.HasItem() {
			continue
		}
		agg, ok := byItem[*row.ItemName]
		if !ok {
			agg = &ItemSales{ItemName: *row.ItemName, TotalRevenue: decimal.Zero}
			byItem[*row.ItemName] = agg
		}
		agg.TotalUnits += int64(row.UnitCount())
		agg.TotalRevenue = agg.TotalRevenue.Add(row.Price)
	}

	sales := make([]ItemSales, 0, len(byItem))
	for _, agg := range byItem {
		sales = append(sales, *agg)
	}
	slices.SortFunc(sales, func(a, b ItemSales) int {
		if c := b.TotalRevenue.Cmp(a.TotalRevenue); c != 0 {
			return c
		}
		return strings.Compare(a.ItemName, b.ItemName)
	})
	if limit >= 0 && len(sales) > limit {
		sales = sales[:limit]
	}
	return sales, nil
}

func (r *repository) ListRecent(ctx context.Context, asOf string, limit int) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	if err := r.db.WithContext(ctx).
		Where(dateCutoff, asOf).
		Order("transaction_date DESC").
		Order("id DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
