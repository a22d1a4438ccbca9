package inventory

import (
	"context"
	stdErrors "errors"
	"fmt"
	"time"

	"github.com/angelmondragon/paperledger/internal/catalog"
	"github.com/angelmondragon/paperledger/internal/ledger"
	"github.com/angelmondragon/paperledger/pkg/dates"
	"github.com/angelmondragon/paperledger/pkg/enums"
	pkgerrors "github.com/angelmondragon/paperledger/pkg/errors"
	"github.com/angelmondragon/paperledger/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	// Buffer is added on top of the reorder floor when sizing a restock.
	Buffer = 100
	// DefaultMinStockLevel applies to catalog items that were never seeded.
	DefaultMinStockLevel = 100
)

// Service classifies stock levels against reorder floors.
type Service interface {
	StockStatus(ctx context.Context, itemName string, quantity int, asOf time.Time) (*StockStatus, error)
	Report(ctx context.Context, asOf time.Time) (*Report, error)
}

// StockStatus is the result of checking one item against a requested quantity.
type StockStatus struct {
	ItemName          string            `json:"item_name"`
	RequestedQuantity int               `json:"requested_quantity"`
	Available         bool              `json:"available"`
	CurrentStock      int               `json:"current_stock"`
	MinStockLevel     int               `json:"min_stock_level"`
	RemainingStock    int               `json:"remaining_stock"`
	NeedsRestock      bool              `json:"needs_restock"`
	RestockQuantity   int               `json:"restock_quantity"`
	Status            enums.StockStatus `json:"status"`
}

// ItemLevel is one catalog item's standing in an inventory report.
type ItemLevel struct {
	ItemName      string          `json:"item_name"`
	Category      string          `json:"category"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	CurrentStock  int             `json:"current_stock"`
	MinStockLevel int             `json:"min_stock_level"`
}

// Report buckets every thresholded catalog item into exactly one list.
type Report struct {
	AsOf                string          `json:"as_of_date"`
	TotalItems          int             `json:"total_items"`
	ItemsInStock        int             `json:"items_in_stock"`
	ItemsBelowThreshold int             `json:"items_below_threshold"`
	ItemsOutOfStock     int             `json:"items_out_of_stock"`
	InventoryValue      decimal.Decimal `json:"inventory_value"`
	BelowThreshold      []ItemLevel     `json:"items_below_threshold_list"`
	InStock             []ItemLevel     `json:"items_in_stock_list"`
	OutOfStock          []ItemLevel     `json:"items_out_of_stock_list"`
}

type service struct {
	catalog    *catalog.Catalog
	ledger     ledger.Service
	thresholds ThresholdRepository
	logg       *logger.Logger
}

// NewService wires the inventory valuation engine.
func NewService(cat *catalog.Catalog, ledgerSvc ledger.Service, thresholds ThresholdRepository, logg *logger.Logger) (Service, error) {
	if cat == nil {
		return nil, fmt.Errorf("catalog required")
	}
	if ledgerSvc == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if thresholds == nil {
		return nil, fmt.Errorf("threshold repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{catalog: cat, ledger: ledgerSvc, thresholds: thresholds, logg: logg}, nil
}

func (s *service) StockStatus(ctx context.Context, itemName string, quantity int, asOf time.Time) (*StockStatus, error) {
	if _, err := s.catalog.Require(itemName); err != nil {
		return nil, err
	}
	if quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative")
	}

	current, err := s.ledger.NetQuantity(ctx, itemName, asOf)
	if err != nil {
		return nil, err
	}
	minLevel, err := s.minStockLevel(ctx, itemName)
	if err != nil {
		return nil, err
	}

	status := &StockStatus{
		ItemName:          itemName,
		RequestedQuantity: quantity,
		CurrentStock:      current,
		MinStockLevel:     minLevel,
		Available:         current >= quantity,
		RemainingStock:    current,
		Status:            enums.StockStatusInsufficientStock,
	}
	if status.Available {
		status.RemainingStock = current - quantity
		status.Status = enums.StockStatusAvailable
	}
	if status.RemainingStock < minLevel {
		status.NeedsRestock = true
		status.RestockQuantity = minLevel + Buffer - status.RemainingStock
	}
	return status, nil
}

func (s *service) minStockLevel(ctx context.Context, itemName string) (int, error) {
	row, err := s.thresholds.Find(ctx, itemName)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return DefaultMinStockLevel, nil
		}
		s.logg.Error(s.logg.WithItemName(ctx, itemName), "threshold lookup failed", err)
		return 0, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "find threshold")
	}
	return row.MinStockLevel, nil
}

func (s *service) Report(ctx context.Context, asOf time.Time) (*Report, error) {
	balances, err := s.ledger.AllPositiveBalances(ctx, asOf)
	if err != nil {
		return nil, err
	}
	rows, err := s.thresholds.List(ctx)
	if err != nil {
		s.logg.Error(ctx, "threshold list failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "list thresholds")
	}
	floors := make(map[string]int, len(rows))
	for _, row := range rows {
		if _, ok := s.catalog.Lookup(row.ItemName); !ok {
			s.logg.Warn(s.logg.WithItemName(ctx, row.ItemName), "threshold for item outside the catalog ignored")
			continue
		}
		floors[row.ItemName] = row.MinStockLevel
	}

	report := &Report{
		AsOf:           dates.Format(asOf),
		InventoryValue: decimal.Zero,
		BelowThreshold: []ItemLevel{},
		InStock:        []ItemLevel{},
		OutOfStock:     []ItemLevel{},
	}
	for _, item := range s.catalog.Items() {
		floor, ok := floors[item.Name]
		if !ok {
			continue
		}
		// items missing from the positive-balance view count as empty
		stock := balances[item.Name]
		level := ItemLevel{
			ItemName:      item.Name,
			Category:      item.Category,
			UnitPrice:     item.UnitPrice,
			CurrentStock:  stock,
			MinStockLevel: floor,
		}
		report.TotalItems++
		report.InventoryValue = report.InventoryValue.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(stock))))

		switch {
		case stock == 0:
			report.OutOfStock = append(report.OutOfStock, level)
		case stock < floor:
			report.BelowThreshold = append(report.BelowThreshold, level)
		default:
			report.InStock = append(report.InStock, level)
		}
	}
	report.ItemsInStock = len(report.InStock)
	report.ItemsBelowThreshold = len(report.BelowThreshold)
	report.ItemsOutOfStock = len(report.OutOfStock)
	return report, nil
}
