// Package operations is the entry surface for the orchestration layer. Every
// operation takes ISO date strings and returns JSON-tagged results.
package operations

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/paperledger/internal/catalog"
	"github.com/angelmondragon/paperledger/internal/inventory"
	"github.com/angelmondragon/paperledger/internal/leadtime"
	"github.com/angelmondragon/paperledger/internal/ledger"
	"github.com/angelmondragon/paperledger/internal/orders"
	"github.com/angelmondragon/paperledger/internal/pricing"
	"github.com/angelmondragon/paperledger/internal/quotes"
	"github.com/angelmondragon/paperledger/internal/reporting"
	"github.com/angelmondragon/paperledger/internal/restock"
	"github.com/angelmondragon/paperledger/pkg/dates"
	pkgerrors "github.com/angelmondragon/paperledger/pkg/errors"
	"github.com/angelmondragon/paperledger/pkg/itemlock"
	"github.com/angelmondragon/paperledger/pkg/logger"
	"github.com/angelmondragon/paperledger/pkg/metrics"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Params wires the facade from a database handle. Catalog defaults to the
// built-in reference list and Locker to an in-process keyed mutex.
type Params struct {
	DB             *gorm.DB
	Catalog        *catalog.Catalog
	Locker         itemlock.Locker
	Metrics        *metrics.WorkflowMetrics
	Logger         *logger.Logger
	MaxParallelism int
}

type Operations struct {
	catalog   *catalog.Catalog
	inventory inventory.Service
	pricing   *pricing.Engine
	leadTime  *leadtime.Model
	orders    orders.Service
	restock   restock.Service
	reporting reporting.Service
	quotes    quotes.Service
}

func New(params Params) (*Operations, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("db required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	cat := params.Catalog
	if cat == nil {
		cat = catalog.Default()
	}
	locker := params.Locker
	if locker == nil {
		locker = itemlock.NewKeyedMutex()
	}
	logg := params.Logger

	ledgerSvc, err := ledger.NewService(ledger.NewRepository(params.DB), logg)
	if err != nil {
		return nil, err
	}
	inventorySvc, err := inventory.NewService(cat, ledgerSvc, inventory.NewThresholdRepository(params.DB), logg)
	if err != nil {
		return nil, err
	}
	engine, err := pricing.NewEngine(cat)
	if err != nil {
		return nil, err
	}
	leadTime := leadtime.New(logg)
	restockSvc, err := restock.NewService(restock.ServiceParams{
		Catalog:        cat,
		Inventory:      inventorySvc,
		Ledger:         ledgerSvc,
		LeadTime:       leadTime,
		Locker:         locker,
		Metrics:        params.Metrics,
		Logger:         logg,
		MaxParallelism: params.MaxParallelism,
	})
	if err != nil {
		return nil, err
	}
	orderSvc, err := orders.NewService(orders.ServiceParams{
		Catalog:        cat,
		Inventory:      inventorySvc,
		Ledger:         ledgerSvc,
		Pricing:        engine,
		Restock:        restockSvc,
		LeadTime:       leadTime,
		Locker:         locker,
		Metrics:        params.Metrics,
		Logger:         logg,
		MaxParallelism: params.MaxParallelism,
	})
	if err != nil {
		return nil, err
	}
	reportingSvc, err := reporting.NewService(ledgerSvc, inventorySvc, logg)
	if err != nil {
		return nil, err
	}
	quoteSvc, err := quotes.NewService(quotes.NewRepository(params.DB), logg)
	if err != nil {
		return nil, err
	}

	return &Operations{
		catalog:   cat,
		inventory: inventorySvc,
		pricing:   engine,
		leadTime:  leadTime,
		orders:    orderSvc,
		restock:   restockSvc,
		reporting: reportingSvc,
		quotes:    quoteSvc,
	}, nil
}

func parseDate(field, value string) (time.Time, error) {
	t, err := dates.Parse(value)
	if err != nil {
		return time.Time{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, field+" must be an ISO date").
			WithDetails(map[string]string{field: "must be an ISO date"})
	}
	return t, nil
}

// Restock exposes the restock workflow to schedulers.
func (o *Operations) Restock() restock.Service {
	return o.restock
}

func (o *Operations) CheckInventoryStatus(ctx context.Context, itemName string, quantity int, asOf string) (*inventory.StockStatus, error) {
	day, err := parseDate("as_of_date", asOf)
	if err != nil {
		return nil, err
	}
	return o.inventory.StockStatus(ctx, itemName, quantity, day)
}

func (o *Operations) GetInventoryReport(ctx context.Context, asOf string) (*inventory.Report, error) {
	day, err := parseDate("as_of_date", asOf)
	if err != nil {
		return nil, err
	}
	return o.inventory.Report(ctx, day)
}

// RestockInventory restocks every under-threshold item. A bufferMultiplier
// of zero uses the default of 1.5.
func (o *Operations) RestockInventory(ctx context.Context, asOf string, bufferMultiplier float64) (*restock.Report, error) {
	day, err := parseDate("as_of_date", asOf)
	if err != nil {
		return nil, err
	}
	return o.restock.RestockInventory(ctx, day, bufferMultiplier)
}

func (o *Operations) CalculateBulkDiscount(ctx context.Context, itemName string, quantity int) (*pricing.Discount, error) {
	return o.pricing.BulkDiscount(itemName, quantity)
}

func (o *Operations) FormatQuoteExplanation(ctx context.Context, items []pricing.QuoteLine, total decimal.Decimal, deliveryDate string) (string, error) {
	return pricing.Explain(items, total, deliveryDate)
}

func (o *Operations) ProcessOrder(ctx context.Context, lines []orders.Line, orderDate string) (*orders.Order, error) {
	day, err := parseDate("order_date", orderDate)
	if err != nil {
		return nil, err
	}
	return o.orders.ProcessOrder(ctx, lines, day)
}

func (o *Operations) CheckOrderStatus(ctx context.Context, orderID int64, asOf string) (*orders.Status, error) {
	day, err := parseDate("as_of_date", asOf)
	if err != nil {
		return nil, err
	}
	return o.orders.CheckOrderStatus(ctx, orderID, day)
}

func (o *Operations) GetFinancialStatus(ctx context.Context, asOf string) (*reporting.Status, error) {
	day, err := parseDate("as_of_date", asOf)
	if err != nil {
		return nil, err
	}
	return o.reporting.Status(ctx, day)
}

func (o *Operations) GetCashBalance(ctx context.Context, asOf string) (decimal.Decimal, error) {
	day, err := parseDate("as_of_date", asOf)
	if err != nil {
		return decimal.Zero, err
	}
	return o.reporting.CashBalance(ctx, day)
}

func (o *Operations) GenerateFinancialReport(ctx context.Context, asOf string) (*reporting.Report, error) {
	day, err := parseDate("as_of_date", asOf)
	if err != nil {
		return nil, err
	}
	return o.reporting.Report(ctx, day)
}

// SearchQuoteHistory matches quotes containing every term. limit <= 0 means 5.
func (o *Operations) SearchQuoteHistory(ctx context.Context, terms []string, limit int) ([]quotes.Match, error) {
	return o.quotes.Search(ctx, terms, limit)
}

// SupplierDeliveryDate estimates delivery for quantity units ordered on start.
// An unparseable start is replaced by today.
func (o *Operations) SupplierDeliveryDate(ctx context.Context, start string, quantity int) string {
	return dates.Format(o.leadTime.DeliveryDate(ctx, start, quantity))
}

func (o *Operations) ListCatalogItems() []catalog.Item {
	return o.catalog.Items()
}
