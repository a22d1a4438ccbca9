// Package restock posts supplier stock orders for items under their floor.
package restock

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/paperledger/internal/catalog"
	"github.com/angelmondragon/paperledger/internal/inventory"
	"github.com/angelmondragon/paperledger/internal/leadtime"
	"github.com/angelmondragon/paperledger/internal/ledger"
	"github.com/angelmondragon/paperledger/pkg/dates"
	"github.com/angelmondragon/paperledger/pkg/enums"
	pkgerrors "github.com/angelmondragon/paperledger/pkg/errors"
	"github.com/angelmondragon/paperledger/pkg/fanout"
	"github.com/angelmondragon/paperledger/pkg/itemlock"
	"github.com/angelmondragon/paperledger/pkg/logger"
	"github.com/angelmondragon/paperledger/pkg/metrics"
	"github.com/angelmondragon/paperledger/pkg/validate"
	"github.com/shopspring/decimal"
)

const (
	// DefaultBufferMultiplier sizes batch restocks to 1.5x the floor.
	DefaultBufferMultiplier = 1.5
	// Markup is resale price over supplier cost.
	Markup = 2
)

var markup = decimal.NewFromInt(Markup)

// Trigger labels where a restock came from.
type Trigger string

const (
	TriggerBatch  Trigger = "batch"
	TriggerOrder  Trigger = "order"
	TriggerSingle Trigger = "single"
)

// Request asks for one item to be restocked. A zero Quantity restocks up to
// MinStockLevel plus the inventory buffer; a zero MinStockLevel uses the
// stored floor.
type Request struct {
	ItemName      string  `json:"item_name" validate:"required"`
	Quantity      int     `json:"quantity" validate:"gte=0"`
	MinStockLevel int     `json:"min_stock_level" validate:"gte=0"`
	Trigger       Trigger `json:"-"`
}

// Result is the outcome of one restock attempt.
type Result struct {
	ItemName      string           `json:"item_name"`
	Quantity      int              `json:"quantity"`
	Price         decimal.Decimal  `json:"price"`
	Status        enums.LineStatus `json:"status"`
	DeliveryDate  string           `json:"delivery_date,omitempty"`
	TransactionID *int64           `json:"transaction_id,omitempty"`
}

// Report summarises a batch restock.
type Report struct {
	AsOf                string          `json:"as_of_date"`
	RestockedItems      []Result        `json:"restocked_items"`
	TotalItemsRestocked int             `json:"total_items_restocked"`
	TotalRestockCost    decimal.Decimal `json:"total_restock_cost"`
}

// Failed lists the results that carry an error status.
func (r *Report) Failed() []Result {
	var out []Result
	for _, res := range r.RestockedItems {
		if res.Status.IsError() {
			out = append(out, res)
		}
	}
	return out
}

// Service runs batch and single-item restocking. Per-item failures are
// reported as statuses; only fatal errors are returned.
type Service interface {
	RestockInventory(ctx context.Context, asOf time.Time, bufferMultiplier float64) (*Report, error)
	RestockItem(ctx context.Context, req Request, requestDate time.Time) (*Result, error)
}

// ServiceParams bundles the dependencies of the restock workflow.
type ServiceParams struct {
	Catalog        *catalog.Catalog
	Inventory      inventory.Service
	Ledger         ledger.Service
	LeadTime       *leadtime.Model
	Locker         itemlock.Locker
	Metrics        *metrics.WorkflowMetrics
	Logger         *logger.Logger
	MaxParallelism int
}

type service struct {
	catalog     *catalog.Catalog
	inventory   inventory.Service
	ledger      ledger.Service
	leadTime    *leadtime.Model
	locker      itemlock.Locker
	metrics     *metrics.WorkflowMetrics
	logg        *logger.Logger
	parallelism int
}

func NewService(params ServiceParams) (Service, error) {
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog required")
	}
	if params.Inventory == nil {
		return nil, fmt.Errorf("inventory service required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	leadTime := params.LeadTime
	if leadTime == nil {
		leadTime = leadtime.New(params.Logger)
	}
	locker := params.Locker
	if locker == nil {
		locker = itemlock.NewKeyedMutex()
	}
	return &service{
		catalog:     params.Catalog,
		inventory:   params.Inventory,
		ledger:      params.Ledger,
		leadTime:    leadTime,
		locker:      locker,
		metrics:     params.Metrics,
		logg:        params.Logger,
		parallelism: params.MaxParallelism,
	}, nil
}

func (s *service) RestockInventory(ctx context.Context, asOf time.Time, bufferMultiplier float64) (*Report, error) {
	if bufferMultiplier <= 0 {
		bufferMultiplier = DefaultBufferMultiplier
	}
	ctx = s.logg.WithAsOf(ctx, dates.Format(asOf))

	inv, err := s.inventory.Report(ctx, asOf)
	if err != nil {
		return nil, err
	}
	candidates := make([]inventory.ItemLevel, 0, len(inv.BelowThreshold)+len(inv.OutOfStock))
	candidates = append(candidates, inv.BelowThreshold...)
	candidates = append(candidates, inv.OutOfStock...)

	results := make([]Result, len(candidates))
	multiplier := decimal.NewFromFloat(bufferMultiplier)
	err = fanout.ByKey(ctx, candidates, func(l inventory.ItemLevel) string { return l.ItemName }, s.parallelism,
		func(ctx context.Context, idx int, level inventory.ItemLevel) error {
			target := decimal.NewFromInt(int64(level.MinStockLevel)).Mul(multiplier).Floor().IntPart()
			res, err := s.restockLocked(ctx, TriggerBatch, level.ItemName, asOf, func(ctx context.Context) (int, error) {
				// re-read under the lock; the report snapshot may be stale
				current, err := s.ledger.NetQuantity(ctx, level.ItemName, asOf)
				if err != nil {
					return 0, err
				}
				return int(target) - max(current, 0), nil
			})
			if err != nil {
				return err
			}
			results[idx] = *res
			return nil
		})
	if err != nil {
		return nil, err
	}

	report := &Report{
		AsOf:             dates.Format(asOf),
		RestockedItems:   results,
		TotalRestockCost: decimal.Zero,
	}
	for _, res := range results {
		if res.Status == enums.LineStatusRestocked {
			report.TotalItemsRestocked++
			report.TotalRestockCost = report.TotalRestockCost.Add(res.Price)
		}
	}
	return report, nil
}

func (s *service) RestockItem(ctx context.Context, req Request, requestDate time.Time) (*Result, error) {
	trigger := req.Trigger
	if trigger == "" {
		trigger = TriggerSingle
	}
	if err := validate.Struct(req); err != nil {
		res := &Result{ItemName: req.ItemName, Quantity: req.Quantity, Price: decimal.Zero, Status: enums.ErrorStatus(err)}
		s.metrics.IncRestock(string(trigger), res.Status.MetricLabel())
		return res, nil
	}

	return s.restockLocked(ctx, trigger, req.ItemName, requestDate, func(ctx context.Context) (int, error) {
		if req.Quantity > 0 {
			return req.Quantity, nil
		}
		status, err := s.inventory.StockStatus(ctx, req.ItemName, 0, requestDate)
		if err != nil {
			return 0, err
		}
		floor := req.MinStockLevel
		if floor == 0 {
			floor = status.MinStockLevel
		}
		return floor + inventory.Buffer - status.CurrentStock, nil
	})
}

// restockLocked sizes and posts one stock order while holding the item lock.
// Errors other than fatal ones are folded into the result status.
func (s *service) restockLocked(ctx context.Context, trigger Trigger, itemName string, requestDate time.Time, size func(context.Context) (int, error)) (res *Result, err error) {
	ctx = s.logg.WithItemName(ctx, itemName)
	res = &Result{ItemName: itemName, Price: decimal.Zero}
	defer func() {
		if res != nil {
			s.metrics.IncRestock(string(trigger), res.Status.MetricLabel())
		}
	}()

	item, lookupErr := s.catalog.Require(itemName)
	if lookupErr != nil {
		res.Status = enums.LineStatusInvalidItemName
		return res, nil
	}

	release, lockErr := s.locker.Lock(ctx, itemName)
	if lockErr != nil {
		s.logg.Error(ctx, "restock lock failed", lockErr)
		res.Status = enums.ErrorStatus(lockErr)
		return res, nil
	}
	defer release()

	qty, sizeErr := size(ctx)
	if sizeErr != nil {
		if pkgerrors.IsFatal(sizeErr) {
			return nil, sizeErr
		}
		s.logg.Error(ctx, "restock sizing failed", sizeErr)
		res.Status = enums.ErrorStatus(sizeErr)
		return res, nil
	}
	res.Quantity = qty
	if qty <= 0 {
		res.Quantity = 0
		res.Status = enums.LineStatusNoRestockNeeded
		return res, nil
	}

	cost := item.UnitPrice.Mul(decimal.NewFromInt(int64(qty))).Div(markup)
	delivery := s.leadTime.From(requestDate, qty)

	entry, appendErr := s.ledger.Append(ctx, ledger.AppendInput{
		ItemName: itemName,
		Kind:     enums.TransactionTypeStockOrders,
		Units:    qty,
		Amount:   cost,
		Date:     delivery,
	})
	if appendErr != nil {
		if pkgerrors.IsFatal(appendErr) {
			return nil, appendErr
		}
		s.logg.Error(ctx, "restock append failed", appendErr)
		res.Status = enums.ErrorStatus(appendErr)
		return res, nil
	}

	id := entry.ID
	res.Price = cost
	res.Status = enums.LineStatusRestocked
	res.DeliveryDate = dates.Format(delivery)
	res.TransactionID = &id
	s.logg.Info(s.logg.WithEntryID(ctx, id), "restock posted")
	return res, nil
}

