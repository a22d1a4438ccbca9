// Package orders posts sales against available stock and queues replenishment.
package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/paperledger/internal/catalog"
	"github.com/angelmondragon/paperledger/internal/inventory"
	"github.com/angelmondragon/paperledger/internal/leadtime"
	"github.com/angelmondragon/paperledger/internal/ledger"
	"github.com/angelmondragon/paperledger/internal/pricing"
	"github.com/angelmondragon/paperledger/internal/restock"
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

// Service processes orders line by line. Lines never fail the whole order;
// only fatal errors are returned.
type Service interface {
	ProcessOrder(ctx context.Context, lines []Line, orderDate time.Time) (*Order, error)
	CheckOrderStatus(ctx context.Context, entryID int64, asOf time.Time) (*Status, error)
}

// ServiceParams bundles the dependencies of the order workflow.
type ServiceParams struct {
	Catalog        *catalog.Catalog
	Inventory      inventory.Service
	Ledger         ledger.Service
	Pricing        *pricing.Engine
	Restock        restock.Service
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
	pricing     *pricing.Engine
	restock     restock.Service
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
	if params.Pricing == nil {
		return nil, fmt.Errorf("pricing engine required")
	}
	if params.Restock == nil {
		return nil, fmt.Errorf("restock service required")
	}
	if params.Locker == nil {
		return nil, fmt.Errorf("item locker required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	leadTime := params.LeadTime
	if leadTime == nil {
		leadTime = leadtime.New(params.Logger)
	}
	return &service{
		catalog:     params.Catalog,
		inventory:   params.Inventory,
		ledger:      params.Ledger,
		pricing:     params.Pricing,
		restock:     params.Restock,
		leadTime:    leadTime,
		locker:      params.Locker,
		metrics:     params.Metrics,
		logg:        params.Logger,
		parallelism: params.MaxParallelism,
	}, nil
}

func (s *service) ProcessOrder(ctx context.Context, lines []Line, orderDate time.Time) (*Order, error) {
	ctx = s.logg.WithAsOf(ctx, dates.Format(orderDate))

	results := make([]LineResult, len(lines))
	queued := make([]*restock.Request, len(lines))

	err := fanout.ByKey(ctx, lines, func(l Line) string { return l.ItemName }, s.parallelism,
		func(ctx context.Context, idx int, line Line) error {
			res, req, err := s.processLine(ctx, line, orderDate)
			if err != nil {
				return err
			}
			results[idx] = res
			queued[idx] = req
			s.metrics.IncOrderLine(res.Status.MetricLabel())
			return nil
		})
	if err != nil {
		return nil, err
	}

	requests := make([]restock.Request, 0, len(queued))
	for _, req := range queued {
		if req != nil {
			requests = append(requests, *req)
		}
	}
	restocks := make([]restock.Result, len(requests))
	err = fanout.ByKey(ctx, requests, func(r restock.Request) string { return r.ItemName }, s.parallelism,
		func(ctx context.Context, idx int, req restock.Request) error {
			res, err := s.restock.RestockItem(ctx, req, orderDate)
			if err != nil {
				return err
			}
			restocks[idx] = *res
			return nil
		})
	if err != nil {
		return nil, err
	}

	order := &Order{
		OrderDate:         dates.Format(orderDate),
		OrderResults:      results,
		TotalSalesAmount:  decimal.Zero,
		RestockResults:    restocks,
		AllItemsProcessed: true,
	}
	for _, res := range results {
		if res.Status != enums.LineStatusProcessed {
			order.AllItemsProcessed = false
			continue
		}
		order.TotalSalesAmount = order.TotalSalesAmount.Add(res.Price)
	}
	return order, nil
}

// processLine runs the check-then-act sequence for one line under the item
// lock and returns the restock request it queues, if any.
func (s *service) processLine(ctx context.Context, line Line, orderDate time.Time) (LineResult, *restock.Request, error) {
	res := LineResult{ItemName: line.ItemName, Quantity: line.Quantity, Price: line.Price}
	ctx = s.logg.WithItemName(ctx, line.ItemName)

	if err := validate.Struct(line); err != nil {
		res.Status = enums.ErrorStatus(err)
		return res, nil, nil
	}
	if line.Price.IsNegative() {
		res.Status = enums.ErrorStatus(pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative"))
		return res, nil, nil
	}
	if _, ok := s.catalog.Lookup(line.ItemName); !ok {
		res.Status = enums.LineStatusInvalidItemName
		return res, nil, nil
	}
	if res.Price.IsZero() {
		quote, err := s.pricing.BulkDiscount(line.ItemName, line.Quantity)
		if err != nil {
			res.Status = enums.ErrorStatus(err)
			return res, nil, nil
		}
		res.Price = quote.TotalPrice
	}

	waitStart := time.Now()
	release, err := s.locker.Lock(ctx, line.ItemName)
	s.metrics.ObserveLockWait(time.Since(waitStart))
	if err != nil {
		s.logg.Error(ctx, "order line lock failed", err)
		res.Status = enums.ErrorStatus(err)
		return res, nil, nil
	}
	defer release()

	stock, err := s.inventory.StockStatus(ctx, line.ItemName, line.Quantity, orderDate)
	if err != nil {
		if pkgerrors.IsFatal(err) {
			return res, nil, err
		}
		s.logg.Error(ctx, "stock status failed", err)
		res.Status = enums.ErrorStatus(err)
		return res, nil, nil
	}

	if !stock.Available {
		res.Status = enums.LineStatusInsufficientStock
		return res, &restock.Request{
			ItemName:      line.ItemName,
			Quantity:      max(line.Quantity, stock.RestockQuantity),
			MinStockLevel: stock.MinStockLevel,
			Trigger:       restock.TriggerOrder,
		}, nil
	}

	entry, err := s.ledger.Append(ctx, ledger.AppendInput{
		ItemName: line.ItemName,
		Kind:     enums.TransactionTypeSales,
		Units:    line.Quantity,
		Amount:   res.Price,
		Date:     orderDate,
	})
	if err != nil {
		if pkgerrors.IsFatal(err) {
			return res, nil, err
		}
		s.logg.Error(ctx, "sale append failed", err)
		res.Status = enums.ErrorStatus(err)
		return res, nil, nil
	}

	id := entry.ID
	res.Status = enums.LineStatusProcessed
	res.TransactionID = &id
	if !stock.NeedsRestock {
		return res, nil, nil
	}
	return res, &restock.Request{
		ItemName:      line.ItemName,
		Quantity:      stock.RestockQuantity,
		MinStockLevel: stock.MinStockLevel,
		Trigger:       restock.TriggerOrder,
	}, nil
}

func (s *service) CheckOrderStatus(ctx context.Context, entryID int64, asOf time.Time) (*Status, error) {
	entry, err := s.ledger.Entry(ctx, entryID, asOf)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return &Status{
				OrderID: entryID,
				Status:  enums.OrderStatusNotFound,
				Details: "No transaction found with this ID",
			}, nil
		}
		return nil, err
	}

	units := entry.UnitCount()
	price := entry.Price
	status := &Status{
		OrderID:         entry.ID,
		TransactionType: entry.TransactionType,
		Quantity:        entry.Units,
		Price:           &price,
		TransactionDate: entry.TransactionDate,
	}
	if entry.HasItem() {
		status.ItemName = *entry.ItemName
	}

	if entry.TransactionType == enums.TransactionTypeSales {
		status.Status = enums.OrderStatusCompleted
		if !entry.HasItem() {
			return status, nil
		}
		stock, err := s.inventory.StockStatus(ctx, status.ItemName, units, asOf)
		if err != nil {
			return nil, err
		}
		status.InventoryStatus = stock
		if !stock.Available {
			status.Status = enums.OrderStatusPartiallyFulfilled
		}
		return status, nil
	}

	delivery := s.leadTime.DeliveryDate(ctx, entry.TransactionDate, units)
	status.ExpectedDeliveryDate = dates.Format(delivery)
	status.Status = enums.OrderStatusInTransit
	if !dates.Day(asOf).Before(delivery) {
		status.Status = enums.OrderStatusDelivered
	}
	return status, nil
}
