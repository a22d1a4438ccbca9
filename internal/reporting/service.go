// Package reporting aggregates the ledger into cash, asset and sales figures.
package reporting

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/angelmondragon/paperledger/internal/inventory"
	"github.com/angelmondragon/paperledger/internal/ledger"
	"github.com/angelmondragon/paperledger/pkg/dates"
	"github.com/angelmondragon/paperledger/pkg/enums"
	"github.com/angelmondragon/paperledger/pkg/logger"
	"github.com/shopspring/decimal"
)

const (
	TopSellerLimit     = 5
	RecentEntryLimit   = 10
	TrailingWindowDays = 30
)

var hundred = decimal.NewFromInt(100)

// SummaryItem values one thresholded item at its resale price.
type SummaryItem struct {
	ItemName  string          `json:"item_name"`
	Stock     int             `json:"stock"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Value     decimal.Decimal `json:"value"`
}

// Report is the point-in-time balance sheet.
type Report struct {
	AsOf               string             `json:"as_of_date"`
	CashBalance        decimal.Decimal    `json:"cash_balance"`
	InventoryValue     decimal.Decimal    `json:"inventory_value"`
	TotalAssets        decimal.Decimal    `json:"total_assets"`
	InventorySummary   []SummaryItem      `json:"inventory_summary"`
	TopSellingProducts []ledger.ItemSales `json:"top_selling_products"`
}

// Entry is a ledger row as shown in the recent activity list.
type Entry struct {
	ID              int64                 `json:"id"`
	ItemName        *string               `json:"item_name"`
	TransactionType enums.TransactionType `json:"transaction_type"`
	Units           *int                  `json:"units"`
	Price           decimal.Decimal       `json:"price"`
	TransactionDate string                `json:"transaction_date"`
}

// Status extends Report with trailing-window performance and recent activity.
type Status struct {
	Report
	Revenue30Days      decimal.Decimal `json:"revenue_30_days"`
	Expenses30Days     decimal.Decimal `json:"expenses_30_days"`
	Profit30Days       decimal.Decimal `json:"profit_30_days"`
	ProfitMargin       decimal.Decimal `json:"profit_margin"`
	RecentTransactions []Entry         `json:"recent_transactions"`
}

type Service interface {
	CashBalance(ctx context.Context, asOf time.Time) (decimal.Decimal, error)
	Report(ctx context.Context, asOf time.Time) (*Report, error)
	Status(ctx context.Context, asOf time.Time) (*Status, error)
}

type service struct {
	ledger    ledger.Service
	inventory inventory.Service
	logg      *logger.Logger
}

func NewService(ledgerSvc ledger.Service, inventorySvc inventory.Service, logg *logger.Logger) (Service, error) {
	if ledgerSvc == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if inventorySvc == nil {
		return nil, fmt.Errorf("inventory service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{ledger: ledgerSvc, inventory: inventorySvc, logg: logg}, nil
}

func (s *service) CashBalance(ctx context.Context, asOf time.Time) (decimal.Decimal, error) {
	return s.ledger.CashBalance(ctx, asOf)
}

func (s *service) Report(ctx context.Context, asOf time.Time) (*Report, error) {
	ctx = s.logg.WithAsOf(ctx, dates.Format(asOf))

	cash, err := s.ledger.CashBalance(ctx, asOf)
	if err != nil {
		return nil, err
	}
	inv, err := s.inventory.Report(ctx, asOf)
	if err != nil {
		return nil, err
	}
	top, err := s.ledger.TopSellers(ctx, asOf, TopSellerLimit)
	if err != nil {
		return nil, err
	}

	levels := make([]inventory.ItemLevel, 0, inv.TotalItems)
	levels = append(levels, inv.InStock...)
	levels = append(levels, inv.BelowThreshold...)
	levels = append(levels, inv.OutOfStock...)
	slices.SortFunc(levels, func(a, b inventory.ItemLevel) int { return strings.Compare(a.ItemName, b.ItemName) })

	summary := make([]SummaryItem, 0, len(levels))
	for _, level := range levels {
		summary = append(summary, SummaryItem{
			ItemName:  level.ItemName,
			Stock:     level.CurrentStock,
			UnitPrice: level.UnitPrice,
			Value:     level.UnitPrice.Mul(decimal.NewFromInt(int64(level.CurrentStock))),
		})
	}

	return &Report{
		AsOf:               dates.Format(asOf),
		CashBalance:        cash,
		InventoryValue:     inv.InventoryValue,
		TotalAssets:        cash.Add(inv.InventoryValue),
		InventorySummary:   summary,
		TopSellingProducts: top,
	}, nil
}

func (s *service) Status(ctx context.Context, asOf time.Time) (*Status, error) {
	report, err := s.Report(ctx, asOf)
	if err != nil {
		return nil, err
	}

	start := dates.AddDays(asOf, -TrailingWindowDays)
	revenue, err := s.ledger.WindowSum(ctx, enums.TransactionTypeSales, start, asOf)
	if err != nil {
		return nil, err
	}
	expenses, err := s.ledger.WindowSum(ctx, enums.TransactionTypeStockOrders, start, asOf)
	if err != nil {
		return nil, err
	}
	recent, err := s.ledger.Recent(ctx, asOf, RecentEntryLimit)
	if err != nil {
		return nil, err
	}

	profit := revenue.Sub(expenses)
	status := &Status{
		Report:             *report,
		Revenue30Days:      revenue,
		Expenses30Days:     expenses,
		Profit30Days:       profit,
		ProfitMargin:       Margin(profit, revenue),
		RecentTransactions: make([]Entry, 0, len(recent)),
	}
	for _, e := range recent {
		status.RecentTransactions = append(status.RecentTransactions, Entry{
			ID:              e.ID,
			ItemName:        e.ItemName,
			TransactionType: e.TransactionType,
			Units:           e.Units,
			Price:           e.Price,
			TransactionDate: e.TransactionDate,
		})
	}
	return status, nil
}

// Margin is profit as a percentage of revenue, rounded to two places.
// It is zero when there is no revenue.
func Margin(profit, revenue decimal.Decimal) decimal.Decimal {
	if !revenue.IsPositive() {
		return decimal.Zero
	}
	return profit.Div(revenue).Mul(hundred).Round(2)
}
