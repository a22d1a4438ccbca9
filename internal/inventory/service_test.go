package inventory

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/angelmondragon/paperledger/internal/catalog"
	"github.com/angelmondragon/paperledger/internal/ledger"
	"github.com/angelmondragon/paperledger/pkg/db/models"
	"github.com/angelmondragon/paperledger/pkg/db/sqlitetest"
	"github.com/angelmondragon/paperledger/pkg/enums"
	pkgerrors "github.com/angelmondragon/paperledger/pkg/errors"
	"github.com/angelmondragon/paperledger/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type fixture struct {
	ledger     ledger.Service
	thresholds ThresholdRepository
	svc        Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := sqlitetest.Open(t)
	ledgerSvc, err := ledger.NewService(ledger.NewRepository(conn), logger.Nop())
	if err != nil {
		t.Fatalf("ledger service: %v", err)
	}
	thresholds := NewThresholdRepository(conn)
	svc, err := NewService(catalog.Default(), ledgerSvc, thresholds, logger.Nop())
	if err != nil {
		t.Fatalf("inventory service: %v", err)
	}
	return &fixture{ledger: ledgerSvc, thresholds: thresholds, svc: svc}
}

func (f *fixture) stock(t *testing.T, item string, units int, on time.Time) {
	t.Helper()
	if _, err := f.ledger.Append(context.Background(), ledger.AppendInput{
		ItemName: item,
		Kind:     enums.TransactionTypeStockOrders,
		Units:    units,
		Amount:   decimal.NewFromInt(int64(units)),
		Date:     on,
	}); err != nil {
		t.Fatalf("seed stock: %v", err)
	}
}

func (f *fixture) floor(t *testing.T, item string, min int) {
	t.Helper()
	if err := f.thresholds.Upsert(context.Background(), models.InventoryThreshold{ItemName: item, MinStockLevel: min}); err != nil {
		t.Fatalf("seed threshold: %v", err)
	}
}

var (
	seedDay  = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	queryDay = time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
)

func TestStockStatusA4Scenario(t *testing.T) {
	f := newFixture(t)
	f.floor(t, "A4 paper", 100)
	f.stock(t, "A4 paper", 50, seedDay)

	got, err := f.svc.StockStatus(context.Background(), "A4 paper", 30, queryDay)
	if err != nil {
		t.Fatalf("StockStatus error: %v", err)
	}
	want := &StockStatus{
		ItemName:          "A4 paper",
		RequestedQuantity: 30,
		Available:         true,
		CurrentStock:      50,
		MinStockLevel:     100,
		RemainingStock:    20,
		NeedsRestock:      true,
		RestockQuantity:   180,
		Status:            enums.StockStatusAvailable,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected status\n got: %+v\nwant: %+v", got, want)
	}
}

func TestStockStatusUnavailableKeepsStock(t *testing.T) {
	f := newFixture(t)
	f.floor(t, "A4 paper", 100)
	f.stock(t, "A4 paper", 50, seedDay)

	got, err := f.svc.StockStatus(context.Background(), "A4 paper", 60, queryDay)
	if err != nil {
		t.Fatalf("StockStatus error: %v", err)
	}
	if got.Available || got.RemainingStock != 50 || got.RestockQuantity != 150 || got.Status != enums.StockStatusInsufficientStock {
		t.Fatalf("unexpected status %+v", got)
	}
}

func TestStockStatusNoRestockWhenAboveFloor(t *testing.T) {
	f := newFixture(t)
	f.floor(t, "Cardstock", 100)
	f.stock(t, "Cardstock", 500, seedDay)

	got, err := f.svc.StockStatus(context.Background(), "Cardstock", 100, queryDay)
	if err != nil {
		t.Fatalf("StockStatus error: %v", err)
	}
	if got.NeedsRestock || got.RestockQuantity != 0 || got.RemainingStock != 400 {
		t.Fatalf("unexpected status %+v", got)
	}
}

func TestStockStatusDefaultsFloorForUnseededItem(t *testing.T) {
	f := newFixture(t)

	got, err := f.svc.StockStatus(context.Background(), "Envelopes", 0, queryDay)
	if err != nil {
		t.Fatalf("StockStatus error: %v", err)
	}
	if got.MinStockLevel != DefaultMinStockLevel || got.CurrentStock != 0 || got.RestockQuantity != 200 {
		t.Fatalf("unexpected status %+v", got)
	}
}

func TestStockStatusInvalidItem(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.StockStatus(context.Background(), "Unobtainium paper", 1, queryDay)
	if !pkgerrors.IsCode(err, pkgerrors.CodeInvalidItemName) {
		t.Fatalf("expected invalid item name, got %v", err)
	}
}

func TestStockStatusIgnoresFutureDeliveries(t *testing.T) {
	f := newFixture(t)
	f.floor(t, "A4 paper", 100)
	f.stock(t, "A4 paper", 50, seedDay)
	f.stock(t, "A4 paper", 500, queryDay.AddDate(0, 0, 4))

	got, err := f.svc.StockStatus(context.Background(), "A4 paper", 30, queryDay)
	if err != nil {
		t.Fatalf("StockStatus error: %v", err)
	}
	if got.CurrentStock != 50 {
		t.Fatalf("stock dated after as-of must be invisible, got %d", got.CurrentStock)
	}
}

func TestReportBucketsAndValue(t *testing.T) {
	f := newFixture(t)
	f.floor(t, "A4 paper", 100)
	f.floor(t, "Cardstock", 100)
	f.floor(t, "Glossy paper", 50)
	f.stock(t, "A4 paper", 50, seedDay)
	f.stock(t, "Cardstock", 400, seedDay)

	report, err := f.svc.Report(context.Background(), queryDay)
	if err != nil {
		t.Fatalf("Report error: %v", err)
	}
	if report.TotalItems != 3 || report.ItemsBelowThreshold != 1 || report.ItemsInStock != 1 || report.ItemsOutOfStock != 1 {
		t.Fatalf("unexpected counts %+v", report)
	}
	if report.BelowThreshold[0].ItemName != "A4 paper" || report.InStock[0].ItemName != "Cardstock" || report.OutOfStock[0].ItemName != "Glossy paper" {
		t.Fatalf("unexpected buckets %+v", report)
	}
	// 50 × 0.05 + 400 × 0.15
	if !report.InventoryValue.Equal(decimal.RequireFromString("62.5")) {
		t.Fatalf("unexpected inventory value %s", report.InventoryValue)
	}
	if report.AsOf != "2025-04-01" {
		t.Fatalf("unexpected as-of %s", report.AsOf)
	}
}

func TestReportIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.floor(t, "A4 paper", 100)
	f.floor(t, "Cardstock", 100)
	f.stock(t, "A4 paper", 250, seedDay)

	first, err := f.svc.Report(context.Background(), queryDay)
	if err != nil {
		t.Fatalf("Report error: %v", err)
	}
	second, err := f.svc.Report(context.Background(), queryDay)
	if err != nil {
		t.Fatalf("Report error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("reports differ without intervening writes\nfirst: %+v\nsecond: %+v", first, second)
	}
}

func TestThresholdUpsertReplacesFloor(t *testing.T) {
	f := newFixture(t)
	f.floor(t, "A4 paper", 100)
	f.floor(t, "A4 paper", 250)

	rows, err := f.thresholds.List(context.Background())
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(rows) != 1 || rows[0].MinStockLevel != 250 {
		t.Fatalf("expected a single updated floor, got %+v", rows)
	}
}

type failingThresholds struct {
	ThresholdRepository
}

func (failingThresholds) Find(ctx context.Context, itemName string) (*models.InventoryThreshold, error) {
	return nil, errors.New("connection reset")
}

func (failingThresholds) List(ctx context.Context) ([]models.InventoryThreshold, error) {
	return nil, gorm.ErrInvalidDB
}

func TestThresholdFailuresArePersistenceErrors(t *testing.T) {
	f := newFixture(t)
	svc, err := NewService(catalog.Default(), f.ledger, failingThresholds{}, logger.Nop())
	if err != nil {
		t.Fatalf("inventory service: %v", err)
	}
	if _, err := svc.StockStatus(context.Background(), "A4 paper", 1, queryDay); !pkgerrors.IsCode(err, pkgerrors.CodePersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if _, err := svc.Report(context.Background(), queryDay); !pkgerrors.IsCode(err, pkgerrors.CodePersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
}
