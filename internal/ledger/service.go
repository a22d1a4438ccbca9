package ledger

import (
	"context"
	stdErrors "errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/paperledger/pkg/dates"
	"github.com/angelmondragon/paperledger/pkg/db/models"
	"github.com/angelmondragon/paperledger/pkg/enums"
	pkgerrors "github.com/angelmondragon/paperledger/pkg/errors"
	"github.com/angelmondragon/paperledger/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service is the only write path into the ledger and the source of every
// point-in-time balance.
type Service interface {
	Append(ctx context.Context, input AppendInput) (*models.LedgerEntry, error)
	NetQuantity(ctx context.Context, itemName string, asOf time.Time) (int, error)
	AllPositiveBalances(ctx context.Context, asOf time.Time) (map[string]int, error)
	CashBalance(ctx context.Context, asOf time.Time) (decimal.Decimal, error)
	WindowSum(ctx context.Context, kind enums.TransactionType, start, end time.Time) (decimal.Decimal, error)
	Entry(ctx context.Context, id int64, asOf time.Time) (*models.LedgerEntry, error)
	TopSellers(ctx context.Context, asOf time.Time, limit int) ([]ItemSales, error)
	Recent(ctx context.Context, asOf time.Time, limit int) ([]models.LedgerEntry, error)
}

// AppendInput is a ledger entry draft. An empty ItemName records a pure cash
// movement; Units is then ignored.
type AppendInput struct {
	ItemName string                `json:"item_name,omitempty"`
	Kind     enums.TransactionType `json:"transaction_type"`
	Units    int                   `json:"units"`
	Amount   decimal.Decimal       `json:"price"`
	Date     time.Time             `json:"transaction_date"`
}

type service struct {
	repo Repository
	logg *logger.Logger

	// one writer at a time keeps ids strictly increasing in append order
	writeMu sync.Mutex
}

// NewService wires a ledger service with the provided repository.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) Append(ctx context.Context, input AppendInput) (*models.LedgerEntry, error) {
	if !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidTransactionKind, fmt.Sprintf("invalid transaction kind %q", input.Kind))
	}
	if input.Amount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be a non-negative magnitude")
	}
	if input.Date.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction date is required")
	}

	entry := &models.LedgerEntry{
		TransactionType: input.Kind,
		Price:           input.Amount,
		TransactionDate: dates.Format(input.Date),
	}
	if input.ItemName != "" {
		if strings.TrimSpace(input.ItemName) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name must not be blank")
		}
		if input.Units < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "units must not be negative")
		}
		itemName := input.ItemName
		units := input.Units
		entry.ItemName = &itemName
		entry.Units = &units
	}

	s.writeMu.Lock()
	err := s.repo.Create(ctx, entry)
	s.writeMu.Unlock()
	if err != nil {
		s.logFailure(ctx, "ledger append failed", input.ItemName, err)
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "append ledger entry")
	}
	return entry, nil
}

func (s *service) NetQuantity(ctx context.Context, itemName string, asOf time.Time) (int, error) {
	net, err := s.repo.NetQuantity(ctx, itemName, dates.Format(asOf))
	if err != nil {
		s.logFailure(ctx, "net quantity query failed", itemName, err)
		return 0, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "net quantity")
	}
	return int(net), nil
}

// AllPositiveBalances omits items whose net is zero or negative, unlike
// NetQuantity which reports 0 for an item without entries.
func (s *service) AllPositiveBalances(ctx context.Context, asOf time.Time) (map[string]int, error) {
	rows, err := s.repo.PositiveBalances(ctx, dates.Format(asOf))
	if err != nil {
		s.logFailure(ctx, "positive balances query failed", "", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "positive balances")
	}
	balances := make(map[string]int, len(rows))
	for name, net := range rows {
		balances[name] = int(net)
	}
	return balances, nil
}

func (s *service) CashBalance(ctx context.Context, asOf time.Time) (decimal.Decimal, error) {
	total, err := s.repo.SignedCash(ctx, dates.Format(asOf))
	if err != nil {
		s.logFailure(ctx, "cash balance query failed", "", err)
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "cash balance")
	}
	return total, nil
}

// WindowSum totals one kind over the inclusive range [start, end].
func (s *service) WindowSum(ctx context.Context, kind enums.TransactionType, start, end time.Time) (decimal.Decimal, error) {
	if !kind.IsValid() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeInvalidTransactionKind, fmt.Sprintf("invalid transaction kind %q", kind))
	}
	total, err := s.repo.SumAmount(ctx, kind, dates.Format(start), dates.Format(end))
	if err != nil {
		s.logFailure(ctx, "window sum query failed", "", err)
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "window sum")
	}
	return total, nil
}

// Entry returns the entry with id if it is dated on or before asOf.
func (s *service) Entry(ctx context.Context, id int64, asOf time.Time) (*models.LedgerEntry, error) {
	entry, err := s.repo.FindByID(ctx, id, dates.Format(asOf))
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("no ledger entry %d as of %s", id, dates.Format(asOf)))
		}
		s.logFailure(s.logg.WithEntryID(ctx, id), "entry lookup failed", "", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "find ledger entry")
	}
	return entry, nil
}

// TopSellers ranks items by sale revenue, highest first, ties by item name.
// Pure cash entries are never ranked.
func (s *service) TopSellers(ctx context.Context, asOf time.Time, limit int) ([]ItemSales, error) {
	if limit <= 0 {
		return []ItemSales{}, nil
	}
	rows, err := s.repo.SalesByItem(ctx, dates.Format(asOf), limit)
	if err != nil {
		s.logFailure(ctx, "top sellers query failed", "", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "top sellers")
	}
	if rows == nil {
		rows = []ItemSales{}
	}
	return rows, nil
}

func (s *service) Recent(ctx context.Context, asOf time.Time, limit int) ([]models.LedgerEntry, error) {
	if limit <= 0 {
		return []models.LedgerEntry{}, nil
	}
	entries, err := s.repo.ListRecent(ctx, dates.Format(asOf), limit)
	if err != nil {
		s.logFailure(ctx, "recent entries query failed", "", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "recent entries")
	}
	if entries == nil {
		entries = []models.LedgerEntry{}
	}
	return entries, nil
}

func (s *service) logFailure(ctx context.Context, msg, itemName string, err error) {
	if itemName != "" {
		ctx = s.logg.WithItemName(ctx, itemName)
	}
	ctx = s.logg.WithFields(ctx, pkgerrors.Dump(err).Fields())
	s.logg.Error(ctx, msg, err)
}
