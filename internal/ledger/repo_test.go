package ledger

import (
	"context"
	"testing"

	"github.com/angelmondragon/paperledger/pkg/db/models"
	"github.com/angelmondragon/paperledger/pkg/db/sqlitetest"
	"github.com/angelmondragon/paperledger/pkg/enums"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedEntry(t *testing.T, repo Repository, item string, kind enums.TransactionType, units int, price string, date string) *models.LedgerEntry {
	t.Helper()
	entry := &models.LedgerEntry{
		TransactionType: kind,
		Price:           decimal.RequireFromString(price),
		TransactionDate: date,
	}
	if item != "" {
		entry.ItemName = &item
		entry.Units = &units
	}
	require.NoError(t, repo.Create(context.Background(), entry))
	return entry
}

func TestRepositoryNetQuantityToleratesTimePortion(t *testing.T) {
	repo := NewRepository(sqlitetest.Open(t))
	ctx := context.Background()

	seedEntry(t, repo, "A4 paper", enums.TransactionTypeStockOrders, 500, "12.5", "2025-01-01T00:00:00")
	seedEntry(t, repo, "A4 paper", enums.TransactionTypeSales, 120, "6", "2025-01-05T14:30:00")
	seedEntry(t, repo, "A4 paper", enums.TransactionTypeSales, 30, "1.5", "2025-01-09")

	net, err := repo.NetQuantity(ctx, "A4 paper", "2025-01-05")
	require.NoError(t, err)
	assert.Equal(t, int64(380), net)

	net, err = repo.NetQuantity(ctx, "A4 paper", "2025-01-31")
	require.NoError(t, err)
	assert.Equal(t, int64(350), net)

	net, err = repo.NetQuantity(ctx, "Cardstock", "2025-01-31")
	require.NoError(t, err)
	assert.Equal(t, int64(0), net)
}

func TestRepositoryPositiveBalancesOmitsNonPositive(t *testing.T) {
	repo := NewRepository(sqlitetest.Open(t))
	ctx := context.Background()

	seedEntry(t, repo, "", enums.TransactionTypeSales, 0, "50000", "2025-01-01")
	seedEntry(t, repo, "A4 paper", enums.TransactionTypeStockOrders, 200, "5", "2025-01-01")
	seedEntry(t, repo, "Cardstock", enums.TransactionTypeStockOrders, 100, "7.5", "2025-01-01")
	seedEntry(t, repo, "Cardstock", enums.TransactionTypeSales, 100, "15", "2025-01-02")
	seedEntry(t, repo, "Glossy paper", enums.TransactionTypeSales, 10, "2", "2025-01-02")

	balances, err := repo.PositiveBalances(ctx, "2025-01-31")
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"A4 paper": 200}, balances)
}

func TestRepositoryCashAndWindowSums(t *testing.T) {
	repo := NewRepository(sqlitetest.Open(t))
	ctx := context.Background()

	seedEntry(t, repo, "", enums.TransactionTypeSales, 0, "50000", "2025-01-01")
	seedEntry(t, repo, "A4 paper", enums.TransactionTypeStockOrders, 1000, "25", "2025-01-10")
	seedEntry(t, repo, "A4 paper", enums.TransactionTypeSales, 200, "10", "2025-01-20")
	seedEntry(t, repo, "A4 paper", enums.TransactionTypeSales, 100, "5", "2025-02-20")

	cash, err := repo.SignedCash(ctx, "2025-01-31")
	require.NoError(t, err)
	assert.True(t, cash.Equal(decimal.NewFromInt(49985)), "cash %s", cash)

	revenue, err := repo.SumAmount(ctx, enums.TransactionTypeSales, "2025-01-10", "2025-01-20")
	require.NoError(t, err)
	assert.True(t, revenue.Equal(decimal.NewFromInt(10)), "revenue %s", revenue)

	expenses, err := repo.SumAmount(ctx, enums.TransactionTypeStockOrders, "2025-01-10", "2025-01-10")
	require.NoError(t, err)
	assert.True(t, expenses.Equal(decimal.NewFromInt(25)), "window bounds are inclusive, got %s", expenses)

	empty, err := repo.SumAmount(ctx, enums.TransactionTypeSales, "2024-01-01", "2024-12-31")
	require.NoError(t, err)
	assert.True(t, empty.IsZero())
}

func TestRepositorySalesByItemOrdering(t *testing.T) {
	repo := NewRepository(sqlitetest.Open(t))
	ctx := context.Background()

	seedEntry(t, repo, "", enums.TransactionTypeSales, 0, "50000", "2025-01-01")
	seedEntry(t, repo, "Glossy paper", enums.TransactionTypeSales, 10, "40", "2025-01-02")
	seedEntry(t, repo, "Cardstock", enums.TransactionTypeSales, 20, "40", "2025-01-02")
	seedEntry(t, repo, "A4 paper", enums.TransactionTypeSales, 100, "5", "2025-01-02")
	seedEntry(t, repo, "A4 paper", enums.TransactionTypeSales, 100, "5", "2025-01-03")
	seedEntry(t, repo, "Banner paper", enums.TransactionTypeStockOrders, 100, "500", "2025-01-03")

	rows, err := repo.SalesByItem(ctx, "2025-01-31", 5)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Cardstock", rows[0].ItemName)
	assert.Equal(t, "Glossy paper", rows[1].ItemName)
	assert.Equal(t, "A4 paper", rows[2].ItemName)
	assert.Equal(t, int64(200), rows[2].TotalUnits)
	assert.True(t, rows[2].TotalRevenue.Equal(decimal.NewFromInt(10)))

	limited, err := repo.SalesByItem(ctx, "2025-01-31", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "Cardstock", limited[0].ItemName)
}

func TestRepositoryFindByIDAndRecent(t *testing.T) {
	repo := NewRepository(sqlitetest.Open(t))
	ctx := context.Background()

	first := seedEntry(t, repo, "A4 paper", enums.TransactionTypeStockOrders, 100, "2.5", "2025-01-01")
	second := seedEntry(t, repo, "A4 paper", enums.TransactionTypeSales, 10, "0.5", "2025-01-03")
	future := seedEntry(t, repo, "A4 paper", enums.TransactionTypeStockOrders, 100, "2.5", "2025-03-01")
	assert.Less(t, first.ID, second.ID)

	found, err := repo.FindByID(ctx, second.ID, "2025-01-03")
	require.NoError(t, err)
	assert.Equal(t, "A4 paper", *found.ItemName)
	assert.Equal(t, 10, found.UnitCount())

	_, err = repo.FindByID(ctx, future.ID, "2025-01-31")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	recent, err := repo.ListRecent(ctx, "2025-01-31", 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, second.ID, recent[0].ID)
	assert.Equal(t, first.ID, recent[1].ID)
}

func TestRepositoryMoneySumsAreExact(t *testing.T) {
	repo := NewRepository(sqlitetest.Open(t))
	ctx := context.Background()

	seedEntry(t, repo, "Glossy paper", enums.TransactionTypeSales, 1, "0.1", "2025-03-01")
	seedEntry(t, repo, "Glossy paper", enums.TransactionTypeSales, 2, "0.2", "2025-03-02")
	seedEntry(t, repo, "Glossy paper", enums.TransactionTypeStockOrders, 10, "0.3", "2025-03-02")

	cash, err := repo.SignedCash(ctx, "2025-03-31")
	require.NoError(t, err)
	assert.Equal(t, "0", cash.String())

	revenue, err := repo.SumAmount(ctx, enums.TransactionTypeSales, "2025-03-01", "2025-03-31")
	require.NoError(t, err)
	assert.Equal(t, "0.3", revenue.String())

	rows, err := repo.SalesByItem(ctx, "2025-03-31", 5)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "0.3", rows[0].TotalRevenue.String())
	assert.Equal(t, int64(3), rows[0].TotalUnits)
}
