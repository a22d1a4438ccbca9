package quotes

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/angelmondragon/paperledger/pkg/db/models"
	"github.com/angelmondragon/paperledger/pkg/db/sqlitetest"
	pkgerrors "github.com/angelmondragon/paperledger/pkg/errors"
	"github.com/angelmondragon/paperledger/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedQuote(t *testing.T, conn *gorm.DB, id int64, request, explanation, orderDate string) {
	t.Helper()
	require.NoError(t, conn.Create(&models.QuoteRequest{ID: id, Response: request}).Error)
	require.NoError(t, conn.Create(&models.Quote{
		RequestID:        id,
		TotalAmount:      decimal.NewFromInt(id * 10),
		QuoteExplanation: explanation,
		JobType:          "office manager",
		OrderSize:        "small",
		EventType:        "ceremony",
		OrderDate:        orderDate,
	}).Error)
}

func newSearchService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := sqlitetest.Open(t)
	svc, err := NewService(NewRepository(conn), logger.Nop())
	require.NoError(t, err)
	return svc, conn
}

func TestSearchRequiresEveryTerm(t *testing.T) {
	svc, conn := newSearchService(t)
	seedQuote(t, conn, 1, "I need Glossy paper and poster board", "Quote for glossy paper", "2025-01-10")
	seedQuote(t, conn, 2, "Need glossy paper only", "Glossy paper quote", "2025-01-11")
	seedQuote(t, conn, 3, "Poster paper please", "Thanks for the POSTER order", "2025-01-12")

	rows, err := svc.Search(context.Background(), []string{"GLOSSY", "poster"}, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "I need Glossy paper and poster board", rows[0].OriginalRequest)
	assert.True(t, rows[0].TotalAmount.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, "office manager", rows[0].JobType)
}

func TestSearchMatchesExplanationText(t *testing.T) {
	svc, conn := newSearchService(t)
	seedQuote(t, conn, 1, "Supplies for a party", "Includes 500 sheets of cardstock", "2025-02-01")

	rows, err := svc.Search(context.Background(), []string{"cardstock"}, 5)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2025-02-01", rows[0].OrderDate)
}

func TestSearchTreatsWildcardsLiterally(t *testing.T) {
	svc, conn := newSearchService(t)
	seedQuote(t, conn, 1, "100% recycled paper", "recycled", "2025-01-01")
	seedQuote(t, conn, 2, "1000 sheets of recycled paper", "recycled", "2025-01-02")
	seedQuote(t, conn, 3, "letter_size stock", "letter", "2025-01-03")
	seedQuote(t, conn, 4, "letterXsize stock", "letter", "2025-01-04")

	rows, err := svc.Search(context.Background(), []string{"100%"}, 5)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "100% recycled paper", rows[0].OriginalRequest)

	rows, err = svc.Search(context.Background(), []string{"letter_size"}, 5)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "letter_size stock", rows[0].OriginalRequest)
}

func TestSearchOrdersMostRecentFirstAndLimits(t *testing.T) {
	svc, conn := newSearchService(t)
	for i := int64(1); i <= 7; i++ {
		seedQuote(t, conn, i, fmt.Sprintf("A4 paper request %d", i), "A4 paper", fmt.Sprintf("2025-01-%02d", i))
	}

	rows, err := svc.Search(context.Background(), []string{"a4"}, 0)
	require.NoError(t, err)
	require.Len(t, rows, DefaultLimit)
	assert.Equal(t, "2025-01-07", rows[0].OrderDate)
	assert.Equal(t, "2025-01-03", rows[4].OrderDate)

	rows, err = svc.Search(context.Background(), nil, 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2025-01-07", rows[0].OrderDate)
}

func TestSearchNoMatchesReturnsEmptySlice(t *testing.T) {
	svc, conn := newSearchService(t)
	seedQuote(t, conn, 1, "Cardstock", "Cardstock", "2025-01-01")

	rows, err := svc.Search(context.Background(), []string{"banner"}, 5)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

type failingRepository struct{ Repository }

func (failingRepository) Search(ctx context.Context, terms []string, limit int) ([]Match, error) {
	return nil, errors.New("no such table: quotes")
}

func TestSearchFailureIsPersistenceError(t *testing.T) {
	svc, err := NewService(failingRepository{}, logger.Nop())
	require.NoError(t, err)

	_, err = svc.Search(context.Background(), []string{"a4"}, 5)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodePersistence), "got %v", err)
}
