package quotes

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Match is one historical quote joined with the request it answered.
type Match struct {
	OriginalRequest  string          `gorm:"column:original_request" json:"original_request"`
	TotalAmount      decimal.Decimal `gorm:"column:total_amount" json:"total_amount"`
	QuoteExplanation string          `gorm:"column:quote_explanation" json:"quote_explanation"`
	JobType          string          `gorm:"column:job_type" json:"job_type"`
	OrderSize        string          `gorm:"column:order_size" json:"order_size"`
	EventType        string          `gorm:"column:event_type" json:"event_type"`
	OrderDate        string          `gorm:"column:order_date" json:"order_date"`
}

// Repository reads the historical quote reference tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Search(ctx context.Context, terms []string, limit int) ([]Match, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern lowercases term and escapes LIKE wildcards so it matches literally.
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}

func (r *repository) Search(ctx context.Context, terms []string, limit int) ([]Match, error) {
	query := r.db.WithContext(ctx).
		Table("quotes AS q").
		Select(`qr.response AS original_request,
	q.total_amount,
	q.quote_explanation,
	q.job_type,
	q.order_size,
	q.event_type,
	q.order_date`).
		Joins("JOIN quote_requests AS qr ON q.request_id = qr.id")

	for _, term := range terms {
		pattern := likePattern(term)
		query = query.Where(`(LOWER(qr.response) LIKE ? ESCAPE '\' OR LOWER(q.quote_explanation) LIKE ? ESCAPE '\')`, pattern, pattern)
	}

	var rows []Match
	if err := query.Order("q.order_date DESC").Order("q.id DESC").Limit(limit).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
