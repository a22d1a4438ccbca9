package inventory

import (
	"context"

	"github.com/angelmondragon/paperledger/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ThresholdRepository manages the per-item reorder floors.
type ThresholdRepository interface {
	WithTx(tx *gorm.DB) ThresholdRepository
	List(ctx context.Context) ([]models.InventoryThreshold, error)
	Find(ctx context.Context, itemName string) (*models.InventoryThreshold, error)
	Upsert(ctx context.Context, thresholds ...models.InventoryThreshold) error
}

type thresholdRepository struct {
	db *gorm.DB
}

// NewThresholdRepository returns a threshold repository bound to the provided database.
func NewThresholdRepository(db *gorm.DB) ThresholdRepository {
	return &thresholdRepository{db: db}
}

func (r *thresholdRepository) WithTx(tx *gorm.DB) ThresholdRepository {
	if tx == nil {
		return r
	}
	return &thresholdRepository{db: tx}
}

func (r *thresholdRepository) List(ctx context.Context) ([]models.InventoryThreshold, error) {
	var rows []models.InventoryThreshold
	if err := r.db.WithContext(ctx).Order("item_name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *thresholdRepository) Find(ctx context.Context, itemName string) (*models.InventoryThreshold, error) {
	var row models.InventoryThreshold
	if err := r.db.WithContext(ctx).Where("item_name = ?", itemName).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Upsert is the reseeding path; it replaces the floor of existing items.
func (r *thresholdRepository) Upsert(ctx context.Context, thresholds ...models.InventoryThreshold) error {
	if len(thresholds) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "item_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"min_stock_level"}),
	}).Create(&thresholds).Error
}
