package repository

import (
	"context"

	"github.com/bitfantasy/barstock/internal/inventory/entity"
	"gorm.io/gorm"
)

type StockCountRepository struct {
	db *gorm.DB
}

func NewStockCountRepository(db *gorm.DB) *StockCountRepository {
	return &StockCountRepository{db: db}
}

// CreateWithItems 快照头和明细行写入同一事务
func (r *StockCountRepository) CreateWithItems(ctx context.Context, count *entity.StockCount, items []entity.StockCountItem) error {
	tx := r.db.WithContext(ctx).Begin()
	if err := tx.Create(count).Error; err != nil {
		tx.Rollback()
		return err
	}
	if len(items) > 0 {
		if err := tx.Create(&items).Error; err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit().Error
}

func (r *StockCountRepository) FindByID(ctx context.Context, id string) (*entity.StockCount, error) {
	var count entity.StockCount
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Beverage").
		Preload("Location").
		First(&count, "id = ?", id).Error
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &count, nil
}

// ListRecentByLocation 某位置最近的快照，新的在前
func (r *StockCountRepository) ListRecentByLocation(ctx context.Context, locationID string, limit int) ([]entity.StockCount, error) {
	var counts []entity.StockCount
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("location_id = ?", locationID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&counts).Error
	return counts, err
}

// ListRecent 全部位置最近的快照
func (r *StockCountRepository) ListRecent(ctx context.Context, limit int) ([]entity.StockCount, error) {
	var counts []entity.StockCount
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Location").
		Order("timestamp DESC").
		Limit(limit).
		Find(&counts).Error
	return counts, err
}
