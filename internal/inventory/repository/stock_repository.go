package repository

import (
	"context"
	"time"

	"github.com/bitfantasy/barstock/internal/inventory/entity"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StockRepository struct {
	db *gorm.DB
}

func NewStockRepository(db *gorm.DB) *StockRepository {
	return &StockRepository{db: db}
}

func (r *StockRepository) FindByID(ctx context.Context, id string) (*entity.Stock, error) {
	var stock entity.Stock
	err := r.db.WithContext(ctx).
		Preload("Beverage").
		Preload("Beverage.UnitType").
		Preload("Location").
		First(&stock, "id = ?", id).Error
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &stock, nil
}

// GetOrCreate 取回 (beverage, location) 的库存行，不存在则以数量 0 建行。
// 并发建行走 ON CONFLICT DO NOTHING 再回读，唯一约束冲突不再外泄。
func (r *StockRepository) GetOrCreate(ctx context.Context, beverageID, locationID string) (*entity.Stock, error) {
	stock := &entity.Stock{
		ID:          uuid.New().String()[:32],
		BeverageID:  beverageID,
		LocationID:  locationID,
		Quantity:    decimal.Zero,
		LastUpdated: time.Now(),
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "beverage_id"}, {Name: "location_id"}},
			DoNothing: true,
		}).
		Create(stock).Error
	if err != nil {
		return nil, err
	}

	var existing entity.Stock
	err = r.db.WithContext(ctx).
		Preload("Beverage").
		Preload("Beverage.UnitType").
		First(&existing, "beverage_id = ? AND location_id = ?", beverageID, locationID).Error
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &existing, nil
}

// ListByLocation 某位置启用酒水的库存行
func (r *StockRepository) ListByLocation(ctx context.Context, locationID string) ([]entity.Stock, error) {
	var stocks []entity.Stock
	err := r.db.WithContext(ctx).
		Preload("Beverage").
		Preload("Beverage.UnitType").
		Joins("JOIN beverages b ON b.id = stocks.beverage_id").
		Where("stocks.location_id = ? AND b.is_active = ?", locationID, true).
		Order("LOWER(b.name) ASC").
		Find(&stocks).Error
	return stocks, err
}

func (r *StockRepository) Update(ctx context.Context, stock *entity.Stock) error {
	return r.db.WithContext(ctx).Save(stock).Error
}
