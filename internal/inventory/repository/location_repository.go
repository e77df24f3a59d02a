package repository

import (
	"context"

	"github.com/bitfantasy/barstock/internal/inventory/entity"
	"gorm.io/gorm"
)

type LocationRepository struct {
	db *gorm.DB
}

func NewLocationRepository(db *gorm.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

func (r *LocationRepository) Create(ctx context.Context, location *entity.Location) error {
	return r.db.WithContext(ctx).Create(location).Error
}

func (r *LocationRepository) FindByID(ctx context.Context, id string) (*entity.Location, error) {
	var location entity.Location
	err := r.db.WithContext(ctx).
		Preload("User").
		First(&location, "id = ?", id).Error
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &location, nil
}

// FindActiveByID 只返回启用中的位置
func (r *LocationRepository) FindActiveByID(ctx context.Context, id string) (*entity.Location, error) {
	var location entity.Location
	err := r.db.WithContext(ctx).
		Preload("User").
		First(&location, "id = ? AND is_active = ?", id, true).Error
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &location, nil
}

func (r *LocationRepository) ListActive(ctx context.Context) ([]entity.Location, error) {
	var locations []entity.Location
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&locations).Error
	return locations, err
}

// ListActiveBeverages 某位置可供的启用酒水，按名字排序
func (r *LocationRepository) ListActiveBeverages(ctx context.Context, locationID string) ([]entity.Beverage, error) {
	var beverages []entity.Beverage
	err := r.db.WithContext(ctx).
		Preload("UnitType").
		Joins("JOIN beverage_locations bl ON bl.beverage_id = beverages.id").
		Where("bl.location_id = ? AND beverages.is_active = ?", locationID, true).
		Order("LOWER(beverages.name) ASC").
		Find(&beverages).Error
	return beverages, err
}

func (r *LocationRepository) Update(ctx context.Context, location *entity.Location) error {
	return r.db.WithContext(ctx).Save(location).Error
}
