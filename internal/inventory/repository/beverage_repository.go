package repository

import (
	"context"

	"github.com/bitfantasy/barstock/internal/inventory/entity"
	"gorm.io/gorm"
)

type UnitTypeRepository struct {
	db *gorm.DB
}

func NewUnitTypeRepository(db *gorm.DB) *UnitTypeRepository {
	return &UnitTypeRepository{db: db}
}

func (r *UnitTypeRepository) Create(ctx context.Context, unitType *entity.UnitType) error {
	return r.db.WithContext(ctx).Create(unitType).Error
}

func (r *UnitTypeRepository) FindByID(ctx context.Context, id string) (*entity.UnitType, error) {
	var unitType entity.UnitType
	err := r.db.WithContext(ctx).First(&unitType, "id = ?", id).Error
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &unitType, nil
}

func (r *UnitTypeRepository) List(ctx context.Context) ([]entity.UnitType, error) {
	var unitTypes []entity.UnitType
	err := r.db.WithContext(ctx).
		Order("name ASC, multiplier ASC").
		Find(&unitTypes).Error
	return unitTypes, err
}

// CountBeverages 引用该单位的酒水数，删除前检查
func (r *UnitTypeRepository) CountBeverages(ctx context.Context, unitTypeID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Beverage{}).
		Where("unit_type_id = ?", unitTypeID).
		Count(&count).Error
	return count, err
}

func (r *UnitTypeRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&entity.UnitType{}, "id = ?", id).Error
}

type BeverageRepository struct {
	db *gorm.DB
}

func NewBeverageRepository(db *gorm.DB) *BeverageRepository {
	return &BeverageRepository{db: db}
}

func (r *BeverageRepository) Create(ctx context.Context, beverage *entity.Beverage) error {
	return r.db.WithContext(ctx).Create(beverage).Error
}

func (r *BeverageRepository) FindByID(ctx context.Context, id string) (*entity.Beverage, error) {
	var beverage entity.Beverage
	err := r.db.WithContext(ctx).
		Preload("UnitType").
		Preload("Locations").
		First(&beverage, "id = ?", id).Error
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &beverage, nil
}

func (r *BeverageRepository) ListActive(ctx context.Context) ([]entity.Beverage, error) {
	var beverages []entity.Beverage
	err := r.db.WithContext(ctx).
		Preload("UnitType").
		Where("is_active = ?", true).
		Order("LOWER(name) ASC").
		Find(&beverages).Error
	return beverages, err
}

func (r *BeverageRepository) Update(ctx context.Context, beverage *entity.Beverage) error {
	return r.db.WithContext(ctx).Save(beverage).Error
}

// ReplaceLocations 重设酒水的可供位置
func (r *BeverageRepository) ReplaceLocations(ctx context.Context, beverage *entity.Beverage, locations []entity.Location) error {
	return r.db.WithContext(ctx).Model(beverage).Association("Locations").Replace(locations)
}
