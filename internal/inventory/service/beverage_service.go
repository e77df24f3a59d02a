package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bitfantasy/barstock/internal/inventory/entity"
	"github.com/bitfantasy/barstock/internal/inventory/repository"
	"github.com/shopspring/decimal"
)

type BeverageService struct {
	beverageRepo *repository.BeverageRepository
	unitTypeRepo *repository.UnitTypeRepository
	locationRepo *repository.LocationRepository
}

func NewBeverageService(beverageRepo *repository.BeverageRepository, unitTypeRepo *repository.UnitTypeRepository, locationRepo *repository.LocationRepository) *BeverageService {
	return &BeverageService{beverageRepo: beverageRepo, unitTypeRepo: unitTypeRepo, locationRepo: locationRepo}
}

// ========== UnitType ==========

func (s *BeverageService) ListUnitTypes(ctx context.Context) ([]entity.UnitType, error) {
	return s.unitTypeRepo.List(ctx)
}

type CreateUnitTypeInput struct {
	Name       string `json:"name" binding:"required"`
	Multiplier int    `json:"multiplier"`
}

func (s *BeverageService) CreateUnitType(ctx context.Context, input *CreateUnitTypeInput) (*entity.UnitType, error) {
	multiplier := input.Multiplier
	if multiplier < 1 {
		multiplier = 1
	}
	now := time.Now()
	unitType := &entity.UnitType{
		ID:         generateID(),
		Name:       input.Name,
		Multiplier: multiplier,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.unitTypeRepo.Create(ctx, unitType); err != nil {
		return nil, fmt.Errorf("创建单位失败: %w", err)
	}
	return unitType, nil
}

// DeleteUnitType 被酒水引用的单位禁止删除
func (s *BeverageService) DeleteUnitType(ctx context.Context, id string) error {
	count, err := s.unitTypeRepo.CountBeverages(ctx, id)
	if err != nil {
		return fmt.Errorf("检查单位引用失败: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("该单位被 %d 个酒水引用，不能删除", count)
	}
	return s.unitTypeRepo.Delete(ctx, id)
}

// ========== Beverage ==========

func (s *BeverageService) ListActive(ctx context.Context) ([]entity.Beverage, error) {
	return s.beverageRepo.ListActive(ctx)
}

func (s *BeverageService) Get(ctx context.Context, id string) (*entity.Beverage, error) {
	return s.beverageRepo.FindByID(ctx, id)
}

type CreateBeverageInput struct {
	Name          string   `json:"name" binding:"required"`
	Description   string   `json:"description"`
	UnitTypeID    string   `json:"unit_type_id" binding:"required"`
	LitersPerUnit string   `json:"liters_per_unit" binding:"required"`
	AlarmMinimum  int      `json:"alarm_minimum"`
	Color         string   `json:"color"`
	LocationIDs   []string `json:"location_ids"`
}

func (s *BeverageService) Create(ctx context.Context, input *CreateBeverageInput) (*entity.Beverage, error) {
	litersPerUnit, err := decimal.NewFromString(input.LitersPerUnit)
	if err != nil {
		return nil, fmt.Errorf("每单位升数格式不正确: %w", err)
	}
	if litersPerUnit.IsNegative() {
		return nil, fmt.Errorf("每单位升数不能为负")
	}

	if _, err := s.unitTypeRepo.FindByID(ctx, input.UnitTypeID); err != nil {
		return nil, fmt.Errorf("单位不存在: %w", err)
	}

	alarmMinimum := input.AlarmMinimum
	if alarmMinimum < 0 {
		alarmMinimum = 0
	}
	color := input.Color
	if color == "" {
		color = entity.DefaultColor
	}

	now := time.Now()
	beverage := &entity.Beverage{
		ID:            generateID(),
		Name:          input.Name,
		Description:   input.Description,
		UnitTypeID:    input.UnitTypeID,
		LitersPerUnit: litersPerUnit,
		AlarmMinimum:  alarmMinimum,
		Color:         color,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.beverageRepo.Create(ctx, beverage); err != nil {
		return nil, fmt.Errorf("创建酒水失败: %w", err)
	}

	if len(input.LocationIDs) > 0 {
		if err := s.assignLocations(ctx, beverage, input.LocationIDs); err != nil {
			return nil, err
		}
	}
	return s.beverageRepo.FindByID(ctx, beverage.ID)
}

type UpdateBeverageInput struct {
	Name          *string   `json:"name"`
	Description   *string   `json:"description"`
	UnitTypeID    *string   `json:"unit_type_id"`
	LitersPerUnit *string   `json:"liters_per_unit"`
	AlarmMinimum  *int      `json:"alarm_minimum"`
	Color         *string   `json:"color"`
	IsActive      *bool     `json:"is_active"`
	LocationIDs   *[]string `json:"location_ids"`
}

func (s *BeverageService) Update(ctx context.Context, id string, input *UpdateBeverageInput) (*entity.Beverage, error) {
	beverage, err := s.beverageRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("酒水不存在: %w", err)
	}
	if input.Name != nil {
		beverage.Name = *input.Name
	}
	if input.Description != nil {
		beverage.Description = *input.Description
	}
	if input.UnitTypeID != nil {
		if _, err := s.unitTypeRepo.FindByID(ctx, *input.UnitTypeID); err != nil {
			return nil, fmt.Errorf("单位不存在: %w", err)
		}
		beverage.UnitTypeID = *input.UnitTypeID
	}
	if input.LitersPerUnit != nil {
		litersPerUnit, err := decimal.NewFromString(*input.LitersPerUnit)
		if err != nil {
			return nil, fmt.Errorf("每单位升数格式不正确: %w", err)
		}
		if litersPerUnit.IsNegative() {
			return nil, fmt.Errorf("每单位升数不能为负")
		}
		beverage.LitersPerUnit = litersPerUnit
	}
	if input.AlarmMinimum != nil {
		beverage.AlarmMinimum = *input.AlarmMinimum
	}
	if input.Color != nil {
		beverage.Color = *input.Color
	}
	if input.IsActive != nil {
		beverage.IsActive = *input.IsActive
	}
	beverage.UpdatedAt = time.Now()
	if err := s.beverageRepo.Update(ctx, beverage); err != nil {
		return nil, fmt.Errorf("更新酒水失败: %w", err)
	}

	if input.LocationIDs != nil {
		if err := s.assignLocations(ctx, beverage, *input.LocationIDs); err != nil {
			return nil, err
		}
	}
	return s.beverageRepo.FindByID(ctx, beverage.ID)
}

func (s *BeverageService) assignLocations(ctx context.Context, beverage *entity.Beverage, locationIDs []string) error {
	locations := make([]entity.Location, 0, len(locationIDs))
	for _, locationID := range locationIDs {
		location, err := s.locationRepo.FindByID(ctx, locationID)
		if err != nil {
			return fmt.Errorf("位置不存在: %w", err)
		}
		locations = append(locations, *location)
	}
	if err := s.beverageRepo.ReplaceLocations(ctx, beverage, locations); err != nil {
		return fmt.Errorf("设置可供位置失败: %w", err)
	}
	return nil
}
