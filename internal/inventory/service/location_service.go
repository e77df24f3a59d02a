package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bitfantasy/barstock/internal/inventory/entity"
	"github.com/bitfantasy/barstock/internal/inventory/repository"
)

type LocationService struct {
	locationRepo *repository.LocationRepository
}

func NewLocationService(locationRepo *repository.LocationRepository) *LocationService {
	return &LocationService{locationRepo: locationRepo}
}

func (s *LocationService) ListActive(ctx context.Context) ([]entity.Location, error) {
	return s.locationRepo.ListActive(ctx)
}

func (s *LocationService) Get(ctx context.Context, id string) (*entity.Location, error) {
	return s.locationRepo.FindByID(ctx, id)
}

// GetActive 只取启用中的位置
func (s *LocationService) GetActive(ctx context.Context, id string) (*entity.Location, error) {
	return s.locationRepo.FindActiveByID(ctx, id)
}

type CreateLocationInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func (s *LocationService) Create(ctx context.Context, input *CreateLocationInput) (*entity.Location, error) {
	now := time.Now()
	location := &entity.Location{
		ID:          generateID(),
		Name:        input.Name,
		Description: input.Description,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.locationRepo.Create(ctx, location); err != nil {
		return nil, fmt.Errorf("创建位置失败: %w", err)
	}
	return location, nil
}

type UpdateLocationInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// Update 编辑位置。位置不做硬删除，停用走 is_active
func (s *LocationService) Update(ctx context.Context, id string, input *UpdateLocationInput) (*entity.Location, error) {
	location, err := s.locationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("位置不存在: %w", err)
	}
	if input.Name != nil {
		location.Name = *input.Name
	}
	if input.Description != nil {
		location.Description = *input.Description
	}
	if input.IsActive != nil {
		location.IsActive = *input.IsActive
	}
	location.UpdatedAt = time.Now()
	if err := s.locationRepo.Update(ctx, location); err != nil {
		return nil, fmt.Errorf("更新位置失败: %w", err)
	}
	return location, nil
}
