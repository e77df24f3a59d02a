package service

import (
	"github.com/bitfantasy/barstock/internal/config"
	"github.com/bitfantasy/barstock/internal/inventory/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Services 服务集合
type Services struct {
	Auth     *AuthService
	Stock    *StockService
	Count    *CountService
	Location *LocationService
	Beverage *BeverageService
}

// NewServices 创建服务集合
func NewServices(repos *repository.Repositories, rdb *redis.Client, cfg *config.Config, logger *zap.Logger) *Services {
	return &Services{
		Auth:     NewAuthService(repos.User, repos.Location, repos.OperationLog, cfg, logger),
		Stock:    NewStockService(repos.Stock, repos.Location, rdb),
		Count:    NewCountService(repos.StockCount, repos.Stock, repos.Location),
		Location: NewLocationService(repos.Location),
		Beverage: NewBeverageService(repos.Beverage, repos.UnitType, repos.Location),
	}
}

// Helper functions
func generateID() string {
	return uuid.New().String()[:32]
}
