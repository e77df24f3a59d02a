package repository

import (
	"errors"

	"gorm.io/gorm"
)

// 错误定义
var (
	ErrNotFound = errors.New("record not found")
)

// Repositories 仓库集合
type Repositories struct {
	User         *UserRepository
	Location     *LocationRepository
	UnitType     *UnitTypeRepository
	Beverage     *BeverageRepository
	Stock        *StockRepository
	StockCount   *StockCountRepository
	OperationLog *OperationLogRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Location:     NewLocationRepository(db),
		UnitType:     NewUnitTypeRepository(db),
		Beverage:     NewBeverageRepository(db),
		Stock:        NewStockRepository(db),
		StockCount:   NewStockCountRepository(db),
		OperationLog: NewOperationLogRepository(db),
	}
}

func wrapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
