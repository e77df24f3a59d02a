package repository

import (
	"context"

	"github.com/bitfantasy/barstock/internal/inventory/entity"
	"gorm.io/gorm"
)

type OperationLogRepository struct {
	db *gorm.DB
}

func NewOperationLogRepository(db *gorm.DB) *OperationLogRepository {
	return &OperationLogRepository{db: db}
}

func (r *OperationLogRepository) Create(ctx context.Context, log *entity.OperationLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// ListByModule 按模块查最近的审计记录
func (r *OperationLogRepository) ListByModule(ctx context.Context, module string, limit int) ([]entity.OperationLog, error) {
	var logs []entity.OperationLog
	err := r.db.WithContext(ctx).
		Where("module = ?", module).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
