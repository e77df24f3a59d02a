package entity

import (
	"fmt"
	"strings"
	"time"
)

// Location 存货位置实体（吧台、仓库等）
type Location struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	Name        string    `json:"name" gorm:"size:100;not null"`
	Description string    `json:"description,omitempty" gorm:"type:text"`
	IsActive    bool      `json:"is_active" gorm:"not null;default:true"`
	UserID      *string   `json:"user_id,omitempty" gorm:"size:32;uniqueIndex"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// 关联
	User      *User      `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Beverages []Beverage `json:"beverages,omitempty" gorm:"many2many:beverage_locations;"`
}

func (Location) TableName() string {
	return "locations"
}

// UnitType 计量单位实体（如 Tray、Barrel、Bottle）
type UnitType struct {
	ID         string    `json:"id" gorm:"primaryKey;size:32"`
	Name       string    `json:"name" gorm:"size:100;not null;uniqueIndex:idx_unit_types_name_multiplier"`
	Multiplier int       `json:"multiplier" gorm:"not null;default:1;uniqueIndex:idx_unit_types_name_multiplier"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (UnitType) TableName() string {
	return "unit_types"
}

// DisplayName 展示名，"TRAY_6" 渲染为 "TRAY (6)"
func (u UnitType) DisplayName() string {
	base := u.Name
	if i := strings.Index(base, "_"); i >= 0 {
		base = base[:i]
	}
	if u.Multiplier > 1 {
		return fmt.Sprintf("%s (%d)", base, u.Multiplier)
	}
	return base
}
