package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultColor 图表默认颜色
const DefaultColor = "rgb(54, 162, 235)"

// Beverage 酒水实体
type Beverage struct {
	ID            string          `json:"id" gorm:"primaryKey;size:32"`
	Name          string          `json:"name" gorm:"size:100;not null"`
	Description   string          `json:"description,omitempty" gorm:"type:text"`
	UnitTypeID    string          `json:"unit_type_id" gorm:"size:32;not null"`
	LitersPerUnit decimal.Decimal `json:"liters_per_unit" gorm:"type:numeric(10,3);not null;default:0"`
	AlarmMinimum  int             `json:"alarm_minimum" gorm:"not null;default:1"`
	Color         string          `json:"color" gorm:"size:20;not null;default:'rgb(54, 162, 235)'"`
	IsActive      bool            `json:"is_active" gorm:"not null;default:true"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	// 关联：单位被酒水引用时禁止删除
	UnitType  *UnitType  `json:"unit_type,omitempty" gorm:"foreignKey:UnitTypeID;constraint:OnDelete:RESTRICT"`
	Locations []Location `json:"locations,omitempty" gorm:"many2many:beverage_locations;"`
}

func (Beverage) TableName() string {
	return "beverages"
}

// LitersFor 按当前单位换算 quantity 个单位对应的升数
func (b *Beverage) LitersFor(quantity decimal.Decimal) decimal.Decimal {
	if b.UnitType == nil {
		return decimal.Zero
	}
	return quantity.
		Mul(decimal.NewFromInt(int64(b.UnitType.Multiplier))).
		Mul(b.LitersPerUnit)
}
