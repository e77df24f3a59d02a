package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stock 某酒水在某位置的当前库存，(beverage, location) 唯一
type Stock struct {
	ID          string          `json:"id" gorm:"primaryKey;size:32"`
	BeverageID  string          `json:"beverage_id" gorm:"size:32;not null;uniqueIndex:idx_stocks_beverage_location"`
	LocationID  string          `json:"location_id" gorm:"size:32;not null;uniqueIndex:idx_stocks_beverage_location"`
	Quantity    decimal.Decimal `json:"quantity" gorm:"type:numeric(10,2);not null;default:0"`
	LastUpdated time.Time       `json:"last_updated"`
	UpdatedBy   string          `json:"updated_by" gorm:"size:100"`

	// 关联：随酒水或位置级联删除
	Beverage *Beverage `json:"beverage,omitempty" gorm:"foreignKey:BeverageID;constraint:OnDelete:CASCADE"`
	Location *Location `json:"location,omitempty" gorm:"foreignKey:LocationID;constraint:OnDelete:CASCADE"`
}

func (Stock) TableName() string {
	return "stocks"
}

// Liters 实时升数 = quantity × 单位倍数 × 每单位升数，需预加载 Beverage.UnitType
func (s *Stock) Liters() decimal.Decimal {
	if s.Beverage == nil {
		return decimal.Zero
	}
	return s.Beverage.LitersFor(s.Quantity)
}

// IsLow 低于酒水的告警阈值
func (s *Stock) IsLow() bool {
	if s.Beverage == nil {
		return false
	}
	return s.Quantity.LessThan(decimal.NewFromInt(int64(s.Beverage.AlarmMinimum)))
}

// StockCount 某位置某时刻的库存快照头
type StockCount struct {
	ID         string    `json:"id" gorm:"primaryKey;size:32"`
	LocationID string    `json:"location_id" gorm:"size:32;not null;index"`
	Timestamp  time.Time `json:"timestamp" gorm:"not null;index"`
	CountedBy  string    `json:"counted_by" gorm:"size:100"`
	Notes      string    `json:"notes,omitempty" gorm:"type:text"`

	// 关联
	Location *Location        `json:"location,omitempty" gorm:"foreignKey:LocationID;constraint:OnDelete:CASCADE"`
	Items    []StockCountItem `json:"items,omitempty" gorm:"foreignKey:StockCountID"`
}

func (StockCount) TableName() string {
	return "stock_counts"
}

// TotalLiters 快照总升数，按需求和，不缓存
func (c *StockCount) TotalLiters() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Liters)
	}
	return total
}

// StockCountItem 快照明细行。数量、升数、单位名、每单位升数在采集时
// 冻结，之后酒水或单位定义变更不回填。
type StockCountItem struct {
	ID            string          `json:"id" gorm:"primaryKey;size:32"`
	StockCountID  string          `json:"stock_count_id" gorm:"size:32;not null;index"`
	BeverageID    string          `json:"beverage_id" gorm:"size:32;not null"`
	Quantity      decimal.Decimal `json:"quantity" gorm:"type:numeric(10,2);not null"`
	Liters        decimal.Decimal `json:"liters" gorm:"type:numeric(10,2);not null"`
	UnitTypeName  string          `json:"unit_type_name" gorm:"size:50;not null"`
	LitersPerUnit decimal.Decimal `json:"liters_per_unit" gorm:"type:numeric(10,3);not null"`
	CreatedAt     time.Time       `json:"created_at"`

	// 关联：随快照头级联删除
	StockCount *StockCount `json:"-" gorm:"foreignKey:StockCountID;constraint:OnDelete:CASCADE"`
	Beverage   *Beverage   `json:"beverage,omitempty" gorm:"foreignKey:BeverageID;constraint:OnDelete:CASCADE"`
}

func (StockCountItem) TableName() string {
	return "stock_count_items"
}
