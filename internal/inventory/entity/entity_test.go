package entity

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestBeverageLitersFor(t *testing.T) {
	tray := &UnitType{Name: "TRAY_6", Multiplier: 6}
	beer := &Beverage{
		Name:          "Pils",
		LitersPerUnit: decimal.RequireFromString("0.5"),
		UnitType:      tray,
	}

	// 3 托 × 6 瓶 × 0.5 升 = 9 升
	liters := beer.LitersFor(decimal.NewFromInt(3))
	assert.True(t, liters.Equal(decimal.RequireFromString("9")), "got %s", liters)

	// 单位未加载时不换算
	beer.UnitType = nil
	assert.True(t, beer.LitersFor(decimal.NewFromInt(3)).IsZero())
}

func TestStockLiters(t *testing.T) {
	stock := &Stock{
		Quantity: decimal.RequireFromString("2.5"),
		Beverage: &Beverage{
			LitersPerUnit: decimal.RequireFromString("0.7"),
			UnitType:      &UnitType{Name: "BOTTLE", Multiplier: 1},
		},
	}
	assert.True(t, stock.Liters().Equal(decimal.RequireFromString("1.75")))

	// 酒水未加载时升数为 0
	stock.Beverage = nil
	assert.True(t, stock.Liters().IsZero())
}

func TestStockIsLow(t *testing.T) {
	beverage := &Beverage{AlarmMinimum: 3}

	low := &Stock{Quantity: decimal.NewFromInt(2), Beverage: beverage}
	assert.True(t, low.IsLow())

	exact := &Stock{Quantity: decimal.NewFromInt(3), Beverage: beverage}
	assert.False(t, exact.IsLow(), "quantity at the threshold is not low")

	unloaded := &Stock{Quantity: decimal.Zero}
	assert.False(t, unloaded.IsLow())
}

func TestUnitTypeDisplayName(t *testing.T) {
	cases := []struct {
		name       string
		multiplier int
		want       string
	}{
		{"TRAY_6", 6, "TRAY (6)"},
		{"BARREL", 1, "BARREL"},
		{"BOTTLE", 1, "BOTTLE"},
		{"CRATE_24", 24, "CRATE (24)"},
	}
	for _, c := range cases {
		u := UnitType{Name: c.name, Multiplier: c.multiplier}
		assert.Equal(t, c.want, u.DisplayName())
	}
}

func TestStockCountTotalLiters(t *testing.T) {
	count := &StockCount{
		Items: []StockCountItem{
			{Liters: decimal.RequireFromString("9")},
			{Liters: decimal.RequireFromString("1.75")},
			{Liters: decimal.Zero},
		},
	}
	assert.True(t, count.TotalLiters().Equal(decimal.RequireFromString("10.75")))

	empty := &StockCount{}
	assert.True(t, empty.TotalLiters().IsZero())
}
