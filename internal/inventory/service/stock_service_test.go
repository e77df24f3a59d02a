package service

import (
	"context"
	"testing"

	"github.com/bitfantasy/barstock/internal/inventory/repository"
	"github.com/bitfantasy/barstock/internal/inventory/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupStockTest(t *testing.T) (*gorm.DB, *StockService) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	return db, NewStockService(repos.Stock, repos.Location, nil)
}

func TestLocationStocksCreatesMissingRows(t *testing.T) {
	db, svc := setupStockTest(t)
	ctx := context.Background()

	bar := testutil.SeedLocation(t, db, "主吧台", nil)
	bottle := testutil.SeedUnitType(t, db, "BOTTLE", 1)
	tray := testutil.SeedUnitType(t, db, "TRAY_6", 6)
	testutil.SeedBeverage(t, db, "Pils", tray.ID, "0.5", 2, bar)
	testutil.SeedBeverage(t, db, "Cola", bottle.ID, "0.33", 1, bar)

	stocks, err := svc.LocationStocks(ctx, bar.ID)
	require.NoError(t, err)
	require.Len(t, stocks, 2)

	// 缺的行以数量 0 自动建出，并带上酒水和单位
	for i := range stocks {
		assert.True(t, stocks[i].Quantity.IsZero())
		require.NotNil(t, stocks[i].Beverage)
		require.NotNil(t, stocks[i].Beverage.UnitType)
	}
	// 按酒水名排序
	assert.Equal(t, "Cola", stocks[0].Beverage.Name)
	assert.Equal(t, "Pils", stocks[1].Beverage.Name)

	// 再次调用不重复建行
	again, err := svc.LocationStocks(ctx, bar.ID)
	require.NoError(t, err)
	assert.Len(t, again, 2)
	assert.Equal(t, stocks[0].ID, again[0].ID)
}

func TestSetQuantity(t *testing.T) {
	db, svc := setupStockTest(t)
	ctx := context.Background()

	bar := testutil.SeedLocation(t, db, "仓库", nil)
	tray := testutil.SeedUnitType(t, db, "TRAY_6", 6)
	beer := testutil.SeedBeverage(t, db, "Weizen", tray.ID, "0.5", 2, bar)
	stock := testutil.SeedStock(t, db, beer.ID, bar.ID, "4")

	updated, err := svc.SetQuantity(ctx, stock.ID, "2.5", "小王")
	require.NoError(t, err)
	assert.True(t, updated.Quantity.Equal(decimal.RequireFromString("2.5")))
	assert.Equal(t, "小王", updated.UpdatedBy)

	// 数量解析失败报错，库存不动
	_, err = svc.SetQuantity(ctx, stock.ID, "abc", "小王")
	assert.ErrorIs(t, err, ErrBadQuantity)

	kept, err := svc.GetStock(ctx, stock.ID)
	require.NoError(t, err)
	assert.True(t, kept.Quantity.Equal(decimal.RequireFromString("2.5")))
}

func TestAdjustQuantityClampsAtZero(t *testing.T) {
	db, svc := setupStockTest(t)
	ctx := context.Background()

	bar := testutil.SeedLocation(t, db, "地下室", nil)
	bottle := testutil.SeedUnitType(t, db, "BOTTLE", 1)
	gin := testutil.SeedBeverage(t, db, "Gin", bottle.ID, "0.7", 1, bar)
	stock := testutil.SeedStock(t, db, gin.ID, bar.ID, "2")

	// 正常加减
	updated, err := svc.AdjustQuantity(ctx, stock.ID, "1.5", "小李")
	require.NoError(t, err)
	assert.True(t, updated.Quantity.Equal(decimal.RequireFromString("3.5")))

	// 减过头封底为 0，不报错
	updated, err = svc.AdjustQuantity(ctx, stock.ID, "-5", "小李")
	require.NoError(t, err)
	assert.True(t, updated.Quantity.IsZero())

	// 调整量解析失败报错
	_, err = svc.AdjustQuantity(ctx, stock.ID, "1,5", "小李")
	assert.ErrorIs(t, err, ErrBadAdjustment)

	// 写库失败不归入解析错误
	_, err = svc.SetQuantity(ctx, stock.ID, "999999999", "小李")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrBadQuantity)
}

func TestAdjustUnknownStock(t *testing.T) {
	_, svc := setupStockTest(t)

	_, err := svc.AdjustQuantity(context.Background(), "no-such-stock", "1", "小李")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSummary(t *testing.T) {
	db, svc := setupStockTest(t)
	ctx := context.Background()

	bar := testutil.SeedLocation(t, db, "露台", nil)
	tray := testutil.SeedUnitType(t, db, "TRAY_6", 6)
	bottle := testutil.SeedUnitType(t, db, "BOTTLE", 1)
	beer := testutil.SeedBeverage(t, db, "Pils", tray.ID, "0.5", 2, bar)
	rum := testutil.SeedBeverage(t, db, "Rum", bottle.ID, "0.7", 1, bar)
	testutil.SeedStock(t, db, beer.ID, bar.ID, "3")
	testutil.SeedStock(t, db, rum.ID, bar.ID, "2")

	summary, err := svc.Summary(ctx, bar.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.ItemCount)
	// 3×6×0.5 + 2×1×0.7 = 10.4
	assert.True(t, summary.TotalLiters.Equal(decimal.RequireFromString("10.4")), "got %s", summary.TotalLiters)
}
