package service

import (
	"context"
	"testing"

	"github.com/bitfantasy/barstock/internal/inventory/entity"
	"github.com/bitfantasy/barstock/internal/inventory/repository"
	"github.com/bitfantasy/barstock/internal/inventory/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCountTest(t *testing.T) (*gorm.DB, *CountService) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	return db, NewCountService(repos.StockCount, repos.Stock, repos.Location)
}

func TestSaveCountFreezesValues(t *testing.T) {
	db, countSvc := setupCountTest(t)
	ctx := context.Background()

	bar := testutil.SeedLocation(t, db, "主吧台", nil)
	tray := testutil.SeedUnitType(t, db, "TRAY_6", 6)
	beer := testutil.SeedBeverage(t, db, "Pils", tray.ID, "0.5", 2, bar)
	testutil.SeedStock(t, db, beer.ID, bar.ID, "3")

	count, err := countSvc.SaveCount(ctx, bar.ID, "小王", "周末盘点")
	require.NoError(t, err)
	require.Len(t, count.Items, 1)

	item := count.Items[0]
	assert.True(t, item.Quantity.Equal(decimal.NewFromInt(3)))
	assert.True(t, item.Liters.Equal(decimal.NewFromInt(9)), "got %s", item.Liters)
	assert.Equal(t, "TRAY (6)", item.UnitTypeName)
	assert.True(t, item.LitersPerUnit.Equal(decimal.RequireFromString("0.5")))
	assert.True(t, count.TotalLiters().Equal(decimal.NewFromInt(9)))

	// 之后改酒水定义，已存的明细不回填
	require.NoError(t, db.Model(&entity.Beverage{}).Where("id = ?", beer.ID).
		Update("liters_per_unit", "0.33").Error)

	reloaded, err := countSvc.RecentCounts(ctx, bar.ID, 10)
	require.NoError(t, err)
	require.Len(t, reloaded, 1)
	require.Len(t, reloaded[0].Items, 1)
	assert.True(t, reloaded[0].Items[0].Liters.Equal(decimal.NewFromInt(9)))
	assert.True(t, reloaded[0].Items[0].LitersPerUnit.Equal(decimal.RequireFromString("0.5")))
}

func TestSaveCountInactiveLocation(t *testing.T) {
	db, countSvc := setupCountTest(t)

	bar := testutil.SeedLocation(t, db, "停业吧台", nil)
	require.NoError(t, db.Model(&entity.Location{}).Where("id = ?", bar.ID).
		Update("is_active", false).Error)

	_, err := countSvc.SaveCount(context.Background(), bar.ID, "小王", "")
	assert.Error(t, err)
}

func TestChartData(t *testing.T) {
	db, countSvc := setupCountTest(t)
	ctx := context.Background()

	bar := testutil.SeedLocation(t, db, "主吧台", nil)
	tray := testutil.SeedUnitType(t, db, "TRAY_6", 6)
	beer := testutil.SeedBeverage(t, db, "Pils", tray.ID, "0.5", 2, bar)
	stock := testutil.SeedStock(t, db, beer.ID, bar.ID, "3")

	_, err := countSvc.SaveCount(ctx, bar.ID, "小王", "第一次")
	require.NoError(t, err)

	require.NoError(t, db.Model(&entity.Stock{}).Where("id = ?", stock.ID).
		Update("quantity", "5").Error)
	_, err = countSvc.SaveCount(ctx, bar.ID, "小王", "第二次")
	require.NoError(t, err)

	// 晚加入的酒水，第一二次快照里没有它
	bottle := testutil.SeedUnitType(t, db, "BOTTLE", 1)
	rum := testutil.SeedBeverage(t, db, "Rum", bottle.ID, "0.7", 1, bar)
	testutil.SeedStock(t, db, rum.ID, bar.ID, "2")
	_, err = countSvc.SaveCount(ctx, bar.ID, "小王", "第三次")
	require.NoError(t, err)

	counts, err := countSvc.RecentCounts(ctx, bar.ID, 10)
	require.NoError(t, err)
	require.Len(t, counts, 3)

	chart, err := countSvc.ChartData(ctx, bar.ID, counts)
	require.NoError(t, err)
	require.Len(t, chart, 2)

	beerSeries := chart[beer.ID]
	require.NotNil(t, beerSeries)
	// 序列按时间旧到新
	assert.Equal(t, []float64{3, 5, 5}, beerSeries.Data)
	assert.Len(t, beerSeries.Labels, 3)
	assert.Equal(t, 2, beerSeries.AlarmMinimum)
	assert.Equal(t, entity.DefaultColor, beerSeries.Color)

	// 晚加入的酒水历史补 0
	rumSeries := chart[rum.ID]
	require.NotNil(t, rumSeries)
	assert.Equal(t, []float64{0, 0, 2}, rumSeries.Data)

	// 没有快照时没有图
	empty, err := countSvc.ChartData(ctx, bar.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, empty)
}

func TestExportCounts(t *testing.T) {
	db, countSvc := setupCountTest(t)
	ctx := context.Background()

	bar := testutil.SeedLocation(t, db, "主吧台", nil)
	tray := testutil.SeedUnitType(t, db, "TRAY_6", 6)
	beer := testutil.SeedBeverage(t, db, "Pils", tray.ID, "0.5", 2, bar)
	testutil.SeedStock(t, db, beer.ID, bar.ID, "3")

	_, err := countSvc.SaveCount(ctx, bar.ID, "小王", "导出测试")
	require.NoError(t, err)

	f, filename, err := countSvc.ExportCounts(ctx, bar.ID)
	require.NoError(t, err)
	assert.Contains(t, filename, ".xlsx")

	rows, err := f.GetRows("盘点历史")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"时间", "盘点人", "备注", "总升数", "Pils"}, rows[0])
	assert.Equal(t, "小王", rows[1][1])
}
