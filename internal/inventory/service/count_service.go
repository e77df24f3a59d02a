package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bitfantasy/barstock/internal/inventory/entity"
	"github.com/bitfantasy/barstock/internal/inventory/repository"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

type CountService struct {
	countRepo    *repository.StockCountRepository
	stockRepo    *repository.StockRepository
	locationRepo *repository.LocationRepository
}

func NewCountService(countRepo *repository.StockCountRepository, stockRepo *repository.StockRepository, locationRepo *repository.LocationRepository) *CountService {
	return &CountService{countRepo: countRepo, stockRepo: stockRepo, locationRepo: locationRepo}
}

// SaveCount 把某位置当前库存固化为一条快照。明细行冻结采集瞬间的
// 数量、升数和单位信息。
func (s *CountService) SaveCount(ctx context.Context, locationID, countedBy, notes string) (*entity.StockCount, error) {
	location, err := s.locationRepo.FindActiveByID(ctx, locationID)
	if err != nil {
		return nil, fmt.Errorf("位置不存在: %w", err)
	}

	stocks, err := s.stockRepo.ListByLocation(ctx, location.ID)
	if err != nil {
		return nil, fmt.Errorf("获取库存失败: %w", err)
	}

	now := time.Now()
	count := &entity.StockCount{
		ID:         generateID(),
		LocationID: location.ID,
		Timestamp:  now,
		CountedBy:  countedBy,
		Notes:      notes,
	}

	items := make([]entity.StockCountItem, len(stocks))
	for i := range stocks {
		stock := &stocks[i]
		items[i] = entity.StockCountItem{
			ID:            generateID(),
			StockCountID:  count.ID,
			BeverageID:    stock.BeverageID,
			Quantity:      stock.Quantity,
			Liters:        stock.Liters(),
			UnitTypeName:  stock.Beverage.UnitType.DisplayName(),
			LitersPerUnit: stock.Beverage.LitersPerUnit,
			CreatedAt:     now,
		}
	}

	if err := s.countRepo.CreateWithItems(ctx, count, items); err != nil {
		return nil, fmt.Errorf("保存盘点失败: %w", err)
	}
	count.Items = items
	return count, nil
}

// RecentCounts 某位置最近的快照（传空 locationID 查全部位置）
func (s *CountService) RecentCounts(ctx context.Context, locationID string, limit int) ([]entity.StockCount, error) {
	if locationID == "" {
		return s.countRepo.ListRecent(ctx, limit)
	}
	return s.countRepo.ListRecentByLocation(ctx, locationID, limit)
}

// BeverageSeries 单个酒水的图表序列
type BeverageSeries struct {
	Labels        []string  `json:"labels"`
	Data          []float64 `json:"data"`
	AlarmMinimum  int       `json:"alarm_minimum"`
	Color         string    `json:"color"`
	LitersPerUnit float64   `json:"liters_per_unit"`
}

// ChartData 按酒水展开快照序列。counts 按新到旧传入，序列按旧到新输出；
// 某次快照里没有的酒水补 0（晚加入的酒水历史为 0）。
func (s *CountService) ChartData(ctx context.Context, locationID string, counts []entity.StockCount) (map[string]*BeverageSeries, error) {
	if len(counts) == 0 {
		return nil, nil
	}

	beverages, err := s.locationRepo.ListActiveBeverages(ctx, locationID)
	if err != nil {
		return nil, fmt.Errorf("获取酒水列表失败: %w", err)
	}

	chart := make(map[string]*BeverageSeries, len(beverages))
	for _, beverage := range beverages {
		series := &BeverageSeries{
			Labels:        make([]string, 0, len(counts)),
			Data:          make([]float64, 0, len(counts)),
			AlarmMinimum:  beverage.AlarmMinimum,
			Color:         beverage.Color,
			LitersPerUnit: beverage.LitersPerUnit.InexactFloat64(),
		}
		// 倒序得到时间正序（旧到新）
		for i := len(counts) - 1; i >= 0; i-- {
			count := &counts[i]
			quantity := 0.0
			for j := range count.Items {
				if count.Items[j].BeverageID == beverage.ID {
					quantity = count.Items[j].Quantity.InexactFloat64()
					break
				}
			}
			// ISO 格式带时区，前端不再猜
			series.Labels = append(series.Labels, count.Timestamp.Format(time.RFC3339))
			series.Data = append(series.Data, quantity)
		}
		chart[beverage.ID] = series
	}
	return chart, nil
}

var countExportHeaders = []string{"时间", "盘点人", "备注", "总升数"}

// ExportCounts 导出某位置的盘点历史为 xlsx，固定列后面跟每个酒水一列
func (s *CountService) ExportCounts(ctx context.Context, locationID string) (*excelize.File, string, error) {
	location, err := s.locationRepo.FindActiveByID(ctx, locationID)
	if err != nil {
		return nil, "", fmt.Errorf("位置不存在: %w", err)
	}

	counts, err := s.countRepo.ListRecentByLocation(ctx, location.ID, 100)
	if err != nil {
		return nil, "", fmt.Errorf("获取盘点历史失败: %w", err)
	}
	beverages, err := s.locationRepo.ListActiveBeverages(ctx, location.ID)
	if err != nil {
		return nil, "", fmt.Errorf("获取酒水列表失败: %w", err)
	}

	f := excelize.NewFile()
	sheet := "盘点历史"
	f.SetSheetName("Sheet1", sheet)

	// 表头样式: 加粗
	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	headers := make([]string, 0, len(countExportHeaders)+len(beverages))
	headers = append(headers, countExportHeaders...)
	for _, beverage := range beverages {
		headers = append(headers, beverage.Name)
	}
	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, boldStyle)
	}

	// 写入数据行，新的在前
	for rowIdx := range counts {
		count := &counts[rowIdx]
		row := rowIdx + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), count.Timestamp.Format("2006-01-02 15:04"))
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), count.CountedBy)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), count.Notes)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), count.TotalLiters().InexactFloat64())

		quantities := make(map[string]decimal.Decimal, len(count.Items))
		for j := range count.Items {
			quantities[count.Items[j].BeverageID] = count.Items[j].Quantity
		}
		for bIdx, beverage := range beverages {
			col, _ := excelize.ColumnNumberToName(len(countExportHeaders) + bIdx + 1)
			quantity := decimal.Zero
			if q, ok := quantities[beverage.ID]; ok {
				quantity = q
			}
			f.SetCellValue(sheet, fmt.Sprintf("%s%d", col, row), quantity.InexactFloat64())
		}
	}

	filename := fmt.Sprintf("counts_%s_%s.xlsx", location.Name, time.Now().Format("20060102"))
	return f, filename, nil
}
