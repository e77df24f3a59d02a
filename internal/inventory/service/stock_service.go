package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bitfantasy/barstock/internal/inventory/entity"
	"github.com/bitfantasy/barstock/internal/inventory/repository"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// summaryCacheTTL 概览汇总的缓存时长
const summaryCacheTTL = 30 * time.Second

// 错误定义。输入解析失败和写库失败在处理器层走不同的状态码。
var (
	ErrBadQuantity   = errors.New("数量格式不正确")
	ErrBadAdjustment = errors.New("调整量格式不正确")
)

type StockService struct {
	stockRepo    *repository.StockRepository
	locationRepo *repository.LocationRepository
	rdb          *redis.Client
}

func NewStockService(stockRepo *repository.StockRepository, locationRepo *repository.LocationRepository, rdb *redis.Client) *StockService {
	return &StockService{stockRepo: stockRepo, locationRepo: locationRepo, rdb: rdb}
}

// GetStock 取单条库存行
func (s *StockService) GetStock(ctx context.Context, id string) (*entity.Stock, error) {
	return s.stockRepo.FindByID(ctx, id)
}

// LocationStocks 某位置全部启用酒水的库存行，缺的按数量 0 补建
func (s *StockService) LocationStocks(ctx context.Context, locationID string) ([]entity.Stock, error) {
	beverages, err := s.locationRepo.ListActiveBeverages(ctx, locationID)
	if err != nil {
		return nil, fmt.Errorf("获取酒水列表失败: %w", err)
	}

	stocks := make([]entity.Stock, 0, len(beverages))
	for _, beverage := range beverages {
		stock, err := s.stockRepo.GetOrCreate(ctx, beverage.ID, locationID)
		if err != nil {
			return nil, fmt.Errorf("初始化库存行失败: %w", err)
		}
		stocks = append(stocks, *stock)
	}
	return stocks, nil
}

// SetQuantity 覆盖写数量，不设下限；数量解析失败报错
func (s *StockService) SetQuantity(ctx context.Context, stockID, rawQuantity, actor string) (*entity.Stock, error) {
	quantity, err := decimal.NewFromString(rawQuantity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadQuantity, err)
	}

	stock, err := s.stockRepo.FindByID(ctx, stockID)
	if err != nil {
		return nil, err
	}

	stock.Quantity = quantity
	stock.UpdatedBy = actor
	stock.LastUpdated = time.Now()
	if err := s.stockRepo.Update(ctx, stock); err != nil {
		return nil, fmt.Errorf("更新库存失败: %w", err)
	}

	s.invalidateSummary(ctx, stock.LocationID)
	return stock, nil
}

// AdjustQuantity 相对调整数量，底线为 0，不报负数错误
func (s *StockService) AdjustQuantity(ctx context.Context, stockID, rawDelta, actor string) (*entity.Stock, error) {
	delta, err := decimal.NewFromString(rawDelta)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadAdjustment, err)
	}

	stock, err := s.stockRepo.FindByID(ctx, stockID)
	if err != nil {
		return nil, err
	}

	next := stock.Quantity.Add(delta)
	if next.IsNegative() {
		next = decimal.Zero
	}

	stock.Quantity = next
	stock.UpdatedBy = actor
	stock.LastUpdated = time.Now()
	if err := s.stockRepo.Update(ctx, stock); err != nil {
		return nil, fmt.Errorf("更新库存失败: %w", err)
	}

	s.invalidateSummary(ctx, stock.LocationID)
	return stock, nil
}

// LocationSummary 某位置的库存汇总
type LocationSummary struct {
	LocationID  string          `json:"location_id"`
	ItemCount   int             `json:"item_count"`
	TotalLiters decimal.Decimal `json:"total_liters"`
}

// Summary 某位置的条目数和总升数，配置了 Redis 时做短时缓存。
// 库存变动会主动失效；酒水定义变更（如每单位升数）不失效，
// 概览最多滞后一个 TTL。
func (s *StockService) Summary(ctx context.Context, locationID string) (*LocationSummary, error) {
	cacheKey := "stock:summary:" + locationID
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil && cached != "" {
			var summary LocationSummary
			if err := json.Unmarshal([]byte(cached), &summary); err == nil {
				return &summary, nil
			}
		}
	}

	stocks, err := s.stockRepo.ListByLocation(ctx, locationID)
	if err != nil {
		return nil, fmt.Errorf("获取库存汇总失败: %w", err)
	}

	total := decimal.Zero
	for i := range stocks {
		total = total.Add(stocks[i].Liters())
	}
	summary := &LocationSummary{
		LocationID:  locationID,
		ItemCount:   len(stocks),
		TotalLiters: total,
	}

	if s.rdb != nil {
		if data, err := json.Marshal(summary); err == nil {
			s.rdb.Set(ctx, cacheKey, data, summaryCacheTTL)
		}
	}
	return summary, nil
}

func (s *StockService) invalidateSummary(ctx context.Context, locationID string) {
	if s.rdb != nil {
		s.rdb.Del(ctx, "stock:summary:"+locationID)
	}
}
