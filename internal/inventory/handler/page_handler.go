package handler

import (
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/bitfantasy/barstock/internal/inventory/entity"
	"github.com/bitfantasy/barstock/internal/inventory/repository"
	"github.com/bitfantasy/barstock/internal/inventory/service"
	"github.com/gin-gonic/gin"
)

// recentCountsPerLocation 位置页展示的快照条数
const recentCountsPerLocation = 30

// recentCountsOverview 总览页展示的快照条数
const recentCountsOverview = 10

type PageHandler struct {
	locationSvc *service.LocationService
	stockSvc    *service.StockService
	countSvc    *service.CountService
}

func NewPageHandler(locationSvc *service.LocationService, stockSvc *service.StockService, countSvc *service.CountService) *PageHandler {
	return &PageHandler{locationSvc: locationSvc, stockSvc: stockSvc, countSvc: countSvc}
}

// StockRow 位置页的库存行视图
type StockRow struct {
	StockID      string
	LocationID   string
	BeverageName string
	UnitTypeName string
	Color        string
	Quantity     string
	Liters       string
	IsLow        bool
	UpdatedBy    string
	LastUpdated  string
}

func newStockRow(stock *entity.Stock) StockRow {
	row := StockRow{
		StockID:     stock.ID,
		LocationID:  stock.LocationID,
		Quantity:    stock.Quantity.StringFixed(2),
		Liters:      stock.Liters().StringFixed(2),
		IsLow:       stock.IsLow(),
		UpdatedBy:   stock.UpdatedBy,
		LastUpdated: stock.LastUpdated.Format("2006-01-02 15:04"),
	}
	if stock.Beverage != nil {
		row.BeverageName = stock.Beverage.Name
		row.Color = stock.Beverage.Color
		if stock.Beverage.UnitType != nil {
			row.UnitTypeName = stock.Beverage.UnitType.DisplayName()
		}
	}
	return row
}

// countRow 快照列表行视图
type countRow struct {
	Timestamp   string
	Location    string
	CountedBy   string
	Notes       string
	TotalLiters string
	ItemCount   int
}

func newCountRows(counts []entity.StockCount) []countRow {
	rows := make([]countRow, 0, len(counts))
	for i := range counts {
		count := &counts[i]
		row := countRow{
			Timestamp:   count.Timestamp.Format("2006-01-02 15:04"),
			CountedBy:   count.CountedBy,
			Notes:       count.Notes,
			TotalLiters: count.TotalLiters().StringFixed(2),
			ItemCount:   len(count.Items),
		}
		if count.Location != nil {
			row.Location = count.Location.Name
		}
		rows = append(rows, row)
	}
	return rows
}

// Index GET / 匿名落地页；已登录员工看总览，位置账号转自己的位置页
func (h *PageHandler) Index(c *gin.Context) {
	if GetUserID(c) == "" {
		c.HTML(http.StatusOK, "index.html", gin.H{
			"Flash": PopFlash(c),
		})
		return
	}

	if !c.GetBool("is_staff") {
		if locationID := c.GetString("location_id"); locationID != "" {
			c.Redirect(http.StatusSeeOther, "/locations/"+locationID)
			return
		}
		c.HTML(http.StatusOK, "index.html", gin.H{
			"UserName": GetUserName(c),
			"Flash":    PopFlash(c),
		})
		return
	}

	h.overview(c)
}

// overview 员工总览：所有启用位置的汇总 + 最近快照
func (h *PageHandler) overview(c *gin.Context) {
	ctx := c.Request.Context()

	locations, err := h.locationSvc.ListActive(ctx)
	if err != nil {
		renderError(c, http.StatusInternalServerError, "获取位置列表失败")
		return
	}

	type locationSummary struct {
		Location    entity.Location
		ItemCount   int
		TotalLiters string
	}
	summaries := make([]locationSummary, 0, len(locations))
	totalItems := 0
	totalLiters := 0.0
	for _, location := range locations {
		summary, err := h.stockSvc.Summary(ctx, location.ID)
		if err != nil {
			renderError(c, http.StatusInternalServerError, "获取库存汇总失败")
			return
		}
		summaries = append(summaries, locationSummary{
			Location:    location,
			ItemCount:   summary.ItemCount,
			TotalLiters: summary.TotalLiters.StringFixed(2),
		})
		totalItems += summary.ItemCount
		totalLiters += summary.TotalLiters.InexactFloat64()
	}

	counts, err := h.countSvc.RecentCounts(ctx, "", recentCountsOverview)
	if err != nil {
		renderError(c, http.StatusInternalServerError, "获取盘点记录失败")
		return
	}

	c.HTML(http.StatusOK, "overview.html", gin.H{
		"UserName":     GetUserName(c),
		"IsStaff":      true,
		"Summaries":    summaries,
		"TotalItems":   totalItems,
		"TotalLiters":  totalLiters,
		"RecentCounts": newCountRows(counts),
		"Flash":        PopFlash(c),
	})
}

// Locations GET /locations 员工的位置列表页
func (h *PageHandler) Locations(c *gin.Context) {
	h.overview(c)
}

// LocationDetail GET /locations/:id 位置明细：库存行、最近快照、图表数据
func (h *PageHandler) LocationDetail(c *gin.Context) {
	ctx := c.Request.Context()
	locationID := c.Param("id")

	location, err := h.locationSvc.GetActive(ctx, locationID)
	if err != nil {
		if err == repository.ErrNotFound {
			renderError(c, http.StatusNotFound, "位置不存在")
			return
		}
		renderError(c, http.StatusInternalServerError, "获取位置失败")
		return
	}

	stocks, err := h.stockSvc.LocationStocks(ctx, location.ID)
	if err != nil {
		renderError(c, http.StatusInternalServerError, "获取库存失败")
		return
	}
	rows := make([]StockRow, 0, len(stocks))
	for i := range stocks {
		rows = append(rows, newStockRow(&stocks[i]))
	}

	counts, err := h.countSvc.RecentCounts(ctx, location.ID, recentCountsPerLocation)
	if err != nil {
		renderError(c, http.StatusInternalServerError, "获取盘点记录失败")
		return
	}

	chart, err := h.countSvc.ChartData(ctx, location.ID, counts)
	if err != nil {
		renderError(c, http.StatusInternalServerError, "获取图表数据失败")
		return
	}
	var chartJSON template.JS
	if chart != nil {
		data, err := json.Marshal(chart)
		if err == nil {
			chartJSON = template.JS(data)
		}
	}

	c.HTML(http.StatusOK, "location_detail.html", gin.H{
		"UserName":     GetUserName(c),
		"IsStaff":      c.GetBool("is_staff"),
		"Location":     location,
		"Rows":         rows,
		"RecentCounts": newCountRows(counts),
		"ChartData":    chartJSON,
		"Flash":        PopFlash(c),
	})
}
