package handler

import (
	"errors"
	"net/http"

	"github.com/bitfantasy/barstock/internal/inventory/repository"
	"github.com/bitfantasy/barstock/internal/inventory/service"
	"github.com/gin-gonic/gin"
)

type StockHandler struct {
	svc *service.StockService
}

func NewStockHandler(svc *service.StockService) *StockHandler {
	return &StockHandler{svc: svc}
}

// Update POST /locations/:id/stocks/:stockId/update
// 表单字段 quantity / updated_by，成功返回库存行 HTML 片段，失败返回 JSON 400
func (h *StockHandler) Update(c *gin.Context) {
	stockID := c.Param("stockId")
	locationID := c.Param("id")

	stock, err := h.svc.GetStock(c.Request.Context(), stockID)
	if err != nil {
		if err == repository.ErrNotFound {
			NotFound(c, "库存行不存在")
			return
		}
		InternalError(c, "获取库存失败: "+err.Error())
		return
	}
	// 库存行必须属于路由里的位置，范围检查不能被绕开
	if stock.LocationID != locationID {
		NotFound(c, "库存行不存在")
		return
	}

	quantity := c.PostForm("quantity")
	actor := c.DefaultPostForm("updated_by", GetUserName(c))

	updated, err := h.svc.SetQuantity(c.Request.Context(), stockID, quantity, actor)
	if err != nil {
		// 输入问题归客户端，写库失败归服务端
		if errors.Is(err, service.ErrBadQuantity) {
			BadRequest(c, err.Error())
			return
		}
		InternalError(c, err.Error())
		return
	}

	c.HTML(http.StatusOK, "stock_row.html", newStockRow(updated))
}

// Adjust POST /locations/:id/stocks/:stockId/adjust
// 表单字段 adjustment / updated_by，数量在 0 处封底
func (h *StockHandler) Adjust(c *gin.Context) {
	stockID := c.Param("stockId")
	locationID := c.Param("id")

	stock, err := h.svc.GetStock(c.Request.Context(), stockID)
	if err != nil {
		if err == repository.ErrNotFound {
			NotFound(c, "库存行不存在")
			return
		}
		InternalError(c, "获取库存失败: "+err.Error())
		return
	}
	if stock.LocationID != locationID {
		NotFound(c, "库存行不存在")
		return
	}

	adjustment := c.PostForm("adjustment")
	actor := c.DefaultPostForm("updated_by", GetUserName(c))

	updated, err := h.svc.AdjustQuantity(c.Request.Context(), stockID, adjustment, actor)
	if err != nil {
		if errors.Is(err, service.ErrBadAdjustment) {
			BadRequest(c, err.Error())
			return
		}
		InternalError(c, err.Error())
		return
	}

	c.HTML(http.StatusOK, "stock_row.html", newStockRow(updated))
}
