package handler

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/bitfantasy/barstock/internal/inventory/service"
	"github.com/gin-gonic/gin"
)

type CountHandler struct {
	svc *service.CountService
}

func NewCountHandler(svc *service.CountService) *CountHandler {
	return &CountHandler{svc: svc}
}

// Save POST /locations/:id/counts
// 表单字段 counted_by / notes，完成后带提示重定向回位置页
func (h *CountHandler) Save(c *gin.Context) {
	locationID := c.Param("id")
	countedBy := c.DefaultPostForm("counted_by", GetUserName(c))
	notes := c.PostForm("notes")

	count, err := h.svc.SaveCount(c.Request.Context(), locationID, countedBy, notes)
	if err != nil {
		SetFlash(c, "error", "保存盘点失败: "+err.Error())
		c.Redirect(http.StatusSeeOther, "/locations/"+locationID)
		return
	}

	SetFlash(c, "success", fmt.Sprintf("盘点已保存，共记录 %d 条", len(count.Items)))
	c.Redirect(http.StatusSeeOther, "/locations/"+locationID)
}

// Export GET /locations/:id/counts/export 盘点历史导出为 xlsx
func (h *CountHandler) Export(c *gin.Context) {
	locationID := c.Param("id")

	f, filename, err := h.svc.ExportCounts(c.Request.Context(), locationID)
	if err != nil {
		renderError(c, http.StatusInternalServerError, "导出失败: "+err.Error())
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+url.PathEscape(filename)+`"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		renderError(c, http.StatusInternalServerError, "导出失败: "+err.Error())
	}
}
