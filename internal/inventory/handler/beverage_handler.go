package handler

import (
	"github.com/bitfantasy/barstock/internal/inventory/repository"
	"github.com/bitfantasy/barstock/internal/inventory/service"
	"github.com/gin-gonic/gin"
)

type BeverageHandler struct {
	svc *service.BeverageService
}

func NewBeverageHandler(svc *service.BeverageService) *BeverageHandler {
	return &BeverageHandler{svc: svc}
}

// ========== UnitType ==========

// ListUnitTypes GET /api/v1/unit-types
func (h *BeverageHandler) ListUnitTypes(c *gin.Context) {
	unitTypes, err := h.svc.ListUnitTypes(c.Request.Context())
	if err != nil {
		InternalError(c, "获取单位列表失败: "+err.Error())
		return
	}
	Success(c, gin.H{"items": unitTypes})
}

// CreateUnitType POST /api/v1/unit-types
func (h *BeverageHandler) CreateUnitType(c *gin.Context) {
	var input service.CreateUnitTypeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	unitType, err := h.svc.CreateUnitType(c.Request.Context(), &input)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Created(c, unitType)
}

// DeleteUnitType DELETE /api/v1/unit-types/:id
func (h *BeverageHandler) DeleteUnitType(c *gin.Context) {
	if err := h.svc.DeleteUnitType(c.Request.Context(), c.Param("id")); err != nil {
		BadRequest(c, err.Error())
		return
	}
	Success(c, nil)
}

// ========== Beverage ==========

// List GET /api/v1/beverages
func (h *BeverageHandler) List(c *gin.Context) {
	beverages, err := h.svc.ListActive(c.Request.Context())
	if err != nil {
		InternalError(c, "获取酒水列表失败: "+err.Error())
		return
	}
	Success(c, gin.H{"items": beverages})
}

// Get GET /api/v1/beverages/:id
func (h *BeverageHandler) Get(c *gin.Context) {
	beverage, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if err == repository.ErrNotFound {
			NotFound(c, "酒水不存在")
			return
		}
		InternalError(c, "获取酒水失败: "+err.Error())
		return
	}
	Success(c, beverage)
}

// Create POST /api/v1/beverages
func (h *BeverageHandler) Create(c *gin.Context) {
	var input service.CreateBeverageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	beverage, err := h.svc.Create(c.Request.Context(), &input)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	Created(c, beverage)
}

// Update PUT /api/v1/beverages/:id
func (h *BeverageHandler) Update(c *gin.Context) {
	var input service.UpdateBeverageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	beverage, err := h.svc.Update(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	Success(c, beverage)
}
