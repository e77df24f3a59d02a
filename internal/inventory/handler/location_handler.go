package handler

import (
	"github.com/bitfantasy/barstock/internal/inventory/repository"
	"github.com/bitfantasy/barstock/internal/inventory/service"
	"github.com/gin-gonic/gin"
)

type LocationHandler struct {
	svc     *service.LocationService
	authSvc *service.AuthService
}

func NewLocationHandler(svc *service.LocationService, authSvc *service.AuthService) *LocationHandler {
	return &LocationHandler{svc: svc, authSvc: authSvc}
}

// List GET /api/v1/locations
func (h *LocationHandler) List(c *gin.Context) {
	locations, err := h.svc.ListActive(c.Request.Context())
	if err != nil {
		InternalError(c, "获取位置列表失败: "+err.Error())
		return
	}
	Success(c, gin.H{"items": locations})
}

// Get GET /api/v1/locations/:id
func (h *LocationHandler) Get(c *gin.Context) {
	location, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if err == repository.ErrNotFound {
			NotFound(c, "位置不存在")
			return
		}
		InternalError(c, "获取位置失败: "+err.Error())
		return
	}
	Success(c, location)
}

// Create POST /api/v1/locations
func (h *LocationHandler) Create(c *gin.Context) {
	var input service.CreateLocationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	location, err := h.svc.Create(c.Request.Context(), &input)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Created(c, location)
}

// Update PUT /api/v1/locations/:id
func (h *LocationHandler) Update(c *gin.Context) {
	var input service.UpdateLocationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	location, err := h.svc.Update(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, location)
}

// CreateUserInput 位置账号创建入参
type CreateUserInput struct {
	Username string `json:"username" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// CreateUser POST /api/v1/locations/:id/user 创建并绑定位置账号
func (h *LocationHandler) CreateUser(c *gin.Context) {
	var input CreateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	user, err := h.authSvc.CreateLocationUser(c.Request.Context(), c.Param("id"), input.Username, input.Name, input.Password)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Created(c, user)
}
