package handler

import (
	"net/url"
	"strings"

	"github.com/bitfantasy/barstock/internal/config"
	"github.com/bitfantasy/barstock/internal/inventory/service"
	"github.com/gin-gonic/gin"
)

// flashCookie 重定向后一次性提示消息的 Cookie 名
const flashCookie = "barstock_flash"

// Handlers 处理器集合
type Handlers struct {
	Auth     *AuthHandler
	Page     *PageHandler
	Stock    *StockHandler
	Count    *CountHandler
	Location *LocationHandler
	Beverage *BeverageHandler
}

// NewHandlers 创建处理器集合
func NewHandlers(svc *service.Services, cfg *config.Config) *Handlers {
	return &Handlers{
		Auth:     NewAuthHandler(svc.Auth, cfg),
		Page:     NewPageHandler(svc.Location, svc.Stock, svc.Count),
		Stock:    NewStockHandler(svc.Stock),
		Count:    NewCountHandler(svc.Count),
		Location: NewLocationHandler(svc.Location, svc.Auth),
		Beverage: NewBeverageHandler(svc.Beverage),
	}
}

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

// BadRequest 参数错误响应
func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

// Forbidden 禁止访问响应
func Forbidden(c *gin.Context, message string) {
	Error(c, 40300, message)
}

// NotFound 资源不存在响应
func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

// InternalError 服务器错误响应
func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// GetUserID 从上下文获取用户ID
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

// GetUserName 从上下文获取展示名
func GetUserName(c *gin.Context) string {
	name, _ := c.Get("user_name")
	if n, ok := name.(string); ok && n != "" {
		return n
	}
	return "User"
}

// Flash 一次性提示消息
type Flash struct {
	Level   string
	Message string
}

// SetFlash 写一次性提示，下个页面渲染时取走
func SetFlash(c *gin.Context, level, message string) {
	value := url.QueryEscape(level + "|" + message)
	c.SetCookie(flashCookie, value, 60, "/", "", false, true)
}

// PopFlash 读取并清除一次性提示
func PopFlash(c *gin.Context) *Flash {
	raw, err := c.Cookie(flashCookie)
	if err != nil || raw == "" {
		return nil
	}
	c.SetCookie(flashCookie, "", -1, "/", "", false, true)

	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return nil
	}
	parts := strings.SplitN(decoded, "|", 2)
	if len(parts) != 2 {
		return nil
	}
	return &Flash{Level: parts[0], Message: parts[1]}
}

// renderError 错误页
func renderError(c *gin.Context, status int, message string) {
	c.HTML(status, "error.html", gin.H{
		"Error": message,
	})
}
