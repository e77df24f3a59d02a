package handler

import (
	"net/http"

	"github.com/bitfantasy/barstock/internal/config"
	"github.com/bitfantasy/barstock/internal/inventory/service"
	"github.com/bitfantasy/barstock/internal/middleware"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	svc *service.AuthService
	cfg *config.Config
}

func NewAuthHandler(svc *service.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{svc: svc, cfg: cfg}
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, session string) {
	maxAge := int(h.svc.SessionExpire().Seconds())
	c.SetCookie(middleware.SessionCookie, session, maxAge, "/", "", false, true)
}

// LoginPage GET /login
func (h *AuthHandler) LoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{
		"Username": "",
		"Flash":    PopFlash(c),
	})
}

// Login POST /auth/login 用户名密码登录
func (h *AuthHandler) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	user, session, err := h.svc.Login(c.Request.Context(), username, password, c.ClientIP())
	if err != nil {
		c.HTML(http.StatusUnauthorized, "login.html", gin.H{
			"Error":    err.Error(),
			"Username": username,
		})
		return
	}

	h.setSessionCookie(c, session)
	if !user.IsStaff && user.Location != nil {
		c.Redirect(http.StatusSeeOther, "/locations/"+user.Location.ID)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// Logout POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	c.Redirect(http.StatusSeeOther, "/")
}

// TokenLogin GET /token-login/:uid/:token 链接登录。
// 成功建会话并跳到绑定的位置页；任何失败都渲染同一个错误页。
func (h *AuthHandler) TokenLogin(c *gin.Context) {
	uidb64 := c.Param("uid")
	tokenString := c.Param("token")

	user, session, err := h.svc.ValidateLocationToken(c.Request.Context(), uidb64, tokenString, c.ClientIP())
	if err != nil {
		c.HTML(http.StatusForbidden, "token_invalid.html", gin.H{
			"Error": "登录链接无效或已过期",
		})
		return
	}

	h.setSessionCookie(c, session)
	if user.Location != nil {
		c.Redirect(http.StatusSeeOther, "/locations/"+user.Location.ID)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// GenerateToken GET /locations/:id/token 员工为位置账号生成登录链接
func (h *AuthHandler) GenerateToken(c *gin.Context) {
	locationID := c.Param("id")

	link, err := h.svc.IssueLocationLink(c.Request.Context(), locationID, GetUserName(c), c.ClientIP())
	if err != nil {
		c.HTML(http.StatusOK, "generate_token.html", gin.H{
			"UserName": GetUserName(c),
			"Error":    err.Error(),
		})
		return
	}

	c.HTML(http.StatusOK, "generate_token.html", gin.H{
		"UserName":  GetUserName(c),
		"Location":  link.Location,
		"TokenURL":  link.URL,
		"ExpiresAt": link.ExpiresAt.Format("2006-01-02 15:04"),
	})
}
