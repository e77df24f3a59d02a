package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionCookie 会话 Cookie 名
const SessionCookie = "barstock_session"

// Logger 日志中间件
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.String("ip", c.ClientIP()),
			zap.String("user-agent", c.Request.UserAgent()),
			zap.Duration("latency", latency),
			zap.String("request_id", c.GetString("request_id")),
		}

		if userID, exists := c.Get("user_id"); exists {
			fields = append(fields, zap.String("user_id", userID.(string)))
		}

		if status >= 500 {
			logger.Error("Server error", fields...)
		} else if status >= 400 {
			logger.Warn("Client error", fields...)
		} else {
			logger.Info("Request", fields...)
		}
	}
}

// CORS 跨域中间件
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID, HX-Request")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// RequestID 请求ID中间件
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.Request.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)
		c.Next()
	}
}

// SessionClaims 会话 JWT claims
type SessionClaims struct {
	UserID     string `json:"uid"`
	Username   string `json:"username"`
	Name       string `json:"name"`
	IsStaff    bool   `json:"is_staff"`
	LocationID string `json:"location_id,omitempty"`
	jwt.RegisteredClaims
}

func parseSession(c *gin.Context, secret string) (*SessionClaims, bool) {
	var tokenString string

	// 先尝试从 Authorization header 获取
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			tokenString = parts[1]
		}
	}

	// 回退到会话 Cookie（浏览器场景使用）
	if tokenString == "" {
		tokenString, _ = c.Cookie(SessionCookie)
	}

	if tokenString == "" {
		return nil, false
	}

	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, false
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, false
	}
	return claims, true
}

func setPrincipal(c *gin.Context, claims *SessionClaims) {
	c.Set("user_id", claims.UserID)
	c.Set("username", claims.Username)
	c.Set("user_name", claims.Name)
	c.Set("is_staff", claims.IsStaff)
	c.Set("location_id", claims.LocationID)
	c.Set("claims", claims)
}

// SessionAuth 页面会话认证中间件，未认证一律重定向到匿名首页
func SessionAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseSession(c, secret)
		if !ok {
			c.Redirect(http.StatusSeeOther, "/")
			c.Abort()
			return
		}
		setPrincipal(c, claims)
		c.Next()
	}
}

// OptionalSession 尝试解析会话但不强制，供匿名可访问的页面使用
func OptionalSession(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := parseSession(c, secret); ok {
			setPrincipal(c, claims)
		}
		c.Next()
	}
}

// JWTAuth API 认证中间件
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseSession(c, secret)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    40100,
				"message": "Invalid or expired session",
			})
			c.Abort()
			return
		}
		setPrincipal(c, claims)
		c.Next()
	}
}

// RequireStaff 员工页面检查，非员工重定向回自己的位置页
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetBool("is_staff") {
			c.Next()
			return
		}
		if locationID := c.GetString("location_id"); locationID != "" {
			c.Redirect(http.StatusSeeOther, "/locations/"+locationID)
		} else {
			c.Redirect(http.StatusSeeOther, "/")
		}
		c.Abort()
	}
}

// RequireStaffAPI 员工 API 检查
func RequireStaffAPI() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool("is_staff") {
			c.JSON(http.StatusForbidden, gin.H{
				"code":    40300,
				"message": "Staff access required",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// LocationScope 位置范围检查中间件，所有带 :id 位置参数的库存路由统一挂载。
// 员工放行；位置账号没有绑定位置回首页；访问别人的位置软重定向回自己的。
func LocationScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetBool("is_staff") {
			c.Next()
			return
		}

		locationID := c.GetString("location_id")
		if locationID == "" {
			c.Redirect(http.StatusSeeOther, "/")
			c.Abort()
			return
		}

		if requested := c.Param("id"); requested != "" && requested != locationID {
			c.Redirect(http.StatusSeeOther, "/locations/"+locationID)
			c.Abort()
			return
		}

		c.Next()
	}
}
