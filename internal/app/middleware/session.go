package middleware

import (
	"net/http"

	"github.com/iamdanielchali/KMU-maintenance/internal/domain/models"
	"github.com/iamdanielchali/KMU-maintenance/internal/domain/services"
	"github.com/iamdanielchali/KMU-maintenance/internal/domain/services/container"

	"github.com/gin-gonic/gin"
)

// SessionCookieName 会话Cookie名称
const SessionCookieName = "kmu_session"

// 上下文键
const (
	ContextSessionKey = "session"
	ContextTokenKey   = "sessionToken"
)

var sessionService services.InterfaceSessionService

// InitAuthMiddleware 初始化认证中间件
func InitAuthMiddleware(c *container.ServiceContainer) {
	sessionService = c.GetService("session").(services.InterfaceSessionService)
}

// AuthenticateAdmin 验证管理员会话。
// 无Cookie、会话不存在或已过期一律返回401, 不放行。
func AuthenticateAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookieName)
		if err != nil || token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "Authentication required",
				"data":    nil,
			})
			c.Abort()
			return
		}

		session, err := sessionService.Validate(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "Invalid or expired session",
				"data":    nil,
			})
			c.Abort()
			return
		}

		// 存储会话到上下文, 供下游处理器使用
		c.Set(ContextSessionKey, session)
		c.Set(ContextTokenKey, token)
		c.Next()
	}
}

// SessionFromContext 从上下文中取出会话
func SessionFromContext(c *gin.Context) (*models.SessionContext, bool) {
	value, exists := c.Get(ContextSessionKey)
	if !exists {
		return nil, false
	}
	session, ok := value.(*models.SessionContext)
	return session, ok
}

// TokenFromContext 从上下文中取出会话令牌
func TokenFromContext(c *gin.Context) string {
	return c.GetString(ContextTokenKey)
}
