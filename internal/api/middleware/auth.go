package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/voucher_go_server/internal/pkg/jwt"
	"github.com/qs3c/voucher_go_server/internal/pkg/response"
)

const AdminIDKey = "admin_id"

// AdminAuth 后台接口的 JWT 鉴权
func AdminAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.AuthError(c, "未提供认证信息")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.AuthError(c, "认证格式错误")
			c.Abort()
			return
		}

		claims, err := jwt.ParseToken(parts[1], secret)
		if err != nil {
			if err == jwt.ErrExpiredToken {
				response.AuthError(c, "登录已过期，请重新登录")
			} else {
				response.AuthError(c, "无效的认证信息")
			}
			c.Abort()
			return
		}

		c.Set(AdminIDKey, claims.AdminID)
		c.Next()
	}
}

// GetAdminID 从上下文取当前管理员 ID
func GetAdminID(c *gin.Context) int64 {
	if id, exists := c.Get(AdminIDKey); exists {
		if adminID, ok := id.(int64); ok {
			return adminID
		}
	}
	return 0
}
