package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/voucher_go_server/internal/model"
	"github.com/qs3c/voucher_go_server/internal/pkg/response"
	"github.com/qs3c/voucher_go_server/internal/service"
)

const (
	StudioIDKey = "studio_id"
	StudioKey   = "studio"
)

// TenantResolve 店面接口的租户解析：按请求 Host 定位门店并写入上下文。
// 挂了这个中间件的路由都是门店作用域的；后台路由组不挂，
// 跨门店访问只能走后台并凭管理员身份。
func TenantResolve(tenantSvc *service.TenantService) gin.HandlerFunc {
	return func(c *gin.Context) {
		studio, err := tenantSvc.Resolve(c.Request.Host)
		if err != nil {
			response.NotFoundError(c, "门店不存在")
			c.Abort()
			return
		}

		c.Set(StudioIDKey, studio.ID)
		c.Set(StudioKey, studio)
		c.Next()
	}
}

// GetStudioID 从上下文取当前门店 ID
func GetStudioID(c *gin.Context) int64 {
	if id, exists := c.Get(StudioIDKey); exists {
		if studioID, ok := id.(int64); ok {
			return studioID
		}
	}
	return 0
}

// GetStudio 从上下文取当前门店
func GetStudio(c *gin.Context) *model.Studio {
	if v, exists := c.Get(StudioKey); exists {
		if studio, ok := v.(*model.Studio); ok {
			return studio
		}
	}
	return nil
}
