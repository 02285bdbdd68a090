package api

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/voucher_go_server/config"
	"github.com/qs3c/voucher_go_server/internal/api/handler"
	"github.com/qs3c/voucher_go_server/internal/api/middleware"
	"github.com/qs3c/voucher_go_server/internal/service"
)

// NewRouter 组装全部路由。
//
// 租户策略按路由组区分：
//   - 店面组挂 TenantResolve，门店由 Host 决定，查询和核销都被锁在门店内；
//   - 购买接口不挂，Host 解析不了还能用请求体提示兜底；
//   - 后台组也不挂，作用域由管理员身份决定（超级管理员跨门店）。
func NewRouter(
	cfg *config.Config,
	tenantService *service.TenantService,
	voucherHandler *handler.VoucherHandler,
	studioHandler *handler.StudioHandler,
	adminHandler *handler.AdminHandler,
	wsHandler *handler.WSHandler,
) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	router := gin.Default()
	router.Use(middleware.CORS(&cfg.CORS))

	router.GET("/health", handler.Health)

	api := router.Group("/api")
	{
		// 购买与聊天：无租户中间件
		api.POST("/vouchers", voucherHandler.Create)
		api.GET("/chat/ws", wsHandler.Chat)

		// 店面作用域
		tenant := api.Group("", middleware.TenantResolve(tenantService))
		{
			tenant.GET("/studio", studioHandler.Current)
			tenant.GET("/vouchers", voucherHandler.GetByCode) // ?code=GV-XXXX
			tenant.GET("/vouchers/:id", voucherHandler.Get)
			tenant.GET("/vouchers/:id/redemptions", voucherHandler.Redemptions)
			tenant.PATCH("/vouchers/:id", voucherHandler.Update)
		}

		// 后台
		admin := api.Group("/admin")
		{
			admin.POST("/login", adminHandler.Login)
			admin.GET("/ws", wsHandler.AdminEvents)

			authed := admin.Group("", middleware.AdminAuth(cfg.JWT.Secret))
			{
				authed.GET("/profile", adminHandler.Profile)
				authed.GET("/studios", studioHandler.List)
				authed.GET("/vouchers", adminHandler.ListVouchers)
				authed.PUT("/vouchers/status", adminHandler.UpdateVoucher)
			}
		}
	}

	return router
}
