package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/voucher_go_server/internal/api/middleware"
	"github.com/qs3c/voucher_go_server/internal/pkg/response"
	"github.com/qs3c/voucher_go_server/internal/service"
)

type StudioHandler struct {
	tenantService *service.TenantService
}

func NewStudioHandler(tenantService *service.TenantService) *StudioHandler {
	return &StudioHandler{tenantService: tenantService}
}

// Current 当前门店信息（店面前端启动时调用）
// GET /api/studio
func (h *StudioHandler) Current(c *gin.Context) {
	studio := middleware.GetStudio(c)
	if studio == nil {
		response.NotFoundError(c, "门店不存在")
		return
	}
	response.Success(c, service.ToStudioInfo(studio))
}

// List 全部门店（后台下拉用）
// GET /api/admin/studios
func (h *StudioHandler) List(c *gin.Context) {
	studios, err := h.tenantService.ListStudios()
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, studios)
}
