package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/voucher_go_server/internal/api/middleware"
	"github.com/qs3c/voucher_go_server/internal/model/dto"
	"github.com/qs3c/voucher_go_server/internal/pkg/response"
	"github.com/qs3c/voucher_go_server/internal/service"
)

type VoucherHandler struct {
	voucherService *service.VoucherService
	tenantService  *service.TenantService
}

func NewVoucherHandler(voucherService *service.VoucherService, tenantService *service.TenantService) *VoucherHandler {
	return &VoucherHandler{
		voucherService: voucherService,
		tenantService:  tenantService,
	}
}

// Create 购买礼品卡
// POST /api/vouchers
//
// 这条路由不挂租户中间件：下单时 Host 解析失败可以用请求体里的
// studio 提示甚至任意门店兜底，宽松策略只在这里，核销侧没有。
func (h *VoucherHandler) Create(c *gin.Context) {
	var req dto.CreateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "请求参数错误: "+err.Error())
		return
	}

	studio, err := h.tenantService.ResolveForPurchase(c.Request.Host, req.Studio)
	if err != nil {
		response.NotFoundError(c, "门店不存在")
		return
	}

	item, err := h.voucherService.Create(studio, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, item)
}

// Get 查询礼品卡
// GET /api/vouchers/:id
func (h *VoucherHandler) Get(c *gin.Context) {
	voucherID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的礼品卡ID")
		return
	}

	item, err := h.voucherService.Get(middleware.GetStudioID(c), voucherID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, item)
}

// GetByCode 按卡号查询（前台核销先查卡）
// GET /api/vouchers?code=GV-XXXXXXXX
func (h *VoucherHandler) GetByCode(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		response.ParamError(c, "请提供卡号")
		return
	}

	item, err := h.voucherService.GetByCode(middleware.GetStudioID(c), code)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, item)
}

// Redemptions 核销流水
// GET /api/vouchers/:id/redemptions
func (h *VoucherHandler) Redemptions(c *gin.Context) {
	voucherID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的礼品卡ID")
		return
	}

	items, err := h.voucherService.Redemptions(middleware.GetStudioID(c), voucherID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, items)
}

// Update 按 action 分发的更新入口
// PATCH /api/vouchers/:id
func (h *VoucherHandler) Update(c *gin.Context) {
	voucherID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的礼品卡ID")
		return
	}

	var req dto.UpdateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "请求参数错误: "+err.Error())
		return
	}

	studioID := middleware.GetStudioID(c)

	switch req.Action {
	case "redeem":
		result, err := h.voucherService.Redeem(studioID, voucherID, req.Amount, req.Description)
		if err != nil {
			h.respondError(c, err)
			return
		}
		response.SuccessWithMessage(c, "核销成功", result)

	case "update_status":
		item, err := h.voucherService.UpdateStatus(&studioID, voucherID, req.PaymentStatus, req.Status)
		if err != nil {
			h.respondError(c, err)
			return
		}
		response.Success(c, item)

	case "update_details":
		item, err := h.voucherService.UpdateDetails(studioID, voucherID, &req)
		if err != nil {
			h.respondError(c, err)
			return
		}
		response.Success(c, item)

	default:
		// binding 的 oneof 已经挡住，保底
		response.ParamError(c, "未知的操作类型")
	}
}

func (h *VoucherHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrVoucherNotFound):
		response.NotFoundError(c, err.Error())
	case errors.Is(err, service.ErrAmountTooSmall),
		errors.Is(err, service.ErrInvalidRedeemAmount):
		response.ParamError(c, err.Error())
	case errors.Is(err, service.ErrInsufficientBalance):
		response.BalanceError(c, err.Error())
	case errors.Is(err, service.ErrVoucherNotPaid),
		errors.Is(err, service.ErrVoucherNotActive),
		errors.Is(err, service.ErrInvalidTransition):
		response.ConflictError(c, err.Error())
	default:
		response.ServerError(c, "")
	}
}
