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

type AdminHandler struct {
	authService    *service.AdminAuthService
	voucherService *service.VoucherService
}

func NewAdminHandler(authService *service.AdminAuthService, voucherService *service.VoucherService) *AdminHandler {
	return &AdminHandler{
		authService:    authService,
		voucherService: voucherService,
	}
}

// Login 管理员登录
// POST /api/admin/login
func (h *AdminHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "请求参数错误: "+err.Error())
		return
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.AuthError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}
	response.SuccessWithMessage(c, "登录成功", resp)
}

// Profile 当前管理员信息
// GET /api/admin/profile
func (h *AdminHandler) Profile(c *gin.Context) {
	info, err := h.authService.GetProfile(middleware.GetAdminID(c))
	if err != nil {
		if errors.Is(err, service.ErrAdminNotFound) {
			response.AuthError(c, "无效的认证信息")
			return
		}
		response.ServerError(c, "")
		return
	}
	response.Success(c, info)
}

// ListVouchers 后台礼品卡列表。普通管理员只看绑定门店，
// 超级管理员跨门店，这是后台侧唯一的跨租户读取口。
// GET /api/admin/vouchers
func (h *AdminHandler) ListVouchers(c *gin.Context) {
	scope, err := h.authService.ScopeFor(middleware.GetAdminID(c))
	if err != nil {
		response.AuthError(c, "无效的认证信息")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	items, total, err := h.voucherService.List(scope, page, pageSize)
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.SuccessPage(c, total, page, pageSize, items)
}

// UpdateVoucher 后台改状态（确认到账、取消订单、手动过期）
// PUT /api/admin/vouchers/status
func (h *AdminHandler) UpdateVoucher(c *gin.Context) {
	var req dto.AdminUpdateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "请求参数错误: "+err.Error())
		return
	}

	scope, err := h.authService.ScopeFor(middleware.GetAdminID(c))
	if err != nil {
		response.AuthError(c, "无效的认证信息")
		return
	}

	item, err := h.voucherService.UpdateStatus(scope, req.VoucherID, req.PaymentStatus, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrVoucherNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrInvalidTransition):
			response.ConflictError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}
	response.Success(c, item)
}
