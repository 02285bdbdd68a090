package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/voucher_go_server/internal/model"
	"github.com/qs3c/voucher_go_server/internal/model/dto"
	"github.com/qs3c/voucher_go_server/internal/pkg/response"
	"github.com/qs3c/voucher_go_server/internal/testutil"
)

func TestAdminHandler_Login(t *testing.T) {
	env := setupEnv(t)
	testutil.TestAdmin(t, env.db, testutil.WithAdminEmail("boss@example.com"))

	w := performRequest(t, env.router, http.MethodPost, "/api/admin/login", gin.H{
		"email":    "boss@example.com",
		"password": "password123",
	})
	resp := parseResponse(t, w)
	var data dto.LoginResponse
	parseData(t, resp, &data)
	assert.NotEmpty(t, data.Token)
	assert.Equal(t, "boss@example.com", data.Admin.Email)

	// 密码错误
	w = performRequest(t, env.router, http.MethodPost, "/api/admin/login", gin.H{
		"email":    "boss@example.com",
		"password": "wrong",
	})
	assert.Equal(t, response.CodeAuthFailed, parseResponse(t, w).Code)
}

func TestAdminHandler_Profile(t *testing.T) {
	env := setupEnv(t)
	admin := testutil.TestAdmin(t, env.db, testutil.WithAdminEmail("boss@example.com"))
	token := loginToken(t, env, "boss@example.com")

	w := performRequest(t, env.router, http.MethodGet, "/api/admin/profile", nil, withToken(token))
	var info dto.AdminInfo
	parseData(t, parseResponse(t, w), &info)
	assert.Equal(t, admin.ID, info.ID)

	// 未带 Token
	w = performRequest(t, env.router, http.MethodGet, "/api/admin/profile", nil)
	assert.Equal(t, response.CodeAuthFailed, parseResponse(t, w).Code)

	// Token 伪造
	w = performRequest(t, env.router, http.MethodGet, "/api/admin/profile", nil,
		withToken("not-a-token"))
	assert.Equal(t, response.CodeAuthFailed, parseResponse(t, w).Code)
}

func TestAdminHandler_ListVouchers_Scope(t *testing.T) {
	env := setupEnv(t)
	studioA := testutil.TestStudio(t, env.db)
	studioB := testutil.TestStudio(t, env.db)
	for i := 0; i < 2; i++ {
		testutil.TestVoucher(t, env.db, studioA.ID)
	}
	testutil.TestVoucher(t, env.db, studioB.ID)

	testutil.TestAdmin(t, env.db,
		testutil.WithAdminEmail("a@example.com"), testutil.WithAdminStudio(studioA.ID))
	testutil.TestAdmin(t, env.db,
		testutil.WithAdminEmail("super@example.com"), testutil.WithSuperAdmin())

	// 普通管理员只看到绑定门店
	token := loginToken(t, env, "a@example.com")
	w := performRequest(t, env.router, http.MethodGet, "/api/admin/vouchers", nil, withToken(token))
	var page struct {
		Total int64             `json:"total"`
		Items []dto.VoucherItem `json:"items"`
	}
	parseData(t, parseResponse(t, w), &page)
	assert.Equal(t, int64(2), page.Total)
	for _, item := range page.Items {
		assert.Equal(t, studioA.ID, item.StudioID)
	}

	// 超级管理员跨门店
	token = loginToken(t, env, "super@example.com")
	w = performRequest(t, env.router, http.MethodGet, "/api/admin/vouchers", nil, withToken(token))
	parseData(t, parseResponse(t, w), &page)
	assert.Equal(t, int64(3), page.Total)
}

func TestAdminHandler_UpdateVoucher(t *testing.T) {
	env := setupEnv(t)
	studio := testutil.TestStudio(t, env.db)
	voucher := testutil.TestVoucher(t, env.db, studio.ID,
		testutil.WithPaymentStatus(model.PaymentStatusPending))
	testutil.TestAdmin(t, env.db,
		testutil.WithAdminEmail("super@example.com"), testutil.WithSuperAdmin())
	token := loginToken(t, env, "super@example.com")

	// 确认到账
	w := performRequest(t, env.router, http.MethodPut, "/api/admin/vouchers/status", gin.H{
		"voucher_id":     voucher.ID,
		"payment_status": model.PaymentStatusPaid,
	}, withToken(token))
	var item dto.VoucherItem
	parseData(t, parseResponse(t, w), &item)
	assert.Equal(t, model.PaymentStatusPaid, item.PaymentStatus)

	// 再取消：终态冲突
	w = performRequest(t, env.router, http.MethodPut, "/api/admin/vouchers/status", gin.H{
		"voucher_id":     voucher.ID,
		"payment_status": model.PaymentStatusCancelled,
	}, withToken(token))
	assert.Equal(t, response.CodeStateConflict, parseResponse(t, w).Code)

	// 不存在的卡
	w = performRequest(t, env.router, http.MethodPut, "/api/admin/vouchers/status", gin.H{
		"voucher_id":     int64(99999),
		"payment_status": model.PaymentStatusPaid,
	}, withToken(token))
	assert.Equal(t, response.CodeResourceNotFound, parseResponse(t, w).Code)
}

func TestAdminHandler_UpdateVoucher_ScopedAdmin(t *testing.T) {
	env := setupEnv(t)
	studioA := testutil.TestStudio(t, env.db)
	studioB := testutil.TestStudio(t, env.db)
	voucher := testutil.TestVoucher(t, env.db, studioB.ID,
		testutil.WithPaymentStatus(model.PaymentStatusPending))
	testutil.TestAdmin(t, env.db,
		testutil.WithAdminEmail("a@example.com"), testutil.WithAdminStudio(studioA.ID))
	token := loginToken(t, env, "a@example.com")

	// 普通管理员改不了别家门店的卡
	w := performRequest(t, env.router, http.MethodPut, "/api/admin/vouchers/status", gin.H{
		"voucher_id":     voucher.ID,
		"payment_status": model.PaymentStatusPaid,
	}, withToken(token))
	assert.Equal(t, response.CodeResourceNotFound, parseResponse(t, w).Code)
}

func TestAdminHandler_ListStudios(t *testing.T) {
	env := setupEnv(t)
	testutil.TestStudio(t, env.db)
	testutil.TestStudio(t, env.db)
	testutil.TestAdmin(t, env.db, testutil.WithAdminEmail("super@example.com"),
		testutil.WithSuperAdmin())
	token := loginToken(t, env, "super@example.com")

	w := performRequest(t, env.router, http.MethodGet, "/api/admin/studios", nil, withToken(token))
	var studios []dto.StudioInfo
	parseData(t, parseResponse(t, w), &studios)
	require.Len(t, studios, 2)
}
