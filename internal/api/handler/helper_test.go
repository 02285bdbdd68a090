package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/voucher_go_server/config"
	"github.com/qs3c/voucher_go_server/internal/api/middleware"
	"github.com/qs3c/voucher_go_server/internal/pkg/response"
	"github.com/qs3c/voucher_go_server/internal/repository"
	"github.com/qs3c/voucher_go_server/internal/service"
	"github.com/qs3c/voucher_go_server/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testEnv 手工组装的最小路由，结构与 api.NewRouter 一致，
// 但邮件和队列留空。
type testEnv struct {
	db     *gorm.DB
	router *gin.Engine

	tenantService  *service.TenantService
	voucherService *service.VoucherService
	authService    *service.AdminAuthService
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	studioRepo := repository.NewStudioRepository(db)

	tenantService := service.NewTenantService(studioRepo, &config.TenantConfig{
		LocalHosts: []string{"localhost"},
	})
	voucherService := service.NewVoucherService(
		repository.NewVoucherRepository(db),
		repository.NewRedemptionRepository(db),
		studioRepo,
		nil,
		nil,
		&config.VoucherConfig{MinAmountCents: 2500, CodePrefix: "GV", ExpireMonths: 36},
	)
	authService := service.NewAdminAuthService(
		repository.NewAdminRepository(db),
		&config.JWTConfig{Secret: "test-secret", ExpireHours: 24},
	)

	voucherHandler := NewVoucherHandler(voucherService, tenantService)
	studioHandler := NewStudioHandler(tenantService)
	adminHandler := NewAdminHandler(authService, voucherService)

	router := gin.New()
	api := router.Group("/api")
	api.POST("/vouchers", voucherHandler.Create)

	tenant := api.Group("", middleware.TenantResolve(tenantService))
	tenant.GET("/studio", studioHandler.Current)
	tenant.GET("/vouchers", voucherHandler.GetByCode)
	tenant.GET("/vouchers/:id", voucherHandler.Get)
	tenant.GET("/vouchers/:id/redemptions", voucherHandler.Redemptions)
	tenant.PATCH("/vouchers/:id", voucherHandler.Update)

	admin := api.Group("/admin")
	admin.POST("/login", adminHandler.Login)
	authed := admin.Group("", middleware.AdminAuth("test-secret"))
	authed.GET("/profile", adminHandler.Profile)
	authed.GET("/studios", studioHandler.List)
	authed.GET("/vouchers", adminHandler.ListVouchers)
	authed.PUT("/vouchers/status", adminHandler.UpdateVoucher)

	return &testEnv{
		db:             db,
		router:         router,
		tenantService:  tenantService,
		voucherService: voucherService,
		authService:    authService,
	}
}

type reqOption func(*http.Request)

func withHost(host string) reqOption {
	return func(r *http.Request) { r.Host = host }
}

func withToken(token string) reqOption {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func performRequest(t *testing.T, router *gin.Engine, method, path string, body interface{}, opts ...reqOption) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, opt := range opts {
		opt(req)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) *apiResponse {
	t.Helper()

	require.Equal(t, http.StatusOK, w.Code, "统一响应应返回 HTTP 200: %s", w.Body.String())
	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return &resp
}

func parseData(t *testing.T, resp *apiResponse, out interface{}) {
	t.Helper()

	require.Equal(t, response.CodeSuccess, resp.Code, "期望成功响应: %s", resp.Message)
	require.NoError(t, json.Unmarshal(resp.Data, out))
}

// loginToken 直接登录拿 Token
func loginToken(t *testing.T, env *testEnv, email string) string {
	t.Helper()

	w := performRequest(t, env.router, http.MethodPost, "/api/admin/login", gin.H{
		"email":    email,
		"password": "password123",
	})
	resp := parseResponse(t, w)
	var data struct {
		Token string `json:"token"`
	}
	parseData(t, resp, &data)
	return data.Token
}
