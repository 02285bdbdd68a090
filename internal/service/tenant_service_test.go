package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/voucher_go_server/config"
	"github.com/qs3c/voucher_go_server/internal/repository"
	"github.com/qs3c/voucher_go_server/internal/testutil"
)

func tenantTestConfig() *config.TenantConfig {
	return &config.TenantConfig{
		DefaultSubdomain: "",
		LocalHosts:       []string{"localhost"},
	}
}

func TestTenantService_ExtractSubdomain(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewTenantService(repository.NewStudioRepository(db), tenantTestConfig())

	tests := []struct {
		host string
		want string
	}{
		{"xuhui.example.com", "xuhui"},
		{"xuhui.example.com:8080", "xuhui"},
		{"XUHUI.Example.COM", "xuhui"},
		{"www.example.com", ""},
		{"example.com", ""},
		{"localhost", ""},
		{"localhost:3000", ""},
		{"127.0.0.1:8080", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, svc.ExtractSubdomain(tt.host), "host=%q", tt.host)
	}
}

func TestTenantService_Resolve(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewTenantService(repository.NewStudioRepository(db), tenantTestConfig())
	studio := testutil.TestStudio(t, db, testutil.WithSubdomain("xuhui"))

	got, err := svc.Resolve("xuhui.example.com")
	require.NoError(t, err)
	assert.Equal(t, studio.ID, got.ID)

	// 子域名查不到门店
	_, err = svc.Resolve("nonexistent.example.com")
	assert.ErrorIs(t, err, ErrStudioNotFound)

	// 无子域名且没有配默认值
	_, err = svc.Resolve("example.com")
	assert.ErrorIs(t, err, ErrStudioNotFound)
}

func TestTenantService_Resolve_DefaultSubdomain(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := tenantTestConfig()
	cfg.DefaultSubdomain = "xuhui"
	svc := NewTenantService(repository.NewStudioRepository(db), cfg)
	studio := testutil.TestStudio(t, db, testutil.WithSubdomain("xuhui"))

	// 本地开发：localhost 落到默认门店
	got, err := svc.Resolve("localhost:3000")
	require.NoError(t, err)
	assert.Equal(t, studio.ID, got.ID)
}

func TestTenantService_ResolveForPurchase(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewTenantService(repository.NewStudioRepository(db), tenantTestConfig())
	first := testutil.TestStudio(t, db, testutil.WithSubdomain("xuhui"))
	second := testutil.TestStudio(t, db, testutil.WithSubdomain("jingan"))

	// Host 能解析就用 Host
	got, err := svc.ResolveForPurchase("jingan.example.com", "xuhui")
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)

	// Host 解析不了用提示
	got, err = svc.ResolveForPurchase("localhost:3000", "jingan")
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)

	// 都解析不了退回第一家门店，下单不能失败
	got, err = svc.ResolveForPurchase("localhost:3000", "")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
}

func TestTenantService_ResolveForPurchase_NoStudios(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewTenantService(repository.NewStudioRepository(db), tenantTestConfig())

	_, err := svc.ResolveForPurchase("localhost", "")
	assert.ErrorIs(t, err, ErrStudioNotFound)
}

func TestTenantService_ListStudios(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewTenantService(repository.NewStudioRepository(db), tenantTestConfig())
	testutil.TestStudio(t, db)
	testutil.TestStudio(t, db)

	studios, err := svc.ListStudios()
	require.NoError(t, err)
	assert.Len(t, studios, 2)
}
