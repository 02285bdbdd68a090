package service

import (
	"errors"
	"net"
	"strings"

	"gorm.io/gorm"

	"github.com/qs3c/voucher_go_server/config"
	"github.com/qs3c/voucher_go_server/internal/model"
	"github.com/qs3c/voucher_go_server/internal/model/dto"
	"github.com/qs3c/voucher_go_server/internal/repository"
)

var ErrStudioNotFound = errors.New("门店不存在")

// TenantService 把请求 Host 解析为门店。每家门店有独立子域名
// （xuhui.example.com → xuhui），所有店面接口据此确定租户。
type TenantService struct {
	studioRepo *repository.StudioRepository
	cfg        *config.TenantConfig
}

func NewTenantService(studioRepo *repository.StudioRepository, cfg *config.TenantConfig) *TenantService {
	return &TenantService{
		studioRepo: studioRepo,
		cfg:        cfg,
	}
}

// ExtractSubdomain 从 Host 提取子域名。端口先剥掉；IP、本地 host、
// 不足三段的域名和 www 前缀都视为无子域名。
func (s *TenantService) ExtractSubdomain(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" || net.ParseIP(host) != nil {
		return ""
	}
	for _, local := range s.cfg.LocalHosts {
		if host == local {
			return ""
		}
	}

	parts := strings.Split(host, ".")
	if len(parts) < 3 {
		return ""
	}
	if parts[0] == "www" {
		return ""
	}
	return parts[0]
}

// Resolve Host → 门店。解析不出子域名时用配置的默认子域名兜底
// （本地开发）。子域名存在但查不到门店返回 ErrStudioNotFound。
func (s *TenantService) Resolve(host string) (*model.Studio, error) {
	subdomain := s.ExtractSubdomain(host)
	if subdomain == "" {
		subdomain = s.cfg.DefaultSubdomain
	}
	if subdomain == "" {
		return nil, ErrStudioNotFound
	}

	studio, err := s.studioRepo.GetBySubdomain(subdomain)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrStudioNotFound
	}
	if err != nil {
		return nil, err
	}
	return studio, nil
}

// ResolveForPurchase 购买流程的宽松解析：Host 优先，解析失败时
// 用请求体里的 studio 提示，最后退回任意一家门店。下单不能因为
// 域名配置问题失败，核销侧则没有这种兜底。
func (s *TenantService) ResolveForPurchase(host, hint string) (*model.Studio, error) {
	if studio, err := s.Resolve(host); err == nil {
		return studio, nil
	}

	if hint != "" {
		if studio, err := s.studioRepo.GetBySubdomain(strings.ToLower(hint)); err == nil {
			return studio, nil
		}
	}

	studio, err := s.studioRepo.First()
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrStudioNotFound
	}
	if err != nil {
		return nil, err
	}
	return studio, nil
}

// ListStudios 全部门店（后台下拉用）
func (s *TenantService) ListStudios() ([]*dto.StudioInfo, error) {
	studios, err := s.studioRepo.List()
	if err != nil {
		return nil, err
	}
	items := make([]*dto.StudioInfo, 0, len(studios))
	for _, studio := range studios {
		items = append(items, ToStudioInfo(studio))
	}
	return items, nil
}

func ToStudioInfo(studio *model.Studio) *dto.StudioInfo {
	return &dto.StudioInfo{
		ID:        studio.ID,
		Subdomain: studio.Subdomain,
		Name:      studio.Name,
		City:      studio.City,
		Address:   studio.Address,
		Phone:     studio.Phone,
	}
}
