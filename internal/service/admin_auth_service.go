package service

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/qs3c/voucher_go_server/config"
	"github.com/qs3c/voucher_go_server/internal/model"
	"github.com/qs3c/voucher_go_server/internal/model/dto"
	"github.com/qs3c/voucher_go_server/internal/pkg/jwt"
	"github.com/qs3c/voucher_go_server/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrAdminNotFound      = errors.New("管理员不存在")
)

type AdminAuthService struct {
	adminRepo *repository.AdminRepository
	jwtCfg    *config.JWTConfig
}

func NewAdminAuthService(adminRepo *repository.AdminRepository, jwtCfg *config.JWTConfig) *AdminAuthService {
	return &AdminAuthService{
		adminRepo: adminRepo,
		jwtCfg:    jwtCfg,
	}
}

// Login 邮箱密码登录，成功签发 JWT。
// 账号不存在和密码错误返回同一个错误，不泄露账号是否注册。
func (s *AdminAuthService) Login(req *dto.LoginRequest) (*dto.LoginResponse, error) {
	admin, err := s.adminRepo.GetByEmail(req.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := jwt.GenerateToken(admin.ID, s.jwtCfg.Secret, s.jwtCfg.ExpireHours)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Token: token,
		Admin: toAdminInfo(admin),
	}, nil
}

// GetProfile 当前登录管理员信息
func (s *AdminAuthService) GetProfile(adminID int64) (*dto.AdminInfo, error) {
	admin, err := s.adminRepo.GetByID(adminID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAdminNotFound
	}
	if err != nil {
		return nil, err
	}
	return toAdminInfo(admin), nil
}

// ScopeFor 管理员的门店作用域：超级管理员返回 nil（跨门店），
// 普通管理员返回绑定门店。
func (s *AdminAuthService) ScopeFor(adminID int64) (*int64, error) {
	admin, err := s.adminRepo.GetByID(adminID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAdminNotFound
	}
	if err != nil {
		return nil, err
	}
	if admin.SuperAdmin {
		return nil, nil
	}
	return admin.StudioID, nil
}

func toAdminInfo(admin *model.Admin) *dto.AdminInfo {
	return &dto.AdminInfo{
		ID:         admin.ID,
		Email:      admin.Email,
		Name:       admin.Name,
		StudioID:   admin.StudioID,
		SuperAdmin: admin.SuperAdmin,
	}
}
