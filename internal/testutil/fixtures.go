package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/qs3c/voucher_go_server/internal/model"
)

var fixtureSeq int64

func nextSeq() int64 {
	return atomic.AddInt64(&fixtureSeq, 1)
}

type StudioOption func(*model.Studio)

func WithSubdomain(subdomain string) StudioOption {
	return func(s *model.Studio) { s.Subdomain = subdomain }
}

func WithStudioName(name string) StudioOption {
	return func(s *model.Studio) { s.Name = name }
}

// TestStudio 插入一家门店，子域名默认取自增序号保证唯一
func TestStudio(t *testing.T, db *gorm.DB, opts ...StudioOption) *model.Studio {
	t.Helper()

	seq := nextSeq()
	studio := &model.Studio{
		Subdomain: fmt.Sprintf("studio%d", seq),
		Name:      fmt.Sprintf("测试门店%d", seq),
		City:      "上海",
	}
	for _, opt := range opts {
		opt(studio)
	}
	if err := db.Create(studio).Error; err != nil {
		t.Fatalf("创建测试门店失败: %v", err)
	}
	return studio
}

type VoucherOption func(*model.Voucher)

func WithAmount(cents int64) VoucherOption {
	return func(v *model.Voucher) {
		v.AmountCents = cents
		v.RemainingCents = cents
	}
}

func WithRemaining(cents int64) VoucherOption {
	return func(v *model.Voucher) { v.RemainingCents = cents }
}

func WithPaymentStatus(status string) VoucherOption {
	return func(v *model.Voucher) { v.PaymentStatus = status }
}

func WithVoucherStatus(status string) VoucherOption {
	return func(v *model.Voucher) { v.Status = status }
}

func WithCode(code string) VoucherOption {
	return func(v *model.Voucher) { v.Code = code }
}

func WithExpiresAt(at time.Time) VoucherOption {
	return func(v *model.Voucher) { v.ExpiresAt = &at }
}

// TestVoucher 插入一张已支付可用的卡，金额默认 100 元
func TestVoucher(t *testing.T, db *gorm.DB, studioID int64, opts ...VoucherOption) *model.Voucher {
	t.Helper()

	voucher := &model.Voucher{
		Code:           fmt.Sprintf("GV-TEST%04d", nextSeq()),
		StudioID:       studioID,
		AmountCents:    10000,
		RemainingCents: 10000,
		SenderName:     "王小姐",
		SenderEmail:    "sender@example.com",
		RecipientName:  "李女士",
		PaymentStatus:  model.PaymentStatusPaid,
		Status:         model.VoucherStatusActive,
	}
	for _, opt := range opts {
		opt(voucher)
	}
	if err := db.Create(voucher).Error; err != nil {
		t.Fatalf("创建测试礼品卡失败: %v", err)
	}
	return voucher
}

// TestRedemption 插入一条核销流水
func TestRedemption(t *testing.T, db *gorm.DB, voucherID, amountCents, remainingAfter int64) *model.Redemption {
	t.Helper()

	entry := &model.Redemption{
		VoucherID:           voucherID,
		AmountCents:         amountCents,
		Description:         "测试核销",
		RemainingAfterCents: remainingAfter,
	}
	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("创建测试流水失败: %v", err)
	}
	return entry
}

type AdminOption func(*model.Admin)

func WithAdminEmail(email string) AdminOption {
	return func(a *model.Admin) { a.Email = email }
}

func WithAdminStudio(studioID int64) AdminOption {
	return func(a *model.Admin) { a.StudioID = &studioID }
}

func WithSuperAdmin() AdminOption {
	return func(a *model.Admin) { a.SuperAdmin = true }
}

// TestAdmin 插入一个管理员，密码固定为 password123
func TestAdmin(t *testing.T, db *gorm.DB, opts ...AdminOption) *model.Admin {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("生成密码哈希失败: %v", err)
	}

	admin := &model.Admin{
		Email:        fmt.Sprintf("admin%d@example.com", nextSeq()),
		Name:         "测试管理员",
		PasswordHash: string(hash),
	}
	for _, opt := range opts {
		opt(admin)
	}
	if err := db.Create(admin).Error; err != nil {
		t.Fatalf("创建测试管理员失败: %v", err)
	}
	return admin
}
