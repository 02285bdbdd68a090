package model

import (
	"time"
)

// 支付状态
const (
	PaymentStatusPending   = "pending"   // 已下单，等待转账确认
	PaymentStatusPaid      = "paid"      // 管理员确认到账
	PaymentStatusCancelled = "cancelled" // 管理员取消
)

// 使用状态
const (
	VoucherStatusActive   = "active"   // 可用
	VoucherStatusRedeemed = "redeemed" // 余额用尽
	VoucherStatusExpired  = "expired"  // 已过期
)

// Voucher 储值礼品卡。金额一律以分为单位存整数，避免浮点舍入。
// RemainingCents 是服务端维护的余额列，核销时对它做条件扣减，
// 保证并发核销不会把总支出扣超面额。
type Voucher struct {
	ID             int64      `gorm:"primaryKey" json:"id"`
	Code           string     `gorm:"size:32;uniqueIndex;not null" json:"code"`
	StudioID       int64      `gorm:"index;not null" json:"studio_id"`
	AmountCents    int64      `gorm:"not null" json:"amount_cents"`
	RemainingCents int64      `gorm:"not null" json:"remaining_cents"`
	SenderName     string     `gorm:"size:100;not null" json:"sender_name"`
	SenderEmail    string     `gorm:"size:100;not null" json:"sender_email"`
	RecipientName  string     `gorm:"size:100" json:"recipient_name"`
	Message        string     `gorm:"type:text" json:"message"`
	PaymentStatus  string     `gorm:"size:20;default:pending" json:"payment_status"`
	Status         string     `gorm:"size:20;default:active" json:"status"`
	IsUsed         bool       `gorm:"default:false" json:"is_used"`
	CertificateURL string     `gorm:"size:500" json:"certificate_url"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	Studio *Studio `gorm:"foreignKey:StudioID" json:"-"`
}

func (Voucher) TableName() string {
	return "vouchers"
}
