package model

import (
	"time"
)

// Redemption 核销流水。只追加，不修改不删除，
// RemainingAfterCents 记录本次核销后的余额快照。
type Redemption struct {
	ID                  int64     `gorm:"primaryKey" json:"id"`
	VoucherID           int64     `gorm:"index;not null" json:"voucher_id"`
	AmountCents         int64     `gorm:"not null" json:"amount_cents"`
	Description         string    `gorm:"size:255" json:"description"`
	RemainingAfterCents int64     `gorm:"not null" json:"remaining_after_cents"`
	RedeemedAt          time.Time `gorm:"autoCreateTime" json:"redeemed_at"`
}

func (Redemption) TableName() string {
	return "redemptions"
}
