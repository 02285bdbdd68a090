package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/voucher_go_server/internal/model"
)

type RedemptionRepository struct {
	db *gorm.DB
}

func NewRedemptionRepository(db *gorm.DB) *RedemptionRepository {
	return &RedemptionRepository{db: db}
}

// ListByVoucherID 按时间顺序返回一张卡的全部流水
func (r *RedemptionRepository) ListByVoucherID(voucherID int64) ([]*model.Redemption, error) {
	var entries []*model.Redemption
	err := r.db.Where("voucher_id = ?", voucherID).
		Order("redeemed_at, id").
		Find(&entries).Error
	return entries, err
}

// SumByVoucherID 一张卡的累计核销金额
func (r *RedemptionRepository) SumByVoucherID(voucherID int64) (int64, error) {
	var sum int64
	err := r.db.Model(&model.Redemption{}).
		Where("voucher_id = ?", voucherID).
		Select("COALESCE(SUM(amount_cents), 0)").
		Scan(&sum).Error
	return sum, err
}
