package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/voucher_go_server/internal/model"
)

// ErrRedeemGuard 条件扣减未命中任何行：卡不存在、不属于该门店、
// 未支付、已用尽或余额不足。由调用方回读诊断具体原因。
var ErrRedeemGuard = errors.New("redeem guard rejected update")

type VoucherRepository struct {
	db *gorm.DB
}

func NewVoucherRepository(db *gorm.DB) *VoucherRepository {
	return &VoucherRepository{db: db}
}

func (r *VoucherRepository) Create(voucher *model.Voucher) error {
	return r.db.Create(voucher).Error
}

// GetByID 门店内查卡。按 (id, studio_id) 查询是租户隔离的关键，
// 这里不提供只按 id 的变体，跨门店访问一律走 *Any 系列（仅后台）。
func (r *VoucherRepository) GetByID(id, studioID int64) (*model.Voucher, error) {
	var voucher model.Voucher
	err := r.db.Where("id = ? AND studio_id = ?", id, studioID).First(&voucher).Error
	if err != nil {
		return nil, err
	}
	return &voucher, nil
}

func (r *VoucherRepository) GetByCode(code string, studioID int64) (*model.Voucher, error) {
	var voucher model.Voucher
	err := r.db.Where("code = ? AND studio_id = ?", code, studioID).First(&voucher).Error
	if err != nil {
		return nil, err
	}
	return &voucher, nil
}

// GetByIDAny 跨门店查卡，仅供超级管理员接口使用
func (r *VoucherRepository) GetByIDAny(id int64) (*model.Voucher, error) {
	var voucher model.Voucher
	err := r.db.Where("id = ?", id).First(&voucher).Error
	if err != nil {
		return nil, err
	}
	return &voucher, nil
}

// ListAll 后台列表。studioID 为 nil 时跨门店返回（超级管理员）。
func (r *VoucherRepository) ListAll(studioID *int64, page, pageSize int) ([]*model.Voucher, int64, error) {
	query := r.db.Model(&model.Voucher{})
	if studioID != nil {
		query = query.Where("studio_id = ?", *studioID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var vouchers []*model.Voucher
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&vouchers).Error
	if err != nil {
		return nil, 0, err
	}

	return vouchers, total, nil
}

// UpdateFields 门店内更新，未命中行视为不存在
func (r *VoucherRepository) UpdateFields(id, studioID int64, fields map[string]interface{}) error {
	res := r.db.Model(&model.Voucher{}).
		Where("id = ? AND studio_id = ?", id, studioID).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateFieldsAny 跨门店更新，仅供超级管理员接口使用
func (r *VoucherRepository) UpdateFieldsAny(id int64, fields map[string]interface{}) error {
	res := r.db.Model(&model.Voucher{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *VoucherRepository) ExistsByCode(code string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Voucher{}).Where("code = ?", code).Count(&count).Error
	return count > 0, err
}

// ApplyRedemption 单个事务内完成核销：
//  1. 对 remaining_cents 做带守卫的条件扣减（余额、支付状态、使用状态、门店归属
//     全部在 WHERE 里，两个并发请求不可能都通过检查）；
//  2. 追加流水，余额快照取扣减后的值；
//  3. 余额归零时翻转为 redeemed 并置 is_used。
//
// 守卫未命中返回 ErrRedeemGuard，由服务层回读诊断原因。
func (r *VoucherRepository) ApplyRedemption(voucherID, studioID, amountCents int64, description string) (*model.Redemption, error) {
	var entry *model.Redemption

	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Voucher{}).
			Where("id = ? AND studio_id = ? AND payment_status = ? AND status = ? AND remaining_cents >= ?",
				voucherID, studioID, model.PaymentStatusPaid, model.VoucherStatusActive, amountCents).
			Update("remaining_cents", gorm.Expr("remaining_cents - ?", amountCents))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrRedeemGuard
		}

		var voucher model.Voucher
		if err := tx.Where("id = ?", voucherID).First(&voucher).Error; err != nil {
			return err
		}

		entry = &model.Redemption{
			VoucherID:           voucherID,
			AmountCents:         amountCents,
			Description:         description,
			RemainingAfterCents: voucher.RemainingCents,
		}
		if err := tx.Create(entry).Error; err != nil {
			return err
		}

		if voucher.RemainingCents <= 0 {
			return tx.Model(&model.Voucher{}).
				Where("id = ?", voucherID).
				Updates(map[string]interface{}{
					"status":  model.VoucherStatusRedeemed,
					"is_used": true,
				}).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// ExpireOverdue 将已过有效期的可用卡批量置为 expired，返回影响行数
func (r *VoucherRepository) ExpireOverdue(now time.Time) (int64, error) {
	res := r.db.Model(&model.Voucher{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?", model.VoucherStatusActive, now).
		Update("status", model.VoucherStatusExpired)
	return res.RowsAffected, res.Error
}
