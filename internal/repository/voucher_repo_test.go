package repository

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/voucher_go_server/internal/model"
	"github.com/qs3c/voucher_go_server/internal/testutil"
)

func TestVoucherRepository_CreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewVoucherRepository(db)
	studio := testutil.TestStudio(t, db)

	voucher := &model.Voucher{
		Code:           "GV-CREATE01",
		StudioID:       studio.ID,
		AmountCents:    10000,
		RemainingCents: 10000,
		SenderName:     "王小姐",
		SenderEmail:    "sender@example.com",
		PaymentStatus:  model.PaymentStatusPending,
		Status:         model.VoucherStatusActive,
	}
	require.NoError(t, repo.Create(voucher))
	assert.NotZero(t, voucher.ID)

	got, err := repo.GetByID(voucher.ID, studio.ID)
	require.NoError(t, err)
	assert.Equal(t, "GV-CREATE01", got.Code)
	assert.Equal(t, int64(10000), got.RemainingCents)

	byCode, err := repo.GetByCode("GV-CREATE01", studio.ID)
	require.NoError(t, err)
	assert.Equal(t, voucher.ID, byCode.ID)
}

func TestVoucherRepository_GetByID_WrongStudio(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewVoucherRepository(db)
	studioA := testutil.TestStudio(t, db)
	studioB := testutil.TestStudio(t, db)
	voucher := testutil.TestVoucher(t, db, studioA.ID)

	// 换一家门店查不到，这是租户隔离的基本保证
	_, err := repo.GetByID(voucher.ID, studioB.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// 跨门店接口仍可以查到
	got, err := repo.GetByIDAny(voucher.ID)
	require.NoError(t, err)
	assert.Equal(t, studioA.ID, got.StudioID)
}

func TestVoucherRepository_CodeUnique(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewVoucherRepository(db)
	studio := testutil.TestStudio(t, db)
	testutil.TestVoucher(t, db, studio.ID, testutil.WithCode("GV-DUP"))

	exists, err := repo.ExistsByCode("GV-DUP")
	require.NoError(t, err)
	assert.True(t, exists)

	// 唯一索引兜底：同码二次插入必须失败
	err = repo.Create(&model.Voucher{
		Code:          "GV-DUP",
		StudioID:      studio.ID,
		AmountCents:   5000,
		SenderName:    "张先生",
		SenderEmail:   "z@example.com",
		PaymentStatus: model.PaymentStatusPending,
		Status:        model.VoucherStatusActive,
	})
	assert.Error(t, err)
}

func TestVoucherRepository_ListAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewVoucherRepository(db)
	studioA := testutil.TestStudio(t, db)
	studioB := testutil.TestStudio(t, db)
	for i := 0; i < 3; i++ {
		testutil.TestVoucher(t, db, studioA.ID)
	}
	testutil.TestVoucher(t, db, studioB.ID)

	vouchers, total, err := repo.ListAll(&studioA.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, vouchers, 3)

	_, total, err = repo.ListAll(nil, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)

	vouchers, total, err = repo.ListAll(&studioA.ID, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, vouchers, 1)
}

func TestVoucherRepository_UpdateFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewVoucherRepository(db)
	studio := testutil.TestStudio(t, db)
	other := testutil.TestStudio(t, db)
	voucher := testutil.TestVoucher(t, db, studio.ID,
		testutil.WithPaymentStatus(model.PaymentStatusPending))

	err := repo.UpdateFields(voucher.ID, studio.ID, map[string]interface{}{
		"payment_status": model.PaymentStatusPaid,
	})
	require.NoError(t, err)

	got, err := repo.GetByID(voucher.ID, studio.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPaid, got.PaymentStatus)

	// 其他门店更新不到
	err = repo.UpdateFields(voucher.ID, other.ID, map[string]interface{}{
		"payment_status": model.PaymentStatusCancelled,
	})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestVoucherRepository_ApplyRedemption(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewVoucherRepository(db)
	studio := testutil.TestStudio(t, db)
	voucher := testutil.TestVoucher(t, db, studio.ID, testutil.WithAmount(10000))

	entry, err := repo.ApplyRedemption(voucher.ID, studio.ID, 4000, "面部护理")
	require.NoError(t, err)
	assert.Equal(t, int64(4000), entry.AmountCents)
	assert.Equal(t, int64(6000), entry.RemainingAfterCents)

	got, err := repo.GetByID(voucher.ID, studio.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(6000), got.RemainingCents)
	assert.Equal(t, model.VoucherStatusActive, got.Status)
	assert.False(t, got.IsUsed)
}

func TestVoucherRepository_ApplyRedemption_ExactZeroCloses(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewVoucherRepository(db)
	studio := testutil.TestStudio(t, db)
	voucher := testutil.TestVoucher(t, db, studio.ID, testutil.WithAmount(10000))

	_, err := repo.ApplyRedemption(voucher.ID, studio.ID, 4000, "")
	require.NoError(t, err)
	entry, err := repo.ApplyRedemption(voucher.ID, studio.ID, 6000, "")
	require.NoError(t, err)
	assert.Equal(t, int64(0), entry.RemainingAfterCents)

	got, err := repo.GetByID(voucher.ID, studio.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.RemainingCents)
	assert.Equal(t, model.VoucherStatusRedeemed, got.Status)
	assert.True(t, got.IsUsed)

	// 归零之后任何金额都扣不动
	_, err = repo.ApplyRedemption(voucher.ID, studio.ID, 1, "")
	assert.ErrorIs(t, err, ErrRedeemGuard)
}

func TestVoucherRepository_ApplyRedemption_GuardRejects(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewVoucherRepository(db)
	studio := testutil.TestStudio(t, db)
	other := testutil.TestStudio(t, db)

	// 余额不足
	low := testutil.TestVoucher(t, db, studio.ID, testutil.WithAmount(3000))
	_, err := repo.ApplyRedemption(low.ID, studio.ID, 5000, "")
	assert.ErrorIs(t, err, ErrRedeemGuard)

	// 未支付
	pending := testutil.TestVoucher(t, db, studio.ID,
		testutil.WithPaymentStatus(model.PaymentStatusPending))
	_, err = repo.ApplyRedemption(pending.ID, studio.ID, 1000, "")
	assert.ErrorIs(t, err, ErrRedeemGuard)

	// 门店不匹配
	voucher := testutil.TestVoucher(t, db, studio.ID)
	_, err = repo.ApplyRedemption(voucher.ID, other.ID, 1000, "")
	assert.ErrorIs(t, err, ErrRedeemGuard)

	// 守卫拒绝后余额一分未动，流水为空
	got, err := repo.GetByID(voucher.ID, studio.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), got.RemainingCents)

	var count int64
	require.NoError(t, db.Model(&model.Redemption{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

// 两个并发核销同一张 100 元卡各扣 60 元，只允许一个成功
func TestVoucherRepository_ApplyRedemption_Concurrent(t *testing.T) {
	db := testutil.SetupTestDBFile(t)
	repo := NewVoucherRepository(db)
	studio := testutil.TestStudio(t, db)
	voucher := testutil.TestVoucher(t, db, studio.ID, testutil.WithAmount(10000))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.ApplyRedemption(voucher.ID, studio.ID, 6000, "并发核销")
		}(i)
	}
	wg.Wait()

	success := 0
	for _, err := range errs {
		if err == nil {
			success++
		}
	}
	assert.Equal(t, 1, success)

	got, err := repo.GetByID(voucher.ID, studio.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4000), got.RemainingCents)

	var count int64
	require.NoError(t, db.Model(&model.Redemption{}).
		Where("voucher_id = ?", voucher.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestVoucherRepository_ExpireOverdue(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewVoucherRepository(db)
	studio := testutil.TestStudio(t, db)

	past := time.Now().Add(-24 * time.Hour)
	future := time.Now().Add(24 * time.Hour)
	overdue := testutil.TestVoucher(t, db, studio.ID, testutil.WithExpiresAt(past))
	alive := testutil.TestVoucher(t, db, studio.ID, testutil.WithExpiresAt(future))
	noExpiry := testutil.TestVoucher(t, db, studio.ID)
	used := testutil.TestVoucher(t, db, studio.ID,
		testutil.WithExpiresAt(past),
		testutil.WithVoucherStatus(model.VoucherStatusRedeemed))

	affected, err := repo.ExpireOverdue(time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	got, _ := repo.GetByID(overdue.ID, studio.ID)
	assert.Equal(t, model.VoucherStatusExpired, got.Status)
	got, _ = repo.GetByID(alive.ID, studio.ID)
	assert.Equal(t, model.VoucherStatusActive, got.Status)
	got, _ = repo.GetByID(noExpiry.ID, studio.ID)
	assert.Equal(t, model.VoucherStatusActive, got.Status)
	got, _ = repo.GetByID(used.ID, studio.ID)
	assert.Equal(t, model.VoucherStatusRedeemed, got.Status)
}
