package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/voucher_go_server/config"
	"github.com/qs3c/voucher_go_server/internal/model"
	"github.com/qs3c/voucher_go_server/internal/model/dto"
	"github.com/qs3c/voucher_go_server/internal/pkg/email"
	"github.com/qs3c/voucher_go_server/internal/pkg/queue"
	"github.com/qs3c/voucher_go_server/internal/repository"
)

var (
	ErrVoucherNotFound     = errors.New("礼品卡不存在")
	ErrAmountTooSmall      = errors.New("金额低于最低购买额")
	ErrInvalidRedeemAmount = errors.New("核销金额必须为正数")
	ErrInsufficientBalance = errors.New("余额不足")
	ErrVoucherNotPaid      = errors.New("礼品卡尚未确认到账")
	ErrVoucherNotActive    = errors.New("礼品卡已不可用")
	ErrInvalidTransition   = errors.New("不允许的状态变更")
)

// 生成卡号时撞上唯一索引的重试次数
const codeGenRetries = 5

type VoucherService struct {
	voucherRepo    *repository.VoucherRepository
	redemptionRepo *repository.RedemptionRepository
	studioRepo     *repository.StudioRepository
	emailSvc       *email.Service
	deliveryQueue  *queue.Queue
	cfg            *config.VoucherConfig
}

// NewVoucherService emailSvc 和 deliveryQueue 允许传 nil（测试、离线工具），
// 对应的副作用会被跳过。
func NewVoucherService(
	voucherRepo *repository.VoucherRepository,
	redemptionRepo *repository.RedemptionRepository,
	studioRepo *repository.StudioRepository,
	emailSvc *email.Service,
	deliveryQueue *queue.Queue,
	cfg *config.VoucherConfig,
) *VoucherService {
	return &VoucherService{
		voucherRepo:    voucherRepo,
		redemptionRepo: redemptionRepo,
		studioRepo:     studioRepo,
		emailSvc:       emailSvc,
		deliveryQueue:  deliveryQueue,
		cfg:            cfg,
	}
}

// Create 下单购买礼品卡。订单以 pending 状态落库，
// 管理员确认转账到账后才可消费。
func (s *VoucherService) Create(studio *model.Studio, req *dto.CreateVoucherRequest) (*dto.VoucherItem, error) {
	if req.Amount < s.cfg.MinAmountCents {
		return nil, ErrAmountTooSmall
	}

	voucher := &model.Voucher{
		StudioID:       studio.ID,
		AmountCents:    req.Amount,
		RemainingCents: req.Amount,
		SenderName:     req.SenderName,
		SenderEmail:    req.SenderEmail,
		RecipientName:  req.RecipientName,
		Message:        req.Message,
		PaymentStatus:  model.PaymentStatusPending,
		Status:         model.VoucherStatusActive,
	}
	if s.cfg.ExpireMonths > 0 {
		expiresAt := time.Now().AddDate(0, s.cfg.ExpireMonths, 0)
		voucher.ExpiresAt = &expiresAt
	}

	// 随机卡号撞库概率极低，但唯一索引冲突仍要兜住
	var err error
	for i := 0; i < codeGenRetries; i++ {
		voucher.Code, err = s.generateCode()
		if err != nil {
			return nil, err
		}
		err = s.voucherRepo.Create(voucher)
		if err == nil {
			break
		}
		exists, existsErr := s.voucherRepo.ExistsByCode(voucher.Code)
		if existsErr != nil || !exists {
			return nil, err
		}
	}
	if err != nil {
		return nil, err
	}

	if s.emailSvc != nil {
		go func(v model.Voucher, studioName string) {
			if err := s.emailSvc.SendOrderReceived(v.SenderEmail, v.SenderName, v.Code, v.AmountCents, studioName); err != nil {
				log.Printf("发送订单确认邮件失败 voucher=%d: %v", v.ID, err)
			}
		}(*voucher, studio.Name)
	}

	return ToVoucherItem(voucher), nil
}

// Get 门店内查卡
func (s *VoucherService) Get(studioID, voucherID int64) (*dto.VoucherItem, error) {
	voucher, err := s.voucherRepo.GetByID(voucherID, studioID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrVoucherNotFound
	}
	if err != nil {
		return nil, err
	}
	return ToVoucherItem(voucher), nil
}

// GetByCode 门店内按卡号查卡（前台核销先查卡）
func (s *VoucherService) GetByCode(studioID int64, code string) (*dto.VoucherItem, error) {
	voucher, err := s.voucherRepo.GetByCode(strings.ToUpper(strings.TrimSpace(code)), studioID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrVoucherNotFound
	}
	if err != nil {
		return nil, err
	}
	return ToVoucherItem(voucher), nil
}

// Redemptions 一张卡的核销流水，先校验门店归属
func (s *VoucherService) Redemptions(studioID, voucherID int64) ([]*dto.RedemptionItem, error) {
	if _, err := s.voucherRepo.GetByID(voucherID, studioID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVoucherNotFound
		}
		return nil, err
	}

	entries, err := s.redemptionRepo.ListByVoucherID(voucherID)
	if err != nil {
		return nil, err
	}
	items := make([]*dto.RedemptionItem, 0, len(entries))
	for _, entry := range entries {
		items = append(items, &dto.RedemptionItem{
			ID:             entry.ID,
			Amount:         entry.AmountCents,
			Description:    entry.Description,
			RemainingAfter: entry.RemainingAfterCents,
			RedeemedAt:     entry.RedeemedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return items, nil
}

// Redeem 核销。扣减、流水、状态翻转在仓储层单事务完成，
// 这里只做参数校验和失败原因诊断。
func (s *VoucherService) Redeem(studioID, voucherID, amountCents int64, description string) (*dto.RedeemResult, error) {
	if amountCents <= 0 {
		return nil, ErrInvalidRedeemAmount
	}

	entry, err := s.voucherRepo.ApplyRedemption(voucherID, studioID, amountCents, description)
	if errors.Is(err, repository.ErrRedeemGuard) {
		return nil, s.diagnoseRedeemFailure(studioID, voucherID, amountCents)
	}
	if err != nil {
		return nil, err
	}

	status := model.VoucherStatusActive
	if entry.RemainingAfterCents <= 0 {
		status = model.VoucherStatusRedeemed
	}
	return &dto.RedeemResult{
		VoucherID:       voucherID,
		Redeemed:        amountCents,
		RemainingAmount: entry.RemainingAfterCents,
		Status:          status,
	}, nil
}

// diagnoseRedeemFailure 守卫未命中后回读，还原拒绝原因
func (s *VoucherService) diagnoseRedeemFailure(studioID, voucherID, amountCents int64) error {
	voucher, err := s.voucherRepo.GetByID(voucherID, studioID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrVoucherNotFound
	}
	if err != nil {
		return err
	}
	switch {
	case voucher.PaymentStatus != model.PaymentStatusPaid:
		return ErrVoucherNotPaid
	case voucher.Status != model.VoucherStatusActive:
		return ErrVoucherNotActive
	default:
		// 余额不足，或回读瞬间又被并发请求扣掉了
		return ErrInsufficientBalance
	}
}

// UpdateDetails 修改赠送人 / 收礼人信息，仅限可用状态的卡
func (s *VoucherService) UpdateDetails(studioID, voucherID int64, req *dto.UpdateVoucherRequest) (*dto.VoucherItem, error) {
	voucher, err := s.voucherRepo.GetByID(voucherID, studioID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrVoucherNotFound
	}
	if err != nil {
		return nil, err
	}
	if voucher.Status != model.VoucherStatusActive {
		return nil, ErrVoucherNotActive
	}

	fields := make(map[string]interface{})
	if req.SenderName != "" {
		fields["sender_name"] = req.SenderName
	}
	if req.SenderEmail != "" {
		fields["sender_email"] = req.SenderEmail
	}
	if req.RecipientName != "" {
		fields["recipient_name"] = req.RecipientName
	}
	if req.Message != "" {
		fields["message"] = req.Message
	}
	if len(fields) == 0 {
		return ToVoucherItem(voucher), nil
	}

	if err := s.voucherRepo.UpdateFields(voucherID, studioID, fields); err != nil {
		return nil, err
	}
	return s.Get(studioID, voucherID)
}

// UpdateStatus 状态机变更入口。studioID 为 nil 时跨门店操作（仅后台）。
// 支付状态只能从 pending 走向 paid / cancelled；使用状态只能从
// active 走向 redeemed / expired，其余一律拒绝。
func (s *VoucherService) UpdateStatus(studioID *int64, voucherID int64, paymentStatus, status string) (*dto.VoucherItem, error) {
	voucher, err := s.loadVoucher(studioID, voucherID)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})

	if paymentStatus != "" && paymentStatus != voucher.PaymentStatus {
		if voucher.PaymentStatus != model.PaymentStatusPending {
			return nil, ErrInvalidTransition
		}
		if paymentStatus != model.PaymentStatusPaid && paymentStatus != model.PaymentStatusCancelled {
			return nil, ErrInvalidTransition
		}
		fields["payment_status"] = paymentStatus
	}

	if status != "" && status != voucher.Status {
		if voucher.Status != model.VoucherStatusActive {
			return nil, ErrInvalidTransition
		}
		if status != model.VoucherStatusRedeemed && status != model.VoucherStatusExpired {
			return nil, ErrInvalidTransition
		}
		fields["status"] = status
		if status == model.VoucherStatusRedeemed {
			fields["is_used"] = true
		}
	}

	if len(fields) > 0 {
		if studioID != nil {
			err = s.voucherRepo.UpdateFields(voucherID, *studioID, fields)
		} else {
			err = s.voucherRepo.UpdateFieldsAny(voucherID, fields)
		}
		if err != nil {
			return nil, err
		}
	}

	if ps, ok := fields["payment_status"]; ok {
		switch ps {
		case model.PaymentStatusPaid:
			s.enqueueDelivery(voucher)
		case model.PaymentStatusCancelled:
			s.notifyCancelled(voucher)
		}
	}

	updated, err := s.loadVoucher(studioID, voucherID)
	if err != nil {
		return nil, err
	}
	return ToVoucherItem(updated), nil
}

func (s *VoucherService) loadVoucher(studioID *int64, voucherID int64) (*model.Voucher, error) {
	var voucher *model.Voucher
	var err error
	if studioID != nil {
		voucher, err = s.voucherRepo.GetByID(voucherID, *studioID)
	} else {
		voucher, err = s.voucherRepo.GetByIDAny(voucherID)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrVoucherNotFound
	}
	return voucher, err
}

// enqueueDelivery 到账确认后把证书生成任务丢进队列，失败只记日志，
// 不影响状态变更本身（可由后台重新触发）。
func (s *VoucherService) enqueueDelivery(voucher *model.Voucher) {
	if s.deliveryQueue == nil {
		return
	}

	studioName := ""
	if studio, err := s.studioRepo.GetByID(voucher.StudioID); err == nil {
		studioName = studio.Name
	}

	msg := &queue.DeliveryMessage{
		VoucherID:   voucher.ID,
		StudioID:    voucher.StudioID,
		Code:        voucher.Code,
		AmountCents: voucher.AmountCents,
		SenderName:  voucher.SenderName,
		SenderEmail: voucher.SenderEmail,
		Recipient:   voucher.RecipientName,
		StudioName:  studioName,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.deliveryQueue.Push(ctx, msg); err != nil {
		log.Printf("证书任务入队失败 voucher=%d: %v", voucher.ID, err)
	}
}

func (s *VoucherService) notifyCancelled(voucher *model.Voucher) {
	if s.emailSvc == nil {
		return
	}

	studioName := ""
	if studio, err := s.studioRepo.GetByID(voucher.StudioID); err == nil {
		studioName = studio.Name
	}

	go func(v model.Voucher) {
		if err := s.emailSvc.SendCancelled(v.SenderEmail, v.SenderName, v.Code, studioName); err != nil {
			log.Printf("发送取消通知邮件失败 voucher=%d: %v", v.ID, err)
		}
	}(*voucher)
}

// List 后台分页列表。studioID 为 nil 时跨门店。
func (s *VoucherService) List(studioID *int64, page, pageSize int) ([]*dto.VoucherItem, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	vouchers, total, err := s.voucherRepo.ListAll(studioID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	items := make([]*dto.VoucherItem, 0, len(vouchers))
	for _, voucher := range vouchers {
		items = append(items, ToVoucherItem(voucher))
	}
	return items, total, nil
}

// generateCode 卡号 = 前缀 + 8 位随机十六进制（crypto/rand），
// 例如 GV-3F9A1C02
func (s *VoucherService) generateCode() (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("生成卡号失败: %w", err)
	}
	return fmt.Sprintf("%s-%s", s.cfg.CodePrefix, strings.ToUpper(hex.EncodeToString(buf))), nil
}

// RemainingBalance 由流水推导余额：面额减去全部核销金额。
// 纯函数，不碰存储，用于和 remaining_cents 列对账。
func RemainingBalance(voucher *model.Voucher, entries []*model.Redemption) int64 {
	balance := voucher.AmountCents
	for _, entry := range entries {
		balance -= entry.AmountCents
	}
	return balance
}

func ToVoucherItem(voucher *model.Voucher) *dto.VoucherItem {
	item := &dto.VoucherItem{
		ID:              voucher.ID,
		Code:            voucher.Code,
		StudioID:        voucher.StudioID,
		Amount:          voucher.AmountCents,
		RemainingAmount: voucher.RemainingCents,
		SenderName:      voucher.SenderName,
		SenderEmail:     voucher.SenderEmail,
		RecipientName:   voucher.RecipientName,
		Message:         voucher.Message,
		PaymentStatus:   voucher.PaymentStatus,
		Status:          voucher.Status,
		IsUsed:          voucher.IsUsed,
		CertificateURL:  voucher.CertificateURL,
		CreatedAt:       voucher.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if voucher.ExpiresAt != nil {
		item.ExpiresAt = voucher.ExpiresAt.Format("2006-01-02")
	}
	return item
}
