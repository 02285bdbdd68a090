package worker

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/qs3c/voucher_go_server/config"
	"github.com/qs3c/voucher_go_server/internal/model"
	"github.com/qs3c/voucher_go_server/internal/pkg/email"
	"github.com/qs3c/voucher_go_server/internal/pkg/oss"
	"github.com/qs3c/voucher_go_server/internal/pkg/pdf"
	"github.com/qs3c/voucher_go_server/internal/pkg/pubsub"
	"github.com/qs3c/voucher_go_server/internal/pkg/queue"
	"github.com/qs3c/voucher_go_server/internal/repository"
)

// Processor 证书交付处理器：到账确认后渲染证书 PDF、
// 上传 OSS、发送邮件，并沿途发布进度事件。
type Processor struct {
	voucherRepo *repository.VoucherRepository
	ossClient   *oss.Client
	emailSvc    *email.Service
	publisher   *pubsub.Publisher
	cfg         *config.Config
}

func NewProcessor(
	voucherRepo *repository.VoucherRepository,
	ossClient *oss.Client,
	emailSvc *email.Service,
	publisher *pubsub.Publisher,
	cfg *config.Config,
) *Processor {
	return &Processor{
		voucherRepo: voucherRepo,
		ossClient:   ossClient,
		emailSvc:    emailSvc,
		publisher:   publisher,
		cfg:         cfg,
	}
}

// Process 处理一条交付任务
func (p *Processor) Process(ctx context.Context, msg *queue.DeliveryMessage) error {
	voucher, err := p.voucherRepo.GetByIDAny(msg.VoucherID)
	if err != nil {
		return fmt.Errorf("failed to load voucher %d: %w", msg.VoucherID, err)
	}

	// 取消或尚未到账的任务直接丢弃（状态在入队后被改过）
	if voucher.PaymentStatus != model.PaymentStatusPaid {
		log.Printf("Delivery %d skipped: payment_status=%s", voucher.ID, voucher.PaymentStatus)
		return nil
	}

	publishStep := func(step, errMsg string) {
		if p.publisher == nil {
			return
		}
		p.publisher.PublishDelivery(ctx, &pubsub.DeliveryEvent{
			VoucherID: voucher.ID,
			StudioID:  voucher.StudioID,
			Code:      voucher.Code,
			Step:      step,
			Error:     errMsg,
		})
	}
	handleError := func(step string, err error) error {
		publishStep(pubsub.StepFailed, err.Error())
		return fmt.Errorf("delivery %d failed at %s: %w", voucher.ID, step, err)
	}

	// 渲染证书
	publishStep(pubsub.StepRendering, "")
	html, err := pdf.RenderHTML(p.cfg.Certificate.TemplatePath, CertificateData(voucher, msg.StudioName))
	if err != nil {
		return handleError(pubsub.StepRendering, err)
	}
	pdfData, err := pdf.PrintPDF(ctx, html)
	if err != nil {
		return handleError(pubsub.StepRendering, err)
	}

	// 本地留一份兜底，定时任务过期后清掉
	if p.cfg.Certificate.TempDir != "" {
		localPath := filepath.Join(p.cfg.Certificate.TempDir, fmt.Sprintf("cert_%d.pdf", voucher.ID))
		if err := os.WriteFile(localPath, pdfData, 0644); err != nil {
			log.Printf("Delivery %d: failed to save local copy: %v", voucher.ID, err)
		}
	}

	// 上传 OSS
	publishStep(pubsub.StepUploading, "")
	certificateURL, err := p.ossClient.UploadCertificate(voucher.ID, pdfData)
	if err != nil {
		return handleError(pubsub.StepUploading, err)
	}
	if err := p.voucherRepo.UpdateFieldsAny(voucher.ID, map[string]interface{}{
		"certificate_url": certificateURL,
	}); err != nil {
		return handleError(pubsub.StepUploading, err)
	}

	// 发送邮件
	publishStep(pubsub.StepMailing, "")
	if err := p.emailSvc.SendCertificate(voucher.SenderEmail, voucher.SenderName, voucher.Code, certificateURL, msg.StudioName); err != nil {
		return handleError(pubsub.StepMailing, err)
	}

	publishStep(pubsub.StepDone, "")
	log.Printf("Delivery %d complete: %s", voucher.ID, voucher.Code)
	return nil
}

// CertificateData 把卡信息转成证书模板变量，金额分转元
func CertificateData(voucher *model.Voucher, studioName string) *pdf.CertificateData {
	data := &pdf.CertificateData{
		StudioName:    studioName,
		SenderName:    voucher.SenderName,
		RecipientName: voucher.RecipientName,
		Code:          voucher.Code,
		Amount:        fmt.Sprintf("%.2f", float64(voucher.AmountCents)/100),
		Message:       voucher.Message,
	}
	if voucher.ExpiresAt != nil {
		data.ExpiresAt = voucher.ExpiresAt.Format("2006-01-02")
	}
	return data
}
