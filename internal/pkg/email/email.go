package email

import (
	"fmt"
	"html"
	"net/smtp"
	"strings"

	"github.com/qs3c/voucher_go_server/config"
)

type Service struct {
	cfg *config.EmailConfig
}

func NewService(cfg *config.EmailConfig) *Service {
	return &Service{cfg: cfg}
}

// SendOrderReceived 发送下单确认邮件（待转账）
func (s *Service) SendOrderReceived(to, senderName, code string, amountCents int64, studioName string) error {
	subject := fmt.Sprintf("礼品卡订单确认 - %s", studioName)
	return s.sendHTML(to, subject, orderReceivedBody(senderName, code, amountCents, studioName))
}

// SendCertificate 发送到账确认与证书邮件
func (s *Service) SendCertificate(to, senderName, code, certificateURL, studioName string) error {
	subject := fmt.Sprintf("您的礼品卡已生效 - %s", studioName)
	return s.sendHTML(to, subject, certificateBody(senderName, code, certificateURL))
}

// SendCancelled 发送订单取消通知
func (s *Service) SendCancelled(to, senderName, code, studioName string) error {
	subject := fmt.Sprintf("礼品卡订单已取消 - %s", studioName)
	return s.sendHTML(to, subject, cancelledBody(senderName, code))
}

// 正文是 HTML，插进去的字段（尤其购买人自填的姓名）必须先转义
func orderReceivedBody(senderName, code string, amountCents int64, studioName string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #b76e79;">感谢您的订购</h2>
        <p>%s 您好，</p>
        <p>我们已收到您在 %s 的礼品卡订单：</p>
        <div style="background-color: #f9f4f5; padding: 15px; margin: 20px 0;">
            <p>卡号：<strong>%s</strong></p>
            <p>面额：<strong>%.2f 元</strong></p>
        </div>
        <p>请按订单页面提示完成转账。到账确认后，礼品卡证书将通过邮件发送给您。</p>
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">此邮件由系统自动发送，请勿回复。</p>
    </div>
</body>
</html>
`, html.EscapeString(senderName), html.EscapeString(studioName), html.EscapeString(code),
		float64(amountCents)/100)
}

func certificateBody(senderName, code, certificateURL string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #b76e79;">礼品卡已生效</h2>
        <p>%s 您好，</p>
        <p>您的转账已确认，卡号为 <strong>%s</strong> 的礼品卡现已可用。</p>
        <div style="text-align: center; margin: 30px 0;">
            <a href="%s" style="background-color: #b76e79; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px; display: inline-block;">下载礼品卡证书</a>
        </div>
        <p>持卡人到店出示卡号即可消费，余额支持多次使用。</p>
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">此邮件由系统自动发送，请勿回复。</p>
    </div>
</body>
</html>
`, html.EscapeString(senderName), html.EscapeString(code), html.EscapeString(certificateURL))
}

func cancelledBody(senderName, code string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #b76e79;">订单已取消</h2>
        <p>%s 您好，</p>
        <p>您卡号为 %s 的礼品卡订单已取消。如已完成转账，门店会与您联系退款事宜。</p>
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">此邮件由系统自动发送，请勿回复。</p>
    </div>
</body>
</html>
`, html.EscapeString(senderName), html.EscapeString(code))
}

// sendHTML 发送 HTML 邮件
func (s *Service) sendHTML(to, subject, body string) error {
	headers := make(map[string]string)
	headers["From"] = s.cfg.From
	headers["To"] = to
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"

	var msg strings.Builder
	for k, v := range headers {
		msg.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	msg.WriteString("\r\n")
	msg.WriteString(body)

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	return smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg.String()))
}
