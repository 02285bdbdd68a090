package pdf

import (
	"bytes"
	"context"
	"html/template"
	"os"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// CertificateData 证书模板变量
type CertificateData struct {
	StudioName    string
	SenderName    string
	RecipientName string
	Code          string
	Amount        string
	Message       string
	ExpiresAt     string
	IssuedAt      string
}

// 模板文件缺失时的兜底版式
const defaultTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: serif; text-align: center; padding: 60px;">
    <h1 style="color: #b76e79;">{{.StudioName}}</h1>
    <h2>礼品卡</h2>
    {{if .RecipientName}}<p>致 {{.RecipientName}}</p>{{end}}
    <p style="font-size: 40px; letter-spacing: 3px;">{{.Amount}} 元</p>
    <p style="font-size: 20px; letter-spacing: 2px;">卡号 {{.Code}}</p>
    {{if .Message}}<p style="font-style: italic;">&ldquo;{{.Message}}&rdquo;</p>{{end}}
    <p>赠自 {{.SenderName}}</p>
    {{if .ExpiresAt}}<p style="color: #6b7280;">有效期至 {{.ExpiresAt}}</p>{{end}}
    <p style="color: #6b7280; font-size: 12px;">签发于 {{.IssuedAt}}</p>
</body>
</html>`

// RenderHTML 渲染证书 HTML
func RenderHTML(templatePath string, data *CertificateData) (string, error) {
	var tmpl *template.Template
	var err error

	if templatePath != "" {
		if _, statErr := os.Stat(templatePath); statErr == nil {
			tmpl, err = template.ParseFiles(templatePath)
			if err != nil {
				return "", err
			}
		}
	}
	if tmpl == nil {
		tmpl, err = template.New("certificate").Parse(defaultTemplate)
		if err != nil {
			return "", err
		}
	}

	if data.IssuedAt == "" {
		data.IssuedAt = time.Now().Format("2006-01-02")
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// PrintPDF 通过 headless Chrome 将 HTML 打印为 PDF
func PrintPDF(ctx context.Context, htmlContent string) ([]byte, error) {
	cctx, cancel := chromedp.NewContext(ctx)
	defer cancel()

	var pdfBuffer []byte
	err := chromedp.Run(cctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}
