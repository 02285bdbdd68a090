package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderHTML_DefaultTemplate(t *testing.T) {
	html, err := RenderHTML("", &CertificateData{
		StudioName:    "中心店",
		SenderName:    "王小姐",
		RecipientName: "李女士",
		Code:          "GV-A1B2C3D4",
		Amount:        "100.00",
		Message:       "生日快乐",
		ExpiresAt:     "2028-01-01",
	})
	require.NoError(t, err)

	assert.Contains(t, html, "中心店")
	assert.Contains(t, html, "GV-A1B2C3D4")
	assert.Contains(t, html, "100.00")
	assert.Contains(t, html, "李女士")
	assert.Contains(t, html, "生日快乐")
	assert.Contains(t, html, "2028-01-01")
}

func TestRenderHTML_OptionalFieldsOmitted(t *testing.T) {
	html, err := RenderHTML("", &CertificateData{
		StudioName: "中心店",
		SenderName: "王小姐",
		Code:       "GV-X",
		Amount:     "25.00",
	})
	require.NoError(t, err)

	assert.NotContains(t, html, "致 ")
	assert.NotContains(t, html, "有效期至")
}

func TestRenderHTML_MissingTemplateFileFallsBack(t *testing.T) {
	html, err := RenderHTML("/nonexistent/certificate.html", &CertificateData{
		StudioName: "中心店",
		SenderName: "王小姐",
		Code:       "GV-Y",
		Amount:     "50.00",
	})
	require.NoError(t, err)
	assert.Contains(t, html, "GV-Y")
}

func TestRenderHTML_EscapesMessage(t *testing.T) {
	html, err := RenderHTML("", &CertificateData{
		StudioName: "中心店",
		SenderName: "王小姐",
		Code:       "GV-Z",
		Amount:     "30.00",
		Message:    "<script>alert(1)</script>",
	})
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}
