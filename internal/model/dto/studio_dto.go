package dto

// StudioInfo 当前门店信息（店面前端用）
type StudioInfo struct {
	ID        int64  `json:"id"`
	Subdomain string `json:"subdomain"`
	Name      string `json:"name"`
	City      string `json:"city,omitempty"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
}
