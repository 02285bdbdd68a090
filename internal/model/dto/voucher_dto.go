package dto

// CreateVoucherRequest 购买礼品卡请求。金额单位：分。
type CreateVoucherRequest struct {
	Amount        int64  `json:"amount" binding:"required"`
	SenderName    string `json:"sender_name" binding:"required"`
	SenderEmail   string `json:"sender_email" binding:"required,email"`
	RecipientName string `json:"recipient_name"`
	Message       string `json:"message"`
	// Studio 子域名提示，Host 无法解析时使用（本地开发、预览环境）
	Studio string `json:"studio"`
}

// UpdateVoucherRequest PATCH /vouchers/:id 的动作分发请求
type UpdateVoucherRequest struct {
	Action string `json:"action" binding:"required,oneof=update_details update_status redeem"`

	// action = redeem
	Amount      int64  `json:"amount"`
	Description string `json:"description"`

	// action = update_status
	PaymentStatus string `json:"payment_status"`
	Status        string `json:"status"`

	// action = update_details
	SenderName    string `json:"sender_name"`
	SenderEmail   string `json:"sender_email"`
	RecipientName string `json:"recipient_name"`
	Message       string `json:"message"`
}

// AdminUpdateVoucherRequest 后台全局改状态请求（不限定门店）
type AdminUpdateVoucherRequest struct {
	VoucherID     int64  `json:"voucher_id" binding:"required"`
	PaymentStatus string `json:"payment_status"`
	Status        string `json:"status"`
}

// VoucherItem 对外返回的礼品卡信息
type VoucherItem struct {
	ID              int64  `json:"id"`
	Code            string `json:"code"`
	StudioID        int64  `json:"studio_id"`
	Amount          int64  `json:"amount"`
	RemainingAmount int64  `json:"remaining_amount"`
	SenderName      string `json:"sender_name"`
	SenderEmail     string `json:"sender_email"`
	RecipientName   string `json:"recipient_name,omitempty"`
	Message         string `json:"message,omitempty"`
	PaymentStatus   string `json:"payment_status"`
	Status          string `json:"status"`
	IsUsed          bool   `json:"is_used"`
	CertificateURL  string `json:"certificate_url,omitempty"`
	ExpiresAt       string `json:"expires_at,omitempty"`
	CreatedAt       string `json:"created_at"`
}

// RedeemResult 核销结果
type RedeemResult struct {
	VoucherID       int64  `json:"voucher_id"`
	Redeemed        int64  `json:"redeemed"`
	RemainingAmount int64  `json:"remaining_amount"`
	Status          string `json:"status"`
}

// RedemptionItem 核销流水
type RedemptionItem struct {
	ID             int64  `json:"id"`
	Amount         int64  `json:"amount"`
	Description    string `json:"description,omitempty"`
	RemainingAfter int64  `json:"remaining_after"`
	RedeemedAt     string `json:"redeemed_at"`
}
