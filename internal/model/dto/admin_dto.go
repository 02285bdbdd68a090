package dto

// LoginRequest 管理员登录
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录结果
type LoginResponse struct {
	Token string     `json:"token"`
	Admin *AdminInfo `json:"admin"`
}

// AdminInfo 管理员信息
type AdminInfo struct {
	ID         int64  `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	StudioID   *int64 `json:"studio_id,omitempty"`
	SuperAdmin bool   `json:"super_admin"`
}
