package model

import (
	"time"
)

// Admin 后台管理员。SuperAdmin 可跨门店查看和改状态，
// 普通管理员绑定单个门店。
type Admin struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Name         string    `gorm:"size:100" json:"name"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	StudioID     *int64    `gorm:"index" json:"studio_id,omitempty"`
	SuperAdmin   bool      `gorm:"default:false" json:"super_admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Admin) TableName() string {
	return "admins"
}
