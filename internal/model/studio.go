package model

import (
	"time"
)

// Studio 门店（租户）。由运营后台预置，本服务只读。
type Studio struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Subdomain string    `gorm:"size:63;uniqueIndex;not null" json:"subdomain"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	City      string    `gorm:"size:50" json:"city"`
	Address   string    `gorm:"size:255" json:"address"`
	Phone     string    `gorm:"size:30" json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Studio) TableName() string {
	return "studios"
}
