package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/voucher_go_server/internal/model"
)

type StudioRepository struct {
	db *gorm.DB
}

func NewStudioRepository(db *gorm.DB) *StudioRepository {
	return &StudioRepository{db: db}
}

func (r *StudioRepository) GetByID(id int64) (*model.Studio, error) {
	var studio model.Studio
	err := r.db.Where("id = ?", id).First(&studio).Error
	if err != nil {
		return nil, err
	}
	return &studio, nil
}

func (r *StudioRepository) GetBySubdomain(subdomain string) (*model.Studio, error) {
	var studio model.Studio
	err := r.db.Where("subdomain = ?", subdomain).First(&studio).Error
	if err != nil {
		return nil, err
	}
	return &studio, nil
}

// First 取任意一家门店（仅用于购买流程的兜底，见 TenantService）
func (r *StudioRepository) First() (*model.Studio, error) {
	var studio model.Studio
	err := r.db.Order("id").First(&studio).Error
	if err != nil {
		return nil, err
	}
	return &studio, nil
}

func (r *StudioRepository) List() ([]*model.Studio, error) {
	var studios []*model.Studio
	err := r.db.Order("id").Find(&studios).Error
	return studios, err
}
