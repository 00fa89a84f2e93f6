package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"OnShift/internal/model"
)

type officeRepository struct {
	db *gorm.DB
}

func NewOfficeRepository(db *gorm.DB) OfficeRepository {
	return &officeRepository{db: db}
}

func (r *officeRepository) GetByID(ctx context.Context, id int64) (*model.OfficeConfig, error) {
	var office model.OfficeConfig
	err := r.db.WithContext(ctx).First(&office, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &office, nil
}

func (r *officeRepository) ListActive(ctx context.Context) ([]model.OfficeConfig, error) {
	var offices []model.OfficeConfig
	err := r.db.WithContext(ctx).Where("active = ?", true).Find(&offices).Error
	return offices, err
}
