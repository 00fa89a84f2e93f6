package repository

import (
	"context"

	"gorm.io/gorm"

	"OnShift/internal/model"
)

type requestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) Create(ctx context.Context, request *model.CorrectionRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}
