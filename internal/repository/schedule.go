package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"OnShift/internal/model"
	"OnShift/utils"
)

type scheduleRepository struct {
	db *gorm.DB
}

func NewScheduleRepository(db *gorm.DB) ScheduleRepository {
	return &scheduleRepository{db: db}
}

func (r *scheduleRepository) ListActiveForDate(ctx context.Context, employeeID string, date time.Time) ([]model.Schedule, error) {
	day := utils.DateKey(date)

	var schedules []model.Schedule
	err := r.db.WithContext(ctx).
		Preload("Workshift").
		Preload("Workshift.OfficeConfig").
		Where("employee_id = ? AND start_date <= ? AND (end_date IS NULL OR end_date >= ?)",
			employeeID, day, day).
		Find(&schedules).Error
	return schedules, err
}

func (r *scheduleRepository) ListActiveOn(ctx context.Context, date time.Time) ([]model.Schedule, error) {
	day := utils.DateKey(date)

	var schedules []model.Schedule
	err := r.db.WithContext(ctx).
		Preload("Workshift").
		Preload("Employee").
		Where("start_date <= ? AND (end_date IS NULL OR end_date >= ?)", day, day).
		Find(&schedules).Error
	return schedules, err
}
