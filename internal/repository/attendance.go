package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"OnShift/internal/model"
	"OnShift/utils"
)

type attendanceRepository struct {
	db *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) FindByDate(ctx context.Context, employeeID string, date time.Time) (*model.AttendanceRecord, error) {
	var record model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND date = ?", employeeID, utils.DateKey(date)).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *attendanceRepository) Create(ctx context.Context, record *model.AttendanceRecord) error {
	err := r.db.WithContext(ctx).Create(record).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

func (r *attendanceRepository) Update(ctx context.Context, record *model.AttendanceRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

func (r *attendanceRepository) ListForMonth(ctx context.Context, employeeID string, year int, month time.Month) ([]model.AttendanceRecord, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	var records []model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND date >= ? AND date < ?",
			employeeID, utils.DateKey(start), utils.DateKey(end)).
		Order("date DESC").
		Find(&records).Error
	return records, err
}

func (r *attendanceRepository) ListEmployeeIDsWithRecordOn(ctx context.Context, date time.Time) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.AttendanceRecord{}).
		Where("date = ?", utils.DateKey(date)).
		Pluck("employee_id", &ids).Error
	return ids, err
}
