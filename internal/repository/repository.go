package repository

import (
	"context"
	"errors"
	"time"

	"OnShift/internal/model"
)

// ErrDuplicate 唯一约束冲突，由数据库唯一索引兜底"一天一条"不变式
var ErrDuplicate = errors.New("duplicate record")

// AttendanceRepository 出勤记录存取
type AttendanceRepository interface {
	// FindByDate 查某员工某天的记录，不存在时返回 (nil, nil)
	FindByDate(ctx context.Context, employeeID string, date time.Time) (*model.AttendanceRecord, error)
	// Create 落一条新记录，唯一索引冲突时返回 ErrDuplicate
	Create(ctx context.Context, record *model.AttendanceRecord) error
	Update(ctx context.Context, record *model.AttendanceRecord) error
	// ListForMonth 按月列出某员工的记录，新的在前
	ListForMonth(ctx context.Context, employeeID string, year int, month time.Month) ([]model.AttendanceRecord, error)
	// ListEmployeeIDsWithRecordOn 某天已有记录的员工 ID 集合，缺勤扫描用
	ListEmployeeIDsWithRecordOn(ctx context.Context, date time.Time) ([]string, error)
}

// ScheduleRepository 排班查询
type ScheduleRepository interface {
	// ListActiveForDate 某员工在给定日期区间内生效的排班，预加载班次和办公点
	ListActiveForDate(ctx context.Context, employeeID string, date time.Time) ([]model.Schedule, error)
	// ListActiveOn 给定日期所有生效的排班，缺勤扫描用
	ListActiveOn(ctx context.Context, date time.Time) ([]model.Schedule, error)
}

// OfficeRepository 办公点配置
type OfficeRepository interface {
	GetByID(ctx context.Context, id int64) (*model.OfficeConfig, error)
	ListActive(ctx context.Context) ([]model.OfficeConfig, error)
}

// RequestRepository 补卡申请
type RequestRepository interface {
	Create(ctx context.Context, request *model.CorrectionRequest) error
}

// EmployeeRepository 员工投影
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (*model.Employee, error)
}
