package service

import (
	"sync"
	"time"

	"OnShift/config"
	"OnShift/internal/cache"
	"OnShift/internal/queue"
	"OnShift/internal/repository"
	"OnShift/storage/database"
)

var (
	attendanceOnce sync.Once
	attendanceSvc  *AttendanceService
)

// Attendance 返回打卡服务单例，依赖在首次调用时装配
// 必须在 storage.Init 之后调用
func Attendance() *AttendanceService {
	attendanceOnce.Do(func() {
		db := database.DB()
		attendanceSvc = NewAttendanceService(
			repository.NewAttendanceRepository(db),
			repository.NewRequestRepository(db),
			repository.NewEmployeeRepository(db),
			repository.NewOfficeRepository(db),
			NewScheduleResolver(repository.NewScheduleRepository(db)),
			cache.NewCodeStore(),
			cache.NewThrottle(
				config.Cfg.StrikeLimit,
				time.Duration(config.Cfg.StrikeWindowSeconds)*time.Second,
			),
			queue.NewEvents(),
		)
	})
	return attendanceSvc
}
