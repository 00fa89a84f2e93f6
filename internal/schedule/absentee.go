package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"OnShift/internal/model"
	"OnShift/internal/repository"
	"OnShift/pkg/logger"
	"OnShift/utils"
)

// AbsenteeSweeper 收班扫描：当天有排班却没有任何打卡记录的员工补记缺勤
type AbsenteeSweeper struct {
	schedules  repository.ScheduleRepository
	attendance repository.AttendanceRepository
	tryLock    Locker

	now func() time.Time
}

func NewAbsenteeSweeper(
	schedules repository.ScheduleRepository,
	attendance repository.AttendanceRepository,
	tryLock Locker,
) *AbsenteeSweeper {
	return &AbsenteeSweeper{
		schedules:  schedules,
		attendance: attendance,
		tryLock:    tryLock,
		now:        time.Now,
	}
}

// Register 挂到 cron 上，每天 23:59 跑一次
func (s *AbsenteeSweeper) Register(c *cron.Cron) error {
	_, err := c.AddFunc("59 23 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		if err := s.Sweep(ctx); err != nil {
			logger.Logger.Error("Absentee sweep failed", zap.Error(err))
		}
	})
	return err
}

// Sweep 扫描当天的缺勤并落库
func (s *AbsenteeSweeper) Sweep(ctx context.Context) error {
	now := s.now()
	day := utils.DateKey(now)

	// 多实例部署时同一天只扫一次
	if s.tryLock != nil {
		acquired, err := s.tryLock(ctx, "sweep:"+day, time.Hour)
		if err != nil {
			return err
		}
		if !acquired {
			return nil
		}
	}

	schedules, err := s.schedules.ListActiveOn(ctx, now)
	if err != nil {
		return err
	}

	recordedIDs, err := s.attendance.ListEmployeeIDsWithRecordOn(ctx, now)
	if err != nil {
		return err
	}
	recorded := make(map[string]bool, len(recordedIDs))
	for _, id := range recordedIDs {
		recorded[id] = true
	}

	weekday := int(now.Weekday())
	swept := 0
	seen := map[string]bool{}

	for _, sched := range schedules {
		if sched.Workshift == nil || !sched.Workshift.AppliesOn(weekday) {
			continue
		}
		if recorded[sched.EmployeeID] || seen[sched.EmployeeID] {
			continue
		}
		seen[sched.EmployeeID] = true

		record := &model.AttendanceRecord{
			EmployeeID:     sched.EmployeeID,
			Date:           utils.DateOnly(now),
			OfficeConfigID: sched.Workshift.OfficeConfigID,
			WorkshiftID:    sched.WorkshiftID,
			Status:         model.StatusAbsent,
		}
		if err := s.attendance.Create(ctx, record); err != nil {
			// 扫描期间刚好打了卡，跳过
			if errors.Is(err, repository.ErrDuplicate) {
				continue
			}
			logger.Logger.Error("Failed to record absence",
				zap.String("employee_id", sched.EmployeeID),
				zap.Error(err),
			)
			continue
		}
		swept++
	}

	logger.Logger.Info("Absentee sweep completed",
		zap.String("date", day),
		zap.Int("marked_absent", swept),
	)
	return nil
}
