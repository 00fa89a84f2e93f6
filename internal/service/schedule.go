package service

import (
	"context"
	"time"

	"OnShift/internal/model"
	"OnShift/internal/repository"
	apperrors "OnShift/pkg/errors"
	"OnShift/utils"
)

// ResolvedShift 排班解析结果：当天生效的班次、所属办公点和
// 落到具体日期上的上下班时刻
type ResolvedShift struct {
	Schedule model.Schedule
	Shift    model.Workshift
	Office   model.OfficeConfig
	Start    time.Time
	End      time.Time // 跨午夜班次已加一天
	Grace    time.Duration
}

// ScheduleResolver 把员工和日期解析成唯一的生效班次
type ScheduleResolver struct {
	schedules repository.ScheduleRepository
}

func NewScheduleResolver(schedules repository.ScheduleRepository) *ScheduleResolver {
	return &ScheduleResolver{schedules: schedules}
}

// Resolve 查找员工在给定时刻的生效班次
// 没有命中返回 NoActiveSchedule，命中多于一个返回 ScheduleAmbiguous，
// 歧义宁可拒绝也不猜，留给管理员修数据
func (r *ScheduleResolver) Resolve(ctx context.Context, employeeID string, at time.Time) (*ResolvedShift, error) {
	schedules, err := r.schedules.ListActiveForDate(ctx, employeeID, at)
	if err != nil {
		return nil, err
	}

	weekday := int(at.Weekday())

	var matches []model.Schedule
	for _, s := range schedules {
		if s.Workshift == nil {
			continue
		}
		if s.Workshift.AppliesOn(weekday) {
			matches = append(matches, s)
		}
	}

	if len(matches) == 0 {
		return nil, apperrors.NoActiveSchedule
	}
	if len(matches) > 1 {
		return nil, apperrors.ScheduleAmbiguous
	}

	sched := matches[0]
	shift := *sched.Workshift
	if shift.OfficeConfig == nil {
		return nil, apperrors.NoOfficeConfig
	}

	start, err := utils.AtClock(at, shift.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := utils.AtClock(at, shift.EndTime)
	if err != nil {
		return nil, err
	}
	// 夜班：下班时刻不晚于上班时刻视作跨到次日
	if !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}

	return &ResolvedShift{
		Schedule: sched,
		Shift:    shift,
		Office:   *shift.OfficeConfig,
		Start:    start,
		End:      end,
		Grace:    time.Duration(shift.GracePeriod) * time.Minute,
	}, nil
}
