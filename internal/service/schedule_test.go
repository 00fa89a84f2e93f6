package service

import (
	"context"
	"testing"
	"time"

	"OnShift/internal/model"
	apperrors "OnShift/pkg/errors"
)

func newResolver(schedules ...model.Schedule) *ScheduleResolver {
	return NewScheduleResolver(&fakeScheduleRepo{schedules: schedules})
}

func TestResolveSingleSchedule(t *testing.T) {
	now := at("10:00")
	r := newResolver(makeSchedule(testEmployee, 1, "09:00", "18:00", 15, everyDay()))

	resolved, err := r.Resolve(context.Background(), testEmployee, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resolved.Office.ID != testOfficeID {
		t.Errorf("office = %d, want %d", resolved.Office.ID, testOfficeID)
	}
	if resolved.Start.Hour() != 9 || resolved.Start.Minute() != 0 {
		t.Errorf("start = %v, want 09:00", resolved.Start)
	}
	if resolved.End.Hour() != 18 {
		t.Errorf("end = %v, want 18:00", resolved.End)
	}
	if resolved.Grace != 15*time.Minute {
		t.Errorf("grace = %v, want 15m", resolved.Grace)
	}
	if !resolved.End.After(resolved.Start) {
		t.Errorf("end should be after start")
	}
}

func TestResolveNoSchedule(t *testing.T) {
	r := newResolver()
	_, err := r.Resolve(context.Background(), testEmployee, at("10:00"))
	if !apperrors.Is(err, apperrors.NoActiveSchedule) {
		t.Fatalf("err = %v, want NoActiveSchedule", err)
	}
}

func TestResolveAmbiguousSchedules(t *testing.T) {
	r := newResolver(
		makeSchedule(testEmployee, 1, "09:00", "18:00", 10, everyDay()),
		makeSchedule(testEmployee, 2, "14:00", "22:00", 10, everyDay()),
	)
	_, err := r.Resolve(context.Background(), testEmployee, at("15:00"))
	if !apperrors.Is(err, apperrors.ScheduleAmbiguous) {
		t.Fatalf("err = %v, want ScheduleAmbiguous", err)
	}
}

func TestResolveWeekdayMask(t *testing.T) {
	now := at("10:00")
	today := int(now.Weekday())
	tomorrow := (today + 1) % 7

	t.Run("today in mask", func(t *testing.T) {
		r := newResolver(makeSchedule(testEmployee, 1, "09:00", "18:00", 10, []int{today}))
		if _, err := r.Resolve(context.Background(), testEmployee, now); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("today not in mask", func(t *testing.T) {
		r := newResolver(makeSchedule(testEmployee, 1, "09:00", "18:00", 10, []int{tomorrow}))
		_, err := r.Resolve(context.Background(), testEmployee, now)
		if !apperrors.Is(err, apperrors.NoActiveSchedule) {
			t.Fatalf("err = %v, want NoActiveSchedule", err)
		}
	})

	t.Run("empty mask means every day", func(t *testing.T) {
		r := newResolver(makeSchedule(testEmployee, 1, "09:00", "18:00", 10, nil))
		if _, err := r.Resolve(context.Background(), testEmployee, now); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("mask disambiguates overlapping schedules", func(t *testing.T) {
		// 两个排班都生效，但只有一个覆盖今天这个星期几
		r := newResolver(
			makeSchedule(testEmployee, 1, "09:00", "18:00", 10, []int{today}),
			makeSchedule(testEmployee, 2, "14:00", "22:00", 10, []int{tomorrow}),
		)
		resolved, err := r.Resolve(context.Background(), testEmployee, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resolved.Schedule.ID != 1 {
			t.Errorf("resolved schedule %d, want 1", resolved.Schedule.ID)
		}
	})
}

func TestResolveOvernightShift(t *testing.T) {
	// 22:00-06:00 的夜班，下班时刻落到次日
	r := newResolver(makeSchedule(testEmployee, 1, "22:00", "06:00", 10, everyDay()))

	resolved, err := r.Resolve(context.Background(), testEmployee, at("23:00"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resolved.End.After(resolved.Start) {
		t.Errorf("overnight shift end %v not after start %v", resolved.End, resolved.Start)
	}
	if resolved.End.Day() == resolved.Start.Day() {
		t.Errorf("overnight shift end should fall on the next day")
	}
}

func TestResolveExpiredSchedule(t *testing.T) {
	sched := makeSchedule(testEmployee, 1, "09:00", "18:00", 10, everyDay())
	end := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	sched.EndDate = &end

	r := newResolver(sched)
	_, err := r.Resolve(context.Background(), testEmployee, at("10:00"))
	if !apperrors.Is(err, apperrors.NoActiveSchedule) {
		t.Fatalf("err = %v, want NoActiveSchedule", err)
	}
}

func TestResolveShiftWithoutOffice(t *testing.T) {
	sched := makeSchedule(testEmployee, 1, "09:00", "18:00", 10, everyDay())
	sched.Workshift.OfficeConfig = nil

	r := newResolver(sched)
	_, err := r.Resolve(context.Background(), testEmployee, at("10:00"))
	if !apperrors.Is(err, apperrors.NoOfficeConfig) {
		t.Fatalf("err = %v, want NoOfficeConfig", err)
	}
}
