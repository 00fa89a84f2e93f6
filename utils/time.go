package utils

import (
	"fmt"
	"time"
)

// ParseClock 解析 "HH:MM" 格式的时刻
func ParseClock(clock string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid clock %q: %w", clock, err)
	}
	return t.Hour(), t.Minute(), nil
}

// AtClock 把 "HH:MM" 落到给定日期当天，保留时区
func AtClock(date time.Time, clock string) (time.Time, error) {
	hour, minute, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, date.Location()), nil
}

// DateKey 归一化到天，用作出勤记录的日期键
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// DateOnly 截断到当天零点，保留时区
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// MinutesOfDay 当天已过的分钟数，用于发码窗口比较
func MinutesOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
