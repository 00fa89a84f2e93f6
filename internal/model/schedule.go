package model

import (
	"time"
)

// Schedule 排班：把员工绑定到某个班次，在 [StartDate, EndDate] 区间内生效
// EndDate 为 nil 表示开放区间
type Schedule struct {
	BaseModel
	EmployeeID  string     `gorm:"type:uuid;not null;index" json:"employee_id"`
	WorkshiftID int64      `gorm:"not null;index" json:"workshift_id"`
	StartDate   time.Time  `gorm:"type:date;not null" json:"start_date"`
	EndDate     *time.Time `gorm:"type:date" json:"end_date,omitempty"`

	Employee  *Employee  `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
	Workshift *Workshift `gorm:"foreignKey:WorkshiftID" json:"workshift,omitempty"`
}

func (Schedule) TableName() string {
	return "schedules"
}

// CoversDate 排班区间是否覆盖给定日期（按天比较）
func (s *Schedule) CoversDate(date time.Time) bool {
	day := date.Truncate(24 * time.Hour)
	start := s.StartDate.Truncate(24 * time.Hour)
	if day.Before(start) {
		return false
	}
	if s.EndDate != nil {
		end := s.EndDate.Truncate(24 * time.Hour)
		if day.After(end) {
			return false
		}
	}
	return true
}
