package model

import (
	"time"

	"OnShift/pkg/geo"
)

// 出勤状态
const (
	StatusPresent = "PRESENT"
	StatusLate    = "LATE"
	StatusAbsent  = "ABSENT"
)

// AttendanceRecord 出勤记录，每名员工每天至多一条
// 唯一索引是"一天一条"不变式的最终裁判，应用层检查只是快速路径
type AttendanceRecord struct {
	BaseModel
	EmployeeID       string     `gorm:"type:uuid;not null;uniqueIndex:idx_attendance_employee_date" json:"employee_id"`
	Date             time.Time  `gorm:"type:date;not null;uniqueIndex:idx_attendance_employee_date" json:"date"`
	OfficeConfigID   int64      `gorm:"not null;index" json:"office_config_id"`
	WorkshiftID      int64      `gorm:"not null" json:"workshift_id"`
	Status           string     `gorm:"type:varchar(16);not null" json:"status"`
	CheckInTime      *time.Time `json:"check_in_time,omitempty"`
	CheckOutTime     *time.Time `json:"check_out_time,omitempty"`
	CheckInLocation  *geo.Point `gorm:"serializer:json" json:"check_in_location,omitempty"`
	CheckOutLocation *geo.Point `gorm:"serializer:json" json:"check_out_location,omitempty"`
	EarlyLeave       bool       `gorm:"default:false" json:"early_leave"`

	// 迟到/早退自动生成的补卡申请
	CorrectionRequestID *int64 `json:"correction_request_id,omitempty"`

	Employee *Employee `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
}

func (AttendanceRecord) TableName() string {
	return "attendance_records"
}
