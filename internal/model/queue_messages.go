package model

import (
	"time"
)

// CodeRotatedMessage 办公点轮换出新码时发布，kiosk 端据此刷新展示
// 路由键 office.{officeID}.code.rotated
type CodeRotatedMessage struct {
	OfficeID  int64     `json:"office_id"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
	IssuedAt  time.Time `json:"issued_at"`
}

// RedemptionLoggedMessage 打卡成功后发布
// 路由键 office.{officeID}.redemption.logged
type RedemptionLoggedMessage struct {
	OfficeID     int64     `json:"office_id"`
	EmployeeID   string    `json:"employee_id"`
	EmployeeName string    `json:"employee_name"`
	Action       string    `json:"action"` // check_in / check_out
	Status       string    `json:"status"`
	EarlyLeave   bool      `json:"early_leave"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// StatsUpdatedMessage 出勤统计变化时发布，看板端据此重新拉取
// 路由键 stats.updated
type StatsUpdatedMessage struct {
	OfficeID  int64     `json:"office_id"`
	Date      string    `json:"date"` // YYYY-MM-DD
	UpdatedAt time.Time `json:"updated_at"`
}
