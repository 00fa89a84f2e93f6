package model

import (
	"time"
)

// 补卡申请类型与状态
const (
	RequestTypeLateEarly = "LATE_EARLY"

	RequestStatusPending  = "PENDING"
	RequestStatusApproved = "APPROVED"
	RequestStatusRejected = "REJECTED"
)

// CorrectionRequest 补卡申请，迟到或早退时由引擎自动提交，等待主管审批
type CorrectionRequest struct {
	BaseModel
	PublicID   int64     `gorm:"uniqueIndex;not null" json:"public_id"` // 雪花 ID，对外暴露
	EmployeeID string    `gorm:"type:uuid;not null;index" json:"employee_id"`
	Type       string    `gorm:"type:varchar(16);not null" json:"type"`
	Status     string    `gorm:"type:varchar(16);not null;default:'PENDING'" json:"status"`
	Date       time.Time `gorm:"type:date;not null" json:"date"`
	Reason     string    `gorm:"type:text" json:"reason"`

	ReviewedBy *string    `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`

	Employee *Employee `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
}

func (CorrectionRequest) TableName() string {
	return "correction_requests"
}
