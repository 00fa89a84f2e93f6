package dto

import (
	"time"

	"OnShift/pkg/geo"
)

// RedeemRequest 打卡请求：轮换码 + 当前坐标
// OfficeID 仅作为提示，码归属以 Redis 中的记录为准
type RedeemRequest struct {
	Code      string  `json:"code" vd:"len($)==4"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	OfficeID  *int64  `json:"office_id,omitempty"`
}

// RedeemResponse 打卡结果
type RedeemResponse struct {
	RecordID     int64      `json:"record_id"`
	Status       string     `json:"status"`
	EarlyLeave   bool       `json:"early_leave,omitempty"`
	CheckInTime  *time.Time `json:"check_in_time,omitempty"`
	CheckOutTime *time.Time `json:"check_out_time,omitempty"`

	// 迟到/早退时自动提交的补卡申请编号
	CorrectionRequestID *int64 `json:"correction_request_id,omitempty"`
}

// HistoryRequest 出勤历史查询，month 形如 2026-08
type HistoryRequest struct {
	Month string `query:"month"`
}

// HistoryItem 出勤历史中的一条记录
type HistoryItem struct {
	Date         string     `json:"date"`
	Status       string     `json:"status"`
	EarlyLeave   bool       `json:"early_leave"`
	CheckInTime  *time.Time `json:"check_in_time,omitempty"`
	CheckOutTime *time.Time `json:"check_out_time,omitempty"`
	Office       string     `json:"office,omitempty"`
}

// GeofenceDetails 围栏校验失败时返回给客户端的补充信息
type GeofenceDetails struct {
	DistanceMeters  float64   `json:"distance_meters,omitempty"`
	AllowedMeters   float64   `json:"allowed_meters,omitempty"`
	Location        geo.Point `json:"location"`
	FailedByPolygon bool      `json:"failed_by_polygon,omitempty"`
}
