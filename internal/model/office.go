package model

import (
	"OnShift/pkg/geo"
)

// OfficeConfig 办公点配置：中心坐标、打卡半径和可选的多边形围栏
type OfficeConfig struct {
	BaseModel
	Name      string        `gorm:"type:varchar(100);not null" json:"name"`
	Latitude  float64       `gorm:"not null" json:"latitude"`
	Longitude float64       `gorm:"not null" json:"longitude"`
	Radius    *float64      `json:"radius,omitempty"`                    // 米，nil 表示不做半径校验
	Geofence  *geo.Geofence `gorm:"serializer:json" json:"geofence,omitempty"` // nil 或空表示不做多边形校验
	Timezone  string        `gorm:"type:varchar(64);default:'Local'" json:"timezone"`
	Active    bool          `gorm:"default:true" json:"active"`
}

func (OfficeConfig) TableName() string {
	return "office_configs"
}

// Center 办公点中心坐标
func (o *OfficeConfig) Center() geo.Point {
	return geo.Point{Latitude: o.Latitude, Longitude: o.Longitude}
}
