package model

// Workshift 班次定义：上下班时间（HH:MM）、宽限期和适用的星期
type Workshift struct {
	BaseModel
	Name           string `gorm:"type:varchar(100);not null" json:"name"`
	StartTime      string `gorm:"type:varchar(5);not null" json:"start_time"` // "09:00"
	EndTime        string `gorm:"type:varchar(5);not null" json:"end_time"`   // "18:00"，早于 StartTime 表示跨午夜
	GracePeriod    int    `gorm:"default:0" json:"grace_period"`              // 分钟
	WorkDays       []int  `gorm:"serializer:json" json:"work_days"`           // 0=周日..6=周六，空表示每天
	OfficeConfigID int64  `gorm:"not null;index" json:"office_config_id"`

	OfficeConfig *OfficeConfig `gorm:"foreignKey:OfficeConfigID" json:"office_config,omitempty"`
}

func (Workshift) TableName() string {
	return "workshifts"
}

// AppliesOn 班次在给定星期几是否生效，weekday 取 0=周日..6=周六
func (w *Workshift) AppliesOn(weekday int) bool {
	if len(w.WorkDays) == 0 {
		return true
	}
	for _, d := range w.WorkDays {
		if d == weekday {
			return true
		}
	}
	return false
}
