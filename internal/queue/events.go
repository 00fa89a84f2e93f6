package queue

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"OnShift/config"
	"OnShift/internal/model"
	"OnShift/pkg/logger"
	"OnShift/storage/mq"
)

// Events 把引擎内部事件发布到 topic 交换机
// 发布是尽力而为：kiosk 展示和看板统计丢一条不影响打卡正确性，
// 失败只记日志，绝不把错误传回打卡链路
type Events struct {
	exchange string
}

func NewEvents() *Events {
	return &Events{exchange: config.Cfg.EventExchange}
}

// CodeRotated 新码发布，kiosk 端订阅 office.{id}.code.rotated
func (e *Events) CodeRotated(officeID int64, code string, issuedAt, expiresAt time.Time) {
	e.publish(
		fmt.Sprintf("office.%d.code.rotated", officeID),
		model.CodeRotatedMessage{
			OfficeID:  officeID,
			Code:      code,
			IssuedAt:  issuedAt,
			ExpiresAt: expiresAt,
		},
	)
}

// RedemptionLogged 打卡成功事件，带员工展示名供 kiosk 滚动展示
func (e *Events) RedemptionLogged(officeID int64, employeeID, employeeName, action, status string, earlyLeave bool, occurredAt time.Time) {
	e.publish(
		fmt.Sprintf("office.%d.redemption.logged", officeID),
		model.RedemptionLoggedMessage{
			OfficeID:     officeID,
			EmployeeID:   employeeID,
			EmployeeName: employeeName,
			Action:       action,
			Status:       status,
			EarlyLeave:   earlyLeave,
			OccurredAt:   occurredAt,
		},
	)
}

// StatsUpdated 出勤统计变化，看板端订阅 stats.updated
func (e *Events) StatsUpdated(officeID int64, date string) {
	e.publish(
		"stats.updated",
		model.StatsUpdatedMessage{
			OfficeID:  officeID,
			Date:      date,
			UpdatedAt: time.Now(),
		},
	)
}

func (e *Events) publish(routingKey string, body interface{}) {
	if err := mq.PublishMessage(e.exchange, routingKey, body); err != nil {
		logger.Logger.Warn("Failed to publish event",
			zap.String("routing_key", routingKey),
			zap.Error(err),
		)
	}
}
