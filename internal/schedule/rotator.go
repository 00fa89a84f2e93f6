package schedule

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"OnShift/internal/model"
	"OnShift/pkg/logger"
	"OnShift/pkg/metrics"
	"OnShift/utils"
)

// CodeIssuer 生成并登记新码
type CodeIssuer interface {
	Issue(ctx context.Context, officeID int64, ttl time.Duration) (string, time.Time, error)
}

// OfficeLister 列出需要轮换的办公点
type OfficeLister interface {
	ListActive(ctx context.Context) ([]model.OfficeConfig, error)
}

// Announcer 新码广播
type Announcer interface {
	CodeRotated(officeID int64, code string, issuedAt, expiresAt time.Time)
}

// Locker 槽位锁，多实例部署时保证每个槽位只发一次码
type Locker func(ctx context.Context, name string, ttl time.Duration) (bool, error)

// Rotator 按固定周期为每个办公点轮换打卡码
// 码的 TTL 大于轮换间隔，保证展示端永远有一个还在有效期内的码
type Rotator struct {
	offices  OfficeLister
	issuer   CodeIssuer
	announce Announcer
	tryLock  Locker

	interval    time.Duration
	ttl         time.Duration
	windowStart string // "06:00"
	windowEnd   string // "22:00"

	now func() time.Time
}

func NewRotator(
	offices OfficeLister,
	issuer CodeIssuer,
	announce Announcer,
	tryLock Locker,
	interval, ttl time.Duration,
	windowStart, windowEnd string,
) *Rotator {
	return &Rotator{
		offices:     offices,
		issuer:      issuer,
		announce:    announce,
		tryLock:     tryLock,
		interval:    interval,
		ttl:         ttl,
		windowStart: windowStart,
		windowEnd:   windowEnd,
		now:         time.Now,
	}
}

// Run 启动轮换循环，ctx 取消后退出
func (r *Rotator) Run(ctx context.Context) {
	logger.Logger.Info("Code rotator started",
		zap.Duration("interval", r.interval),
		zap.Duration("ttl", r.ttl),
	)

	// 启动即发一轮，避免展示端空窗
	r.RotateAll(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Logger.Info("Code rotator stopped")
			return
		case <-ticker.C:
			r.RotateAll(ctx)
		}
	}
}

// RotateAll 为所有活跃办公点各发一个新码
func (r *Rotator) RotateAll(ctx context.Context) {
	now := r.now()
	if !r.InWindow(now) {
		return
	}

	offices, err := r.offices.ListActive(ctx)
	if err != nil {
		logger.Logger.Error("Failed to list offices for rotation", zap.Error(err))
		return
	}

	for _, office := range offices {
		if err := r.IssueOffice(ctx, office.ID); err != nil {
			logger.Logger.Error("Failed to rotate code",
				zap.Int64("office_id", office.ID),
				zap.Error(err),
			)
		}
	}
}

// IssueOffice 为单个办公点发一个新码
// 槽位 = unix 时间 / 轮换间隔，同一槽位多实例竞争时只有拿到锁的实例发码
func (r *Rotator) IssueOffice(ctx context.Context, officeID int64) error {
	now := r.now()
	slot := now.Unix() / int64(r.interval.Seconds())

	acquired, err := r.tryLock(ctx, fmt.Sprintf("rotate:%d:%d", officeID, slot), r.interval)
	if err != nil {
		return fmt.Errorf("failed to acquire rotation lock: %w", err)
	}
	if !acquired {
		// 其他实例已经处理了这个槽位
		return nil
	}

	code, expiresAt, err := r.issuer.Issue(ctx, officeID, r.ttl)
	if err != nil {
		return err
	}

	r.announce.CodeRotated(officeID, code, now, expiresAt)
	metrics.RecordCodeIssued(ctx, officeID)

	logger.Logger.Debug("Code rotated",
		zap.Int64("office_id", officeID),
		zap.Time("expires_at", expiresAt),
	)
	return nil
}

// InWindow 当前时刻是否在发码活跃窗口内
// 起止相同视作全天开启，起点晚于终点视作跨午夜窗口
func (r *Rotator) InWindow(now time.Time) bool {
	startH, startM, err := utils.ParseClock(r.windowStart)
	if err != nil {
		return true
	}
	endH, endM, err := utils.ParseClock(r.windowEnd)
	if err != nil {
		return true
	}

	minute := utils.MinutesOfDay(now)
	start := startH*60 + startM
	end := endH*60 + endM

	switch {
	case start == end:
		return true
	case start < end:
		return minute >= start && minute < end
	default:
		return minute >= start || minute < end
	}
}
