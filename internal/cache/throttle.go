package cache

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"OnShift/storage/redis"
)

// Throttle 失败尝试节流：窗口内累计失败次数达到上限后拒绝后续尝试
// 签到和签退共用同一份额度，防止在两个入口之间轮流猜码
type Throttle struct {
	client *goredis.Client
	limit  int
	window time.Duration
}

func NewThrottle(limit int, window time.Duration) *Throttle {
	return &Throttle{
		client: redis.Client(),
		limit:  limit,
		window: window,
	}
}

func strikeKey(employeeID string) string {
	return redis.Key("strike", employeeID)
}

// Allowed 当前是否还允许尝试
func (t *Throttle) Allowed(ctx context.Context, employeeID string) (bool, error) {
	count, err := t.client.Get(ctx, strikeKey(employeeID)).Int()
	if err == goredis.Nil {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read strike count: %w", err)
	}
	return count < t.limit, nil
}

// RecordFailure 记一次失败，返回累计后是否已触顶
// 每次失败都重置窗口计时，窗口随最近一次失败滑动
// INCR 和 EXPIRE 打包成事务，避免留下无过期时间的计数键
func (t *Throttle) RecordFailure(ctx context.Context, employeeID string) (bool, error) {
	key := strikeKey(employeeID)

	var incr *goredis.IntCmd
	_, err := t.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, t.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to record failure: %w", err)
	}
	return incr.Val() >= int64(t.limit), nil
}

// Clear 成功打卡后清空失败计数
func (t *Throttle) Clear(ctx context.Context, employeeID string) error {
	if err := t.client.Del(ctx, strikeKey(employeeID)).Err(); err != nil {
		return fmt.Errorf("failed to clear strikes: %w", err)
	}
	return nil
}
