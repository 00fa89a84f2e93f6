package cache

import (
	"context"
	"fmt"
	"time"

	"OnShift/storage/redis"
)

// TryLock 基于 SETNX 的轻量分布式锁，多实例场景下去重用
func TryLock(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	ok, err := redis.Client().SetNX(ctx, redis.Key("lock", name), 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock %s: %w", name, err)
	}
	return ok, nil
}

// Unlock 释放锁，锁自带 TTL，释放失败可以容忍
func Unlock(ctx context.Context, name string) error {
	return redis.Client().Del(ctx, redis.Key("lock", name)).Err()
}
