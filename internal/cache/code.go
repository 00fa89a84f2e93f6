package cache

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"OnShift/storage/redis"
)

// CodeStore 轮换码的发放与核销
// 键形如 onshift:code:{officeID}:{code}，TTL 大于轮换间隔，
// 窗口交叠期内新旧两个码同时有效
type CodeStore struct {
	client *goredis.Client
}

func NewCodeStore() *CodeStore {
	return &CodeStore{client: redis.Client()}
}

func codeKey(officeID int64, code string) string {
	return redis.Key("code", fmt.Sprintf("%d", officeID), code)
}

// Issue 为办公点生成并登记一个新码，返回码和过期时间
// 码是 4 位十进制数，保留前导零
func (s *CodeStore) Issue(ctx context.Context, officeID int64, ttl time.Duration) (string, time.Time, error) {
	// 撞上仍在存活期的旧码时换一个重试
	for attempt := 0; attempt < 5; attempt++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10000))
		if err != nil {
			return "", time.Time{}, fmt.Errorf("failed to generate code: %w", err)
		}
		code := fmt.Sprintf("%04d", n.Int64())

		ok, err := s.client.SetNX(ctx, codeKey(officeID, code), time.Now().Unix(), ttl).Result()
		if err != nil {
			return "", time.Time{}, fmt.Errorf("failed to store code: %w", err)
		}
		if ok {
			return code, time.Now().Add(ttl), nil
		}
	}
	return "", time.Time{}, fmt.Errorf("failed to issue code for office %d: exhausted retries", officeID)
}

// Redeem 原子核销：GETDEL 保证同一个码只能被一名员工用掉一次
// 返回 false 表示码不存在、已过期或已被抢先核销
func (s *CodeStore) Redeem(ctx context.Context, officeID int64, code string) (bool, error) {
	_, err := s.client.GetDel(ctx, codeKey(officeID, code)).Result()
	if err == goredis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to redeem code: %w", err)
	}
	return true, nil
}
