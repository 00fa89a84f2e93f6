package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func newTestThrottle(t *testing.T, limit int, window time.Duration) (*Throttle, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })
	return &Throttle{client: client, limit: limit, window: window}, srv
}

func TestThrottleLimit(t *testing.T) {
	th, _ := newTestThrottle(t, 3, 10*time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		capped, err := th.RecordFailure(ctx, "emp-1")
		if err != nil {
			t.Fatalf("RecordFailure: %v", err)
		}
		if capped {
			t.Fatalf("capped after %d failures, limit is 3", i+1)
		}
	}

	capped, err := th.RecordFailure(ctx, "emp-1")
	if err != nil {
		t.Fatalf("RecordFailure: %v", err)
	}
	if !capped {
		t.Error("third failure should hit the limit")
	}

	allowed, err := th.Allowed(ctx, "emp-1")
	if err != nil {
		t.Fatalf("Allowed: %v", err)
	}
	if allowed {
		t.Error("attempts should be blocked at the limit")
	}

	if err := th.Clear(ctx, "emp-1"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if allowed, _ := th.Allowed(ctx, "emp-1"); !allowed {
		t.Error("attempts should be allowed again after Clear")
	}
}

func TestThrottleWindowSlides(t *testing.T) {
	// 窗口随最近一次失败滑动，而不是从第一次失败起固定计时
	th, srv := newTestThrottle(t, 3, 10*time.Minute)
	ctx := context.Background()

	if _, err := th.RecordFailure(ctx, "emp-1"); err != nil {
		t.Fatalf("RecordFailure: %v", err)
	}
	srv.FastForward(6 * time.Minute)

	th.RecordFailure(ctx, "emp-1")
	th.RecordFailure(ctx, "emp-1")

	// 距第一次失败已过 12 分钟，但第三次失败把窗口推到了 16 分钟处
	srv.FastForward(6 * time.Minute)
	if allowed, _ := th.Allowed(ctx, "emp-1"); allowed {
		t.Error("window should have been refreshed by the latest failure")
	}

	srv.FastForward(5 * time.Minute)
	if allowed, _ := th.Allowed(ctx, "emp-1"); !allowed {
		t.Error("strikes should expire once the refreshed window passes")
	}
}

func TestThrottleWindowExpires(t *testing.T) {
	th, srv := newTestThrottle(t, 3, 10*time.Minute)
	ctx := context.Background()

	th.RecordFailure(ctx, "emp-1")
	th.RecordFailure(ctx, "emp-1")
	th.RecordFailure(ctx, "emp-1")
	if allowed, _ := th.Allowed(ctx, "emp-1"); allowed {
		t.Fatal("should be blocked at the limit")
	}

	srv.FastForward(10*time.Minute + time.Second)
	if allowed, _ := th.Allowed(ctx, "emp-1"); !allowed {
		t.Error("expired strikes should not block attempts")
	}
}
