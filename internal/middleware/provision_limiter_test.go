package middleware

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestProvisionLimiter_Cooldown(t *testing.T) {
	limiter := &ProvisionLimiter{}

	first := limiter.Check("provision:a.myshopify.com", 100*time.Millisecond)
	if !first.Allowed {
		t.Fatal("首次检查应放行")
	}

	second := limiter.Check("provision:a.myshopify.com", 100*time.Millisecond)
	if second.Allowed {
		t.Fatal("冷却期内应拒绝")
	}
	if second.RetryAfter <= 0 || second.RetryAfter > 100*time.Millisecond {
		t.Errorf("RetryAfter = %v", second.RetryAfter)
	}

	time.Sleep(120 * time.Millisecond)
	third := limiter.Check("provision:a.myshopify.com", 100*time.Millisecond)
	if !third.Allowed {
		t.Error("冷却结束后应放行")
	}
}

func TestProvisionLimiter_KeysIndependent(t *testing.T) {
	limiter := &ProvisionLimiter{}

	limiter.Check("provision:a.myshopify.com", time.Minute)
	if !limiter.Check("provision:b.myshopify.com", time.Minute).Allowed {
		t.Error("不同键互不影响")
	}
}

func TestProvisionLimiter_Reset(t *testing.T) {
	limiter := &ProvisionLimiter{}

	limiter.Check("provision:a.myshopify.com", time.Minute)
	limiter.Reset("provision:a.myshopify.com")
	if !limiter.Check("provision:a.myshopify.com", time.Minute).Allowed {
		t.Error("Reset 后应放行")
	}
}

func TestProvisionLimiter_Concurrent(t *testing.T) {
	limiter := &ProvisionLimiter{}

	var allowed int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.Check("provision:race.myshopify.com", time.Minute).Allowed {
				atomic.AddInt32(&allowed, 1)
			}
		}()
	}
	wg.Wait()

	if allowed != 1 {
		t.Errorf("并发下放行次数 = %d, want 1", allowed)
	}
}
