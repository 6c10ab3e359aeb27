package middleware

import (
	"sync"
	"time"
)

// ==================== ProvisionLimiter 安装冷却 ====================

// ProvisionLimiter 安装操作限流器
// 同一店铺的安装是多步远程编排，短时间重复触发会互相删除对方刚装好的脚本，
// 这里按店铺加冷却窗口收窄并发竞争
type ProvisionLimiter struct {
	locks sync.Map // key -> *lockEntry
}

// lockEntry 锁条目
type lockEntry struct {
	lastTime time.Time
	mu       sync.Mutex
}

// 全局限流器实例
var globalProvisionLimiter = &ProvisionLimiter{}

// GetProvisionLimiter 获取全局限流器
func GetProvisionLimiter() *ProvisionLimiter {
	return globalProvisionLimiter
}

// ==================== 限流检查 ====================

// CheckResult 检查结果
type CheckResult struct {
	Allowed    bool          // 是否允许
	RetryAfter time.Duration // 剩余冷却时间
}

// Check 检查是否允许执行
// key: 限流键，如 "provision:example.myshopify.com"
// interval: 冷却间隔
func (r *ProvisionLimiter) Check(key string, interval time.Duration) CheckResult {
	actual, _ := r.locks.LoadOrStore(key, &lockEntry{})
	entry := actual.(*lockEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(entry.lastTime)

	if elapsed < interval {
		return CheckResult{
			Allowed:    false,
			RetryAfter: interval - elapsed,
		}
	}

	entry.lastTime = now
	return CheckResult{Allowed: true}
}

// Reset 清除某个键的冷却状态（测试用）
func (r *ProvisionLimiter) Reset(key string) {
	r.locks.Delete(key)
}
