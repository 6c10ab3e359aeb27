package task

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"shopify_tools_v1_202608/internal/repository"
	"shopify_tools_v1_202608/pkg/shopify"
)

// ContentGCTask 孤儿内容回收任务
// 生成内容只写不删，时间久了会积累大量不再被任何脚本标签引用的记录。
// 任务遍历已授权店铺的脚本标签，收集仍被引用的内容标识，
// 删除超过保留期且无引用的记录
type ContentGCTask struct {
	ContentRepo repository.LLMResponseRepository
	SessionRepo repository.SessionRepository
	Shopify     shopify.Client
	Cron        *cron.Cron

	// 保留期，创建时间在此之内的记录不回收
	maxAge time.Duration
	// 控制并发查询店铺的数量
	concurrencyLimit int
}

// NewContentGCTask 创建回收任务
func NewContentGCTask(
	contentRepo repository.LLMResponseRepository,
	sessionRepo repository.SessionRepository,
	shopifyClient shopify.Client,
	maxAge time.Duration,
) *ContentGCTask {
	if maxAge <= 0 {
		maxAge = 30 * 24 * time.Hour // 默认保留 30 天
	}
	return &ContentGCTask{
		ContentRepo:      contentRepo,
		SessionRepo:      sessionRepo,
		Shopify:          shopifyClient,
		Cron:             cron.New(cron.WithSeconds()),
		maxAge:           maxAge,
		concurrencyLimit: 10,
	}
}

// Start 启动定时任务
func (t *ContentGCTask) Start() {
	// 每天凌晨 4 点执行一次
	_, err := t.Cron.AddFunc("0 0 4 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		t.gcJob(ctx)
	})
	if err != nil {
		log.Fatalf("无法启动内容回收任务: %v", err)
	}

	t.Cron.Start()
	log.Println("内容回收任务已启动 (每天 04:00 执行)")
}

// gcJob 一轮回收
func (t *ContentGCTask) gcJob(ctx context.Context) {
	cutoff := time.Now().Add(-t.maxAge)
	candidates, err := t.ContentRepo.ListCreatedBefore(ctx, cutoff)
	if err != nil {
		log.Printf("[GC] 过期内容查询失败: %v", err)
		return
	}
	if len(candidates) == 0 {
		return
	}

	// 收集仍被脚本标签引用的内容标识
	live, err := t.collectLiveIDs(ctx)
	if err != nil {
		log.Printf("[GC] 引用收集失败，本轮跳过: %v", err)
		return
	}

	var stale []string
	for _, candidate := range candidates {
		if _, ok := live[candidate.ID]; !ok {
			stale = append(stale, candidate.ID)
		}
	}
	if len(stale) == 0 {
		log.Printf("[GC] %d 条过期内容均仍被引用，无需回收", len(candidates))
		return
	}

	deleted, err := t.ContentRepo.DeleteByIDs(ctx, stale)
	if err != nil {
		log.Printf("[GC] 删除失败: %v", err)
		return
	}
	log.Printf("[GC] 本轮回收孤儿内容 %d 条", deleted)
}

// collectLiveIDs 遍历全部已授权店铺，取脚本标签 src 中的 id 参数
func (t *ContentGCTask) collectLiveIDs(ctx context.Context) (map[string]struct{}, error) {
	sessions, err := t.SessionRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	live := make(map[string]struct{})
	var mu sync.Mutex
	var failed int32

	sem := make(chan struct{}, t.concurrencyLimit)
	var wg sync.WaitGroup

	for _, session := range sessions {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		sem <- struct{}{}
		wg.Add(1)

		go func(shop, token string) {
			defer wg.Done()
			defer func() { <-sem }()

			tags, err := t.Shopify.ListScriptTags(ctx, shop, token)
			if err != nil {
				// 任一店铺查不到引用就中止整轮，避免误删仍被引用的内容
				atomic.AddInt32(&failed, 1)
				log.Printf("[GC] 店铺 [%s] 脚本查询失败: %v", shop, err)
				return
			}

			mu.Lock()
			for _, tag := range tags {
				if id := extractContentID(tag.Src); id != "" {
					live[id] = struct{}{}
				}
			}
			mu.Unlock()
		}(session.Shop, session.AccessToken)
	}

	wg.Wait()
	if failed > 0 {
		return nil, fmt.Errorf("%d 个店铺的脚本标签查询失败", failed)
	}
	return live, nil
}

// extractContentID 从脚本地址中取 id 查询参数
func extractContentID(src string) string {
	parsed, err := url.Parse(src)
	if err != nil {
		return ""
	}
	return parsed.Query().Get("id")
}
