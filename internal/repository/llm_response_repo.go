package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"shopify_tools_v1_202608/internal/model"
)

// ==================== 接口定义 ====================

// LLMResponseRepository 生成内容仓储接口
// 记录一次写入后只读，过期孤儿记录由 GC 任务清理
type LLMResponseRepository interface {
	Create(ctx context.Context, resp *model.LLMResponse) error
	// GetByID 按标识查询，不存在时返回 (nil, nil)
	GetByID(ctx context.Context, id string) (*model.LLMResponse, error)

	// GC 相关
	ListCreatedBefore(ctx context.Context, cutoff time.Time) ([]model.LLMResponse, error)
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
}

// ==================== 仓储实现 ====================

type llmResponseRepo struct {
	db *gorm.DB
}

// NewLLMResponseRepository 创建生成内容仓储
func NewLLMResponseRepository(db *gorm.DB) LLMResponseRepository {
	return &llmResponseRepo{db: db}
}

func (r *llmResponseRepo) Create(ctx context.Context, resp *model.LLMResponse) error {
	return r.db.WithContext(ctx).Create(resp).Error
}

func (r *llmResponseRepo) GetByID(ctx context.Context, id string) (*model.LLMResponse, error) {
	var resp model.LLMResponse
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&resp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (r *llmResponseRepo) ListCreatedBefore(ctx context.Context, cutoff time.Time) ([]model.LLMResponse, error) {
	var list []model.LLMResponse
	err := r.db.WithContext(ctx).
		Select("id", "created_at").
		Where("created_at < ?", cutoff).
		Find(&list).Error
	return list, err
}

func (r *llmResponseRepo) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&model.LLMResponse{})
	return result.RowsAffected, result.Error
}
