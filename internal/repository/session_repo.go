package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shopify_tools_v1_202608/internal/model"
)

// ==================== 接口定义 ====================

// SessionRepository 店铺会话仓储接口
// 所有需要访问平台 API 的操作先通过 GetByShop 取会话，
// 取不到会话表示店铺未授权，由上层返回引导重新授权的响应
type SessionRepository interface {
	// Save 按 shop 域名 upsert，刷新 token/scope/更新时间
	Save(ctx context.Context, shop, accessToken, scope string) (*model.ShopSession, error)
	// GetByShop 查询会话，不存在时返回 (nil, nil)
	GetByShop(ctx context.Context, shop string) (*model.ShopSession, error)
	// ListAll 返回全部已授权店铺（GC 任务遍历用）
	ListAll(ctx context.Context) ([]model.ShopSession, error)
}

// ==================== 仓储实现 ====================

type sessionRepo struct {
	db *gorm.DB
}

// NewSessionRepository 创建店铺会话仓储
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepo{db: db}
}

func (r *sessionRepo) Save(ctx context.Context, shop, accessToken, scope string) (*model.ShopSession, error) {
	session := model.ShopSession{
		Shop:        shop,
		AccessToken: accessToken,
		Scope:       scope,
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "shop"}},
			DoUpdates: clause.AssignmentColumns([]string{"access_token", "scope", "updated_at"}),
		}).
		Create(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepo) GetByShop(ctx context.Context, shop string) (*model.ShopSession, error) {
	var session model.ShopSession
	err := r.db.WithContext(ctx).Where("shop = ?", shop).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepo) ListAll(ctx context.Context) ([]model.ShopSession, error) {
	var sessions []model.ShopSession
	err := r.db.WithContext(ctx).Find(&sessions).Error
	return sessions, err
}
