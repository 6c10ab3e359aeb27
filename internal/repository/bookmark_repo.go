package repository

import (
	"context"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"shopify_tools_v1_202608/internal/model"
)

// ==================== 接口定义 ====================

// BookmarkRepository 收藏仓储接口
// titles 以 JSON 数组存储，增删逻辑在 service 层完成
type BookmarkRepository interface {
	// GetByShop 查询收藏记录，不存在时返回 (nil, nil)
	GetByShop(ctx context.Context, shopName string) (*model.Bookmark, error)
	Create(ctx context.Context, bookmark *model.Bookmark) error
	UpdateTitles(ctx context.Context, shopName string, titles datatypes.JSON) error
}

// ==================== 仓储实现 ====================

type bookmarkRepo struct {
	db *gorm.DB
}

// NewBookmarkRepository 创建收藏仓储
func NewBookmarkRepository(db *gorm.DB) BookmarkRepository {
	return &bookmarkRepo{db: db}
}

func (r *bookmarkRepo) GetByShop(ctx context.Context, shopName string) (*model.Bookmark, error) {
	var bookmark model.Bookmark
	err := r.db.WithContext(ctx).Where("shop_name = ?", shopName).First(&bookmark).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &bookmark, nil
}

func (r *bookmarkRepo) Create(ctx context.Context, bookmark *model.Bookmark) error {
	return r.db.WithContext(ctx).Create(bookmark).Error
}

func (r *bookmarkRepo) UpdateTitles(ctx context.Context, shopName string, titles datatypes.JSON) error {
	return r.db.WithContext(ctx).
		Model(&model.Bookmark{}).
		Where("shop_name = ?", shopName).
		Update("titles", titles).Error
}
