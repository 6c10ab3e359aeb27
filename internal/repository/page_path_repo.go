package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"shopify_tools_v1_202608/internal/model"
)

// ==================== 接口定义 ====================

// PagePathRepository 落地页路径仓储接口
type PagePathRepository interface {
	// Save 为店铺创建路径记录，已存在时返回唯一约束错误
	Save(ctx context.Context, shopName, path string) (*model.PagePath, error)
	// GetByShop 查询路径，不存在时返回 (nil, nil)
	GetByShop(ctx context.Context, shopName string) (*model.PagePath, error)
}

// ==================== 仓储实现 ====================

type pagePathRepo struct {
	db *gorm.DB
}

// NewPagePathRepository 创建落地页路径仓储
func NewPagePathRepository(db *gorm.DB) PagePathRepository {
	return &pagePathRepo{db: db}
}

func (r *pagePathRepo) Save(ctx context.Context, shopName, path string) (*model.PagePath, error) {
	record := model.PagePath{
		ShopName: shopName,
		Path:     path,
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *pagePathRepo) GetByShop(ctx context.Context, shopName string) (*model.PagePath, error) {
	var record model.PagePath
	err := r.db.WithContext(ctx).Where("shop_name = ?", shopName).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}
