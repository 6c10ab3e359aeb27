package service

import (
	"context"
	"fmt"

	"shopify_tools_v1_202608/internal/model"
	"shopify_tools_v1_202608/internal/repository"
	"shopify_tools_v1_202608/pkg/shopify"
)

// ==================== 服务 ====================

// ShopService 店铺侧杂项：落地路径、店面地址、商品读取
type ShopService struct {
	sessionRepo  repository.SessionRepository
	pagePathRepo repository.PagePathRepository
	shopify      shopify.Client
}

// NewShopService 创建店铺服务
func NewShopService(sessionRepo repository.SessionRepository, pagePathRepo repository.PagePathRepository, shopifyClient shopify.Client) *ShopService {
	return &ShopService{
		sessionRepo:  sessionRepo,
		pagePathRepo: pagePathRepo,
		shopify:      shopifyClient,
	}
}

func (s *ShopService) requireSession(ctx context.Context, shop string) (*model.ShopSession, error) {
	session, err := s.sessionRepo.GetByShop(ctx, shop)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrNotAuthenticated
	}
	return session, nil
}

// ==================== 落地路径 ====================

// GetPagePath 查询店铺落地路径，未配置时返回 (nil, nil)
func (s *ShopService) GetPagePath(ctx context.Context, shopName string) (*model.PagePath, error) {
	return s.pagePathRepo.GetByShop(ctx, shopName)
}

// SavePagePath 保存落地路径并在店面创建对应页面
// 路径每店只能配置一次，重复保存由唯一约束拒绝。
// 页面创建的 userErrors 作为业务失败返回，不算异常
func (s *ShopService) SavePagePath(ctx context.Context, shopName, path string) (*shopify.Page, []shopify.UserError, error) {
	session, err := s.requireSession(ctx, shopName)
	if err != nil {
		return nil, nil, err
	}

	if _, err := s.pagePathRepo.Save(ctx, shopName, path); err != nil {
		return nil, nil, fmt.Errorf("落地路径保存失败: %w", err)
	}

	title := fmt.Sprintf("%s Page", path)
	return s.shopify.CreatePage(ctx, shopName, session.AccessToken, title, path, true)
}

// ==================== 店面地址 ====================

// StoreURL 组合店面访问地址
// 配置过路径时指向 /pages/{path}，否则指向店铺首页
func (s *ShopService) StoreURL(ctx context.Context, shop string) (string, bool, error) {
	if _, err := s.requireSession(ctx, shop); err != nil {
		return "", false, err
	}

	record, err := s.pagePathRepo.GetByShop(ctx, shop)
	if err != nil {
		return "", false, err
	}
	if record != nil {
		return fmt.Sprintf("https://%s/pages/%s", shop, record.Path), true, nil
	}
	return fmt.Sprintf("https://%s", shop), false, nil
}

// ==================== 商品 ====================

// GetProducts 读取店铺商品（前 10 条，已拍平首图/默认变体）
func (s *ShopService) GetProducts(ctx context.Context, shop string) ([]shopify.Product, error) {
	session, err := s.requireSession(ctx, shop)
	if err != nil {
		return nil, err
	}
	return s.shopify.ListProducts(ctx, shop, session.AccessToken)
}
