package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"

	"shopify_tools_v1_202608/internal/model"
	"shopify_tools_v1_202608/internal/repository"
)

// 收藏操作
const (
	BookmarkActionAdd    = "add"
	BookmarkActionRemove = "remove"
	BookmarkActionGet    = "get"
	BookmarkActionClear  = "clear"
)

// ErrInvalidAction 不认识的收藏操作
var ErrInvalidAction = errors.New("invalid action")

// ==================== 服务 ====================

type BookmarkService struct {
	bookmarkRepo repository.BookmarkRepository
	sessionRepo  repository.SessionRepository
}

// NewBookmarkService 创建收藏服务
func NewBookmarkService(bookmarkRepo repository.BookmarkRepository, sessionRepo repository.SessionRepository) *BookmarkService {
	return &BookmarkService{
		bookmarkRepo: bookmarkRepo,
		sessionRepo:  sessionRepo,
	}
}

// Manage 收藏管理入口
// add 幂等（已存在不重复插入），remove 幂等（不存在不报错），
// get/clear 忽略 title。返回操作后的完整列表
func (s *BookmarkService) Manage(ctx context.Context, shopName, action, title string) ([]string, error) {
	// 会话校验：收藏也属于店铺数据，未授权店铺不允许操作
	session, err := s.sessionRepo.GetByShop(ctx, shopName)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrNotAuthenticated
	}

	// 取或建收藏记录
	bookmark, err := s.bookmarkRepo.GetByShop(ctx, shopName)
	if err != nil {
		return nil, err
	}
	if bookmark == nil {
		bookmark = &model.Bookmark{
			ShopName: shopName,
			Titles:   datatypes.JSON("[]"),
		}
		if err := s.bookmarkRepo.Create(ctx, bookmark); err != nil {
			return nil, err
		}
	}

	titles := make([]string, 0)
	if len(bookmark.Titles) > 0 {
		if err := json.Unmarshal(bookmark.Titles, &titles); err != nil {
			return nil, fmt.Errorf("收藏数据解析失败: %v", err)
		}
	}

	switch action {
	case BookmarkActionAdd:
		if title != "" && !contains(titles, title) {
			titles = append(titles, title)
		}
	case BookmarkActionRemove:
		if title != "" {
			filtered := make([]string, 0, len(titles))
			for _, t := range titles {
				if t != title {
					filtered = append(filtered, t)
				}
			}
			titles = filtered
		}
	case BookmarkActionGet:
		// 只读，直接返回当前列表
	case BookmarkActionClear:
		titles = make([]string, 0)
	default:
		return nil, ErrInvalidAction
	}

	encoded, err := json.Marshal(titles)
	if err != nil {
		return nil, err
	}
	if err := s.bookmarkRepo.UpdateTitles(ctx, shopName, datatypes.JSON(encoded)); err != nil {
		return nil, err
	}

	return titles, nil
}

func contains(list []string, target string) bool {
	for _, item := range list {
		if item == target {
			return true
		}
	}
	return false
}
