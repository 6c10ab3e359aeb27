package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"

	"shopify_tools_v1_202608/internal/model"
	"shopify_tools_v1_202608/internal/repository"
	"shopify_tools_v1_202608/pkg/shopify"
	"shopify_tools_v1_202608/pkg/utils"
)

// 业务错误
var (
	// ErrNotAuthenticated 店铺没有会话记录，需引导重新授权
	ErrNotAuthenticated = errors.New("shop not authenticated")
)

// 生成内容标识长度，与旧版 13 位 base36 标识保持一致
const contentIDLength = 13

// InstallResult 一次安装的返回结果
type InstallResult struct {
	ShopURL   string
	Shop      string
	ContentID string
}

// ==================== 服务 ====================

// ProvisionService 工具安装编排
// 串行执行：会话 -> 清理旧脚本 -> 主题配色 -> 落地路径 -> 两次生成 -> 入库 -> 挂载脚本。
// 步骤之间没有补偿回滚，失败即中止并把原因返回调用方
type ProvisionService struct {
	sessionRepo  repository.SessionRepository
	contentRepo  repository.LLMResponseRepository
	pagePathRepo repository.PagePathRepository
	installRepo  repository.InstallationRepository
	shopify      shopify.Client
	ai           TextGenerator

	// 店面加载脚本地址，id/name/path 以 query 参数传入
	loaderURL string
}

// NewProvisionService 创建安装编排服务
func NewProvisionService(
	sessionRepo repository.SessionRepository,
	contentRepo repository.LLMResponseRepository,
	pagePathRepo repository.PagePathRepository,
	installRepo repository.InstallationRepository,
	shopifyClient shopify.Client,
	ai TextGenerator,
	loaderURL string,
) *ProvisionService {
	return &ProvisionService{
		sessionRepo:  sessionRepo,
		contentRepo:  contentRepo,
		pagePathRepo: pagePathRepo,
		installRepo:  installRepo,
		shopify:      shopifyClient,
		ai:           ai,
		loaderURL:    loaderURL,
	}
}

// requireSession 取店铺会话，缺失返回 ErrNotAuthenticated
func (s *ProvisionService) requireSession(ctx context.Context, shop string) (*model.ShopSession, error) {
	session, err := s.sessionRepo.GetByShop(ctx, shop)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrNotAuthenticated
	}
	return session, nil
}

// ==================== 安装 ====================

// InstallTool 为店铺安装一个 AI 工具
// 每个店铺同时只保留一个工具：安装前先删掉已有的脚本标签
func (s *ProvisionService) InstallTool(ctx context.Context, shop, toolName string) (*InstallResult, error) {
	// 1. 会话
	session, err := s.requireSession(ctx, shop)
	if err != nil {
		return nil, err
	}

	// 2. 清理旧脚本，失败只记日志不中止（删除是尽力而为的清理，不影响新安装）
	s.removeExistingScript(ctx, shop, session.AccessToken)

	// 3. 主题配色，是生成提示词的必要输入，取不到则中止
	colors, err := s.fetchThemeColors(ctx, shop, session.AccessToken)
	if err != nil {
		return nil, err
	}

	// 4. 落地路径，未配置时退回 "default"
	path := "default"
	if record, err := s.pagePathRepo.GetByShop(ctx, shop); err != nil {
		return nil, err
	} else if record != nil {
		path = record.Path
	}

	// 5. 生成内容标识（随机即可，不做唯一性探测）
	id, err := utils.GenerateRandomString(contentIDLength)
	if err != nil {
		return nil, fmt.Errorf("生成内容标识失败: %v", err)
	}

	// 6. 两次独立生成：弹窗广告 + 工具主体，都成功才继续
	popup, err := s.ai.GenerateText(ctx, BuildPopupPrompt(toolName, path))
	if err != nil {
		return nil, fmt.Errorf("弹窗生成失败: %w", err)
	}
	landing, err := s.ai.GenerateText(ctx, BuildToolPrompt(toolName, colors))
	if err != nil {
		return nil, fmt.Errorf("工具生成失败: %w", err)
	}

	// 7. 内容入库，必须先于脚本挂载，否则店面脚本会引用到不存在的内容
	if err := s.contentRepo.Create(ctx, &model.LLMResponse{
		ID:      id,
		Landing: landing,
		Popup:   popup,
	}); err != nil {
		return nil, fmt.Errorf("生成内容入库失败: %w", err)
	}

	// 8. 挂载新脚本
	src := fmt.Sprintf("%s?id=%s&name=%s&path=%s",
		s.loaderURL,
		url.QueryEscape(id),
		url.QueryEscape(toolName),
		url.QueryEscape(path),
	)
	if _, err := s.shopify.CreateScriptTag(ctx, shop, session.AccessToken, src, "onload"); err != nil {
		return nil, err
	}

	log.Printf("[Provision] 店铺 [%s] 安装工具 [%s] 成功, id=%s", shop, toolName, id)

	return &InstallResult{
		ShopURL:   fmt.Sprintf("https://%s/pages/%s", shop, path),
		Shop:      shop,
		ContentID: id,
	}, nil
}

// removeExistingScript 删除店铺现有的第一个脚本标签
// 列表或删除失败都不阻断安装流程
func (s *ProvisionService) removeExistingScript(ctx context.Context, shop, token string) {
	tags, err := s.shopify.ListScriptTags(ctx, shop, token)
	if err != nil {
		log.Printf("[Provision] 店铺 [%s] 查询旧脚本失败: %v", shop, err)
		return
	}
	if len(tags) == 0 {
		return
	}
	if err := s.shopify.DeleteScriptTag(ctx, shop, token, tags[0].ID); err != nil {
		log.Printf("[Provision] 店铺 [%s] 删除旧脚本 [%s] 失败: %v", shop, tags[0].ID, err)
	}
}

// fetchThemeColors 取生效主题的 scheme-1 配色
func (s *ProvisionService) fetchThemeColors(ctx context.Context, shop, token string) (map[string]interface{}, error) {
	themes, err := s.shopify.ListThemes(ctx, shop, token)
	if err != nil {
		return nil, err
	}

	var mainTheme *shopify.Theme
	for i := range themes {
		if themes[i].Role == "main" {
			mainTheme = &themes[i]
			break
		}
	}
	if mainTheme == nil {
		return nil, fmt.Errorf("店铺没有生效主题")
	}

	value, err := s.shopify.GetAsset(ctx, shop, token, mainTheme.ID, shopify.SettingsDataKey)
	if err != nil {
		return nil, err
	}
	return shopify.ExtractSchemeColors(value)
}

// ==================== 脚本管理 ====================

// ListScripts 查询店铺当前挂载的脚本标签
func (s *ProvisionService) ListScripts(ctx context.Context, shop string) ([]shopify.ScriptTag, error) {
	session, err := s.requireSession(ctx, shop)
	if err != nil {
		return nil, err
	}
	return s.shopify.ListScriptTags(ctx, shop, session.AccessToken)
}

// RemoveTool 按脚本标签 id 卸载工具
func (s *ProvisionService) RemoveTool(ctx context.Context, shop, scriptTagID string) error {
	session, err := s.requireSession(ctx, shop)
	if err != nil {
		return err
	}
	return s.shopify.DeleteScriptTag(ctx, shop, session.AccessToken, scriptTagID)
}

// ==================== 内容读取 ====================

// FetchContent 店面加载脚本按 id 读取生成内容
// landingPage 为 true 时计一次安装量
func (s *ProvisionService) FetchContent(ctx context.Context, id, toolName string, landingPage bool) (*model.LLMResponse, error) {
	if landingPage && toolName != "" {
		if err := s.installRepo.Increment(ctx, toolName); err != nil {
			return nil, err
		}
	}
	return s.contentRepo.GetByID(ctx, id)
}
