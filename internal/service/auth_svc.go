package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"shopify_tools_v1_202608/internal/repository"
	"shopify_tools_v1_202608/pkg/shopify"
	"shopify_tools_v1_202608/pkg/utils"
)

// DefaultScopes 应用需要的全部权限
const DefaultScopes = "read_products,write_products,read_themes,write_themes,write_online_store_pages,read_script_tags,write_script_tags,write_content"

var (
	// ErrInvalidShopDomain shop 参数不是 .myshopify.com 域名
	ErrInvalidShopDomain = errors.New("invalid shop domain")
	// ErrInvalidState 回调 state 校验失败（超时或被篡改）
	ErrInvalidState = errors.New("invalid or expired oauth state")
)

// ==================== 配置 ====================

// AuthConfig OAuth 配置
type AuthConfig struct {
	ApiKey      string // 应用 client_id
	ApiSecret   string // 应用 client_secret
	Scopes      string // 为空时使用 DefaultScopes
	RedirectURI string // 必须与应用后台配置完全一致
	AppURL      string // 授权完成后跳回的应用地址
}

// ==================== 服务 ====================

type AuthService struct {
	cfg         *AuthConfig
	sessionRepo repository.SessionRepository
	shopify     shopify.Client
}

// NewAuthService 创建授权服务
func NewAuthService(cfg *AuthConfig, sessionRepo repository.SessionRepository, shopifyClient shopify.Client) *AuthService {
	if cfg.Scopes == "" {
		cfg.Scopes = DefaultScopes
	}
	return &AuthService{
		cfg:         cfg,
		sessionRepo: sessionRepo,
		shopify:     shopifyClient,
	}
}

// ValidateShopDomain 校验 shop 参数
func ValidateShopDomain(shop string) error {
	if shop == "" || !strings.Contains(shop, ".myshopify.com") {
		return ErrInvalidShopDomain
	}
	return nil
}

// BuildAuthURL 生成平台授权跳转地址
// state 随机生成并缓存，回调时校验
func (s *AuthService) BuildAuthURL(shop string) (string, error) {
	if err := ValidateShopDomain(shop); err != nil {
		return "", err
	}

	state := uuid.NewString()
	utils.SetCache(state, shop)

	authURL := fmt.Sprintf(
		"https://%s/admin/oauth/authorize?client_id=%s&scope=%s&redirect_uri=%s&state=%s",
		shop,
		s.cfg.ApiKey,
		url.QueryEscape(s.cfg.Scopes),
		url.QueryEscape(s.cfg.RedirectURI),
		state,
	)
	return authURL, nil
}

// HandleCallback 处理授权回调：校验 state -> code 换 token -> 会话入库
// 返回授权完成后应跳转的应用地址
func (s *AuthService) HandleCallback(ctx context.Context, shop, code, state string) (string, error) {
	if err := ValidateShopDomain(shop); err != nil {
		return "", err
	}
	if code == "" {
		return "", errors.New("missing authorization code")
	}

	// state 校验，用完即焚
	cachedShop, ok := utils.GetCache(state)
	if !ok || cachedShop != shop {
		return "", ErrInvalidState
	}
	utils.DeleteCache(state)

	token, err := s.shopify.ExchangeAccessToken(ctx, shop, s.cfg.ApiKey, s.cfg.ApiSecret, code)
	if err != nil {
		return "", fmt.Errorf("换取 Token 失败: %w", err)
	}

	if _, err := s.sessionRepo.Save(ctx, shop, token.AccessToken, token.Scope); err != nil {
		return "", fmt.Errorf("店铺会话入库失败: %w", err)
	}

	log.Printf("[Auth] 店铺 [%s] 授权成功, scopes: %s", shop, token.Scope)

	redirect := fmt.Sprintf("%s/?shop=%s&authenticated=true", s.cfg.AppURL, url.QueryEscape(shop))
	return redirect, nil
}
