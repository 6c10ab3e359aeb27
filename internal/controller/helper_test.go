package controller_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shopify_tools_v1_202608/internal/controller"
	"shopify_tools_v1_202608/internal/model"
	"shopify_tools_v1_202608/internal/repository"
	"shopify_tools_v1_202608/internal/router"
	"shopify_tools_v1_202608/internal/service"
	"shopify_tools_v1_202608/pkg/shopify"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ==================== 平台客户端桩 ====================

const testSettingsData = `{
	"current": {
		"color_schemes": {
			"scheme-1": {
				"settings": {"background": "#FFFFFF", "text": "#121212"}
			}
		}
	}
}`

type fakeShopifyClient struct {
	themes     []shopify.Theme
	tags       []shopify.ScriptTag
	nextTagID  int64
	token      *shopify.AccessToken
	userErrors []shopify.UserError
	products   []shopify.Product

	deletedIDs []string
}

var _ shopify.Client = (*fakeShopifyClient)(nil)

func newFakeShopifyClient() *fakeShopifyClient {
	return &fakeShopifyClient{
		themes:    []shopify.Theme{{ID: 100, Name: "Dawn", Role: "main"}},
		nextTagID: 1000,
		token:     &shopify.AccessToken{AccessToken: "granted-token", Scope: "scopes"},
	}
}

func (f *fakeShopifyClient) ExchangeAccessToken(ctx context.Context, shop, clientID, clientSecret, code string) (*shopify.AccessToken, error) {
	return f.token, nil
}

func (f *fakeShopifyClient) ListThemes(ctx context.Context, shop, token string) ([]shopify.Theme, error) {
	return f.themes, nil
}

func (f *fakeShopifyClient) GetAsset(ctx context.Context, shop, token string, themeID int64, key string) (string, error) {
	return testSettingsData, nil
}

func (f *fakeShopifyClient) ListScriptTags(ctx context.Context, shop, token string) ([]shopify.ScriptTag, error) {
	return append([]shopify.ScriptTag{}, f.tags...), nil
}

func (f *fakeShopifyClient) CreateScriptTag(ctx context.Context, shop, token, src, event string) (*shopify.ScriptTag, error) {
	f.nextTagID++
	tag := shopify.ScriptTag{ID: fmt.Sprintf("%d", f.nextTagID), Src: src}
	f.tags = append(f.tags, tag)
	return &tag, nil
}

func (f *fakeShopifyClient) DeleteScriptTag(ctx context.Context, shop, token, scriptTagID string) error {
	f.deletedIDs = append(f.deletedIDs, scriptTagID)
	kept := make([]shopify.ScriptTag, 0, len(f.tags))
	for _, tag := range f.tags {
		if tag.ID != scriptTagID {
			kept = append(kept, tag)
		}
	}
	f.tags = kept
	return nil
}

func (f *fakeShopifyClient) CreatePage(ctx context.Context, shop, token, title, handle string, published bool) (*shopify.Page, []shopify.UserError, error) {
	if len(f.userErrors) > 0 {
		return nil, f.userErrors, nil
	}
	return &shopify.Page{ID: "gid://shopify/Page/1", Title: title, Handle: handle}, nil, nil
}

func (f *fakeShopifyClient) ListProducts(ctx context.Context, shop, token string) ([]shopify.Product, error) {
	return f.products, nil
}

// fakeGenerator 固定返回预置文本
type fakeGenerator struct {
	calls int
}

func (g *fakeGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	g.calls++
	if g.calls%2 == 1 {
		return "<div>popup</div>", nil
	}
	return "<div>tool</div>", nil
}

// ==================== 测试环境 ====================

type testEnv struct {
	router      *gin.Engine
	client      *fakeShopifyClient
	db          *gorm.DB
	sessionRepo repository.SessionRepository
	contentRepo repository.LLMResponseRepository
	installRepo repository.InstallationRepository
	pathRepo    repository.PagePathRepository
}

func setupTestEnv(t *testing.T) *testEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	err = db.AutoMigrate(
		&model.ShopSession{},
		&model.LLMResponse{},
		&model.PagePath{},
		&model.Bookmark{},
		&model.ToolInstallation{},
	)
	if err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}

	sessionRepo := repository.NewSessionRepository(db)
	contentRepo := repository.NewLLMResponseRepository(db)
	pathRepo := repository.NewPagePathRepository(db)
	installRepo := repository.NewInstallationRepository(db)
	bookmarkRepo := repository.NewBookmarkRepository(db)

	client := newFakeShopifyClient()

	provisionSvc := service.NewProvisionService(
		sessionRepo, contentRepo, pathRepo, installRepo,
		client, &fakeGenerator{},
		"https://loader.example.com/ai-tools.js",
	)
	authSvc := service.NewAuthService(&service.AuthConfig{
		ApiKey:      "test-key",
		ApiSecret:   "test-secret",
		RedirectURI: "https://app.example.com/auth/callback",
		AppURL:      "https://app.example.com",
	}, sessionRepo, client)
	shopSvc := service.NewShopService(sessionRepo, pathRepo, client)
	bookmarkSvc := service.NewBookmarkService(bookmarkRepo, sessionRepo)
	analyticsSvc := service.NewAnalyticsService(installRepo)

	engine := router.SetupRouter(&router.Controllers{
		Auth:      controller.NewAuthController(authSvc),
		Tool:      controller.NewToolController(provisionSvc),
		Page:      controller.NewPageController(shopSvc),
		Bookmark:  controller.NewBookmarkController(bookmarkSvc),
		Analytics: controller.NewAnalyticsController(analyticsSvc),
		Product:   controller.NewProductController(shopSvc),
	})

	return &testEnv{
		router:      engine,
		client:      client,
		db:          db,
		sessionRepo: sessionRepo,
		contentRepo: contentRepo,
		installRepo: installRepo,
		pathRepo:    pathRepo,
	}
}

func testCtx() context.Context {
	return context.Background()
}

// authenticate 预置店铺会话
func (e *testEnv) authenticate(t *testing.T, shop string) {
	if _, err := e.sessionRepo.Save(context.Background(), shop, "token", "scopes"); err != nil {
		t.Fatalf("预置会话失败: %v", err)
	}
}

// ==================== 请求工具 ====================

func getJSON(t *testing.T, r *gin.Engine, path string) (int, map[string]interface{}) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", path, nil)
	r.ServeHTTP(w, req)
	return w.Code, decodeBody(t, w.Body.Bytes())
}

func postJSON(t *testing.T, r *gin.Engine, path string, body interface{}) (int, map[string]interface{}) {
	encoded, _ := json.Marshal(body)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", path, bytes.NewReader(encoded))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w.Code, decodeBody(t, w.Body.Bytes())
}

func decodeBody(t *testing.T, body []byte) map[string]interface{} {
	result := map[string]interface{}{}
	if len(body) == 0 {
		return result
	}
	if err := json.Unmarshal(body, &result); err != nil {
		// 非对象响应（如数组/纯文本）由调用方自行解析
		return nil
	}
	return result
}
