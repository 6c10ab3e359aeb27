package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shopify_tools_v1_202608/internal/model"
	"shopify_tools_v1_202608/internal/repository"
	"shopify_tools_v1_202608/pkg/shopify"
)

// ==================== 测试桩 ====================

// 主题 scheme-1 配色样例，与店面 settings_data.json 结构一致
const testSettingsData = `{
	"current": {
		"color_schemes": {
			"scheme-1": {
				"settings": {
					"background": "#FFFFFF",
					"text": "#121212"
				}
			}
		}
	}
}`

// fakeShopifyClient 可编程的平台客户端桩
type fakeShopifyClient struct {
	themes     []shopify.Theme
	settings   string
	tags       []shopify.ScriptTag
	nextTagID  int64
	token      *shopify.AccessToken
	page       *shopify.Page
	userErrors []shopify.UserError
	products   []shopify.Product

	listTagsErr  error
	deleteTagErr error
	createTagErr error
	listThemeErr error

	deletedIDs  []string
	createdSrcs []string
}

var _ shopify.Client = (*fakeShopifyClient)(nil)

func newFakeShopifyClient() *fakeShopifyClient {
	return &fakeShopifyClient{
		themes:    []shopify.Theme{{ID: 100, Name: "Dawn", Role: "main"}},
		settings:  testSettingsData,
		nextTagID: 1000,
	}
}

func (f *fakeShopifyClient) ExchangeAccessToken(ctx context.Context, shop, clientID, clientSecret, code string) (*shopify.AccessToken, error) {
	if f.token == nil {
		return nil, fmt.Errorf("no token configured")
	}
	return f.token, nil
}

func (f *fakeShopifyClient) ListThemes(ctx context.Context, shop, token string) ([]shopify.Theme, error) {
	if f.listThemeErr != nil {
		return nil, f.listThemeErr
	}
	return f.themes, nil
}

func (f *fakeShopifyClient) GetAsset(ctx context.Context, shop, token string, themeID int64, key string) (string, error) {
	return f.settings, nil
}

func (f *fakeShopifyClient) ListScriptTags(ctx context.Context, shop, token string) ([]shopify.ScriptTag, error) {
	if f.listTagsErr != nil {
		return nil, f.listTagsErr
	}
	return append([]shopify.ScriptTag{}, f.tags...), nil
}

func (f *fakeShopifyClient) CreateScriptTag(ctx context.Context, shop, token, src, event string) (*shopify.ScriptTag, error) {
	if f.createTagErr != nil {
		return nil, f.createTagErr
	}
	f.nextTagID++
	tag := shopify.ScriptTag{ID: fmt.Sprintf("%d", f.nextTagID), Src: src}
	f.tags = append(f.tags, tag)
	f.createdSrcs = append(f.createdSrcs, src)
	return &tag, nil
}

func (f *fakeShopifyClient) DeleteScriptTag(ctx context.Context, shop, token, scriptTagID string) error {
	f.deletedIDs = append(f.deletedIDs, scriptTagID)
	if f.deleteTagErr != nil {
		return f.deleteTagErr
	}
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
	if f.page != nil {
		return f.page, nil, nil
	}
	return &shopify.Page{ID: "gid://shopify/Page/1", Title: title, Handle: handle}, nil, nil
}

func (f *fakeShopifyClient) ListProducts(ctx context.Context, shop, token string) ([]shopify.Product, error) {
	return f.products, nil
}

// fakeGenerator 按调用次序返回预置文本，第一次是弹窗、第二次是工具主体
type fakeGenerator struct {
	outputs []string
	err     error
	prompts []string
}

func (g *fakeGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	out := g.outputs[len(g.prompts)-1]
	return out, nil
}

// ==================== 测试环境 ====================

type testRepos struct {
	session repository.SessionRepository
	content repository.LLMResponseRepository
	path    repository.PagePathRepository
	install repository.InstallationRepository
	mark    repository.BookmarkRepository
	db      *gorm.DB
}

func setupServiceTestDB(t *testing.T) *testRepos {
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

	return &testRepos{
		session: repository.NewSessionRepository(db),
		content: repository.NewLLMResponseRepository(db),
		path:    repository.NewPagePathRepository(db),
		install: repository.NewInstallationRepository(db),
		mark:    repository.NewBookmarkRepository(db),
		db:      db,
	}
}

func newTestProvisionService(repos *testRepos, client *fakeShopifyClient, gen TextGenerator) *ProvisionService {
	return NewProvisionService(
		repos.session, repos.content, repos.path, repos.install,
		client, gen,
		"https://loader.example.com/ai-tools.js",
	)
}

// ==================== 安装 ====================

func TestProvision_InstallUnauthenticated(t *testing.T) {
	repos := setupServiceTestDB(t)
	svc := newTestProvisionService(repos, newFakeShopifyClient(), &fakeGenerator{outputs: []string{"p", "l"}})

	_, err := svc.InstallTool(context.Background(), "test.myshopify.com", "Fit Tool")
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("err = %v, want ErrNotAuthenticated", err)
	}
}

func TestProvision_InstallSuccess(t *testing.T) {
	repos := setupServiceTestDB(t)
	client := newFakeShopifyClient()
	client.tags = []shopify.ScriptTag{{ID: "gid://shopify/ScriptTag/111", Src: "https://old/loader.js"}}
	gen := &fakeGenerator{outputs: []string{"<div>popup</div>", "<div>tool</div>"}}
	svc := newTestProvisionService(repos, client, gen)
	ctx := context.Background()

	repos.session.Save(ctx, "test.myshopify.com", "token-1", "scopes")

	result, err := svc.InstallTool(ctx, "test.myshopify.com", "Fit Tool")
	if err != nil {
		t.Fatalf("InstallTool() error = %v", err)
	}

	// 旧脚本被清理
	if len(client.deletedIDs) != 1 || client.deletedIDs[0] != "gid://shopify/ScriptTag/111" {
		t.Errorf("删除的旧脚本 = %v", client.deletedIDs)
	}

	// 新脚本指向新内容
	if len(client.createdSrcs) != 1 {
		t.Fatalf("创建的脚本数 = %d, want 1", len(client.createdSrcs))
	}
	src := client.createdSrcs[0]
	if !strings.Contains(src, "id="+result.ContentID) {
		t.Errorf("脚本地址未携带内容标识: %s", src)
	}
	if !strings.Contains(src, "name=Fit+Tool") {
		t.Errorf("脚本地址未携带工具名: %s", src)
	}
	if !strings.Contains(src, "path=default") {
		t.Errorf("未配置路径时应退回 default: %s", src)
	}

	// 内容已入库
	if len(result.ContentID) != 13 {
		t.Errorf("内容标识长度 = %d, want 13", len(result.ContentID))
	}
	content, _ := repos.content.GetByID(ctx, result.ContentID)
	if content == nil {
		t.Fatal("生成内容应已入库")
	}
	if content.Popup != "<div>popup</div>" || content.Landing != "<div>tool</div>" {
		t.Errorf("内容写入顺序错误: %+v", content)
	}

	if result.ShopURL != "https://test.myshopify.com/pages/default" {
		t.Errorf("ShopURL = %s", result.ShopURL)
	}
}

func TestProvision_InstallUsesConfiguredPath(t *testing.T) {
	repos := setupServiceTestDB(t)
	client := newFakeShopifyClient()
	gen := &fakeGenerator{outputs: []string{"p", "l"}}
	svc := newTestProvisionService(repos, client, gen)
	ctx := context.Background()

	repos.session.Save(ctx, "test.myshopify.com", "token-1", "scopes")
	repos.path.Save(ctx, "test.myshopify.com", "ai-tools")

	result, err := svc.InstallTool(ctx, "test.myshopify.com", "Fit Tool")
	if err != nil {
		t.Fatalf("InstallTool() error = %v", err)
	}

	if !strings.Contains(client.createdSrcs[0], "path=ai-tools") {
		t.Errorf("脚本地址未携带配置路径: %s", client.createdSrcs[0])
	}
	if result.ShopURL != "https://test.myshopify.com/pages/ai-tools" {
		t.Errorf("ShopURL = %s", result.ShopURL)
	}
	// 弹窗提示词应引用落地路径
	if !strings.Contains(gen.prompts[0], "/pages/ai-tools") {
		t.Errorf("弹窗提示词未包含路径: %s", gen.prompts[0])
	}
}

func TestProvision_InstallNoMainTheme(t *testing.T) {
	repos := setupServiceTestDB(t)
	client := newFakeShopifyClient()
	client.themes = []shopify.Theme{{ID: 100, Name: "Draft", Role: "unpublished"}}
	svc := newTestProvisionService(repos, client, &fakeGenerator{outputs: []string{"p", "l"}})
	ctx := context.Background()

	repos.session.Save(ctx, "test.myshopify.com", "token-1", "scopes")

	if _, err := svc.InstallTool(ctx, "test.myshopify.com", "Fit Tool"); err == nil {
		t.Fatal("没有生效主题时应该失败")
	}

	// 失败后不应有内容与脚本残留
	var count int64
	repos.db.Model(&model.LLMResponse{}).Count(&count)
	if count != 0 {
		t.Errorf("内容记录数 = %d, want 0", count)
	}
	if len(client.createdSrcs) != 0 {
		t.Errorf("不应创建脚本: %v", client.createdSrcs)
	}
}

func TestProvision_InstallGenerationFailure(t *testing.T) {
	repos := setupServiceTestDB(t)
	client := newFakeShopifyClient()
	svc := newTestProvisionService(repos, client, &fakeGenerator{err: errors.New("quota exceeded")})
	ctx := context.Background()

	repos.session.Save(ctx, "test.myshopify.com", "token-1", "scopes")

	if _, err := svc.InstallTool(ctx, "test.myshopify.com", "Fit Tool"); err == nil {
		t.Fatal("生成失败时应中止安装")
	}

	var count int64
	repos.db.Model(&model.LLMResponse{}).Count(&count)
	if count != 0 {
		t.Errorf("内容记录数 = %d, want 0", count)
	}
	if len(client.createdSrcs) != 0 {
		t.Errorf("不应创建脚本: %v", client.createdSrcs)
	}
}

func TestProvision_InstallOldScriptDeleteFailureIgnored(t *testing.T) {
	repos := setupServiceTestDB(t)
	client := newFakeShopifyClient()
	client.tags = []shopify.ScriptTag{{ID: "222", Src: "https://old/loader.js"}}
	client.deleteTagErr = errors.New("api unavailable")
	svc := newTestProvisionService(repos, client, &fakeGenerator{outputs: []string{"p", "l"}})
	ctx := context.Background()

	repos.session.Save(ctx, "test.myshopify.com", "token-1", "scopes")

	// 旧脚本删除失败不阻断安装
	if _, err := svc.InstallTool(ctx, "test.myshopify.com", "Fit Tool"); err != nil {
		t.Fatalf("InstallTool() error = %v", err)
	}
	if len(client.createdSrcs) != 1 {
		t.Errorf("新脚本仍应创建: %v", client.createdSrcs)
	}
}

// ==================== 脚本管理 ====================

func TestProvision_ListScripts(t *testing.T) {
	repos := setupServiceTestDB(t)
	client := newFakeShopifyClient()
	client.tags = []shopify.ScriptTag{{ID: "1", Src: "https://a"}, {ID: "2", Src: "https://b"}}
	svc := newTestProvisionService(repos, client, &fakeGenerator{})
	ctx := context.Background()

	if _, err := svc.ListScripts(ctx, "test.myshopify.com"); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("未授权应返回 ErrNotAuthenticated, got %v", err)
	}

	repos.session.Save(ctx, "test.myshopify.com", "token-1", "scopes")
	tags, err := svc.ListScripts(ctx, "test.myshopify.com")
	if err != nil {
		t.Fatalf("ListScripts() error = %v", err)
	}
	if len(tags) != 2 {
		t.Errorf("脚本数 = %d, want 2", len(tags))
	}
}

func TestProvision_RemoveTool(t *testing.T) {
	repos := setupServiceTestDB(t)
	client := newFakeShopifyClient()
	client.tags = []shopify.ScriptTag{{ID: "333", Src: "https://a"}}
	svc := newTestProvisionService(repos, client, &fakeGenerator{})
	ctx := context.Background()

	if err := svc.RemoveTool(ctx, "test.myshopify.com", "333"); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("未授权应返回 ErrNotAuthenticated, got %v", err)
	}

	repos.session.Save(ctx, "test.myshopify.com", "token-1", "scopes")
	if err := svc.RemoveTool(ctx, "test.myshopify.com", "333"); err != nil {
		t.Fatalf("RemoveTool() error = %v", err)
	}
	if len(client.tags) != 0 {
		t.Errorf("脚本应已删除: %v", client.tags)
	}
}

// ==================== 内容读取 ====================

func TestProvision_FetchContent(t *testing.T) {
	repos := setupServiceTestDB(t)
	svc := newTestProvisionService(repos, newFakeShopifyClient(), &fakeGenerator{})
	ctx := context.Background()

	repos.content.Create(ctx, &model.LLMResponse{ID: "abc", Landing: "l", Popup: "p"})

	// 落地页加载计一次安装量
	content, err := svc.FetchContent(ctx, "abc", "Fit Tool", true)
	if err != nil {
		t.Fatalf("FetchContent() error = %v", err)
	}
	if content == nil || content.Landing != "l" {
		t.Errorf("content = %+v", content)
	}

	var record model.ToolInstallation
	repos.db.Where("tool_name = ?", "Fit Tool").First(&record)
	if record.Metrics != 1 {
		t.Errorf("metrics = %d, want 1", record.Metrics)
	}

	// 非落地页加载不计数
	svc.FetchContent(ctx, "abc", "Fit Tool", false)
	repos.db.Where("tool_name = ?", "Fit Tool").First(&record)
	if record.Metrics != 1 {
		t.Errorf("非落地页加载不应计数, metrics = %d", record.Metrics)
	}
}

func TestProvision_FetchContentMissing(t *testing.T) {
	repos := setupServiceTestDB(t)
	svc := newTestProvisionService(repos, newFakeShopifyClient(), &fakeGenerator{})

	content, err := svc.FetchContent(context.Background(), "no-such-id", "", false)
	if err != nil {
		t.Fatalf("FetchContent() error = %v", err)
	}
	if content != nil {
		t.Error("不存在的内容应返回 nil")
	}
}
