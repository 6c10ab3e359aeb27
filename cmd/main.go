package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"shopify_tools_v1_202608/internal/controller"
	"shopify_tools_v1_202608/internal/model"
	"shopify_tools_v1_202608/internal/repository"
	"shopify_tools_v1_202608/internal/router"
	"shopify_tools_v1_202608/internal/service"
	"shopify_tools_v1_202608/internal/task"
	"shopify_tools_v1_202608/pkg/database"
	"shopify_tools_v1_202608/pkg/shopify"
)

func main() {
	// 1. 初始化数据库
	db := initDatabase()

	// 2. 初始化依赖
	deps := initDependencies(db)

	// 3. 启动定时任务
	initTasks(deps)

	// 4. 初始化路由
	r := router.SetupRouter(deps.Controllers)

	// 5. 启动服务
	startServer(r)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Shopify     shopify.Client
	Services    *Services
	Controllers *router.Controllers
}

// Repositories 仓库集合
type Repositories struct {
	Session      repository.SessionRepository
	LLMResponse  repository.LLMResponseRepository
	PagePath     repository.PagePathRepository
	Bookmark     repository.BookmarkRepository
	Installation repository.InstallationRepository
}

// Services 服务集合
type Services struct {
	Auth      *service.AuthService
	AI        *service.AIService
	Provision *service.ProvisionService
	Bookmark  *service.BookmarkService
	Shop      *service.ShopService
	Analytics *service.AnalyticsService
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase() *gorm.DB {
	dsn := getEnv("DATABASE_DSN",
		"host=localhost user=shopify_admin password=1234 dbname=shopify_tools port=5432 sslmode=disable")

	return database.InitDB(dsn,
		&model.ShopSession{},
		&model.LLMResponse{},
		&model.PagePath{},
		&model.Bookmark{},
		&model.ToolInstallation{},
	)
}

// initDependencies 初始化所有依赖
func initDependencies(db *gorm.DB) *Dependencies {
	// -------- Repo 层 --------
	repos := &Repositories{
		Session:      repository.NewSessionRepository(db),
		LLMResponse:  repository.NewLLMResponseRepository(db),
		PagePath:     repository.NewPagePathRepository(db),
		Bookmark:     repository.NewBookmarkRepository(db),
		Installation: repository.NewInstallationRepository(db),
	}

	// -------- 平台客户端 & AI --------
	shopifyClient := shopify.NewClient(&shopify.Config{})
	aiSvc := service.NewAIService(&service.AIConfig{
		ApiKey: getEnv("GEMINI_API_KEY", ""),
	})

	// -------- 业务服务 --------
	services := &Services{
		AI: aiSvc,
	}
	services.Auth = service.NewAuthService(&service.AuthConfig{
		ApiKey:      getEnv("SHOPIFY_API_KEY", ""),
		ApiSecret:   getEnv("SHOPIFY_API_SECRET", ""),
		Scopes:      getEnv("SHOPIFY_SCOPES", ""),
		RedirectURI: getEnv("SHOPIFY_REDIRECT_URI", ""),
		AppURL:      getEnv("SHOPIFY_APP_URL", ""),
	}, repos.Session, shopifyClient)
	services.Provision = service.NewProvisionService(
		repos.Session, repos.LLMResponse, repos.PagePath, repos.Installation,
		shopifyClient, aiSvc,
		getEnv("SCRIPT_LOADER_URL", "https://celebrated-cobbler-c97fe5.netlify.app/ai-tools.js"),
	)
	services.Bookmark = service.NewBookmarkService(repos.Bookmark, repos.Session)
	services.Shop = service.NewShopService(repos.Session, repos.PagePath, shopifyClient)
	services.Analytics = service.NewAnalyticsService(repos.Installation)

	// -------- Controller 层 --------
	controllers := &router.Controllers{
		Auth:      controller.NewAuthController(services.Auth),
		Tool:      controller.NewToolController(services.Provision),
		Page:      controller.NewPageController(services.Shop),
		Bookmark:  controller.NewBookmarkController(services.Bookmark),
		Analytics: controller.NewAnalyticsController(services.Analytics),
		Product:   controller.NewProductController(services.Shop),
	}

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Shopify:     shopifyClient,
		Services:    services,
		Controllers: controllers,
	}
}

// ==================== 定时任务 ====================

// initTasks 初始化定时任务
func initTasks(deps *Dependencies) {
	// 孤儿内容回收
	gcDays, _ := strconv.Atoi(getEnv("CONTENT_GC_RETAIN_DAYS", "30"))
	gcTask := task.NewContentGCTask(
		deps.Repos.LLMResponse,
		deps.Repos.Session,
		deps.Shopify,
		time.Duration(gcDays)*24*time.Hour,
	)
	gcTask.Start()

	log.Println("定时任务已启动")
}

// ==================== 服务启动 ====================

// startServer 启动服务
func startServer(r *gin.Engine) {
	port := getEnv("SERVER_PORT", "3000")

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		log.Printf("服务启动在 :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	// 优雅关闭，最多等待 30 秒
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务强制关闭: %v", err)
	}

	log.Println("服务已退出")
}

// ==================== 工具函数 ====================

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
