package router

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"shopify_tools_v1_202608/internal/controller"
)

// Controllers 控制器集合
type Controllers struct {
	Auth      *controller.AuthController
	Tool      *controller.ToolController
	Page      *controller.PageController
	Bookmark  *controller.BookmarkController
	Analytics *controller.AnalyticsController
	Product   *controller.ProductController
}

// SetupRouter 注册所有路由
// 路由保持扁平结构，与嵌入式前端的调用路径一一对应
func SetupRouter(c *Controllers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// 嵌入式管理前端跨域访问
	r.Use(cors.Default())

	// 健康检查
	r.GET("/", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "Hello from Shopify backend!")
	})

	// auth 授权
	r.GET("/auth", c.Auth.Login)
	r.GET("/auth/callback", c.Auth.Callback)

	// tool 工具安装/卸载
	r.POST("/addToolScript", c.Tool.AddToolScript)
	r.POST("/removeToolScript", c.Tool.RemoveToolScript)
	r.GET("/get-scripts", c.Tool.GetScripts)
	r.GET("/llmResponse", c.Tool.LLMResponse)

	// page 落地页
	r.GET("/get-page-path", c.Page.GetPagePath)
	r.POST("/save-page-path", c.Page.SavePagePath)
	r.GET("/get-store-url", c.Page.GetStoreURL)

	// bookmark 收藏
	r.POST("/manage-bookmarks", c.Bookmark.ManageBookmarks)

	// analytics 统计
	r.GET("/analytics", c.Analytics.Analytics)

	// product 商品
	r.GET("/get-products", c.Product.GetProducts)

	return r
}
